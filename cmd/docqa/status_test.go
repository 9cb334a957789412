package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints progress", func(t *testing.T) {
		t.Parallel()

		svc := &mock.DocService{
			StatusFn: func(_ context.Context, url string) (*docqa.DocumentStatus, error) {
				return &docqa.DocumentStatus{
					URL:                  url,
					State:                docqa.DocumentInProgress,
					SectionsAnalyzed:     3,
					TotalPages:           8,
					CompletionPercentage: 33.75,
					Message:              "crawled 3 of 8 pages",
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Service: svc}

		require.NoError(t, (&main.StatusCmd{URL: "https://docs.example.com"}).Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "https://docs.example.com: in_progress")
		assert.Contains(t, out, "3 of 8 (34%)")
		assert.Contains(t, out, "crawled 3 of 8 pages")
		assert.NotContains(t, out, "Updated:")
	})

	t.Run("returns ENOTFOUND for unprocessed sites", func(t *testing.T) {
		t.Parallel()

		svc := &mock.DocService{
			StatusFn: func(context.Context, string) (*docqa.DocumentStatus, error) {
				return &docqa.DocumentStatus{State: docqa.DocumentNotFound}, nil
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Service: svc}

		err := (&main.StatusCmd{URL: "https://docs.example.com"}).Run(deps)
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
		assert.Contains(t, stderr.String(), "has not been processed")
	})
}
