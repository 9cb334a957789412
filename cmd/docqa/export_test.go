package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes pages below the site host", func(t *testing.T) {
		t.Parallel()

		docs := &mock.DocumentStore{
			FindIndexFn: func(_ context.Context, id string) (*docqa.DocumentIndex, error) {
				require.Equal(t, docqa.DocumentID("https://docs.example.com/"), id)
				page := &docqa.Page{URL: "docs.example.com/guide", SourceURL: "https://docs.example.com/guide", Title: "Guide", Content: "Routing."}
				return &docqa.DocumentIndex{
					DocID:     id,
					Pages:     map[string]*docqa.Page{page.URL: page},
					PageOrder: []string{page.URL},
				}, nil
			},
		}

		dir := t.TempDir()
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Documents: docs}

		require.NoError(t, (&main.ExportCmd{URL: "https://docs.example.com/", Dir: dir}).Run(deps))

		data, err := os.ReadFile(filepath.Join(dir, "docs.example.com", "guide.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "Routing.")
		assert.Contains(t, stdout.String(), "Exported 1 pages")
	})

	t.Run("hints at process for unknown sites", func(t *testing.T) {
		t.Parallel()

		docs := &mock.DocumentStore{
			FindIndexFn: func(context.Context, string) (*docqa.DocumentIndex, error) {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "document not found")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Documents: docs}

		err := (&main.ExportCmd{URL: "https://docs.example.com/", Dir: t.TempDir()}).Run(deps)
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
		assert.Contains(t, stderr.String(), "docqa process")
	})
}
