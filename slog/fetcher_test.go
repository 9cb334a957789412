package slog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/mock"
	docslog "github.com/fwojciec/docqa/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher(t *testing.T) {
	t.Parallel()

	t.Run("debug line on success", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		f := docslog.NewLoggingFetcher(&mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) { return "<p>hi</p>", nil },
		}, debugLogger(&buf))

		html, err := f.Fetch(context.Background(), "https://docs.example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", html)
		assert.Contains(t, buf.String(), "level=DEBUG msg=fetched url=https://docs.example.com/a bytes=9")
	})

	t.Run("warning carries error code", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		f := docslog.NewLoggingFetcher(&mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", docqa.Errorf(docqa.EFETCH, "HTTP 503")
			},
		}, debugLogger(&buf))

		_, err := f.Fetch(context.Background(), "https://docs.example.com/a")

		assert.Equal(t, docqa.EFETCH, docqa.ErrorCode(err))
		assert.Contains(t, buf.String(), "level=WARN msg=\"fetch failed\"")
		assert.Contains(t, buf.String(), "code=fetch")
	})

	t.Run("close passes through", func(t *testing.T) {
		t.Parallel()

		closeErr := errors.New("pool closed")
		f := docslog.NewLoggingFetcher(&mock.Fetcher{CloseFn: func() error { return closeErr }}, debugLogger(&bytes.Buffer{}))

		assert.ErrorIs(t, f.Close(), closeErr)
	})
}
