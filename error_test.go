package docqa_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docqa.Errorf(docqa.ENOTFOUND, "document %q not found", "abc")

	assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	assert.Equal(t, "document \"abc\" not found", docqa.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docqa.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docqa.ErrorMessage(nil))
}

func TestErrorCode_UnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("crawl: %w", docqa.Errorf(docqa.EFETCH, "HTTP 404 for %s", "https://example.com"))

	assert.Equal(t, docqa.EFETCH, docqa.ErrorCode(err))
	assert.Equal(t, "HTTP 404 for https://example.com", docqa.ErrorMessage(err))
}

func TestErrorCode_PlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, docqa.EINTERNAL, docqa.ErrorCode(err))
	assert.Equal(t, "Internal error.", docqa.ErrorMessage(err))
}
