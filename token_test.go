package docqa_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproxTokens(t *testing.T) {
	t.Parallel()

	n, err := docqa.ApproxTokens{}.CountTokens(context.Background(), "héllo")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFitTokens(t *testing.T) {
	t.Parallel()

	tens := &mock.TokenCounter{CountTokensFn: func(context.Context, string) (int, error) { return 10, nil }}
	texts := []string{"a", "b", "c"}

	tests := []struct {
		name   string
		budget int
		want   int
	}{
		{"no limit", 0, 3},
		{"two fit", 25, 2},
		{"exact fit", 30, 3},
		{"first always kept", 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := docqa.FitTokens(context.Background(), tens, texts, tt.budget)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	t.Run("counter error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("tokenizer unavailable")
		failing := &mock.TokenCounter{CountTokensFn: func(context.Context, string) (int, error) { return 0, boom }}

		_, err := docqa.FitTokens(context.Background(), failing, texts, 5)
		assert.ErrorIs(t, err, boom)
	})
}
