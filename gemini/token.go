package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is the model whose vocabulary bounds answer context.
const DefaultTokenizerModel = "gemini-2.5-flash"

var _ docqa.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts context tokens offline with the vocabulary of a
// Gemini model, so QueryRequest.MaxTokens can be honored without an API
// round trip per chunk.
type TokenCounter struct {
	Model string

	mu  sync.Mutex
	tok *tokenizer.LocalTokenizer
}

func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{Model: model, tok: tok}, nil
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	res, err := tc.tok.CountTokens([]*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: text}},
	}}, nil)
	if err != nil {
		return 0, docqa.Errorf(docqa.EINTERNAL, "count tokens with %s: %v", tc.Model, err)
	}
	return int(res.TotalTokens), nil
}
