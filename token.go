package docqa

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// ApproxTokens estimates four runes per token. It is used when no
// model tokenizer is configured.
type ApproxTokens struct{}

func (ApproxTokens) CountTokens(_ context.Context, text string) (int, error) {
	return (utf8.RuneCountInString(text) + 3) / 4, nil
}

// FitTokens returns how many leading texts fit within budget tokens.
// The first text always fits so a question is never answered without
// context. A budget of zero or less means no limit.
func FitTokens(ctx context.Context, tc TokenCounter, texts []string, budget int) (int, error) {
	if budget <= 0 {
		return len(texts), nil
	}
	total := 0
	for i, text := range texts {
		n, err := tc.CountTokens(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("count tokens: %w", err)
		}
		total += n
		if total > budget && i > 0 {
			return i, nil
		}
	}
	return len(texts), nil
}
