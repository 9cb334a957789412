package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docqa"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	result, err := deps.Service.Query(deps.Ctx, docqa.QueryRequest{
		URL:            c.URL,
		Question:       c.Question,
		LanguageCode:   c.Language,
		MaxTokens:      c.MaxTokens,
		IncludeSources: c.Sources,
		TopK:           c.TopK,
	})
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s has not been processed. Use 'docqa process %s' first.\n", c.URL, c.URL)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if result.Answer != "" {
		fmt.Fprintln(deps.Stdout, result.Answer)
	} else {
		for i, chunk := range result.Chunks {
			fmt.Fprintf(deps.Stdout, "[%d] %s (%s, %.2f)\n%s\n\n", i+1, chunk.Title, chunk.PageURL, chunk.Similarity, chunk.Text)
		}
	}

	fmt.Fprintf(deps.Stdout, "Confidence: %.2f (%s search)\n", result.Confidence, result.Mode)
	if len(result.Sources) > 0 {
		fmt.Fprintf(deps.Stdout, "Sources: %s\n", strings.Join(result.Sources, ", "))
	}
	return nil
}
