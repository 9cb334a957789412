package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	status, err := deps.Service.Status(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if status.State == docqa.DocumentNotFound {
		fmt.Fprintf(deps.Stderr, "error: %s has not been processed\n", c.URL)
		return docqa.Errorf(docqa.ENOTFOUND, "%s has not been processed", c.URL)
	}

	fmt.Fprintf(deps.Stdout, "%s: %s\n", c.URL, status.State)
	fmt.Fprintf(deps.Stdout, "  Pages:    %d of %d (%.0f%%)\n", status.SectionsAnalyzed, status.TotalPages, status.CompletionPercentage)
	if status.Message != "" {
		fmt.Fprintf(deps.Stdout, "  Message:  %s\n", status.Message)
	}
	if !status.UpdatedAt.IsZero() {
		fmt.Fprintf(deps.Stdout, "  Updated:  %s\n", status.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
