package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docqa.Errorf(docqa.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Documents.DeleteDocument(deps.Ctx, docqa.DocumentID(c.URL)); err != nil {
		if docqa.ErrorCode(err) == docqa.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s has not been processed\n", c.URL)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s\n", c.URL)
	return nil
}
