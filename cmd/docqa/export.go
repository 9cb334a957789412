package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	idx, err := deps.Documents.FindIndex(deps.Ctx, docqa.DocumentID(c.URL))
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s has not been processed. Use 'docqa process %s' first.\n", c.URL, c.URL)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	name := c.Name
	if name == "" {
		name = fs.DirName(c.URL)
	}

	exporter := &fs.Exporter{Dir: c.Dir}
	n, err := exporter.Export(deps.Ctx, name, idx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d pages to %s\n", n, filepath.Join(c.Dir, name))
	return nil
}
