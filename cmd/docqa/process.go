package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
)

// Run executes the process command.
func (c *ProcessCmd) Run(deps *Dependencies) error {
	analyze := !c.SinglePage
	req := docqa.ProcessRequest{
		URL:                c.URL,
		LanguageCode:       c.Language,
		MaxDepth:           c.MaxDepth,
		ExcludedPaths:      c.Exclude,
		AnalyzeSubsections: &analyze,
	}

	jobID, err := deps.Service.ProcessAsync(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Processing %s (job %s)\n", c.URL, jobID)

	status, err := waitForStatus(deps, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	switch status.State {
	case docqa.DocumentFailed:
		fmt.Fprintf(deps.Stderr, "error: %s\n", strings.TrimPrefix(status.Message, "Error: "))
		return docqa.Errorf(docqa.EJOB, "processing %s failed", c.URL)
	case docqa.DocumentCancelled:
		fmt.Fprintln(deps.Stderr, "error: processing was cancelled")
		return docqa.Errorf(docqa.ECONFLICT, "processing %s was cancelled", c.URL)
	}

	fmt.Fprintf(deps.Stdout, "  Indexed %d of %d pages\n", status.SectionsAnalyzed, status.TotalPages)

	if deps.Jobs == nil {
		return nil
	}
	result, err := waitForResult(deps, jobID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "\n%s\n\n%s\n", result.Title, result.Summary)
	if len(result.KeyConcepts) > 0 {
		fmt.Fprintf(deps.Stdout, "\nKey concepts: %s\n", strings.Join(result.KeyConcepts, ", "))
	}
	return nil
}

// waitForResult polls job id until it is terminal and returns its result.
// The document status completes before the job records its outcome.
func waitForResult(deps *Dependencies, id string) (*docqa.ProcessResult, error) {
	ticker := time.NewTicker(deps.pollInterval())
	defer ticker.Stop()

	for {
		job := deps.Jobs.Status(deps.Ctx, id)
		if job.State.Terminal() || job.State == docqa.JobNotFound {
			break
		}
		select {
		case <-deps.Ctx.Done():
			return nil, deps.Ctx.Err()
		case <-ticker.C:
		}
	}

	v, err := deps.Jobs.Result(deps.Ctx, id)
	if err != nil {
		return nil, err
	}
	result, ok := v.(*docqa.ProcessResult)
	if !ok {
		return nil, docqa.Errorf(docqa.EINTERNAL, "unexpected result type %T", v)
	}
	return result, nil
}

// waitForStatus polls the status of url until it is terminal, printing
// progress messages as they change. If deps.Ctx ends first the run is
// cancelled.
func waitForStatus(deps *Dependencies, url string) (*docqa.DocumentStatus, error) {
	ticker := time.NewTicker(deps.pollInterval())
	defer ticker.Stop()

	var last string
	for {
		status, err := deps.Service.Status(deps.Ctx, url)
		if err != nil {
			return nil, err
		}
		if status.State.Terminal() {
			return status, nil
		}
		if status.Message != "" && status.Message != last {
			fmt.Fprintf(deps.Stdout, "  %3.0f%% %s\n", status.CompletionPercentage, status.Message)
			last = status.Message
		}

		select {
		case <-deps.Ctx.Done():
			if _, err := deps.Service.Cancel(context.WithoutCancel(deps.Ctx), url); err != nil {
				fmt.Fprintf(deps.Stderr, "error: cancel: %s\n", docqa.ErrorMessage(err))
			}
			return nil, deps.Ctx.Err()
		case <-ticker.C:
		}
	}
}
