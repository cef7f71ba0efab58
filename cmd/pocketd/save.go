package main

import (
	"fmt"
	"strings"

	"github.com/universalpocket/pocket"
)

// Run executes the save command.
func (c *SaveCmd) Run(deps *Dependencies) error {
	req := pocket.SaveRequest{
		URL:     c.URL,
		Content: c.Note,
		Title:   c.Title,
		Source:  c.Source,
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pocket.ErrorMessage(err))
		return err
	}

	item, err := deps.Saver.SaveContent(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pocket.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %s %q (%s)\n", item.Type, item.Title, item.ID)
	if len(item.Tags) > 0 {
		fmt.Fprintf(deps.Stdout, "Tags: %s\n", strings.Join(item.Tags, ", "))
	}
	if item.SyncStatus == pocket.SyncPending {
		fmt.Fprintln(deps.Stdout, "Offline: metadata extraction queued for when connectivity returns.")
	}
	return nil
}
