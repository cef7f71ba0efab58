package main

import (
	"fmt"
	"strings"

	"github.com/universalpocket/pocket"
)

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	item, err := deps.Saver.FindContentByID(deps.Ctx, c.ID)
	if err != nil {
		if pocket.ErrorCode(err) == pocket.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: content %q not found. Use 'pocketd list' to see saved items.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pocket.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n", item.Title)
	fmt.Fprintf(deps.Stdout, "  id:      %s\n", item.ID)
	fmt.Fprintf(deps.Stdout, "  type:    %s\n", item.Type)
	if item.URL != "" {
		fmt.Fprintf(deps.Stdout, "  url:     %s\n", item.URL)
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(deps.Stdout, "  tags:    %s\n", strings.Join(item.Tags, ", "))
	}
	fmt.Fprintf(deps.Stdout, "  saved:   %s\n", item.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(deps.Stdout, "  status:  %s\n", item.SyncStatus)
	if item.Content != "" {
		fmt.Fprintf(deps.Stdout, "\n%s\n", item.Content)
	}
	return nil
}
