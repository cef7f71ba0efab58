package main

import (
	"fmt"

	"github.com/universalpocket/pocket"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := pocket.ContentFilter{
		Search: c.Search,
		Limit:  c.Limit,
	}
	if c.Type != "" {
		contentType := pocket.ContentType(c.Type)
		filter.Type = &contentType
	}
	if c.Tag != "" {
		filter.Tags = []string{c.Tag}
	}

	items, err := deps.Saver.FindContent(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pocket.ErrorMessage(err))
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(deps.Stdout, "No content found. Use 'pocketd save' to add something.")
		return nil
	}

	for _, item := range items {
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %s\n", item.ID, item.Type, item.Title)
	}

	return nil
}
