package main

import (
	"fmt"

	"github.com/universalpocket/pocket"
)

// Run executes the retry command.
func (c *RetryCmd) Run(deps *Dependencies) error {
	if err := deps.Saver.RetryFailedExtractions(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pocket.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Retried failed extractions.")
	return nil
}
