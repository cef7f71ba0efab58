package main

import (
	"fmt"

	"github.com/universalpocket/pocket"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return pocket.Errorf(pocket.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Saver.DeleteContent(deps.Ctx, c.ID); err != nil {
		if pocket.ErrorCode(err) == pocket.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: content %q not found. Use 'pocketd list' to see saved items.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pocket.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s\n", c.ID)
	return nil
}
