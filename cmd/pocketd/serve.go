package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pockethttp "github.com/universalpocket/pocket/http"
)

// Run executes the serve command. It blocks until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := pockethttp.NewServer(deps.Saver, deps.Store, nil, deps.Logger())
	if err := server.Open(c.Addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to listen on %s: %s\n", c.Addr, err)
		return err
	}
	defer server.Close()

	fmt.Fprintf(deps.Stdout, "Bridge server listening on http://%s\n", server.Addr)
	fmt.Fprintln(deps.Stdout, "Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
	case <-deps.Ctx.Done():
	}

	fmt.Fprintln(deps.Stdout, "Shutting down.")
	return nil
}
