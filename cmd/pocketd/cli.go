package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/universalpocket/pocket"
	pockethttp "github.com/universalpocket/pocket/http"
	"github.com/universalpocket/pocket/save"
	"github.com/universalpocket/pocket/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	DB      *sqlite.DB
	Store   pocket.ContentService
	Saver   *save.Service
	Monitor *pockethttp.Monitor

	logger *slog.Logger
}

// Logger returns the shared logger, writing to Stderr.
func (d *Dependencies) Logger() *slog.Logger {
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(d.Stderr, nil))
	}
	return d.logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Save   SaveCmd   `cmd:"" help:"Save a URL or note"`
	List   ListCmd   `cmd:"" help:"List saved content"`
	Get    GetCmd    `cmd:"" help:"Show a saved item"`
	Delete DeleteCmd `cmd:"" help:"Delete a saved item"`
	Retry  RetryCmd  `cmd:"" help:"Retry failed metadata extractions"`
	Serve  ServeCmd  `cmd:"" help:"Run the local bridge server"`
}

// SaveCmd is the "save" subcommand.
type SaveCmd struct {
	URL    string `short:"u" help:"URL to save"`
	Note   string `short:"n" help:"Note text to save"`
	Title  string `short:"t" help:"Explicit title"`
	Source string `default:"web" help:"Save source"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Type   string `help:"Filter by content type (article, video, social, note, link, image)"`
	Search string `short:"s" help:"Search titles and content"`
	Tag    string `help:"Filter by tag"`
	Limit  int    `default:"0" help:"Maximum number of items (0 = all)"`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	ID string `arg:"" help:"Content ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Content ID"`
	Force bool   `help:"Confirm deletion"`
}

// RetryCmd is the "retry" subcommand.
type RetryCmd struct{}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:"localhost:3939" help:"Listen address"`
}
