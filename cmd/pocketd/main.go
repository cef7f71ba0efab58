package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/universalpocket/pocket"
	"github.com/universalpocket/pocket/goquery"
	pockethttp "github.com/universalpocket/pocket/http"
	"github.com/universalpocket/pocket/save"
	pocketslog "github.com/universalpocket/pocket/slog"
	"github.com/universalpocket/pocket/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ContentService pocket.ContentService
	SaveService    *save.Service
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.SaveService != nil {
		_ = m.SaveService.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pocketd"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pocketd --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set POCKET_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.ContentService = sqlite.NewContentService(m.DB)

	fetcher := pocketslog.NewLoggingFetcher(pockethttp.NewFetcher(), deps.Logger())
	defer fetcher.Close()
	extractor := pocketslog.NewLoggingExtractor(goquery.NewExtractor(fetcher), deps.Logger())

	monitor := pockethttp.NewMonitor(pockethttp.WithMonitorLogger(deps.Logger()))
	if cmd == "serve" {
		monitor.Start(ctx)
		defer monitor.Close()
	}

	m.SaveService = save.NewService(m.ContentService, extractor, monitor,
		save.WithLogger(deps.Logger()))

	deps.DB = m.DB
	deps.Store = m.ContentService
	deps.Saver = m.SaveService
	deps.Monitor = monitor

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("POCKET_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pocket.db"
	}
	dir := filepath.Join(home, ".pocket")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pocket.db")
}
