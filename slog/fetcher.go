// Package slog provides logging decorators over the core interfaces
// using the standard library's structured logger.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/universalpocket/pocket"
)

// Ensure LoggingFetcher implements pocket.Fetcher at compile time.
var _ pocket.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs each fetch with its outcome,
// size and duration.
type LoggingFetcher struct {
	inner  pocket.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a LoggingFetcher wrapping inner.
func NewLoggingFetcher(inner pocket.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{inner: inner, logger: logger}
}

// Fetch delegates to the inner fetcher, logging the result.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	html, err := f.inner.Fetch(ctx, url)
	duration := time.Since(start)

	if err != nil {
		f.logger.Error("fetch", "url", url, "duration", duration, "err", err)
		return "", err
	}

	f.logger.Info("fetch", "url", url, "bytes", len(html), "duration", duration)
	return html, nil
}

// Close delegates to the inner fetcher.
func (f *LoggingFetcher) Close() error {
	return f.inner.Close()
}
