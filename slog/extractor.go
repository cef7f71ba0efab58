package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/universalpocket/pocket"
)

// Ensure LoggingExtractor implements pocket.MetadataExtractor at compile time.
var _ pocket.MetadataExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a MetadataExtractor and logs each extraction
// with its kind, outcome and duration.
type LoggingExtractor struct {
	inner  pocket.MetadataExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a LoggingExtractor wrapping inner.
func NewLoggingExtractor(inner pocket.MetadataExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{inner: inner, logger: logger}
}

// ExtractWebPage delegates to the inner extractor, logging the result.
func (e *LoggingExtractor) ExtractWebPage(ctx context.Context, url string) (*pocket.WebPageMetadata, error) {
	start := time.Now()
	meta, err := e.inner.ExtractWebPage(ctx, url)
	e.log("webpage", url, time.Since(start), err)
	return meta, err
}

// ExtractYouTube delegates to the inner extractor, logging the result.
func (e *LoggingExtractor) ExtractYouTube(ctx context.Context, url string) (*pocket.VideoMetadata, error) {
	start := time.Now()
	meta, err := e.inner.ExtractYouTube(ctx, url)
	e.log("youtube", url, time.Since(start), err)
	return meta, err
}

// ExtractInstagram delegates to the inner extractor, logging the result.
func (e *LoggingExtractor) ExtractInstagram(ctx context.Context, url string) (*pocket.SocialMetadata, error) {
	start := time.Now()
	meta, err := e.inner.ExtractInstagram(ctx, url)
	e.log("instagram", url, time.Since(start), err)
	return meta, err
}

func (e *LoggingExtractor) log(kind, url string, duration time.Duration, err error) {
	if err != nil {
		e.logger.Error("extract", "kind", kind, "url", url, "duration", duration, "err", err)
		return
	}
	e.logger.Info("extract", "kind", kind, "url", url, "duration", duration)
}
