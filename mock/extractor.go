package mock

import (
	"context"

	"github.com/universalpocket/pocket"
)

var _ pocket.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor is a mock implementation of pocket.MetadataExtractor.
type MetadataExtractor struct {
	ExtractWebPageFn   func(ctx context.Context, url string) (*pocket.WebPageMetadata, error)
	ExtractYouTubeFn   func(ctx context.Context, url string) (*pocket.VideoMetadata, error)
	ExtractInstagramFn func(ctx context.Context, url string) (*pocket.SocialMetadata, error)
}

func (e *MetadataExtractor) ExtractWebPage(ctx context.Context, url string) (*pocket.WebPageMetadata, error) {
	return e.ExtractWebPageFn(ctx, url)
}

func (e *MetadataExtractor) ExtractYouTube(ctx context.Context, url string) (*pocket.VideoMetadata, error) {
	return e.ExtractYouTubeFn(ctx, url)
}

func (e *MetadataExtractor) ExtractInstagram(ctx context.Context, url string) (*pocket.SocialMetadata, error) {
	return e.ExtractInstagramFn(ctx, url)
}
