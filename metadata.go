package pocket

import (
	"context"
	"strings"
	"time"
)

// WebPageMetadata holds metadata scraped from a web page. Fields resolve
// through fallback chains (Open Graph, Twitter Card, generic HTML, the URL
// itself), so they are best-effort but never empty where a default exists.
type WebPageMetadata struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	SiteName      string    `json:"siteName"`
	Author        string    `json:"author,omitempty"`
	PublishedDate time.Time `json:"publishedDate,omitzero"`
}

// VideoMetadata extends WebPageMetadata for video platforms.
type VideoMetadata struct {
	WebPageMetadata

	// Duration is the video length in seconds.
	Duration int `json:"duration"`

	ChannelName string `json:"channelName"`
	ViewCount   int64  `json:"viewCount,omitempty"`
	EmbedURL    string `json:"embedUrl"`
}

// SocialMetadata extends WebPageMetadata for social posts.
type SocialMetadata struct {
	WebPageMetadata

	Platform string `json:"platform"`
	Username string `json:"username,omitempty"`
	PostType string `json:"postType,omitempty"`
}

// MetadataExtractor extracts typed metadata records from URLs. Transient
// fetch failures are retried internally; an error from any method means
// the retry budget is exhausted.
type MetadataExtractor interface {
	ExtractWebPage(ctx context.Context, url string) (*WebPageMetadata, error)
	ExtractYouTube(ctx context.Context, url string) (*VideoMetadata, error)
	ExtractInstagram(ctx context.Context, url string) (*SocialMetadata, error)
}

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch returns the response body for the URL. The context controls
	// timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// ExtractorKind selects a platform-specialized extractor.
type ExtractorKind string

// ExtractorKind values.
const (
	ExtractorYouTube   ExtractorKind = "youtube"
	ExtractorInstagram ExtractorKind = "instagram"
	ExtractorWebPage   ExtractorKind = "webpage"
)

// ExtractorKindFor dispatches a URL to a specialized extractor by
// case-insensitive substring match. Note that this host list is narrower
// than the content-type classifier's: a tiktok.com URL classifies as
// social but is parsed by the generic web-page extractor.
func ExtractorKindFor(rawURL string) ExtractorKind {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") {
		return ExtractorYouTube
	}
	if strings.Contains(lower, "instagram.com") {
		return ExtractorInstagram
	}
	return ExtractorWebPage
}
