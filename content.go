package pocket

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// ContentType classifies a saved item.
type ContentType string

// ContentType values.
const (
	ContentArticle ContentType = "article"
	ContentVideo   ContentType = "video"
	ContentSocial  ContentType = "social"
	ContentNote    ContentType = "note"
	ContentLink    ContentType = "link"
	ContentImage   ContentType = "image"
)

// SyncStatus tracks metadata resolution for a saved item.
type SyncStatus string

// SyncStatus values. SyncSynced is reserved for a future remote-sync
// feature; nothing in this module sets it.
const (
	SyncLocal   SyncStatus = "local"
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

// Well-known metadata keys. The metadata mapping is schema-open: new keys
// may be added without migration, but these are the ones the save pipeline
// reads back.
const (
	MetaSource            = "source"
	MetaSavedAt           = "savedAt"
	MetaOffline           = "offline"
	MetaExtractionPending = "extractionPending"
	MetaExtractionError   = "extractionError"
	MetaLastRetry         = "lastRetry"
)

// Metadata is an open string-keyed mapping attached to every content item.
type Metadata map[string]any

// ContentItem represents a saved piece of content.
type ContentItem struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Content     string      `json:"content,omitempty"`
	URL         string      `json:"url,omitempty"`
	Thumbnail   string      `json:"thumbnail"`
	Metadata    Metadata    `json:"metadata"`
	Tags        []string    `json:"tags"`
	ContentHash string      `json:"contentHash"`
	CreatedAt   time.Time   `json:"createdAt"`
	SyncStatus  SyncStatus  `json:"syncStatus"`
}

// Validate returns an error if the item contains invalid fields.
func (c *ContentItem) Validate() error {
	switch c.Type {
	case ContentArticle, ContentVideo, ContentSocial, ContentNote, ContentLink, ContentImage:
	default:
		return Errorf(EINVALID, "invalid content type %q", c.Type)
	}
	if c.Title == "" {
		return Errorf(EINVALID, "content title required")
	}
	return nil
}

// SaveSource values accepted in SaveRequest.Source.
const (
	SourceWeb         = "web"
	SourceRaycast     = "raycast"
	SourceShare       = "share"
	SourceBookmarklet = "bookmarklet"
)

// FileInfo describes an attached file in a save request. Only the MIME
// type participates in classification; file bodies are handled by the
// presentation layer.
type FileInfo struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
}

// SaveRequest is an incoming request to save content. At least one of
// Content or URL must be present.
type SaveRequest struct {
	Content string     `json:"content,omitempty"`
	URL     string     `json:"url,omitempty"`
	Title   string     `json:"title,omitempty"`
	Files   []FileInfo `json:"files,omitempty"`
	Source  string     `json:"source,omitempty"`
}

// Validate returns an error if the request cannot be saved.
func (r *SaveRequest) Validate() error {
	if r.Content == "" && r.URL == "" {
		return Errorf(EINVALID, "either content or url is required")
	}
	return nil
}

// QueuedSave is an in-memory record of a save whose metadata extraction
// was deferred while offline. It is never persisted: losing it delays
// enrichment of the stored item but cannot lose the item itself.
type QueuedSave struct {
	ID         string      `json:"id"`
	Request    SaveRequest `json:"request"`
	Timestamp  time.Time   `json:"timestamp"`
	RetryCount int         `json:"retryCount"`
}

// QueueStatus describes the current offline queue.
type QueueStatus struct {
	Count int          `json:"count"`
	Items []QueuedSave `json:"items"`
}

// ContentFilter represents a filter for FindContent. Zero values match
// everything.
type ContentFilter struct {
	// Type matches items of exactly this type.
	Type *ContentType `json:"type"`

	// Tags matches items carrying any of the given tags.
	Tags []string `json:"tags"`

	// Search matches items whose title or content contains the string,
	// case-insensitively.
	Search string `json:"search"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ContentUpdate represents fields that can be updated on a content item.
// Nil fields are left untouched. A non-nil Metadata or Tags replaces the
// stored value wholesale.
type ContentUpdate struct {
	Title      *string     `json:"title"`
	Thumbnail  *string     `json:"thumbnail"`
	Metadata   Metadata    `json:"metadata"`
	Tags       []string    `json:"tags"`
	SyncStatus *SyncStatus `json:"syncStatus"`
}

// StorageQuota reports best-effort storage usage. All-zero means the
// platform could not report usage.
type StorageQuota struct {
	Used       int64   `json:"used"`
	Available  int64   `json:"available"`
	Percentage float64 `json:"percentage"`
}

// StorageStats summarizes the content store.
type StorageStats struct {
	TotalItems  int                 `json:"totalItems"`
	ItemsByType map[ContentType]int `json:"itemsByType"`
	Quota       StorageQuota        `json:"quota"`
}

// ContentService represents the persistence layer for content items. It is
// the sole source of truth: callers treat everything else (queues, caches)
// as recoverable intent.
type ContentService interface {
	// CreateContent persists a new item, allocating its ID and CreatedAt.
	// SyncStatus defaults to local when unset; an explicit value wins.
	CreateContent(ctx context.Context, item *ContentItem) error

	// CreateContentGuarded is CreateContent but fails fast with
	// ESTORAGELIMIT when the store is out of space, without writing.
	CreateContentGuarded(ctx context.Context, item *ContentItem) error

	// FindContentByID retrieves an item by ID.
	// Returns ENOTFOUND if the item does not exist.
	FindContentByID(ctx context.Context, id string) (*ContentItem, error)

	// FindContent retrieves items matching the filter, newest first.
	FindContent(ctx context.Context, filter ContentFilter) ([]*ContentItem, error)

	// UpdateContent merges the partial update onto an existing item.
	// Returns ENOTFOUND if the item does not exist.
	UpdateContent(ctx context.Context, id string, upd ContentUpdate) (*ContentItem, error)

	// DeleteContent permanently removes an item.
	// Returns ENOTFOUND if the item does not exist.
	DeleteContent(ctx context.Context, id string) error

	// Quota reports best-effort storage usage.
	Quota(ctx context.Context) (StorageQuota, error)

	// HasSpace reports whether usage is below 90% of the budget.
	HasSpace(ctx context.Context) bool

	// Stats summarizes stored items and quota.
	Stats(ctx context.Context) (*StorageStats, error)
}

// SaveService is the save orchestrator consumed by outer surfaces (CLI,
// HTTP bridge). Extraction failures never surface here raw; they degrade
// to fallback records. Store failures propagate.
type SaveService interface {
	// SaveContent classifies and persists a save request, enriching it
	// with extracted metadata when online.
	SaveContent(ctx context.Context, req SaveRequest) (*ContentItem, error)

	// FindContentByID retrieves a saved item by ID.
	FindContentByID(ctx context.Context, id string) (*ContentItem, error)

	// FindContent retrieves saved items matching the filter.
	FindContent(ctx context.Context, filter ContentFilter) ([]*ContentItem, error)

	// DeleteContent removes an item and any queued extraction for it.
	DeleteContent(ctx context.Context, id string) error

	// ProcessOfflineQueue drains the offline extraction queue. At most one
	// drain runs at a time; concurrent calls are no-ops.
	ProcessOfflineQueue(ctx context.Context) error

	// QueueStatus reports the current offline queue.
	QueueStatus() QueueStatus
}

// videoHosts and socialHosts drive content-type classification. These are
// deliberately not the same lists the extractor dispatch uses: tiktok and
// linkedin classify as social but are parsed by the generic extractor.
var (
	videoHosts  = []string{"youtube.com", "youtu.be", "vimeo.com", "twitch.tv"}
	socialHosts = []string{"twitter.com", "x.com", "instagram.com", "tiktok.com", "linkedin.com"}
)

// DetectContentType classifies a save request. Attached image/video files
// win over everything; then URL host matching; URLs default to article,
// bare text to note, and anything else to link.
func DetectContentType(req SaveRequest) ContentType {
	if len(req.Files) > 0 {
		switch {
		case strings.HasPrefix(req.Files[0].MIMEType, "image/"):
			return ContentImage
		case strings.HasPrefix(req.Files[0].MIMEType, "video/"):
			return ContentVideo
		}
	}

	if req.URL != "" {
		lower := strings.ToLower(req.URL)
		for _, host := range videoHosts {
			if strings.Contains(lower, host) {
				return ContentVideo
			}
		}
		for _, host := range socialHosts {
			if strings.Contains(lower, host) {
				return ContentSocial
			}
		}
		return ContentArticle
	}

	if req.Content != "" {
		return ContentNote
	}

	return ContentLink
}

// platformTags maps URL substrings to platform tags.
var platformTags = []struct {
	substr string
	tag    string
}{
	{"youtube.com", "youtube"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"instagram.com", "instagram"},
	{"github.com", "github"},
	{"reddit.com", "reddit"},
	{"medium.com", "medium"},
	{"dev.to", "dev"},
}

// RequestTags derives the tag set for a save request: the request source,
// one tag per recognized platform substring in the URL, and the resolved
// content type. Tags are lowercased and deduplicated, preserving first
// occurrence order.
func RequestTags(req SaveRequest, contentType ContentType) []string {
	var tags []string
	if req.Source != "" {
		tags = append(tags, req.Source)
	}
	if req.URL != "" {
		lower := strings.ToLower(req.URL)
		for _, p := range platformTags {
			if strings.Contains(lower, p.substr) {
				tags = append(tags, p.tag)
			}
		}
	}
	tags = append(tags, string(contentType))
	return NormalizeTags(tags)
}

// NormalizeTags lowercases tags and removes duplicates and empty strings,
// preserving first occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}

// fallbackTitleLimit caps titles derived from content snippets.
const fallbackTitleLimit = 50

// FallbackTitle resolves a display title for a request without touching
// the network: explicit title, then a content snippet, then the URL path,
// then "Untitled".
func FallbackTitle(req SaveRequest) string {
	if req.Title != "" {
		return req.Title
	}
	if req.Content != "" {
		if len(req.Content) > fallbackTitleLimit {
			return req.Content[:fallbackTitleLimit] + "..."
		}
		return req.Content
	}
	if req.URL != "" {
		return TitleFromURL(req.URL)
	}
	return "Untitled"
}

// TitleFromURL derives a display title from the last path segment of a
// URL: extension stripped, hyphens and underscores replaced with spaces,
// words title-cased. Falls back to the hostname for bare paths and to
// "Web Page" for unparseable URLs.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Web Page"
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		last = last[:dot]
	}
	last = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, last)
	last = strings.TrimSpace(titleCase(last))

	if last == "" {
		return u.Hostname()
	}
	return last
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if prev == ' ' {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return r
	}, s)
}

// SiteNameFromURL derives a best-effort site name from a URL's hostname,
// stripping a leading "www.". Returns "Unknown Site" for unparseable URLs.
func SiteNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "Unknown Site"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// IsValidURL reports whether s parses as an absolute URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
