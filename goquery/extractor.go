// Package goquery provides a goquery-based implementation of
// pocket.MetadataExtractor. It parses page metadata from fetched HTML with
// strict per-field fallback chains: Open Graph tag, then Twitter Card tag,
// then generic HTML, then a value derived from the URL itself.
package goquery

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/universalpocket/pocket"
)

// Defaults for extraction retry behavior.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = 1 * time.Second
)

// Ensure Extractor implements pocket.MetadataExtractor at compile time.
var _ pocket.MetadataExtractor = (*Extractor)(nil)

// Extractor fetches URLs through a pocket.Fetcher and parses metadata from
// the returned HTML. Each extract operation (fetch plus parse) is retried
// with exponential backoff; each attempt is bounded by a timeout.
type Extractor struct {
	fetcher    pocket.Fetcher
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout sets the per-attempt timeout. Defaults to 10s.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// WithRetries sets the retry count. Total attempts are retries+1.
// Defaults to 3.
func WithRetries(n int) Option {
	return func(e *Extractor) { e.retries = n }
}

// WithRetryDelay sets the backoff base delay; attempt n waits
// delay * 2^n. Defaults to 1s.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Extractor) { e.retryDelay = d }
}

// NewExtractor creates an Extractor that fetches through the given fetcher.
func NewExtractor(fetcher pocket.Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher:    fetcher,
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractWebPage extracts generic page metadata from the URL.
func (e *Extractor) ExtractWebPage(ctx context.Context, rawURL string) (*pocket.WebPageMetadata, error) {
	var meta *pocket.WebPageMetadata
	err := e.withRetry(ctx, func(ctx context.Context) error {
		doc, err := e.fetchDocument(ctx, rawURL)
		if err != nil {
			return err
		}
		meta = parseWebPage(doc, rawURL)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// ExtractYouTube extracts video metadata from a YouTube URL.
func (e *Extractor) ExtractYouTube(ctx context.Context, rawURL string) (*pocket.VideoMetadata, error) {
	var meta *pocket.VideoMetadata
	err := e.withRetry(ctx, func(ctx context.Context) error {
		doc, err := e.fetchDocument(ctx, rawURL)
		if err != nil {
			return err
		}
		meta = parseYouTube(doc, rawURL)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// ExtractInstagram extracts social post metadata from an Instagram URL.
func (e *Extractor) ExtractInstagram(ctx context.Context, rawURL string) (*pocket.SocialMetadata, error) {
	var meta *pocket.SocialMetadata
	err := e.withRetry(ctx, func(ctx context.Context) error {
		doc, err := e.fetchDocument(ctx, rawURL)
		if err != nil {
			return err
		}
		meta = parseInstagram(doc, rawURL)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// fetchDocument fetches the URL and parses the body. Malformed or
// non-HTML responses never fail parsing: html.Parse is forgiving, and
// absent tags simply fall through the resolution chains.
func (e *Extractor) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	html, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable input degrades to an empty document so every field
		// resolves from the URL.
		return goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc, nil
}

// withRetry runs op with per-attempt timeouts and exponential backoff.
// After exhausting retries it fails with a composite message naming the
// attempt count; callers pattern-match on this shape for fallback
// behavior, so it is part of the contract.
func (e *Extractor) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		err := op(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < e.retries {
			delay := e.retryDelay * (1 << attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return pocket.Errorf(pocket.EUNAVAILABLE, "Failed after %d attempts: %s", e.retries+1, errMessage(lastErr))
}

// errMessage unwraps application errors to their bare message so the
// composite retry error stays readable.
func errMessage(err error) string {
	if msg := pocket.ErrorMessage(err); pocket.ErrorCode(err) != pocket.EINTERNAL && msg != "" {
		return msg
	}
	return err.Error()
}

// parseWebPage resolves generic page metadata from a parsed document.
func parseWebPage(doc *goquery.Document, rawURL string) *pocket.WebPageMetadata {
	ogTitle := metaContent(doc, "property", "og:title")
	ogDescription := metaContent(doc, "property", "og:description")
	ogImage := metaContent(doc, "property", "og:image")
	ogSiteName := metaContent(doc, "property", "og:site_name")

	twitterTitle := metaContent(doc, "name", "twitter:title")
	twitterDescription := metaContent(doc, "name", "twitter:description")
	twitterImage := metaContent(doc, "name", "twitter:image")

	htmlTitle := strings.TrimSpace(doc.Find("title").First().Text())
	htmlDescription := metaContent(doc, "name", "description")

	author := metaContent(doc, "name", "author")
	if author == "" {
		author = metaContent(doc, "property", "article:author")
	}

	return &pocket.WebPageMetadata{
		Title:         firstNonEmpty(ogTitle, twitterTitle, htmlTitle, pocket.TitleFromURL(rawURL)),
		Description:   firstNonEmpty(ogDescription, twitterDescription, htmlDescription),
		Image:         resolveImageURL(firstNonEmpty(ogImage, twitterImage), rawURL),
		SiteName:      firstNonEmpty(ogSiteName, pocket.SiteNameFromURL(rawURL)),
		Author:        author,
		PublishedDate: publishedDate(doc),
	}
}

// dateSelectors is the ordered list of places a published date may appear.
var dateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="date"]`,
	`meta[name="publish-date"]`,
	`time[datetime]`,
	".published-date",
	".post-date",
}

// dateLayouts are tried in order when parsing candidate date strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// publishedDate returns the first candidate value that parses to a valid
// date, or the zero time when none does.
func publishedDate(doc *goquery.Document) time.Time {
	for _, selector := range dateSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		candidate := sel.AttrOr("content", "")
		if candidate == "" {
			candidate = sel.AttrOr("datetime", "")
		}
		if candidate == "" {
			candidate = sel.Text()
		}
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, candidate); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

// metaContent returns the trimmed content attribute of the first matching
// meta tag, or an empty string.
func metaContent(doc *goquery.Document, attribute, value string) string {
	sel := doc.Find(fmt.Sprintf("meta[%s=%q]", attribute, value)).First()
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

// resolveImageURL resolves protocol-relative and root-relative image URLs
// against the source URL's origin. Absolute URLs pass through; anything
// unresolvable is returned as-is.
func resolveImageURL(image, baseURL string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http") {
		return image
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return image
	}
	if strings.HasPrefix(image, "//") {
		return base.Scheme + ":" + image
	}
	ref, err := url.Parse(image)
	if err != nil {
		return image
	}
	return base.ResolveReference(ref).String()
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
