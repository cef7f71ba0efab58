// Package save implements the save orchestrator: it classifies incoming
// requests, chooses the online or offline path, invokes metadata
// extraction with graceful fallback, and drains an in-memory queue of
// extractions deferred while offline.
package save

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/universalpocket/pocket"
)

// maxQueueRetries caps automatic extraction retries per queued save.
// Past the cap the entry is dropped and the item keeps its last recorded
// error.
const maxQueueRetries = 3

// Ensure Service implements pocket.SaveService at compile time.
var _ pocket.SaveService = (*Service)(nil)

// Service coordinates saves between the extractor and the content store.
// The store is the sole source of truth; the queue held here is a cache
// of intent, and losing it only delays metadata enrichment.
type Service struct {
	store        pocket.ContentService
	extractor    pocket.MetadataExtractor
	connectivity pocket.ConnectivityMonitor
	logger       *slog.Logger
	limiter      *HostLimiter
	now          func() time.Time

	mu          sync.Mutex
	queue       []pocket.QueuedSave
	draining    bool
	unsubscribe func()
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithHostLimiter sets the rate limiter applied to queue-drain fetches.
// Defaults to 1 request per second per host.
func WithHostLimiter(limiter *HostLimiter) Option {
	return func(s *Service) { s.limiter = limiter }
}

// NewService creates a Service and subscribes it to connectivity
// transitions; each transition to online triggers a queue drain. Call
// Close to release the subscription.
func NewService(store pocket.ContentService, extractor pocket.MetadataExtractor, connectivity pocket.ConnectivityMonitor, opts ...Option) *Service {
	s := &Service{
		store:        store,
		extractor:    extractor,
		connectivity: connectivity,
		logger:       slog.Default(),
		limiter:      NewHostLimiter(1.0),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if connectivity != nil {
		s.unsubscribe = connectivity.Subscribe(func(online bool) {
			if !online {
				return
			}
			if err := s.ProcessOfflineQueue(context.Background()); err != nil {
				s.logger.Warn("offline queue drain failed", "err", err)
			}
		})
	}

	return s
}

// Close releases the connectivity subscription.
func (s *Service) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return nil
}

// Online reports the current connectivity state. Without a monitor the
// service assumes online.
func (s *Service) Online() bool {
	if s.connectivity == nil {
		return true
	}
	return s.connectivity.Online()
}

// SaveContent classifies and persists a save request. While offline with
// a URL present, the item is stored immediately as pending and queued for
// later extraction; this path never touches the network. Otherwise
// extraction runs now, degrading to a fallback record on failure.
// Only store failures propagate to the caller.
func (s *Service) SaveContent(ctx context.Context, req pocket.SaveRequest) (*pocket.ContentItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = pocket.SourceWeb
	}

	contentType := pocket.DetectContentType(req)

	if !s.Online() && req.URL != "" {
		return s.saveOffline(ctx, req, contentType)
	}

	metadata, extracted := s.extractMetadata(ctx, req)

	item := &pocket.ContentItem{
		Type:       contentType,
		Title:      s.resolveTitle(req, metadata),
		Content:    req.Content,
		URL:        req.URL,
		Thumbnail:  stringValue(metadata, "image"),
		Metadata:   metadata,
		Tags:       pocket.RequestTags(req, contentType),
		SyncStatus: pocket.SyncLocal,
	}

	if !extracted && req.URL != "" {
		s.logger.Warn("metadata extraction failed, saving with basic info",
			"url", req.URL, "err", metadata[pocket.MetaExtractionError])
	}

	if err := s.store.CreateContentGuarded(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// saveOffline persists a pending record and queues the request for
// extraction when connectivity returns.
func (s *Service) saveOffline(ctx context.Context, req pocket.SaveRequest, contentType pocket.ContentType) (*pocket.ContentItem, error) {
	item := &pocket.ContentItem{
		Type:    contentType,
		Title:   pocket.FallbackTitle(req),
		Content: req.Content,
		URL:     req.URL,
		Metadata: pocket.Metadata{
			pocket.MetaSource:            s.source(req),
			pocket.MetaSavedAt:           s.now().UTC().Format(time.RFC3339),
			pocket.MetaOffline:           true,
			pocket.MetaExtractionPending: true,
		},
		Tags:       pocket.RequestTags(req, contentType),
		SyncStatus: pocket.SyncPending,
	}

	if err := s.store.CreateContentGuarded(ctx, item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.queue = append(s.queue, pocket.QueuedSave{
		ID:        item.ID,
		Request:   req,
		Timestamp: s.now(),
	})
	s.mu.Unlock()

	return item, nil
}

// extractMetadata builds the metadata mapping for a request, dispatching
// to the platform-specialized extractor by URL. Extraction failures are
// recovered here: the returned mapping then carries the error flag plus
// URL-derived fields, and extracted reports false.
func (s *Service) extractMetadata(ctx context.Context, req pocket.SaveRequest) (metadata pocket.Metadata, extracted bool) {
	metadata = pocket.Metadata{
		pocket.MetaSource:  s.source(req),
		pocket.MetaSavedAt: s.now().UTC().Format(time.RFC3339),
	}

	if req.URL == "" {
		return metadata, true
	}

	var fields pocket.Metadata
	var err error
	if pocket.IsValidURL(req.URL) {
		fields, err = s.extract(ctx, req.URL)
	} else {
		// An unparseable URL fails extraction like any fetch failure
		// would, so the item stays diagnosable.
		err = pocket.Errorf(pocket.EINVALID, "invalid url: %s", req.URL)
	}
	if err != nil {
		metadata["url"] = req.URL
		metadata["title"] = firstNonEmpty(req.Title, pocket.TitleFromURL(req.URL))
		metadata["siteName"] = pocket.SiteNameFromURL(req.URL)
		metadata[pocket.MetaExtractionError] = true
		return metadata, false
	}

	for k, v := range fields {
		metadata[k] = v
	}
	return metadata, true
}

// extract runs the platform-appropriate extractor and flattens the typed
// record into metadata fields.
func (s *Service) extract(ctx context.Context, url string) (pocket.Metadata, error) {
	switch pocket.ExtractorKindFor(url) {
	case pocket.ExtractorYouTube:
		meta, err := s.extractor.ExtractYouTube(ctx, url)
		if err != nil {
			return nil, err
		}
		fields := webPageFields(&meta.WebPageMetadata)
		fields["duration"] = meta.Duration
		fields["channelName"] = meta.ChannelName
		if meta.ViewCount > 0 {
			fields["viewCount"] = meta.ViewCount
		}
		fields["embedUrl"] = meta.EmbedURL
		return fields, nil

	case pocket.ExtractorInstagram:
		meta, err := s.extractor.ExtractInstagram(ctx, url)
		if err != nil {
			return nil, err
		}
		fields := webPageFields(&meta.WebPageMetadata)
		fields["platform"] = meta.Platform
		if meta.Username != "" {
			fields["username"] = meta.Username
		}
		if meta.PostType != "" {
			fields["postType"] = meta.PostType
		}
		return fields, nil

	default:
		meta, err := s.extractor.ExtractWebPage(ctx, url)
		if err != nil {
			return nil, err
		}
		return webPageFields(meta), nil
	}
}

// webPageFields flattens the generic page record into metadata fields.
func webPageFields(meta *pocket.WebPageMetadata) pocket.Metadata {
	fields := pocket.Metadata{
		"title":       meta.Title,
		"description": meta.Description,
		"image":       meta.Image,
		"siteName":    meta.SiteName,
	}
	if meta.Author != "" {
		fields["author"] = meta.Author
	}
	if !meta.PublishedDate.IsZero() {
		fields["publishedDate"] = meta.PublishedDate.UTC().Format(time.RFC3339)
	}
	return fields
}

// resolveTitle picks the item title: explicit request title, extracted
// title, then the no-network fallback chain.
func (s *Service) resolveTitle(req pocket.SaveRequest, metadata pocket.Metadata) string {
	if req.Title != "" {
		return req.Title
	}
	if title := stringValue(metadata, "title"); title != "" {
		return title
	}
	return pocket.FallbackTitle(req)
}

// source returns the request source, defaulting to web.
func (s *Service) source(req pocket.SaveRequest) string {
	if req.Source != "" {
		return req.Source
	}
	return pocket.SourceWeb
}

// FindContentByID retrieves a saved item.
func (s *Service) FindContentByID(ctx context.Context, id string) (*pocket.ContentItem, error) {
	return s.store.FindContentByID(ctx, id)
}

// FindContent retrieves saved items matching the filter.
func (s *Service) FindContent(ctx context.Context, filter pocket.ContentFilter) ([]*pocket.ContentItem, error) {
	return s.store.FindContent(ctx, filter)
}

// DeleteContent removes an item and any queued extraction for it, so a
// deleted item is never resurrected by a later drain.
func (s *Service) DeleteContent(ctx context.Context, id string) error {
	s.mu.Lock()
	filtered := s.queue[:0]
	for _, q := range s.queue {
		if q.ID != id {
			filtered = append(filtered, q)
		}
	}
	s.queue = filtered
	s.mu.Unlock()

	return s.store.DeleteContent(ctx, id)
}

// RetryFailedExtractions re-runs extraction for all stored items flagged
// with an extraction error or a pending extraction. Individual failures
// are logged and skipped.
func (s *Service) RetryFailedExtractions(ctx context.Context) error {
	items, err := s.store.FindContent(ctx, pocket.ContentFilter{})
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.URL == "" {
			continue
		}
		failed, _ := item.Metadata[pocket.MetaExtractionError].(bool)
		pending, _ := item.Metadata[pocket.MetaExtractionPending].(bool)
		if !failed && !pending {
			continue
		}

		queued := pocket.QueuedSave{
			ID:        item.ID,
			Request:   pocket.SaveRequest{URL: item.URL, Source: stringValue(item.Metadata, pocket.MetaSource)},
			Timestamp: s.now(),
		}
		if err := s.retryExtraction(ctx, queued); err != nil {
			s.logger.Warn("failed to retry extraction", "id", item.ID, "err", err)
		}
	}
	return nil
}

func stringValue(metadata pocket.Metadata, key string) string {
	v, _ := metadata[key].(string)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
