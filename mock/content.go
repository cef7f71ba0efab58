package mock

import (
	"context"

	"github.com/universalpocket/pocket"
)

var _ pocket.ContentService = (*ContentService)(nil)

// ContentService is a mock implementation of pocket.ContentService.
type ContentService struct {
	CreateContentFn        func(ctx context.Context, item *pocket.ContentItem) error
	CreateContentGuardedFn func(ctx context.Context, item *pocket.ContentItem) error
	FindContentByIDFn      func(ctx context.Context, id string) (*pocket.ContentItem, error)
	FindContentFn          func(ctx context.Context, filter pocket.ContentFilter) ([]*pocket.ContentItem, error)
	UpdateContentFn        func(ctx context.Context, id string, upd pocket.ContentUpdate) (*pocket.ContentItem, error)
	DeleteContentFn        func(ctx context.Context, id string) error
	QuotaFn                func(ctx context.Context) (pocket.StorageQuota, error)
	HasSpaceFn             func(ctx context.Context) bool
	StatsFn                func(ctx context.Context) (*pocket.StorageStats, error)
}

func (s *ContentService) CreateContent(ctx context.Context, item *pocket.ContentItem) error {
	return s.CreateContentFn(ctx, item)
}

func (s *ContentService) CreateContentGuarded(ctx context.Context, item *pocket.ContentItem) error {
	return s.CreateContentGuardedFn(ctx, item)
}

func (s *ContentService) FindContentByID(ctx context.Context, id string) (*pocket.ContentItem, error) {
	return s.FindContentByIDFn(ctx, id)
}

func (s *ContentService) FindContent(ctx context.Context, filter pocket.ContentFilter) ([]*pocket.ContentItem, error) {
	return s.FindContentFn(ctx, filter)
}

func (s *ContentService) UpdateContent(ctx context.Context, id string, upd pocket.ContentUpdate) (*pocket.ContentItem, error) {
	return s.UpdateContentFn(ctx, id, upd)
}

func (s *ContentService) DeleteContent(ctx context.Context, id string) error {
	return s.DeleteContentFn(ctx, id)
}

func (s *ContentService) Quota(ctx context.Context) (pocket.StorageQuota, error) {
	return s.QuotaFn(ctx)
}

func (s *ContentService) HasSpace(ctx context.Context) bool {
	if s.HasSpaceFn == nil {
		return true
	}
	return s.HasSpaceFn(ctx)
}

func (s *ContentService) Stats(ctx context.Context) (*pocket.StorageStats, error) {
	return s.StatsFn(ctx)
}
