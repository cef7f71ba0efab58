package mock

import (
	"context"

	"github.com/universalpocket/pocket"
)

var _ pocket.SaveService = (*SaveService)(nil)

// SaveService is a mock implementation of pocket.SaveService.
type SaveService struct {
	SaveContentFn         func(ctx context.Context, req pocket.SaveRequest) (*pocket.ContentItem, error)
	FindContentByIDFn     func(ctx context.Context, id string) (*pocket.ContentItem, error)
	FindContentFn         func(ctx context.Context, filter pocket.ContentFilter) ([]*pocket.ContentItem, error)
	DeleteContentFn       func(ctx context.Context, id string) error
	ProcessOfflineQueueFn func(ctx context.Context) error
	QueueStatusFn         func() pocket.QueueStatus
}

func (s *SaveService) SaveContent(ctx context.Context, req pocket.SaveRequest) (*pocket.ContentItem, error) {
	return s.SaveContentFn(ctx, req)
}

func (s *SaveService) FindContentByID(ctx context.Context, id string) (*pocket.ContentItem, error) {
	return s.FindContentByIDFn(ctx, id)
}

func (s *SaveService) FindContent(ctx context.Context, filter pocket.ContentFilter) ([]*pocket.ContentItem, error) {
	return s.FindContentFn(ctx, filter)
}

func (s *SaveService) DeleteContent(ctx context.Context, id string) error {
	return s.DeleteContentFn(ctx, id)
}

func (s *SaveService) ProcessOfflineQueue(ctx context.Context) error {
	if s.ProcessOfflineQueueFn == nil {
		return nil
	}
	return s.ProcessOfflineQueueFn(ctx)
}

func (s *SaveService) QueueStatus() pocket.QueueStatus {
	if s.QueueStatusFn == nil {
		return pocket.QueueStatus{Items: []pocket.QueuedSave{}}
	}
	return s.QueueStatusFn()
}
