package save

import (
	"context"
	"time"

	"github.com/universalpocket/pocket"
)

// QueueStatus reports the saves currently awaiting extraction.
func (s *Service) QueueStatus() pocket.QueueStatus {
	s.mu.Lock()
	items := make([]pocket.QueuedSave, len(s.queue))
	copy(items, s.queue)
	s.mu.Unlock()

	return pocket.QueueStatus{Count: len(items), Items: items}
}

// ProcessOfflineQueue drains the pending extraction queue. The queue is
// snapshotted and cleared up front; entries whose extraction fails are
// re-queued with an incremented retry count until the cap, after which
// they are dropped and the stored item keeps its last error. A drain
// already in progress makes this call a no-op.
func (s *Service) ProcessOfflineQueue(ctx context.Context) error {
	s.mu.Lock()
	if s.draining || len(s.queue) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.draining = true
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	s.logger.Info("processing offline queue", "count", len(batch))

	for _, queued := range batch {
		if err := ctx.Err(); err != nil {
			s.requeue(queued)
			continue
		}

		if err := s.retryExtraction(ctx, queued); err != nil {
			// The cap is checked before counting this failure: an entry
			// re-enters with counts 1 through the cap and is dropped only
			// when a failure lands on an entry already at the cap.
			if queued.RetryCount < maxQueueRetries {
				queued.RetryCount++
				s.mu.Lock()
				s.queue = append(s.queue, queued)
				s.mu.Unlock()
			} else {
				s.logger.Warn("dropping queued save after repeated failures",
					"id", queued.ID, "url", queued.Request.URL, "err", err)
			}
		}
	}

	return nil
}

// requeue puts an unprocessed entry back without counting a retry, used
// when the drain itself is interrupted by context cancellation.
func (s *Service) requeue(queued pocket.QueuedSave) {
	s.mu.Lock()
	s.queue = append(s.queue, queued)
	s.mu.Unlock()
}

// retryExtraction re-runs extraction for a queued save and folds the
// result into the stored item. A missing item means it was deleted in
// the meantime and the entry is silently discarded.
func (s *Service) retryExtraction(ctx context.Context, queued pocket.QueuedSave) error {
	item, err := s.store.FindContentByID(ctx, queued.ID)
	if err != nil {
		if pocket.ErrorCode(err) == pocket.ENOTFOUND {
			return nil
		}
		return err
	}

	if queued.Request.URL != "" && s.limiter != nil {
		if err := s.limiter.Wait(ctx, queued.Request.URL); err != nil {
			return err
		}
	}

	fields, err := s.extract(ctx, queued.Request.URL)
	if err != nil {
		metadata := cloneMetadata(item.Metadata)
		metadata[pocket.MetaExtractionError] = true
		metadata[pocket.MetaExtractionPending] = false
		metadata[pocket.MetaLastRetry] = s.now().UTC().Format(time.RFC3339)
		update := pocket.ContentUpdate{Metadata: metadata}
		if _, uerr := s.store.UpdateContent(ctx, item.ID, update); uerr != nil {
			return uerr
		}
		return err
	}

	metadata := cloneMetadata(item.Metadata)
	for k, v := range fields {
		metadata[k] = v
	}
	metadata[pocket.MetaOffline] = false
	metadata[pocket.MetaExtractionPending] = false
	delete(metadata, pocket.MetaExtractionError)

	title := item.Title
	if queued.Request.Title == "" {
		if extracted := stringValue(fields, "title"); extracted != "" {
			title = extracted
		}
	}
	thumbnail := stringValue(fields, "image")
	status := pocket.SyncLocal

	update := pocket.ContentUpdate{
		Title:      &title,
		Metadata:   metadata,
		SyncStatus: &status,
	}
	if thumbnail != "" {
		update.Thumbnail = &thumbnail
	}

	if _, err := s.store.UpdateContent(ctx, item.ID, update); err != nil {
		return err
	}

	s.logger.Info("completed queued extraction", "id", item.ID, "url", queued.Request.URL)
	return nil
}

func cloneMetadata(metadata pocket.Metadata) pocket.Metadata {
	clone := make(pocket.Metadata, len(metadata))
	for k, v := range metadata {
		clone[k] = v
	}
	return clone
}
