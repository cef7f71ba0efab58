package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/universalpocket/pocket"
)

// DefaultQuotaBudget is the storage budget used for quota reporting when
// none is configured.
const DefaultQuotaBudget int64 = 512 << 20 // 512 MiB

// hasSpaceThreshold is the usage percentage at which guarded saves start
// failing.
const hasSpaceThreshold = 90.0

// Compile-time interface verification.
var _ pocket.ContentService = (*ContentService)(nil)

// ContentService implements pocket.ContentService using SQLite.
type ContentService struct {
	db          *DB
	quotaBudget int64
}

// ContentOption configures a ContentService.
type ContentOption func(*ContentService)

// WithQuotaBudget sets the storage budget in bytes used for quota
// reporting and guarded saves.
func WithQuotaBudget(bytes int64) ContentOption {
	return func(s *ContentService) {
		s.quotaBudget = bytes
	}
}

// NewContentService creates a new ContentService.
func NewContentService(db *DB, opts ...ContentOption) *ContentService {
	s := &ContentService{
		db:          db,
		quotaBudget: DefaultQuotaBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hashContent computes xxHash of the item's url and content and returns a
// hex string.
func hashContent(item *pocket.ContentItem) string {
	h := xxhash.Sum64String(item.URL + "\n" + item.Content)
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h)
	return hex.EncodeToString(b)
}

// CreateContent persists a new item. ID and CreatedAt are assigned here
// and are immutable afterwards. SyncStatus defaults to local when the
// caller left it unset; an explicit value wins.
func (s *ContentService) CreateContent(ctx context.Context, item *pocket.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	item.ID = uuid.New().String()
	item.CreatedAt = time.Now().UTC()
	item.ContentHash = hashContent(item)
	if item.SyncStatus == "" {
		item.SyncStatus = pocket.SyncLocal
	}
	if item.Metadata == nil {
		item.Metadata = pocket.Metadata{}
	}
	item.Tags = pocket.NormalizeTags(item.Tags)

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content (id, type, title, content, url, thumbnail, metadata, content_hash, created_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Type, item.Title, item.Content, item.URL, item.Thumbnail, string(metadata),
		item.ContentHash, formatTime(item.CreatedAt), item.SyncStatus)
	if err != nil {
		return err
	}

	if err := insertTags(ctx, tx, item.ID, item.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateContentGuarded is CreateContent with a space check first. It
// fails with ESTORAGELIMIT before attempting any write.
func (s *ContentService) CreateContentGuarded(ctx context.Context, item *pocket.ContentItem) error {
	if !s.HasSpace(ctx) {
		return pocket.Errorf(pocket.ESTORAGELIMIT, "storage quota exceeded; free space before saving")
	}
	return s.CreateContent(ctx, item)
}

// insertTags writes the tag rows for an item, preserving display order.
func insertTags(ctx context.Context, tx *sql.Tx, contentID string, tags []string) error {
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO content_tags (content_id, tag, position) VALUES (?, ?, ?)
		`, contentID, tag, i); err != nil {
			return err
		}
	}
	return nil
}

const contentColumns = "id, type, title, content, url, thumbnail, metadata, content_hash, created_at, sync_status"

// FindContentByID retrieves an item by ID.
func (s *ContentService) FindContentByID(ctx context.Context, id string) (*pocket.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM content WHERE id = ?", id)

	item, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, pocket.Errorf(pocket.ENOTFOUND, "content not found")
	}
	if err != nil {
		return nil, err
	}

	if item.Tags, err = s.loadTags(ctx, item.ID); err != nil {
		return nil, err
	}
	return item, nil
}

// FindContent retrieves items matching the filter, newest first.
func (s *ContentService) FindContent(ctx context.Context, filter pocket.ContentFilter) ([]*pocket.ContentItem, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + contentColumns + " FROM content WHERE 1=1")

	if filter.Type != nil {
		query.WriteString(" AND type = ?")
		args = append(args, *filter.Type)
	}
	if len(filter.Tags) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Tags))
		query.WriteString(" AND EXISTS (SELECT 1 FROM content_tags WHERE content_id = content.id AND tag IN (" +
			placeholders[:len(placeholders)-2] + "))")
		for _, tag := range filter.Tags {
			args = append(args, strings.ToLower(tag))
		}
	}
	if filter.Search != "" {
		query.WriteString(" AND (LOWER(title) LIKE '%' || LOWER(?) || '%' OR LOWER(content) LIKE '%' || LOWER(?) || '%')")
		args = append(args, filter.Search, filter.Search)
	}

	query.WriteString(" ORDER BY created_at DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*pocket.ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.Tags, err = s.loadTags(ctx, item.ID); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// UpdateContent merges a partial update onto an existing item. ID,
// CreatedAt, and ContentHash never change here.
func (s *ContentService) UpdateContent(ctx context.Context, id string, upd pocket.ContentUpdate) (*pocket.ContentItem, error) {
	item, err := s.FindContentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.Thumbnail != nil {
		item.Thumbnail = *upd.Thumbnail
	}
	if upd.Metadata != nil {
		item.Metadata = upd.Metadata
	}
	if upd.Tags != nil {
		item.Tags = pocket.NormalizeTags(upd.Tags)
	}
	if upd.SyncStatus != nil {
		item.SyncStatus = *upd.SyncStatus
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE content
		SET title = ?, thumbnail = ?, metadata = ?, sync_status = ?
		WHERE id = ?
	`, item.Title, item.Thumbnail, string(metadata), item.SyncStatus, id)
	if err != nil {
		return nil, err
	}

	if upd.Tags != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM content_tags WHERE content_id = ?", id); err != nil {
			return nil, err
		}
		if err := insertTags(ctx, tx, id, item.Tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteContent permanently removes an item.
func (s *ContentService) DeleteContent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM content WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pocket.Errorf(pocket.ENOTFOUND, "content not found")
	}
	return nil
}

// Quota reports best-effort storage usage from the database file size
// (including the WAL) against the configured budget. In-memory databases
// and stat failures report all-zero rather than failing.
func (s *ContentService) Quota(ctx context.Context) (pocket.StorageQuota, error) {
	if s.db.Path() == ":memory:" {
		return pocket.StorageQuota{}, nil
	}

	var used int64
	for _, path := range []string{s.db.Path(), s.db.Path() + "-wal"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		used += info.Size()
	}
	if used == 0 {
		return pocket.StorageQuota{}, nil
	}

	return pocket.StorageQuota{
		Used:       used,
		Available:  s.quotaBudget,
		Percentage: float64(used) / float64(s.quotaBudget) * 100,
	}, nil
}

// HasSpace reports whether usage is below 90% of the budget.
func (s *ContentService) HasSpace(ctx context.Context) bool {
	quota, err := s.Quota(ctx)
	if err != nil {
		return true
	}
	return quota.Percentage < hasSpaceThreshold
}

// Stats summarizes stored items by type along with quota usage.
func (s *ContentService) Stats(ctx context.Context) (*pocket.StorageStats, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM content GROUP BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &pocket.StorageStats{ItemsByType: make(map[pocket.ContentType]int)}
	for rows.Next() {
		var contentType pocket.ContentType
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, err
		}
		stats.ItemsByType[contentType] = count
		stats.TotalItems += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Quota, err = s.Quota(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// scanner abstracts sql.Row and sql.Rows for scanContent.
type scanner interface {
	Scan(dest ...any) error
}

// scanContent reads one content row. Tags are loaded separately.
func scanContent(row scanner) (*pocket.ContentItem, error) {
	var item pocket.ContentItem
	var metadata, createdAt string

	err := row.Scan(&item.ID, &item.Type, &item.Title, &item.Content, &item.URL, &item.Thumbnail,
		&metadata, &item.ContentHash, &createdAt, &item.SyncStatus)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if item.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &item, nil
}

// loadTags returns an item's tags in display order.
func (s *ContentService) loadTags(ctx context.Context, contentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag FROM content_tags WHERE content_id = ? ORDER BY position
	`, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
