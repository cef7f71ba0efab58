package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/universalpocket/pocket"
	"github.com/universalpocket/pocket/sqlite"
)

func newTestItem() *pocket.ContentItem {
	return &pocket.ContentItem{
		Type:      pocket.ContentArticle,
		Title:     "Test Article",
		Content:   "body text",
		URL:       "https://example.com/post",
		Thumbnail: "https://example.com/img.png",
		Metadata:  pocket.Metadata{"source": "web", "savedAt": "2024-01-01T00:00:00Z"},
		Tags:      []string{"web", "article"},
	}
}

func TestContentService_CreateContent(t *testing.T) {
	t.Parallel()

	t.Run("assigns id, timestamp, and hash", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		item := newTestItem()

		require.NoError(t, svc.CreateContent(context.Background(), item))

		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.ContentHash)
		assert.False(t, item.CreatedAt.IsZero())
	})

	t.Run("defaults sync status to local", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		item := newTestItem()

		require.NoError(t, svc.CreateContent(context.Background(), item))
		assert.Equal(t, pocket.SyncLocal, item.SyncStatus)
	})

	t.Run("explicit sync status wins", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		item := newTestItem()
		item.SyncStatus = pocket.SyncPending

		require.NoError(t, svc.CreateContent(context.Background(), item))

		found, err := svc.FindContentByID(context.Background(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, pocket.SyncPending, found.SyncStatus)
	})

	t.Run("normalizes tags", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		item := newTestItem()
		item.Tags = []string{"Web", "web", "Article"}

		require.NoError(t, svc.CreateContent(context.Background(), item))
		assert.Equal(t, []string{"web", "article"}, item.Tags)
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		err := svc.CreateContent(context.Background(), &pocket.ContentItem{Type: pocket.ContentNote})
		assert.Equal(t, pocket.EINVALID, pocket.ErrorCode(err))
	})
}

func TestContentService_FindContentByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a saved item", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		ctx := context.Background()
		item := newTestItem()
		require.NoError(t, svc.CreateContent(ctx, item))

		found, err := svc.FindContentByID(ctx, item.ID)
		require.NoError(t, err)

		assert.Equal(t, item.ID, found.ID)
		assert.Equal(t, item.Type, found.Type)
		assert.Equal(t, item.Title, found.Title)
		assert.Equal(t, item.Content, found.Content)
		assert.Equal(t, item.URL, found.URL)
		assert.Equal(t, item.Thumbnail, found.Thumbnail)
		assert.Equal(t, item.Metadata, found.Metadata)
		assert.Equal(t, item.Tags, found.Tags)
		assert.Equal(t, item.ContentHash, found.ContentHash)
		assert.Equal(t, item.SyncStatus, found.SyncStatus)
		assert.True(t, item.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("returns ENOTFOUND for missing id", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		_, err := svc.FindContentByID(context.Background(), "missing")
		assert.Equal(t, pocket.ENOTFOUND, pocket.ErrorCode(err))
	})
}

func TestContentService_FindContent(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *sqlite.ContentService) (note, video, article *pocket.ContentItem) {
		t.Helper()
		ctx := context.Background()

		note = &pocket.ContentItem{Type: pocket.ContentNote, Title: "buy milk", Content: "buy milk today", Tags: []string{"raycast", "note"}}
		require.NoError(t, svc.CreateContent(ctx, note))
		time.Sleep(2 * time.Millisecond)

		video = &pocket.ContentItem{Type: pocket.ContentVideo, Title: "Cool Video", URL: "https://youtube.com/watch?v=a", Tags: []string{"web", "youtube", "video"}}
		require.NoError(t, svc.CreateContent(ctx, video))
		time.Sleep(2 * time.Millisecond)

		article = &pocket.ContentItem{Type: pocket.ContentArticle, Title: "Go Concurrency", Content: "about goroutines", Tags: []string{"web", "article"}}
		require.NoError(t, svc.CreateContent(ctx, article))
		return note, video, article
	}

	t.Run("returns all newest first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		note, video, article := seed(t, svc)

		items, err := svc.FindContent(context.Background(), pocket.ContentFilter{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, article.ID, items[0].ID)
		assert.Equal(t, video.ID, items[1].ID)
		assert.Equal(t, note.ID, items[2].ID)
	})

	t.Run("filters by exact type", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		_, video, _ := seed(t, svc)

		videoType := pocket.ContentVideo
		items, err := svc.FindContent(context.Background(), pocket.ContentFilter{Type: &videoType})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, video.ID, items[0].ID)
	})

	t.Run("matches any requested tag", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		note, video, article := seed(t, svc)

		items, err := svc.FindContent(context.Background(), pocket.ContentFilter{Tags: []string{"raycast", "youtube"}})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, video.ID, items[0].ID)
		assert.Equal(t, note.ID, items[1].ID)
		_ = article
	})

	t.Run("searches title and content case-insensitively", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		_, _, article := seed(t, svc)

		byTitle, err := svc.FindContent(context.Background(), pocket.ContentFilter{Search: "CONCURRENCY"})
		require.NoError(t, err)
		require.Len(t, byTitle, 1)
		assert.Equal(t, article.ID, byTitle[0].ID)

		byContent, err := svc.FindContent(context.Background(), pocket.ContentFilter{Search: "goroutines"})
		require.NoError(t, err)
		require.Len(t, byContent, 1)
		assert.Equal(t, article.ID, byContent[0].ID)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		_, video, _ := seed(t, svc)

		items, err := svc.FindContent(context.Background(), pocket.ContentFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, video.ID, items[0].ID)
	})
}

func TestContentService_UpdateContent(t *testing.T) {
	t.Parallel()

	t.Run("merges partial fields", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		ctx := context.Background()
		item := newTestItem()
		require.NoError(t, svc.CreateContent(ctx, item))

		title := "New Title"
		status := pocket.SyncLocal
		updated, err := svc.UpdateContent(ctx, item.ID, pocket.ContentUpdate{
			Title:      &title,
			Metadata:   pocket.Metadata{"source": "web", "extractionError": true},
			SyncStatus: &status,
		})
		require.NoError(t, err)

		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, true, updated.Metadata["extractionError"])
		// Untouched fields survive.
		assert.Equal(t, item.Content, updated.Content)
		assert.Equal(t, item.Tags, updated.Tags)
		assert.True(t, item.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("replaces tags when provided", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		ctx := context.Background()
		item := newTestItem()
		require.NoError(t, svc.CreateContent(ctx, item))

		updated, err := svc.UpdateContent(ctx, item.ID, pocket.ContentUpdate{Tags: []string{"New", "new", "tags"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "tags"}, updated.Tags)

		found, err := svc.FindContentByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "tags"}, found.Tags)
	})

	t.Run("returns ENOTFOUND for missing id", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		_, err := svc.UpdateContent(context.Background(), "missing", pocket.ContentUpdate{})
		assert.Equal(t, pocket.ENOTFOUND, pocket.ErrorCode(err))
	})
}

func TestContentService_DeleteContent(t *testing.T) {
	t.Parallel()

	t.Run("removes item and its tags", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewContentService(db)
		ctx := context.Background()
		item := newTestItem()
		require.NoError(t, svc.CreateContent(ctx, item))

		require.NoError(t, svc.DeleteContent(ctx, item.ID))

		_, err := svc.FindContentByID(ctx, item.ID)
		assert.Equal(t, pocket.ENOTFOUND, pocket.ErrorCode(err))

		var tagCount int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_tags WHERE content_id = ?", item.ID).Scan(&tagCount))
		assert.Zero(t, tagCount)
	})

	t.Run("delete of missing id fails every time", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		ctx := context.Background()
		item := newTestItem()
		require.NoError(t, svc.CreateContent(ctx, item))
		require.NoError(t, svc.DeleteContent(ctx, item.ID))

		// Repeated deletes keep failing with ENOTFOUND, no hidden success.
		assert.Equal(t, pocket.ENOTFOUND, pocket.ErrorCode(svc.DeleteContent(ctx, item.ID)))
		assert.Equal(t, pocket.ENOTFOUND, pocket.ErrorCode(svc.DeleteContent(ctx, item.ID)))
	})
}

func TestContentService_Quota(t *testing.T) {
	t.Parallel()

	t.Run("in-memory database reports all-zero", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		quota, err := svc.Quota(context.Background())
		require.NoError(t, err)
		assert.Zero(t, quota.Used)
		assert.Zero(t, quota.Available)
		assert.Zero(t, quota.Percentage)
		assert.True(t, svc.HasSpace(context.Background()))
	})

	t.Run("file database reports usage against budget", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/quota.db")
		require.NoError(t, db.Open())
		defer db.Close()

		svc := sqlite.NewContentService(db)
		require.NoError(t, svc.CreateContent(context.Background(), newTestItem()))

		quota, err := svc.Quota(context.Background())
		require.NoError(t, err)
		assert.Positive(t, quota.Used)
		assert.Equal(t, sqlite.DefaultQuotaBudget, quota.Available)
		assert.Positive(t, quota.Percentage)
	})
}

func TestContentService_CreateContentGuarded(t *testing.T) {
	t.Parallel()

	t.Run("saves when space is available", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewContentService(setupTestDB(t))
		require.NoError(t, svc.CreateContentGuarded(context.Background(), newTestItem()))
	})

	t.Run("fails fast when over budget", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/tiny.db")
		require.NoError(t, db.Open())
		defer db.Close()

		// A one-byte budget is always over the 90% threshold.
		svc := sqlite.NewContentService(db, sqlite.WithQuotaBudget(1))
		require.NoError(t, svc.CreateContent(context.Background(), newTestItem()))

		err := svc.CreateContentGuarded(context.Background(), newTestItem())
		assert.Equal(t, pocket.ESTORAGELIMIT, pocket.ErrorCode(err))
	})
}

func TestContentService_Stats(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewContentService(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.CreateContent(ctx, &pocket.ContentItem{Type: pocket.ContentNote, Title: "a"}))
	require.NoError(t, svc.CreateContent(ctx, &pocket.ContentItem{Type: pocket.ContentNote, Title: "b"}))
	require.NoError(t, svc.CreateContent(ctx, &pocket.ContentItem{Type: pocket.ContentVideo, Title: "c"}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.ItemsByType[pocket.ContentNote])
	assert.Equal(t, 1, stats.ItemsByType[pocket.ContentVideo])
}
