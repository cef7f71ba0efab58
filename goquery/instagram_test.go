package goquery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pocketquery "github.com/universalpocket/pocket/goquery"
)

func TestExtractInstagram(t *testing.T) {
	t.Parallel()

	t.Run("profile url", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><meta property="og:title" content="Some Photo"></head></html>`
		meta, err := fastExtractor(staticFetcher(html)).ExtractInstagram(context.Background(), "https://www.instagram.com/natgeo")
		require.NoError(t, err)

		assert.Equal(t, "instagram", meta.Platform)
		assert.Equal(t, "natgeo", meta.Username)
		assert.Empty(t, meta.PostType)
		assert.Equal(t, "Some Photo", meta.Title)
	})

	t.Run("username falls back to at-prefixed heading", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><h1>@someuser</h1></body></html>`
		meta, err := fastExtractor(staticFetcher(html)).ExtractInstagram(context.Background(), "https://example.net/mirror")
		require.NoError(t, err)
		assert.Equal(t, "someuser", meta.Username)
	})

	t.Run("url segment wins even for post paths", func(t *testing.T) {
		t.Parallel()

		// The first path segment is taken verbatim; for /p/abc that is "p".
		meta, err := fastExtractor(staticFetcher("<html></html>")).ExtractInstagram(context.Background(), "https://www.instagram.com/p/abc123/")
		require.NoError(t, err)
		assert.Equal(t, "p", meta.Username)
		assert.Equal(t, "post", meta.PostType)
	})
}

func TestInstagramPostType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reel", pocketquery.InstagramPostType("https://www.instagram.com/reel/xyz/"))
	assert.Equal(t, "post", pocketquery.InstagramPostType("https://www.instagram.com/p/xyz/"))
	assert.Equal(t, "igtv", pocketquery.InstagramPostType("https://www.instagram.com/tv/xyz/"))
	assert.Empty(t, pocketquery.InstagramPostType("https://www.instagram.com/natgeo"))
}
