package goquery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pocketquery "github.com/universalpocket/pocket/goquery"
)

func TestExtractYouTube(t *testing.T) {
	t.Parallel()

	t.Run("full video page", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta property="og:title" content="Amazing Video Tutorial">
			<meta name="author" content="Tutorial Channel">
			<meta itemprop="duration" content="PT3M45S">
			<meta itemprop="interactionCount" content="1234567">
		</head></html>`

		meta, err := fastExtractor(staticFetcher(html)).ExtractYouTube(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		require.NoError(t, err)

		assert.Equal(t, "Amazing Video Tutorial", meta.Title)
		assert.Equal(t, "Tutorial Channel", meta.ChannelName)
		assert.Equal(t, 225, meta.Duration)
		assert.Equal(t, int64(1234567), meta.ViewCount)
		assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", meta.EmbedURL)
	})

	t.Run("defaults when page data missing", func(t *testing.T) {
		t.Parallel()

		meta, err := fastExtractor(staticFetcher("<html></html>")).ExtractYouTube(context.Background(), "https://youtu.be/abc123")
		require.NoError(t, err)

		assert.Equal(t, "Unknown Channel", meta.ChannelName)
		assert.Zero(t, meta.Duration)
		assert.Zero(t, meta.ViewCount)
		assert.Equal(t, "https://www.youtube.com/embed/abc123", meta.EmbedURL)
	})
}

func TestYouTubeVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch form", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch form with extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"short link", "https://youtu.be/abc123", "abc123"},
		{"embed form", "https://www.youtube.com/embed/abc123", "abc123"},
		{"shorts form", "https://www.youtube.com/shorts/abc123", "abc123"},
		{"unrecognized", "https://example.com/watch?v=abc", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pocketquery.YouTubeVideoID(tt.url))
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"PT3M45S", 225},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"3:45", 225},
		{"1:02:03", 3723},
		{"garbage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pocketquery.ParseDuration(tt.in))
		})
	}
}

func TestParseViewCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int64
	}{
		{"1234567", 1234567},
		{"1,234,567", 1234567},
		{"1.2K", 1200},
		{"3.5M views", 3500000},
		{"2B", 2000000000},
		{"1.5k", 1500},
		{"no numbers", 0},
		{"", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pocketquery.ParseViewCount(tt.in))
		})
	}
}
