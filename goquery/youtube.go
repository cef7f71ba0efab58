package goquery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/universalpocket/pocket"
)

// videoIDPatterns normalize the watch, short-link, embed, and shorts URL
// forms to the bare video identifier.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^&\n?#]+)`),
}

// channelSelectors locate the channel name, in preference order.
var channelSelectors = []string{
	`meta[name="author"]`,
	`link[itemprop="name"]`,
	".ytd-channel-name a",
	"#channel-name .ytd-channel-name",
}

// durationSelectors locate the video duration, in preference order.
var durationSelectors = []string{
	`meta[itemprop="duration"]`,
	".ytp-time-duration",
	".video-duration",
}

// viewCountSelectors locate the view count, in preference order.
var viewCountSelectors = []string{
	`meta[itemprop="interactionCount"]`,
	".view-count",
	"#count .ytd-video-view-count-renderer",
}

// parseYouTube resolves video metadata: the generic page fields plus the
// platform-native identifier, duration, channel, and view count.
func parseYouTube(doc *goquery.Document, rawURL string) *pocket.VideoMetadata {
	return &pocket.VideoMetadata{
		WebPageMetadata: *parseWebPage(doc, rawURL),
		Duration:        youTubeDuration(doc),
		ChannelName:     firstNonEmpty(youTubeChannelName(doc), "Unknown Channel"),
		ViewCount:       youTubeViewCount(doc),
		EmbedURL:        "https://www.youtube.com/embed/" + YouTubeVideoID(rawURL),
	}
}

// YouTubeVideoID extracts the video identifier from any recognized
// YouTube URL form. Returns an empty string when no form matches.
func YouTubeVideoID(rawURL string) string {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

func youTubeChannelName(doc *goquery.Document) string {
	for _, selector := range channelSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if v := strings.TrimSpace(firstNonEmpty(sel.AttrOr("content", ""), sel.Text())); v != "" {
			return v
		}
	}
	return ""
}

func youTubeDuration(doc *goquery.Document) int {
	for _, selector := range durationSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		candidate := strings.TrimSpace(firstNonEmpty(sel.AttrOr("content", ""), sel.Text()))
		if d := ParseDuration(candidate); d > 0 {
			return d
		}
	}
	return 0
}

func youTubeViewCount(doc *goquery.Document) int64 {
	for _, selector := range viewCountSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		candidate := strings.TrimSpace(firstNonEmpty(sel.AttrOr("content", ""), sel.Text()))
		if n := ParseViewCount(candidate); n > 0 {
			return n
		}
	}
	return 0
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDuration parses a video duration in seconds, accepting ISO-8601
// style (PT1H2M3S) and colon-separated clock (MM:SS or HH:MM:SS) formats.
// Returns 0 for anything unrecognized.
func ParseDuration(s string) int {
	if strings.HasPrefix(s, "PT") {
		m := isoDurationPattern.FindStringSubmatch(s)
		if m == nil {
			return 0
		}
		return atoi(m[1])*3600 + atoi(m[2])*60 + atoi(m[3])
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		return atoi(parts[0])*60 + atoi(parts[1])
	case 3:
		return atoi(parts[0])*3600 + atoi(parts[1])*60 + atoi(parts[2])
	}
	return 0
}

var viewCountPattern = regexp.MustCompile(`^([\d.]+)([KMB])?`)

// ParseViewCount parses a view or interaction count, accepting thousands
// separators and case-insensitive K/M/B magnitude suffixes. Fractional
// results truncate toward zero. Returns 0 for anything unrecognized.
func ParseViewCount(s string) int64 {
	// Strip everything except digits, dots, and magnitude suffixes.
	var cleaned strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || r == '.' || r == 'K' || r == 'M' || r == 'B' {
			cleaned.WriteRune(r)
		}
	}

	m := viewCountPattern.FindStringSubmatch(cleaned.String())
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "K":
		n *= 1_000
	case "M":
		n *= 1_000_000
	case "B":
		n *= 1_000_000_000
	}
	return int64(n)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
