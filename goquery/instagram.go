package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/universalpocket/pocket"
)

// usernamePattern captures the path segment following the instagram.com
// domain.
var usernamePattern = regexp.MustCompile(`instagram\.com/([^/]+)`)

// usernameSelectors locate an @-prefixed display name when the URL gives
// no username.
var usernameSelectors = []string{
	`meta[property="instapp:owner_user_id"]`,
	".username",
	"h1",
}

// parseInstagram resolves social post metadata: the generic page fields
// plus the platform, username, and post type.
func parseInstagram(doc *goquery.Document, rawURL string) *pocket.SocialMetadata {
	return &pocket.SocialMetadata{
		WebPageMetadata: *parseWebPage(doc, rawURL),
		Platform:        "instagram",
		Username:        instagramUsername(doc, rawURL),
		PostType:        InstagramPostType(rawURL),
	}
}

// instagramUsername takes the URL path segment after the domain, falling
// back to an @-prefixed text node in the document.
func instagramUsername(doc *goquery.Document, rawURL string) string {
	if m := usernamePattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}

	for _, selector := range usernameSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if strings.HasPrefix(text, "@") {
			return strings.TrimPrefix(text, "@")
		}
	}
	return ""
}

// InstagramPostType classifies a post by its URL path segment.
func InstagramPostType(rawURL string) string {
	switch {
	case strings.Contains(rawURL, "/reel/"):
		return "reel"
	case strings.Contains(rawURL, "/p/"):
		return "post"
	case strings.Contains(rawURL, "/tv/"):
		return "igtv"
	}
	return ""
}
