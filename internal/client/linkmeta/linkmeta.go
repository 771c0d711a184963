// Package linkmeta derives display metadata (platform, thumbnail) from a URL.
// Everything here is pure string matching; nothing touches the network.
package linkmeta

import (
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/mymind/internal/client/models"
)

var youTubeID = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

var placeholders = []string{
	"https://images.unsplash.com/photo-1614850523060-8da1d56ae167?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1634152962476-4b8a00e1915c?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1550684848-fac1c5b4e853?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1620641788421-7f1c91ade37b?q=80&w=800&auto=format&fit=crop",
}

// IsWebURL reports whether raw is an absolute http or https URL with a host,
// the only kind the backend stores.
func IsWebURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}

// DetectPlatform guesses the hosting platform of url.
func DetectPlatform(url string) models.Platform {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "youtube"), strings.Contains(u, "youtu.be"):
		return models.PlatformYouTube
	case strings.Contains(u, "tiktok"):
		return models.PlatformTikTok
	case strings.Contains(u, "instagram"):
		return models.PlatformInstagram
	default:
		return models.PlatformOther
	}
}

// Thumbnail picks a preview image. YouTube links with a recognizable video id
// get the video still; anything else gets a placeholder chosen by hashing the
// URL, so the same link always maps to the same image.
func Thumbnail(url string, platform models.Platform) string {
	if platform == models.PlatformYouTube {
		if id, ok := YouTubeID(url); ok {
			return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(url))
	return placeholders[h.Sum32()%uint32(len(placeholders))]
}

// YouTubeID extracts the 11-character video id from url.
func YouTubeID(url string) (string, bool) {
	m := youTubeID.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}

// Describe runs both derivations.
func Describe(url string) (models.Platform, string) {
	p := DetectPlatform(url)
	return p, Thumbnail(url, p)
}
