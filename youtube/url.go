// Package youtube parses YouTube URLs and fetches transcripts and videos
// through yt-dlp.
package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a URL does not identify a YouTube video.
var ErrInvalidURL = errors.New("invalid YouTube URL")

var knownHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// ExtractVideoID returns the video ID from a watch, embed, shorts or youtu.be
// URL.
func ExtractVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := strings.ToLower(u.Host)
	if !knownHosts[host] && !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	var id string
	switch {
	case u.Path == "/watch":
		id = u.Query().Get("v")
	case strings.HasPrefix(u.Path, "/embed/"), strings.HasPrefix(u.Path, "/shorts/"):
		parts := strings.Split(u.Path, "/")
		id = parts[len(parts)-1]
	case host == "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	}

	if id == "" {
		return "", fmt.Errorf("%w: no video ID in %s", ErrInvalidURL, raw)
	}
	return id, nil
}

// WatchURL returns the canonical watch URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}
