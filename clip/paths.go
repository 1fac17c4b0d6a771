package clip

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/shorts-clipper-cli/segment"
)

// DefaultMaxNameLength caps sanitized clip names, in runes.
const DefaultMaxNameLength = 100

var (
	// unsafeChars matches characters not allowed in filenames on common filesystems.
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeName makes name safe to use as a filename: unsafe characters and
// whitespace runs become underscores, leading/trailing dots and underscores
// are trimmed, and the result is truncated to max runes.
func SanitizeName(name string, max int) string {
	if max <= 0 {
		max = DefaultMaxNameLength
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	runes := []rune(name)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}

// BaseName builds the clip filename stem from topic, content type and viral
// potential, skipping empty parts.
// Format: {topic}_{content_type}_{viral_potential}
func BaseName(seg segment.Segment, max int) string {
	var parts []string
	for _, p := range []string{seg.Topic, seg.ContentType, seg.ViralPotential} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	name := SanitizeName(strings.Join(parts, "_"), max)
	if name == "" {
		return "clip"
	}
	return name
}

// UniquePath returns dir/base+ext, or the first dir/base_N+ext (N = 1, 2, ...)
// that does not exist yet.
func UniquePath(dir, base, ext string) string {
	path := filepath.Join(dir, base+ext)
	for n := 1; exists(path); n++ {
		path = filepath.Join(dir, base+"_"+strconv.Itoa(n)+ext)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
