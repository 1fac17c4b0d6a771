package youtube

import (
	"bufio"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/shorts-clipper-cli/pkg/timeutil"
)

// Snippet is one timed line of a transcript.
type Snippet struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start_time"`
	End       float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
	Timestamp string  `json:"timestamp"`
	TimeRange string  `json:"time_range"`
}

// NewSnippet fills the derived fields from text and its [start, end) range.
func NewSnippet(text string, start, end float64) Snippet {
	return Snippet{
		Text:      text,
		Start:     start,
		End:       end,
		Duration:  end - start,
		Timestamp: timeutil.FormatClock(start),
		TimeRange: timeutil.FormatClock(start) + " - " + timeutil.FormatClock(end),
	}
}

var (
	cueTiming = regexp.MustCompile(`^((?:\d+:)?\d{1,2}:\d{2}\.\d{3})\s+-->\s+((?:\d+:)?\d{1,2}:\d{2}\.\d{3})`)
	inlineTag = regexp.MustCompile(`<[^>]*>`)
)

// ParseVTT reads a WebVTT subtitle file into snippets. Inline tags are
// stripped, and lines identical to the previous emitted line are dropped so
// that rolling auto-captions do not repeat text.
func ParseVTT(r io.Reader) ([]Snippet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		snips    []Snippet
		inCue    bool
		skipping bool
		start    float64
		end      float64
		lines    []string
		last     string
	)

	flush := func() {
		if inCue && len(lines) > 0 {
			snips = append(snips, NewSnippet(strings.Join(lines, " "), start, end))
		}
		inCue = false
		lines = nil
	}

	for sc.Scan() {
		raw := strings.TrimRight(strings.TrimPrefix(sc.Text(), "\ufeff"), "\r")
		line := strings.TrimSpace(raw)

		// Only a truly empty line ends a block; auto-captions use " " as an
		// empty first cue line.
		if raw == "" {
			flush()
			skipping = false
			continue
		}
		if skipping || line == "" {
			continue
		}

		if m := cueTiming.FindStringSubmatch(line); m != nil {
			flush()
			s, err := parseVTTTime(m[1])
			if err != nil {
				return nil, err
			}
			e, err := parseVTTTime(m[2])
			if err != nil {
				return nil, err
			}
			inCue, start, end = true, s, e
			continue
		}

		if !inCue {
			// Header, NOTE, STYLE, REGION blocks and cue identifiers.
			if strings.HasPrefix(line, "NOTE") || line == "STYLE" || line == "REGION" {
				skipping = true
			}
			continue
		}

		text := strings.TrimSpace(html.UnescapeString(inlineTag.ReplaceAllString(line, "")))
		if text == "" || text == last {
			continue
		}
		lines = append(lines, text)
		last = text
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vtt: %w", err)
	}
	flush()

	return snips, nil
}

// parseVTTTime converts HH:MM:SS.mmm or MM:SS.mmm to seconds.
func parseVTTTime(s string) (float64, error) {
	parts := strings.Split(s, ":")
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid vtt timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

// LoadTranscript reads snippets previously written by SaveTranscript.
func LoadTranscript(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var snips []Snippet
	if err := json.Unmarshal(data, &snips); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return snips, nil
}

// SaveTranscript writes snips to path as indented JSON.
func SaveTranscript(path string, snips []Snippet) error {
	if snips == nil {
		snips = []Snippet{}
	}
	data, err := json.MarshalIndent(snips, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
