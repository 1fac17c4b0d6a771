// Package captions builds SubRip subtitles for clips from a video transcript
// and burns them into the picture.
package captions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/user/shorts-clipper-cli/pkg/timeutil"
	"github.com/user/shorts-clipper-cli/youtube"
)

// Cue is one numbered subtitle block.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// ForRange returns the snippets that overlap [start, end), shifted so the
// clip starts at zero and clamped to the clip length. Cues are numbered from 1.
func ForRange(snips []youtube.Snippet, start, end float64) []Cue {
	var cues []Cue
	for _, s := range snips {
		if s.End <= start || s.Start >= end || s.Text == "" {
			continue
		}

		from := s.Start - start
		if from < 0 {
			from = 0
		}
		to := s.End - start
		if to > end-start {
			to = end - start
		}
		if to <= from {
			continue
		}

		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: timeutil.Seconds(from),
			End:   timeutil.Seconds(to),
			Text:  s.Text,
		})
	}
	return cues
}

// Write renders cues in SubRip format.
func Write(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for _, c := range cues {
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			c.Index, timeutil.FormatSRT(c.Start), timeutil.FormatSRT(c.End), c.Text)
	}
	return bw.Flush()
}

// WriteFile writes cues to dir/base/base.srt and returns the path.
func WriteFile(dir, base string, cues []Cue) (string, error) {
	sub := filepath.Join(dir, base)
	if err := os.MkdirAll(sub, 0755); err != nil {
		return "", fmt.Errorf("create caption dir: %w", err)
	}

	path := filepath.Join(sub, base+".srt")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create caption file: %w", err)
	}

	if err := Write(f, cues); err != nil {
		f.Close()
		return "", fmt.Errorf("write caption file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
