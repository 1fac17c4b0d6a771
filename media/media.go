// Package media locates source videos on disk and reads their stream metadata.
package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultExtensions lists the file extensions treated as video sources.
var DefaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v"}

// ErrMissingSource is returned when no candidate video file exists.
var ErrMissingSource = errors.New("no video file found")

// Info holds the probed properties of a video file.
type Info struct {
	Duration float64
	Width    int
	Height   int
}

// FindSource returns the first regular file in dir whose name ends in one of
// exts (case-insensitive). Entries are visited in lexical order and
// subdirectories are not descended into.
func FindSource(dir string, exts []string) (string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w in %s", ErrMissingSource, dir)
		}
		return "", fmt.Errorf("read source dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if HasVideoExt(e.Name(), exts) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrMissingSource, dir)
}

// HasVideoExt reports whether name ends in one of exts, ignoring case.
func HasVideoExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// probeOutput is the subset of ffprobe's JSON output that we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Probe runs ffprobe on path and returns its duration and video dimensions.
func Probe(path string) (Info, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}
	return ParseProbe([]byte(out))
}

// ParseProbe extracts Info from ffprobe JSON. The container duration is
// preferred; the video stream duration is used when the container has none.
func ParseProbe(data []byte) (Info, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return Info{}, fmt.Errorf("decode probe output: %w", err)
	}

	var info Info
	found := false
	for _, s := range p.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Width = s.Width
		info.Height = s.Height
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
			info.Duration = d
		}
		found = true
		break
	}
	if !found {
		return Info{}, errors.New("no video stream found")
	}

	if d, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil && d > 0 {
		info.Duration = d
	}
	if info.Duration <= 0 {
		return Info{}, errors.New("video duration unknown")
	}
	return info, nil
}
