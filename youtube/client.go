package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/user/shorts-clipper-cli/media"
)

// ErrNoTranscript is returned when yt-dlp finds no subtitles for a video.
var ErrNoTranscript = errors.New("no transcript available")

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client wraps the yt-dlp binary.
type Client struct {
	// Binary is the yt-dlp executable; defaults to "yt-dlp".
	Binary string
	// Dir receives downloaded videos.
	Dir string
	// Languages are subtitle language patterns passed to --sub-langs.
	Languages []string
	Run       Runner
	Logger    hclog.Logger
}

// FetchTranscript downloads the video's subtitles (manual or automatic) as
// WebVTT and parses them.
func (c *Client) FetchTranscript(ctx context.Context, id string) ([]Snippet, error) {
	tmp, err := os.MkdirTemp("", "shorts-subs-")
	if err != nil {
		return nil, fmt.Errorf("create subtitle dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	langs := c.Languages
	if len(langs) == 0 {
		langs = []string{"en.*", "en"}
	}

	args := []string{
		"--skip-download",
		"--write-auto-sub",
		"--write-sub",
		"--sub-format", "vtt",
		"--sub-langs", strings.Join(langs, ","),
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(tmp, "%(id)s.%(ext)s"),
		WatchURL(id),
	}

	c.logger().Debug("fetching transcript", "video_id", id, "args", args)
	if _, err := c.run(ctx, args...); err != nil {
		return nil, fmt.Errorf("yt-dlp transcript: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(tmp, "*.vtt"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w for video %s", ErrNoTranscript, id)
	}
	sort.Strings(matches)

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snips, err := ParseVTT(f)
	if err != nil {
		return nil, err
	}
	if len(snips) == 0 {
		return nil, fmt.Errorf("%w for video %s", ErrNoTranscript, id)
	}
	c.logger().Info("transcript fetched", "video_id", id, "file", filepath.Base(matches[0]), "snippets", len(snips))
	return snips, nil
}

// Download fetches the best mp4 rendition of the video into Dir and returns
// the written file path.
func (c *Client) Download(ctx context.Context, id string) (string, error) {
	dir := c.Dir
	if dir == "" {
		dir = "downloads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	args := []string{
		"-f", "best[ext=mp4]/best",
		"-o", filepath.Join(dir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--no-warnings",
		"--print", "after_move:filepath",
		WatchURL(id),
	}

	c.logger().Info("downloading video", "video_id", id, "dir", dir)
	out, err := c.run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download: %w", err)
	}

	if path := lastNonEmptyLine(string(out)); path != "" {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
		c.logger().Warn("printed path missing, searching download dir", "path", path)
	}
	return media.FindSource(dir, nil)
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	bin := c.Binary
	if bin == "" {
		bin = "yt-dlp"
	}
	run := c.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, bin, args...)
}

func (c *Client) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

// ExecRunner runs name with args, returning stdout. On failure the last line
// of stderr is included in the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := lastNonEmptyLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
