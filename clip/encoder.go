package clip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"github.com/user/shorts-clipper-cli/media"
)

var (
	// ErrEncodeFailed marks an extraction that no encoder could complete.
	ErrEncodeFailed = errors.New("clip encode failed")
	// ErrEncoderNotFound is returned when no ffmpeg binary can be located for
	// the command-line fallback.
	ErrEncoderNotFound = errors.New("ffmpeg not found, cannot perform video splitting")
)

// DefaultFfmpegCandidates are probed in order by the command-line encoder.
var DefaultFfmpegCandidates = []string{
	"ffmpeg",
	`C:\ffmpeg\bin\ffmpeg.exe`,
	"/usr/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
}

// Job describes a single sub-range extraction.
type Job struct {
	Source string
	Output string
	Start  float64
	End    float64
}

// Duration returns the length of the extracted range in seconds.
func (j Job) Duration() float64 {
	return j.End - j.Start
}

// Encoder extracts a sub-range of a video into a new H.264/AAC file.
type Encoder interface {
	Name() string
	Extract(ctx context.Context, job Job) error
}

// FfmpegGoEncoder is the primary encoder. It builds the ffmpeg invocation
// through the ffmpeg-go stream graph.
type FfmpegGoEncoder struct{}

// Name implements Encoder.
func (FfmpegGoEncoder) Name() string { return "ffmpeg-go" }

// Extract implements Encoder.
func (FfmpegGoEncoder) Extract(ctx context.Context, job Job) error {
	var stderr bytes.Buffer
	stream := ffmpeg.Input(job.Source, ffmpeg.KwArgs{"ss": formatSeconds(job.Start)}).
		Output(job.Output, ffmpeg.KwArgs{
			"t":   formatSeconds(job.Duration()),
			"c:v": "libx264",
			"c:a": "aac",
		}).
		OverWriteOutput().
		WithErrorOutput(&stderr)

	if err := media.RunStream(ctx, stream); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("ffmpeg-go: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// CommandEncoder is the fallback encoder. It locates an ffmpeg binary from
// Candidates and runs it directly.
type CommandEncoder struct {
	// Candidates are tried in order; empty means DefaultFfmpegCandidates.
	Candidates []string
	// ProbeTimeout bounds each "ffmpeg -version" check.
	ProbeTimeout time.Duration
}

// Name implements Encoder.
func (e *CommandEncoder) Name() string { return "ffmpeg" }

// Find returns the first candidate that answers "-version", or
// ErrEncoderNotFound.
func (e *CommandEncoder) Find(ctx context.Context) (string, error) {
	candidates := e.Candidates
	if len(candidates) == 0 {
		candidates = DefaultFfmpegCandidates
	}
	timeout := e.ProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	for _, path := range candidates {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err := exec.CommandContext(probeCtx, path, "-version").Run()
		cancel()
		if err == nil {
			return path, nil
		}
	}
	return "", ErrEncoderNotFound
}

// Args returns the ffmpeg arguments used for job.
func (e *CommandEncoder) Args(job Job) []string {
	return []string{
		"-i", job.Source,
		"-ss", formatSeconds(job.Start),
		"-t", formatSeconds(job.Duration()),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-y", job.Output,
	}
}

// Extract implements Encoder.
func (e *CommandEncoder) Extract(ctx context.Context, job Job) error {
	bin, err := e.Find(ctx)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin, e.Args(job)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w: %s", err, lastLine(out.String()))
	}
	return nil
}

// DefaultEncoders returns the primary encoder followed by the command-line fallback.
func DefaultEncoders(candidates []string) []Encoder {
	return []Encoder{
		FfmpegGoEncoder{},
		&CommandEncoder{Candidates: candidates},
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// lastLine returns the last non-empty line of ffmpeg output, which usually
// carries the actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
