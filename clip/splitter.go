// Package clip cuts validated segments out of a source video.
package clip

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/user/shorts-clipper-cli/media"
	"github.com/user/shorts-clipper-cli/segment"
)

// Result is one written clip.
type Result struct {
	// Index is the segment's position in the input list.
	Index    int
	Segment  segment.Segment
	Path     string
	Range    Range
	Encoder  string
	Size     int64
	RecordID int64
}

// EncodeError is returned when every encoder failed for a segment. It aborts
// the batch.
type EncodeError struct {
	Index int
	Topic string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("segment %d (%q): %v", e.Index+1, e.Topic, e.Err)
}

// Unwrap exposes both ErrEncodeFailed and the underlying cause.
func (e *EncodeError) Unwrap() []error {
	return []error{ErrEncodeFailed, e.Err}
}

// Recorder receives clip lifecycle events. Implementations must not alter
// the extraction outcome; their errors are logged and ignored.
type Recorder interface {
	ClipSkipped(index int, seg segment.Segment, r Range, reason SkipReason) error
	ClipStarted(index int, seg segment.Segment, path string, r Range) (int64, error)
	ClipFinished(id int64, encoder string, size int64) error
	ClipFailed(id int64, msg string) error
}

// Splitter cuts segments out of a single source video.
type Splitter struct {
	// Source is the video to cut. When empty, the first video file in
	// SourceDir is used.
	Source     string
	SourceDir  string
	Extensions []string
	// OutputDir receives the clips; created if missing.
	OutputDir     string
	PadSeconds    float64
	MaxNameLength int
	// Encoders are tried in order for each segment.
	Encoders []Encoder
	// Probe reads the source duration; defaults to media.Probe.
	Probe    func(path string) (media.Info, error)
	Recorder Recorder
	// Progress is called after each segment is handled.
	Progress func(done, total int, name string)
	Logger   hclog.Logger
}

// ResolveSource returns Source, or the first video found in SourceDir.
func (s *Splitter) ResolveSource() (string, error) {
	if s.Source != "" {
		info, err := os.Stat(s.Source)
		if err != nil {
			return "", fmt.Errorf("%w: %s", media.ErrMissingSource, s.Source)
		}
		if info.IsDir() {
			return "", fmt.Errorf("path is a directory, not a video file: %s", s.Source)
		}
		return s.Source, nil
	}
	return media.FindSource(s.SourceDir, s.Extensions)
}

// Split validates segs and writes one clip per accepted segment. Degenerate
// ranges are logged and skipped. An encode failure that survives every
// encoder stops the batch: the clips written so far are returned together
// with an *EncodeError.
func (s *Splitter) Split(ctx context.Context, segs []segment.Segment) ([]Result, error) {
	log := s.logger()

	if err := segment.Validate(segs); err != nil {
		return nil, err
	}
	if len(s.Encoders) == 0 {
		return nil, ErrEncoderNotFound
	}

	source, err := s.ResolveSource()
	if err != nil {
		return nil, fmt.Errorf("video file not found for splitting: %w", err)
	}

	probe := s.Probe
	if probe == nil {
		probe = media.Probe
	}
	info, err := probe(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load video for splitting: %w", err)
	}
	log.Debug("source loaded", "path", source, "duration", info.Duration)

	if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	pad := s.PadSeconds
	if pad < 0 {
		pad = 0
	}

	var results []Result
	for i, seg := range segs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r, reason, err := Plan(seg.StartTime, seg.EndTime, pad, info.Duration)
		if err != nil {
			return results, fmt.Errorf("segment %d (%q): %w", i+1, seg.Topic, err)
		}

		if reason != NoSkip {
			log.Info("skipping segment", "segment", i+1, "reason", reason.String(),
				"start", r.Start, "end", r.RequestedEnd, "video_duration", info.Duration)
			s.recordSkip(i, seg, r, reason)
			s.progress(i+1, len(segs), seg.Topic)
			continue
		}
		if r.Adjusted {
			log.Info("adjusting end_time to video length", "segment", i+1,
				"original_end", r.RequestedEnd, "new_end", r.End)
		}

		base := BaseName(seg, s.MaxNameLength)
		out := UniquePath(s.OutputDir, base, ".mp4")

		res, err := s.extract(ctx, i, seg, source, out, r)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		s.progress(i+1, len(segs), seg.Topic)
	}

	return results, nil
}

// extract runs the encoders in order until one succeeds.
func (s *Splitter) extract(ctx context.Context, i int, seg segment.Segment, source, out string, r Range) (Result, error) {
	log := s.logger()
	job := Job{Source: source, Output: out, Start: r.Start, End: r.End}

	var recordID int64
	if s.Recorder != nil {
		id, err := s.Recorder.ClipStarted(i, seg, out, r)
		if err != nil {
			log.Warn("recording clip start failed", "error", err)
		}
		recordID = id
	}

	var lastErr error
	for n, enc := range s.Encoders {
		err := enc.Extract(ctx, job)
		if err == nil {
			size := fileSize(out)
			if n > 0 {
				log.Info("fallback success", "segment", i+1, "topic", seg.Topic, "encoder", enc.Name(), "path", out)
			} else {
				log.Info("saved clip", "segment", i+1, "path", out)
			}
			if s.Recorder != nil && recordID != 0 {
				if err := s.Recorder.ClipFinished(recordID, enc.Name(), size); err != nil {
					log.Warn("recording clip completion failed", "error", err)
				}
			}
			return Result{
				Index:    i,
				Segment:  seg,
				Path:     out,
				Range:    r,
				Encoder:  enc.Name(),
				Size:     size,
				RecordID: recordID,
			}, nil
		}

		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if n < len(s.Encoders)-1 {
			log.Warn("encoder failed, trying fallback", "segment", i+1, "topic", seg.Topic,
				"encoder", enc.Name(), "next", s.Encoders[n+1].Name(), "error", err)
		} else {
			log.Error("encoder failed", "segment", i+1, "topic", seg.Topic, "encoder", enc.Name(), "error", err)
		}
	}

	removePartial(out, log)
	if s.Recorder != nil && recordID != 0 {
		if err := s.Recorder.ClipFailed(recordID, lastErr.Error()); err != nil {
			log.Warn("recording clip failure failed", "error", err)
		}
	}
	return Result{}, &EncodeError{Index: i, Topic: seg.Topic, Err: lastErr}
}

func (s *Splitter) recordSkip(i int, seg segment.Segment, r Range, reason SkipReason) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.ClipSkipped(i, seg, r, reason); err != nil {
		s.logger().Warn("recording skipped clip failed", "error", err)
	}
}

func (s *Splitter) progress(done, total int, name string) {
	if s.Progress != nil {
		s.Progress(done, total, name)
	}
}

func (s *Splitter) logger() hclog.Logger {
	if s.Logger == nil {
		return hclog.NewNullLogger()
	}
	return s.Logger
}

// removePartial deletes whatever a failed encoder left at path, so a later
// run reuses the name instead of keeping a truncated clip.
func removePartial(path string, log hclog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("removing partial clip failed", "path", path, "error", err)
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
