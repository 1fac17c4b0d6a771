// Package pipeline runs the URL-to-shorts stages in order: transcript,
// segmentation, optional picking, download, splitting, vertical conversion
// and captions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/user/shorts-clipper-cli/captions"
	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/segment"
	"github.com/user/shorts-clipper-cli/shorts"
	"github.com/user/shorts-clipper-cli/youtube"
)

// ErrNothingPicked is returned when the picker deselects every segment.
var ErrNothingPicked = errors.New("no segments selected")

// Files written next to the clips.
const (
	TranscriptFile = "transcript.json"
	SegmentsFile   = "segments.json"
)

// TranscriptSource fetches a video's transcript.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, id string) ([]youtube.Snippet, error)
}

// Downloader fetches a video and returns its local path.
type Downloader interface {
	Download(ctx context.Context, id string) (string, error)
}

// SegmentFinder proposes segments for a transcript.
type SegmentFinder interface {
	Segment(ctx context.Context, snips []youtube.Snippet) ([]segment.Segment, error)
}

// VerticalConverter writes a 9:16 copy of a clip.
type VerticalConverter interface {
	Convert(ctx context.Context, in, out string) (shorts.Crop, error)
}

// Ledger records a run. *db.Ledger implements it.
type Ledger interface {
	clip.Recorder
	RunSource(path string) error
	ClipOutputs(id int64, vertical, caption string) error
	RunFinished(err error) error
}

// Options switch optional stages on.
type Options struct {
	Vertical bool
	Captions bool
	// Pick lets the user narrow the proposed segments before cutting.
	Pick func([]segment.Segment) ([]segment.Segment, error)
}

// Pipeline wires the stage implementations together. Splitter is used as a
// template: Source, Recorder and Progress are set per run.
type Pipeline struct {
	Transcripts TranscriptSource
	Videos      Downloader
	Segments    SegmentFinder
	Splitter    *clip.Splitter
	Shorts      VerticalConverter
	// Burn defaults to captions.Burn.
	Burn         func(ctx context.Context, video, srt, out string, style captions.Style) error
	CaptionStyle captions.Style
	OutputDir    string
	Options      Options

	// StartLedger opens the ledger for a new run. Nil disables recording.
	StartLedger func(runID, url, videoID string) (Ledger, error)
	Observer    func(Event)
	Logger      hclog.Logger
}

// Plan is the result of the planning stages.
type Plan struct {
	URL        string
	VideoID    string
	Transcript []youtube.Snippet
	Segments   []segment.Segment
}

// ClipReport describes one clip and its renditions.
type ClipReport struct {
	clip.Result
	Vertical  string
	SRT       string
	Captioned string
	// Err holds a vertical or caption failure. The cut clip is still valid.
	Err error
}

// Report summarises a run.
type Report struct {
	RunID   string
	VideoID string
	Source  string
	Clips   []ClipReport
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run executes every stage for url. When a clip fails to encode the report
// still lists the clips written before the failure.
func (p *Pipeline) Run(ctx context.Context, url string) (*Report, error) {
	plan, err := p.Plan(ctx, url)
	if err != nil {
		return nil, err
	}

	plan.Segments, err = p.Pick(plan.Segments)
	if err != nil {
		return nil, err
	}

	return p.Execute(ctx, plan)
}

// Execute downloads the video and produces the clips for plan, recording
// the run to the ledger when StartLedger is set.
func (p *Pipeline) Execute(ctx context.Context, plan *Plan) (rep *Report, err error) {
	runID := NewRunID()
	log := p.logger().With("run", runID)

	ledger := p.startLedger(runID, plan.URL, plan.VideoID, log)
	if ledger != nil {
		defer func() {
			if lerr := ledger.RunFinished(err); lerr != nil {
				log.Warn("recording run outcome failed", "error", lerr)
			}
		}()
	}

	rep, err = p.render(ctx, runID, plan, ledger)
	if err == nil {
		p.emit(Event{Stage: StageDone, Message: fmt.Sprintf("%d clips written", len(rep.Clips))})
	}
	return rep, err
}

// Plan fetches the transcript and asks the model for segments. Both are
// saved under OutputDir.
func (p *Pipeline) Plan(ctx context.Context, url string) (*Plan, error) {
	id, err := youtube.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	p.emit(Event{Stage: StageTranscript, Message: "fetching transcript for " + id})
	snips, err := p.Transcripts.FetchTranscript(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	if err := p.saveJSON(TranscriptFile, func(path string) error {
		return youtube.SaveTranscript(path, snips)
	}); err != nil {
		return nil, err
	}

	p.emit(Event{Stage: StageSegment, Message: fmt.Sprintf("segmenting %d transcript lines", len(snips))})
	segs, err := p.Segments.Segment(ctx, snips)
	if err != nil {
		return nil, fmt.Errorf("segment transcript: %w", err)
	}
	if err := p.saveJSON(SegmentsFile, func(path string) error {
		return WriteSegments(path, segs)
	}); err != nil {
		return nil, err
	}

	return &Plan{URL: url, VideoID: id, Transcript: snips, Segments: segs}, nil
}

// Pick runs Options.Pick, if set.
func (p *Pipeline) Pick(segs []segment.Segment) ([]segment.Segment, error) {
	if p.Options.Pick == nil {
		return segs, nil
	}
	p.emit(Event{Stage: StagePick, Message: fmt.Sprintf("%d segments proposed", len(segs))})
	picked, err := p.Options.Pick(segs)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, ErrNothingPicked
	}
	return picked, nil
}

func (p *Pipeline) render(ctx context.Context, runID string, plan *Plan, ledger Ledger) (*Report, error) {
	log := p.logger().With("run", runID)
	rep := &Report{RunID: runID, VideoID: plan.VideoID}

	p.emit(Event{Stage: StageDownload, Message: "downloading " + plan.VideoID})
	source, err := p.Videos.Download(ctx, plan.VideoID)
	if err != nil {
		return rep, fmt.Errorf("download video: %w", err)
	}
	rep.Source = source
	if ledger != nil {
		if err := ledger.RunSource(source); err != nil {
			log.Warn("recording source failed", "error", err)
		}
	}

	sp := *p.Splitter
	sp.Source = source
	if ledger != nil {
		sp.Recorder = ledger
	}
	sp.Progress = func(done, total int, name string) {
		p.emit(Event{Stage: StageSplit, Message: name, Current: done, Total: total})
	}

	results, splitErr := sp.Split(ctx, plan.Segments)
	for _, r := range results {
		rep.Clips = append(rep.Clips, ClipReport{Result: r})
	}

	// Renditions are produced for whatever was cut, even after a fatal
	// encode error, unless the context is gone.
	if ctx.Err() == nil {
		p.renditions(ctx, rep, plan.Transcript, ledger, log)
	}

	if splitErr != nil {
		return rep, splitErr
	}
	return rep, ctx.Err()
}

func (p *Pipeline) renditions(ctx context.Context, rep *Report, transcript []youtube.Snippet, ledger Ledger, log hclog.Logger) {
	total := len(rep.Clips)

	if p.Options.Vertical && p.Shorts != nil {
		for i := range rep.Clips {
			if ctx.Err() != nil {
				return
			}
			c := &rep.Clips[i]
			p.emit(Event{Stage: StageShorts, Message: filepath.Base(c.Path), Current: i + 1, Total: total})

			out := shorts.VerticalPath(c.Path)
			if _, err := p.Shorts.Convert(ctx, c.Path, out); err != nil {
				log.Error("vertical conversion failed", "clip", c.Path, "error", err)
				c.Err = fmt.Errorf("vertical: %w", err)
				continue
			}
			c.Vertical = out
			p.recordOutputs(ledger, c.RecordID, out, "", log)
		}
	}

	if !p.Options.Captions {
		return
	}
	burn := p.Burn
	if burn == nil {
		burn = captions.Burn
	}
	for i := range rep.Clips {
		if ctx.Err() != nil {
			return
		}
		c := &rep.Clips[i]
		p.emit(Event{Stage: StageCaptions, Message: filepath.Base(c.Path), Current: i + 1, Total: total})

		cues := captions.ForRange(transcript, c.Range.Start, c.Range.End)
		if len(cues) == 0 {
			log.Info("no transcript lines in clip, skipping captions", "clip", c.Path)
			continue
		}

		base := strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))
		srt, err := captions.WriteFile(filepath.Dir(c.Path), base, cues)
		if err != nil {
			log.Error("writing captions failed", "clip", c.Path, "error", err)
			c.Err = errors.Join(c.Err, fmt.Errorf("captions: %w", err))
			continue
		}
		c.SRT = srt

		video := c.Path
		if c.Vertical != "" {
			video = c.Vertical
		}
		out := captions.CaptionedPath(video)
		if err := burn(ctx, video, srt, out, p.CaptionStyle); err != nil {
			log.Error("burning captions failed", "clip", video, "error", err)
			c.Err = errors.Join(c.Err, fmt.Errorf("captions: %w", err))
			continue
		}
		c.Captioned = out
		p.recordOutputs(ledger, c.RecordID, "", out, log)
	}
}

func (p *Pipeline) recordOutputs(ledger Ledger, id int64, vertical, caption string, log hclog.Logger) {
	if ledger == nil || id == 0 {
		return
	}
	if err := ledger.ClipOutputs(id, vertical, caption); err != nil {
		log.Warn("recording clip outputs failed", "error", err)
	}
}

func (p *Pipeline) startLedger(runID, url, id string, log hclog.Logger) Ledger {
	if p.StartLedger == nil {
		return nil
	}
	l, err := p.StartLedger(runID, url, id)
	if err != nil {
		log.Warn("run ledger unavailable", "error", err)
		return nil
	}
	return l
}

func (p *Pipeline) saveJSON(name string, write func(path string) error) error {
	if p.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return write(filepath.Join(p.OutputDir, name))
}

func (p *Pipeline) emit(e Event) {
	p.logger().Debug("stage", "stage", string(e.Stage), "message", e.Message, "current", e.Current, "total", e.Total)
	if p.Observer != nil {
		p.Observer(e)
	}
}

func (p *Pipeline) logger() hclog.Logger {
	if p.Logger == nil {
		return hclog.NewNullLogger()
	}
	return p.Logger
}

// WriteSegments saves segs as indented JSON.
func WriteSegments(path string, segs []segment.Segment) error {
	data, err := segment.Encode(segs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write segments: %w", err)
	}
	return nil
}

// ReadSegments loads and validates a segments file written by WriteSegments
// or by hand.
func ReadSegments(path string) ([]segment.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	return segment.Decode(data)
}
