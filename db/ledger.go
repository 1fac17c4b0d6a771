package db

import (
	"database/sql"
	"time"

	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/segment"
)

// Ledger records one run's clip lifecycle. It implements clip.Recorder.
type Ledger struct {
	DB    *sql.DB
	RunID string
	// Now defaults to time.Now.
	Now func() time.Time
}

// StartRun inserts a run row and returns a ledger bound to it.
func StartRun(db *sql.DB, runID, url, videoID string) (*Ledger, error) {
	l := &Ledger{DB: db, RunID: runID}
	if err := InsertRun(db, runID, url, videoID, l.now()); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Ledger) clipRow(index int, seg segment.Segment, r clip.Range) Clip {
	return Clip{
		RunID:          l.RunID,
		SegmentIndex:   index,
		Topic:          seg.Topic,
		ContentType:    seg.ContentType,
		ViralPotential: seg.ViralPotential,
		StartSeconds:   r.Start,
		EndSeconds:     r.End,
	}
}

// ClipSkipped implements clip.Recorder.
func (l *Ledger) ClipSkipped(index int, seg segment.Segment, r clip.Range, reason clip.SkipReason) error {
	c := l.clipRow(index, seg, r)
	c.EndSeconds = r.RequestedEnd
	c.Status = StatusSkipped
	c.Error = reason.String()
	_, err := InsertClip(l.DB, c)
	return err
}

// ClipStarted implements clip.Recorder.
func (l *Ledger) ClipStarted(index int, seg segment.Segment, path string, r clip.Range) (int64, error) {
	c := l.clipRow(index, seg, r)
	c.Path = path
	id, err := InsertClip(l.DB, c)
	if err != nil {
		return 0, err
	}
	return id, MarkClipProcessing(l.DB, id, l.now())
}

// ClipFinished implements clip.Recorder.
func (l *Ledger) ClipFinished(id int64, encoder string, size int64) error {
	return MarkClipComplete(l.DB, id, l.now(), encoder, size)
}

// ClipFailed implements clip.Recorder.
func (l *Ledger) ClipFailed(id int64, msg string) error {
	return MarkClipError(l.DB, id, l.now(), msg)
}

// RunSource records the source video path.
func (l *Ledger) RunSource(path string) error {
	return UpdateRunSource(l.DB, l.RunID, path)
}

// ClipOutputs records the vertical and captioned renditions of a clip.
func (l *Ledger) ClipOutputs(id int64, vertical, caption string) error {
	return UpdateClipOutputs(l.DB, id, vertical, caption)
}

// RunFinished stamps the run with its outcome.
func (l *Ledger) RunFinished(runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	return FinishRun(l.DB, l.RunID, l.now(), msg)
}
