package db

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertRun inserts a runs row for a new pipeline invocation.
func InsertRun(db *sql.DB, id, url, videoID string, startedAt time.Time) error {
	_, err := db.Exec(InsertRunSQL, id, url, videoID, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateRunSource records the downloaded source video for a run.
func UpdateRunSource(db *sql.DB, id, sourcePath string) error {
	_, err := db.Exec(UpdateRunSourceSQL, sourcePath, id)
	if err != nil {
		return fmt.Errorf("update run source: %w", err)
	}
	return nil
}

// FinishRun stamps a run as finished. errMsg is empty for successful runs.
func FinishRun(db *sql.DB, id string, finishedAt time.Time, errMsg string) error {
	result, err := db.Exec(FinishRunSQL, finishedAt.UTC(), errMsg, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SelectRunByID returns a single run by ID.
func SelectRunByID(db *sql.DB, id string) (*Run, error) {
	r, err := scanRun(db.QueryRow(SelectRunByIDSQL, id))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SelectRecentRuns returns up to limit runs, newest first.
func SelectRecentRuns(db *sql.DB, limit int) ([]Run, error) {
	rows, err := db.Query(SelectRecentRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// InsertClip inserts a clips row and returns its ID. Status defaults to
// pending when empty.
func InsertClip(db *sql.DB, c Clip) (int64, error) {
	status := c.Status
	if status == "" {
		status = StatusPending
	}
	result, err := db.Exec(InsertClipSQL, c.RunID, c.SegmentIndex, c.Topic, c.ContentType, c.ViralPotential,
		c.StartSeconds, c.EndSeconds, c.Path, status, c.Error)
	if err != nil {
		return 0, fmt.Errorf("insert clip: %w", err)
	}
	return result.LastInsertId()
}

// MarkClipProcessing updates a clips row to processing status with the given start time.
func MarkClipProcessing(db *sql.DB, clipID int64, startedAt time.Time) error {
	_, err := db.Exec(MarkClipProcessingSQL, startedAt.UTC(), clipID)
	if err != nil {
		return fmt.Errorf("mark clip processing: %w", err)
	}
	return nil
}

// MarkClipComplete updates a clips row to complete status with the encoder used and the output size.
func MarkClipComplete(db *sql.DB, clipID int64, finishedAt time.Time, encoder string, filesize int64) error {
	_, err := db.Exec(MarkClipCompleteSQL, finishedAt.UTC(), encoder, filesize, clipID)
	if err != nil {
		return fmt.Errorf("mark clip complete: %w", err)
	}
	return nil
}

// MarkClipError updates a clips row to error status with the given error time and message.
func MarkClipError(db *sql.DB, clipID int64, errorAt time.Time, msg string) error {
	_, err := db.Exec(MarkClipErrorSQL, errorAt.UTC(), msg, clipID)
	if err != nil {
		return fmt.Errorf("mark clip error: %w", err)
	}
	return nil
}

// UpdateClipOutputs records the vertical and captioned renditions of a clip.
// Empty values leave the stored path unchanged.
func UpdateClipOutputs(db *sql.DB, clipID int64, verticalPath, captionPath string) error {
	_, err := db.Exec(UpdateClipOutputsSQL, verticalPath, verticalPath, captionPath, captionPath, clipID)
	if err != nil {
		return fmt.Errorf("update clip outputs: %w", err)
	}
	return nil
}

// SelectClipByID returns a single clips row by ID.
func SelectClipByID(db *sql.DB, id int64) (*Clip, error) {
	c, err := scanClip(db.QueryRow(SelectClipByIDSQL, id))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SelectClips returns the clips of a run ordered by segment. An empty runID
// returns the most recent clips across all runs, up to limit.
func SelectClips(db *sql.DB, runID string, limit int) ([]Clip, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if runID == "" {
		rows, err = db.Query(SelectRecentClipsSQL, limit)
	} else {
		rows, err = db.Query(SelectClipsByRunSQL, runID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, *c)
	}
	return clips, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	err := s.Scan(&r.ID, &r.URL, &r.VideoID, &r.SourcePath, &r.StartedAt, &r.FinishedAt, &r.Error, &r.ClipCount)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanClip(s scanner) (*Clip, error) {
	var c Clip
	err := s.Scan(&c.ID, &c.RunID, &c.SegmentIndex, &c.Topic, &c.ContentType, &c.ViralPotential,
		&c.StartSeconds, &c.EndSeconds, &c.Path, &c.Status, &c.Encoder, &c.Filesize,
		&c.StartedAt, &c.FinishedAt, &c.ErrorAt, &c.Error, &c.VerticalPath, &c.CaptionPath, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
