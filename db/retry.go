package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/user/shorts-clipper-cli/clip"
)

// RetryQueue walks the unfinished clips of one run in ID order. It
// implements clip.Queue; each clip is handed out at most once.
type RetryQueue struct {
	DB    *sql.DB
	RunID string
	// Now defaults to time.Now.
	Now func() time.Time

	after int64
}

// Next implements clip.Queue.
func (q *RetryQueue) Next() (*clip.Pending, error) {
	var p clip.Pending
	err := q.DB.QueryRow(SelectNextRetryClipSQL, q.RunID, q.after).
		Scan(&p.ID, &p.Source, &p.Output, &p.Start, &p.End)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select retry clip: %w", err)
	}
	q.after = p.ID
	return &p, nil
}

// MarkProcessing implements clip.Queue.
func (q *RetryQueue) MarkProcessing(id int64) error {
	return MarkClipProcessing(q.DB, id, q.now())
}

// MarkComplete implements clip.Queue.
func (q *RetryQueue) MarkComplete(id int64, encoder string, size int64) error {
	return MarkClipComplete(q.DB, id, q.now(), encoder, size)
}

// MarkError implements clip.Queue.
func (q *RetryQueue) MarkError(id int64, msg string) error {
	return MarkClipError(q.DB, id, q.now(), msg)
}

func (q *RetryQueue) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}
