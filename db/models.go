package db

import "time"

// Clip statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
	StatusSkipped    = "skipped"
)

// Run represents a row in the runs table: one pipeline invocation.
type Run struct {
	ID         string
	URL        string
	VideoID    string
	SourcePath string
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
	// ClipCount is the number of complete clips, filled by the select queries.
	ClipCount int
}

// Clip represents a row in the clips table.
type Clip struct {
	ID             int64
	RunID          string
	SegmentIndex   int
	Topic          string
	ContentType    string
	ViralPotential string
	StartSeconds   float64
	EndSeconds     float64
	Path           string
	Status         string
	Encoder        string
	Filesize       int64
	StartedAt      *time.Time
	FinishedAt     *time.Time
	ErrorAt        *time.Time
	Error          string
	VerticalPath   string
	CaptionPath    string
	CreatedAt      time.Time
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return c.EndSeconds - c.StartSeconds
}
