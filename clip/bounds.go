package clip

import (
	"fmt"

	"github.com/user/shorts-clipper-cli/pkg/timeutil"
)

// DefaultPadSeconds is the pre-roll and post-roll added around each segment.
const DefaultPadSeconds = 3.0

// SkipReason explains why a segment produced no clip.
type SkipReason int

const (
	// NoSkip means the segment should be extracted.
	NoSkip SkipReason = iota
	// SkipEmpty means the padded start is not before the padded end.
	SkipEmpty
	// SkipBeyondEnd means the padded start is at or past the end of the source.
	SkipBeyondEnd
)

func (r SkipReason) String() string {
	switch r {
	case SkipEmpty:
		return "start_time >= end_time"
	case SkipBeyondEnd:
		return "start_time beyond video length"
	default:
		return "none"
	}
}

// Range is the padded, clamped span to cut, in seconds.
type Range struct {
	Start float64
	End   float64
	// Adjusted is set when End was clamped to the source duration.
	Adjusted bool
	// RequestedEnd is the padded end before clamping.
	RequestedEnd float64
}

// Duration returns End - Start.
func (r Range) Duration() float64 {
	return r.End - r.Start
}

// Plan converts a segment's timestamps to a cut range: pad both sides by pad
// seconds (start clamped at 0), skip empty ranges and ranges starting at or
// after duration, and clamp the end to duration.
func Plan(startTime, endTime string, pad, duration float64) (Range, SkipReason, error) {
	startSec, err := timeutil.ToSeconds(startTime)
	if err != nil {
		return Range{}, NoSkip, fmt.Errorf("start_time: %w", err)
	}
	endSec, err := timeutil.ToSeconds(endTime)
	if err != nil {
		return Range{}, NoSkip, fmt.Errorf("end_time: %w", err)
	}

	start := float64(startSec) - pad
	if start < 0 {
		start = 0
	}
	end := float64(endSec) + pad
	r := Range{Start: start, End: end, RequestedEnd: end}

	if start >= end {
		return r, SkipEmpty, nil
	}
	if start >= duration {
		return r, SkipBeyondEnd, nil
	}
	if end > duration {
		r.End = duration
		r.Adjusted = true
	}
	return r, NoSkip, nil
}
