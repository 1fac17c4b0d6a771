package pipeline

import "fmt"

// Stage names a pipeline step.
type Stage string

const (
	StageTranscript Stage = "transcript"
	StageSegment    Stage = "segment"
	StagePick       Stage = "pick"
	StageDownload   Stage = "download"
	StageSplit      Stage = "split"
	StageShorts     Stage = "shorts"
	StageCaptions   Stage = "captions"
	StageDone       Stage = "done"
)

// Event reports progress. Current and Total are zero for stages without a
// countable unit of work.
type Event struct {
	Stage   Stage
	Message string
	Current int
	Total   int
	// Err is set on the final event of a failed run.
	Err error
}

func (e Event) String() string {
	if e.Total > 0 {
		return fmt.Sprintf("[%s %d/%d] %s", e.Stage, e.Current, e.Total, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

// ChannelObserver returns an observer that forwards events to ch. The caller
// owns ch and closes it once the pipeline returns.
func ChannelObserver(ch chan<- Event) func(Event) {
	return func(e Event) { ch <- e }
}
