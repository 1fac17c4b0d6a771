package clip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// Pending is a recorded clip that has not been written successfully.
type Pending struct {
	ID     int64
	Source string
	Output string
	Start  float64
	End    float64
}

// Queue hands out pending clips and records their outcome. Next returns nil
// when the queue is exhausted.
type Queue interface {
	Next() (*Pending, error)
	MarkProcessing(id int64) error
	MarkComplete(id int64, encoder string, size int64) error
	MarkError(id int64, msg string) error
}

// Processor re-extracts clips left pending or failed by an earlier run.
type Processor struct {
	Queue    Queue
	Encoders []Encoder
	Logger   hclog.Logger
}

// Drain processes every queued clip in order and returns how many were
// written and how many failed. A failing clip does not stop the drain;
// queue errors, a missing encoder and cancellation do.
func (p *Processor) Drain(ctx context.Context) (done, failed int, err error) {
	log := p.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if len(p.Encoders) == 0 {
		return 0, 0, ErrEncoderNotFound
	}

	for {
		if err := ctx.Err(); err != nil {
			return done, failed, err
		}

		c, err := p.Queue.Next()
		if err != nil {
			return done, failed, fmt.Errorf("next pending clip: %w", err)
		}
		if c == nil {
			return done, failed, nil
		}

		if err := p.processClip(ctx, c, log); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return done, failed, err
			}
			// Without an encoder every remaining clip would fail the same way.
			if errors.Is(err, ErrEncoderNotFound) {
				return done, failed + 1, err
			}
			failed++
			continue
		}
		done++
	}
}

// processClip handles the full lifecycle of regenerating a single clip.
func (p *Processor) processClip(ctx context.Context, c *Pending, log hclog.Logger) error {
	if err := p.Queue.MarkProcessing(c.ID); err != nil {
		return err
	}

	fail := func(err error) error {
		if merr := p.Queue.MarkError(c.ID, err.Error()); merr != nil {
			log.Warn("recording clip failure failed", "clip", c.ID, "error", merr)
		}
		log.Error("clip retry failed", "clip", c.ID, "path", c.Output, "error", err)
		return err
	}

	if _, err := os.Stat(c.Source); err != nil {
		return fail(fmt.Errorf("source video missing: %s", c.Source))
	}
	if err := os.MkdirAll(filepath.Dir(c.Output), 0755); err != nil {
		return fail(fmt.Errorf("mkdir: %w", err))
	}

	job := Job{Source: c.Source, Output: c.Output, Start: c.Start, End: c.End}
	var lastErr error
	for _, enc := range p.Encoders {
		if err := enc.Extract(ctx, job); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			log.Warn("encoder failed", "clip", c.ID, "encoder", enc.Name(), "error", err)
			continue
		}

		if err := p.Queue.MarkComplete(c.ID, enc.Name(), fileSize(c.Output)); err != nil {
			log.Warn("recording clip completion failed", "clip", c.ID, "error", err)
		}
		log.Info("clip regenerated", "clip", c.ID, "path", c.Output, "encoder", enc.Name())
		return nil
	}
	removePartial(c.Output, log)
	return fail(lastErr)
}
