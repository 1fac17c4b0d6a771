// Package segmenter asks a language model to pick short-form-worthy spans out
// of a transcript.
package segmenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/user/shorts-clipper-cli/segment"
	"github.com/user/shorts-clipper-cli/youtube"
	"golang.org/x/time/rate"
)

var (
	// ErrEmptyTranscript is returned when there is nothing to segment.
	ErrEmptyTranscript = errors.New("transcript is empty")
	// ErrNoSegments is returned when the model proposes no segments.
	ErrNoSegments = errors.New("model returned no segments")
)

// Generator sends one system+user prompt pair to a model and returns its text.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Defaults for Segmenter.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Segmenter turns a transcript into validated segments.
type Segmenter struct {
	Generator Generator
	// Limiter paces model calls, retries included. Nil means one call per second.
	Limiter     *rate.Limiter
	MaxAttempts int
	RetryDelay  time.Duration
	// Prompt overrides SystemPrompt when set.
	Prompt string
	Logger hclog.Logger
}

// Segment renders snips, asks the model for segments and decodes the reply.
// Transport errors and undecodable replies are retried up to MaxAttempts.
func (s *Segmenter) Segment(ctx context.Context, snips []youtube.Snippet) ([]segment.Segment, error) {
	if len(snips) == 0 {
		return nil, ErrEmptyTranscript
	}
	if s.Generator == nil {
		return nil, errors.New("no model configured")
	}

	log := s.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	limiter := s.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	delay := s.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	system := s.Prompt
	if system == "" {
		system = SystemPrompt
	}

	prompt := UserPrompt(snips)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		reply, err := s.Generator.Generate(ctx, system, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Warn("model call failed", "attempt", attempt, "error", err)
			continue
		}
		log.Debug("model replied", "attempt", attempt, "elapsed", time.Since(start), "bytes", len(reply))

		segs, err := segment.Decode([]byte(reply))
		if err != nil {
			lastErr = err
			log.Warn("model reply rejected", "attempt", attempt, "error", err)
			continue
		}
		if len(segs) == 0 {
			return nil, ErrNoSegments
		}
		log.Info("segments proposed", "count", len(segs))
		return segs, nil
	}

	return nil, fmt.Errorf("segmentation failed after %d attempts: %w", attempts, lastErr)
}

// UserPrompt renders the transcript one snippet per line as
// "[M:SS - M:SS] text".
func UserPrompt(snips []youtube.Snippet) string {
	var b strings.Builder
	b.WriteString("Transcript:\n")
	for _, s := range snips {
		fmt.Fprintf(&b, "[%s] %s\n", s.TimeRange, s.Text)
	}
	return b.String()
}

// SystemPrompt instructs the model to pick viral-worthy segments and reply
// with JSON the segment package can decode.
const SystemPrompt = `You are a viral content segmentation agent. You pick the most engaging
segments of a video transcript for YouTube Shorts and Instagram Reels.

Pick 3 to 8 high-impact segments. Prefer quality over quantity.

Look for hooks, surprising reveals, strong opinions, emotional peaks, quick
actionable insights, relatable moments and complete short stories. Skip filler,
housekeeping ("like and subscribe"), slow transitions and content that needs
long background.

Each segment:
- is 45 to 90 seconds long (at least 30 seconds, ideally 60 to 75)
- holds one complete idea with setup and payoff
- starts on a strong line and ends on a finished thought
- never cuts mid-sentence

Timestamps come from the transcript lines, formatted "M:SS"/"MM:SS" or
"H:MM:SS" past the first hour. Copy them exactly as they appear.

Reply with JSON only, no prose and no code fences:
{"segments": [{
  "topic": "catchy clickable title, 10-50 characters",
  "start_time": "MM:SS",
  "end_time": "MM:SS",
  "transcript": "the segment's spoken text",
  "viral_potential": "HIGH or MEDIUM",
  "content_type": "Educational, Entertainment, Inspirational, Controversial, Relatable or Trending"
}]}`
