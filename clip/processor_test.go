package clip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memQueue struct {
	items    []*Pending
	status   map[int64]string
	encoders map[int64]string
}

func newMemQueue(items ...*Pending) *memQueue {
	return &memQueue{items: items, status: map[int64]string{}, encoders: map[int64]string{}}
}

func (q *memQueue) Next() (*Pending, error) {
	if len(q.items) == 0 {
		return nil, nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p, nil
}

func (q *memQueue) MarkProcessing(id int64) error { q.status[id] = "processing"; return nil }

func (q *memQueue) MarkComplete(id int64, encoder string, size int64) error {
	q.status[id] = "complete"
	q.encoders[id] = encoder
	return nil
}

func (q *memQueue) MarkError(id int64, msg string) error { q.status[id] = "error: " + msg; return nil }

func TestProcessorDrain(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	require.NoError(t, os.WriteFile(source, []byte("video"), 0644))

	q := newMemQueue(
		&Pending{ID: 1, Source: source, Output: filepath.Join(dir, "clips", "a.mp4"), Start: 0, End: 5},
		&Pending{ID: 2, Source: filepath.Join(dir, "gone.mp4"), Output: filepath.Join(dir, "clips", "b.mp4"), Start: 0, End: 5},
		&Pending{ID: 3, Source: source, Output: filepath.Join(dir, "clips", "c.mp4"), Start: 5, End: 9},
	)
	primary := &fakeEncoder{name: "ffmpeg-go", err: errors.New("boom")}
	fallback := &fakeEncoder{name: "ffmpeg"}
	p := &Processor{Queue: q, Encoders: []Encoder{primary, fallback}}

	done, failed, err := p.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, failed)

	assert.Equal(t, "complete", q.status[1])
	assert.Equal(t, "ffmpeg", q.encoders[1])
	assert.Contains(t, q.status[2], "source video missing")
	assert.Equal(t, "complete", q.status[3])
	assert.FileExists(t, filepath.Join(dir, "clips", "c.mp4"))
}

func TestProcessorNoEncoders(t *testing.T) {
	p := &Processor{Queue: newMemQueue()}
	_, _, err := p.Drain(context.Background())
	assert.ErrorIs(t, err, ErrEncoderNotFound)
}

func TestProcessorStopsWhenEncoderMissing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	require.NoError(t, os.WriteFile(source, []byte("video"), 0644))

	q := newMemQueue(
		&Pending{ID: 1, Source: source, Output: filepath.Join(dir, "clips", "a.mp4"), Start: 0, End: 5},
		&Pending{ID: 2, Source: source, Output: filepath.Join(dir, "clips", "b.mp4"), Start: 5, End: 9},
		&Pending{ID: 3, Source: source, Output: filepath.Join(dir, "clips", "c.mp4"), Start: 9, End: 12},
	)
	primary := &fakeEncoder{name: "ffmpeg-go", err: errors.New("boom")}
	fallback := &CommandEncoder{Candidates: []string{filepath.Join(dir, "no-ffmpeg")}}
	p := &Processor{Queue: q, Encoders: []Encoder{primary, fallback}}

	done, failed, err := p.Drain(context.Background())
	assert.ErrorIs(t, err, ErrEncoderNotFound)
	assert.Equal(t, 0, done)
	assert.Equal(t, 1, failed)

	assert.Contains(t, q.status[1], "error")
	assert.NotContains(t, q.status, int64(2))
	assert.NotContains(t, q.status, int64(3))
	assert.Len(t, primary.jobs, 1)
}

func TestProcessorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Processor{Queue: newMemQueue(&Pending{ID: 1}), Encoders: []Encoder{&fakeEncoder{name: "x"}}}
	_, _, err := p.Drain(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
