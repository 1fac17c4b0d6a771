package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/segment"
)

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "data.db")
	database, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, path
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	database, path := openTestDB(t)

	v, err := SchemaVersion(database)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	require.NoError(t, database.Close())

	// Reopening must not re-run ALTER TABLE migrations.
	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	v, err = SchemaVersion(again)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/010_later.sql":  {Data: []byte("SELECT 1")},
		"m/002_second.sql": {Data: []byte("SELECT 1")},
		"m/001_first.sql":  {Data: []byte("SELECT 1")},
		"m/README.md":      {Data: []byte("docs")},
		"m/abc_bad.sql":    {Data: []byte("SELECT 1")},
		"m/noversion.sql":  {Data: []byte("SELECT 1")},
	}

	got, err := listMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{got[0].version, got[1].version, got[2].version})
	assert.Equal(t, "010_later.sql", got[2].name)
}

func TestRunLifecycle(t *testing.T) {
	database, _ := openTestDB(t)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertRun(database, "run-a", "https://youtu.be/a", "a", start))
	require.NoError(t, InsertRun(database, "run-b", "https://youtu.be/b", "b", start.Add(time.Hour)))
	require.NoError(t, UpdateRunSource(database, "run-a", "downloads/a.mp4"))
	require.NoError(t, FinishRun(database, "run-a", start.Add(time.Minute), "boom"))

	r, err := SelectRunByID(database, "run-a")
	require.NoError(t, err)
	assert.Equal(t, "a", r.VideoID)
	assert.Equal(t, "downloads/a.mp4", r.SourcePath)
	assert.Equal(t, "boom", r.Error)
	require.NotNil(t, r.FinishedAt)
	assert.True(t, r.FinishedAt.Equal(start.Add(time.Minute)))
	assert.True(t, r.StartedAt.Equal(start))

	runs, err := SelectRecentRuns(database, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Nil(t, runs[0].FinishedAt)

	assert.ErrorIs(t, FinishRun(database, "missing", start, ""), sql.ErrNoRows)

	_, err = SelectRunByID(database, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestClipLifecycle(t *testing.T) {
	database, _ := openTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertRun(database, "run", "u", "v", now))

	id, err := InsertClip(database, Clip{RunID: "run", SegmentIndex: 0, Topic: "Intro", StartSeconds: 7, EndSeconds: 23, Path: "clips/Intro.mp4"})
	require.NoError(t, err)

	c, err := SelectClipByID(database, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, c.Status)
	assert.Nil(t, c.StartedAt)
	assert.Equal(t, 16.0, c.Duration())

	require.NoError(t, MarkClipProcessing(database, id, now))
	require.NoError(t, MarkClipComplete(database, id, now.Add(time.Second), "ffmpeg-go", 1234))
	require.NoError(t, UpdateClipOutputs(database, id, "clips/Intro_vertical.mp4", ""))
	require.NoError(t, UpdateClipOutputs(database, id, "", "clips/Intro/Intro.srt"))

	c, err = SelectClipByID(database, id)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, c.Status)
	assert.Equal(t, "ffmpeg-go", c.Encoder)
	assert.Equal(t, int64(1234), c.Filesize)
	require.NotNil(t, c.StartedAt)
	require.NotNil(t, c.FinishedAt)
	assert.Nil(t, c.ErrorAt)
	assert.Equal(t, "clips/Intro_vertical.mp4", c.VerticalPath)
	assert.Equal(t, "clips/Intro/Intro.srt", c.CaptionPath)

	id2, err := InsertClip(database, Clip{RunID: "run", SegmentIndex: 1, Topic: "Outro", StartSeconds: 50, EndSeconds: 60})
	require.NoError(t, err)
	require.NoError(t, MarkClipError(database, id2, now, "ffmpeg not found"))

	clips, err := SelectClips(database, "run", 0)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "Intro", clips[0].Topic)
	assert.Equal(t, StatusError, clips[1].Status)
	assert.Equal(t, "ffmpeg not found", clips[1].Error)

	recent, err := SelectClips(database, "", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, id2, recent[0].ID)

	run, err := SelectRunByID(database, "run")
	require.NoError(t, err)
	assert.Equal(t, 1, run.ClipCount)
}

func TestClipRequiresRun(t *testing.T) {
	database, _ := openTestDB(t)
	_, err := InsertClip(database, Clip{RunID: "nope", StartSeconds: 0, EndSeconds: 1})
	assert.Error(t, err)
}

func TestLedgerRecordsSplitterEvents(t *testing.T) {
	database, _ := openTestDB(t)
	tick := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	l, err := StartRun(database, "run", "https://youtu.be/x", "x")
	require.NoError(t, err)
	l.Now = func() time.Time { tick = tick.Add(time.Second); return tick }

	var _ clip.Recorder = l

	seg := segment.Segment{Topic: "Hook", StartTime: "0:10", EndTime: "0:20", ContentType: "funny", ViralPotential: "HIGH"}
	require.NoError(t, l.ClipSkipped(0, seg, clip.Range{Start: 47, End: 43, RequestedEnd: 43}, clip.SkipEmpty))

	id, err := l.ClipStarted(1, seg, "clips/Hook.mp4", clip.Range{Start: 7, End: 23, RequestedEnd: 23})
	require.NoError(t, err)
	require.NoError(t, l.ClipFinished(id, "ffmpeg", 99))
	require.NoError(t, l.ClipOutputs(id, "clips/Hook_vertical.mp4", "clips/Hook/Hook.srt"))

	failed, err := l.ClipStarted(2, seg, "clips/Hook_1.mp4", clip.Range{Start: 7, End: 23, RequestedEnd: 23})
	require.NoError(t, err)
	require.NoError(t, l.ClipFailed(failed, "exit status 1"))

	require.NoError(t, l.RunSource("downloads/x.mp4"))
	require.NoError(t, l.RunFinished(errors.New("segment 3: encode failed")))

	clips, err := SelectClips(database, "run", 0)
	require.NoError(t, err)
	require.Len(t, clips, 3)

	assert.Equal(t, StatusSkipped, clips[0].Status)
	assert.Equal(t, clip.SkipEmpty.String(), clips[0].Error)
	assert.Equal(t, 43.0, clips[0].EndSeconds)

	assert.Equal(t, StatusComplete, clips[1].Status)
	assert.Equal(t, "funny", clips[1].ContentType)
	assert.Equal(t, "HIGH", clips[1].ViralPotential)
	assert.Equal(t, "clips/Hook_vertical.mp4", clips[1].VerticalPath)

	assert.Equal(t, StatusError, clips[2].Status)
	assert.Equal(t, "exit status 1", clips[2].Error)

	run, err := SelectRunByID(database, "run")
	require.NoError(t, err)
	assert.Equal(t, "downloads/x.mp4", run.SourcePath)
	assert.Equal(t, "segment 3: encode failed", run.Error)
	assert.Equal(t, 1, run.ClipCount)
}

func TestRetryQueue(t *testing.T) {
	database, _ := openTestDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertRun(database, "run", "u", "v", now))
	require.NoError(t, InsertRun(database, "other", "u", "w", now))

	q := &RetryQueue{DB: database, RunID: "run"}
	p, err := q.Next()
	require.NoError(t, err)
	assert.Nil(t, p, "run without source has nothing to retry")

	require.NoError(t, UpdateRunSource(database, "run", "downloads/v.mp4"))

	done, err := InsertClip(database, Clip{RunID: "run", Topic: "done", StartSeconds: 1, EndSeconds: 2, Path: "a.mp4"})
	require.NoError(t, err)
	require.NoError(t, MarkClipComplete(database, done, now, "ffmpeg", 1))

	failed, err := InsertClip(database, Clip{RunID: "run", Topic: "failed", StartSeconds: 5, EndSeconds: 9, Path: "b.mp4"})
	require.NoError(t, err)
	require.NoError(t, MarkClipError(database, failed, now, "exit status 1"))

	_, err = InsertClip(database, Clip{RunID: "run", Topic: "skipped", Status: StatusSkipped})
	require.NoError(t, err)
	pending, err := InsertClip(database, Clip{RunID: "run", Topic: "pending", StartSeconds: 10, EndSeconds: 20, Path: "c.mp4"})
	require.NoError(t, err)

	p, err = q.Next()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, clip.Pending{ID: failed, Source: "downloads/v.mp4", Output: "b.mp4", Start: 5, End: 9}, *p)

	require.NoError(t, q.MarkProcessing(failed))
	require.NoError(t, q.MarkComplete(failed, "ffmpeg-go", 42))

	p, err = q.Next()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, pending, p.ID)
	require.NoError(t, q.MarkError(pending, "still broken"))

	// A clip that failed again is not handed out twice.
	p, err = q.Next()
	require.NoError(t, err)
	assert.Nil(t, p)

	c, err := SelectClipByID(database, failed)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, c.Status)
	assert.Empty(t, c.Error)
	assert.Nil(t, c.ErrorAt)
}
