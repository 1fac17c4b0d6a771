package youtube

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/shorts-clipper-cli/media"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?feature=share&v=abc123", "abc123"},
		{"https://youtu.be/dQw4w9WgXcQ?si=xyz", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/aBcDeF", "aBcDeF"},
		{"https://music.youtube.com/watch?v=music1", "music1"},
		{"  https://youtu.be/trimmed  ", "trimmed"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	for _, raw := range []string{
		"https://vimeo.com/12345",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/embed/",
		"https://www.youtube.com/channel/UC123",
		"not a url",
		"",
	} {
		_, err := ExtractVideoID(raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", WatchURL("abc"))
}

const manualVTT = "\ufeffWEBVTT\nKind: captions\nLanguage: en\n\n" +
	"NOTE this block is ignored\n00:00:99.000 --> nonsense\n\n" +
	"1\n00:00:01.000 --> 00:00:04.500\nHello &amp; welcome\nto the show\n\n" +
	"2\n00:01:05.250 --> 00:01:07.000 align:start position:0%\n<c.colorE5E5E5>Second</c> line\n\n" +
	"01:00:00.000 --> 01:00:02.000\n\n"

func TestParseVTT(t *testing.T) {
	snips, err := ParseVTT(strings.NewReader(manualVTT))
	require.NoError(t, err)
	require.Len(t, snips, 2)

	assert.Equal(t, "Hello & welcome to the show", snips[0].Text)
	assert.Equal(t, 1.0, snips[0].Start)
	assert.Equal(t, 4.5, snips[0].End)
	assert.Equal(t, 3.5, snips[0].Duration)
	assert.Equal(t, "0:01", snips[0].Timestamp)
	assert.Equal(t, "0:01 - 0:04", snips[0].TimeRange)

	assert.Equal(t, "Second line", snips[1].Text)
	assert.InDelta(t, 65.25, snips[1].Start, 1e-9)
	assert.Equal(t, "1:05 - 1:07", snips[1].TimeRange)
}

// Auto-generated captions repeat the previous line at the top of each cue
// and use a single space as an empty line.
const rollingVTT = "WEBVTT\nKind: captions\nLanguage: en\n\n" +
	"00:00:00.000 --> 00:00:02.000 align:start position:0%\n \n" +
	"so<00:00:00.500><c> today</c><00:00:01.000><c> we</c>\n\n" +
	"00:00:02.000 --> 00:00:02.010 align:start position:0%\nso today we\n \n\n" +
	"00:00:02.010 --> 00:00:04.000 align:start position:0%\nso today we\n" +
	"are<00:00:02.500><c> talking</c><00:00:03.000><c> about</c><00:00:03.500><c> go</c>\n\n" +
	"00:00:04.000 --> 00:00:04.010 align:start position:0%\nare talking about go\n \n"

func TestParseVTTDropsRollingRepeats(t *testing.T) {
	snips, err := ParseVTT(strings.NewReader(rollingVTT))
	require.NoError(t, err)
	require.Len(t, snips, 2)
	assert.Equal(t, "so today we", snips[0].Text)
	assert.Equal(t, "are talking about go", snips[1].Text)
	assert.Equal(t, 2.01, snips[1].Start)
}

func TestParseVTTShortTimestamps(t *testing.T) {
	snips, err := ParseVTT(strings.NewReader("WEBVTT\n\n01:02.000 --> 01:03.500\nshort form\n"))
	require.NoError(t, err)
	require.Len(t, snips, 1)
	assert.Equal(t, 62.0, snips[0].Start)
	assert.Equal(t, 63.5, snips[0].End)
}

func TestTranscriptRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.json")
	in := []Snippet{NewSnippet("hi", 0, 1.5), NewSnippet("there", 61, 63)}
	require.NoError(t, SaveTranscript(path, in))

	out, err := LoadTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"time_range": "1:01 - 1:03"`)
}

// outputDir returns the directory of yt-dlp's -o template.
func outputDir(args []string) string {
	for i, a := range args {
		if a == "-o" {
			return filepath.Dir(args[i+1])
		}
	}
	return ""
}

func TestFetchTranscript(t *testing.T) {
	var gotArgs []string
	c := &Client{
		Binary: "yt-dlp-test",
		Run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			assert.Equal(t, "yt-dlp-test", name)
			gotArgs = args
			dir := outputDir(args)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.en.vtt"), []byte(manualVTT), 0644))
			return nil, nil
		},
	}

	snips, err := c.FetchTranscript(context.Background(), "abc")
	require.NoError(t, err)
	assert.Len(t, snips, 2)
	assert.Contains(t, gotArgs, "--skip-download")
	assert.Contains(t, gotArgs, "--write-auto-sub")
	assert.Contains(t, gotArgs, "vtt")
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", gotArgs[len(gotArgs)-1])

	// Temporary subtitle directory is removed.
	_, err = os.Stat(outputDir(gotArgs))
	assert.True(t, os.IsNotExist(err))
}

func TestFetchTranscriptNone(t *testing.T) {
	c := &Client{Run: func(context.Context, string, ...string) ([]byte, error) { return nil, nil }}
	_, err := c.FetchTranscript(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestFetchTranscriptRunError(t *testing.T) {
	c := &Client{Run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("Video unavailable")
	}}
	_, err := c.FetchTranscript(context.Background(), "abc")
	assert.ErrorContains(t, err, "Video unavailable")
}

func TestDownloadUsesPrintedPath(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "My Talk.mp4")

	c := &Client{
		Dir: dir,
		Run: func(_ context.Context, _ string, args ...string) ([]byte, error) {
			assert.Contains(t, args, "best[ext=mp4]/best")
			assert.Contains(t, args, "after_move:filepath")
			require.NoError(t, os.WriteFile(want, []byte("v"), 0644))
			return []byte("[download] 100%\n" + want + "\n"), nil
		},
	}

	got, err := c.Download(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDownloadFallsBackToDirectoryScan(t *testing.T) {
	dir := t.TempDir()
	c := &Client{
		Dir: dir,
		Run: func(context.Context, string, ...string) ([]byte, error) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "video.webm"), []byte("v"), 0644))
			return []byte("/somewhere/else.mp4\n"), nil
		},
	}

	got, err := c.Download(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "video.webm"), got)
}

func TestDownloadNothingWritten(t *testing.T) {
	c := &Client{
		Dir: t.TempDir(),
		Run: func(context.Context, string, ...string) ([]byte, error) { return nil, nil },
	}
	_, err := c.Download(context.Background(), "abc")
	assert.ErrorIs(t, err, media.ErrMissingSource)
}
