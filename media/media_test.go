package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindSourcePicksFirstVideoInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "b-talk.MKV"))
	touch(t, filepath.Join(dir, "c-talk.mp4"))
	touch(t, filepath.Join(dir, "clips", "a-clip.mp4"))

	got, err := FindSource(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b-talk.MKV"), got)
}

func TestFindSourceMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.md"))

	_, err := FindSource(dir, nil)
	assert.True(t, errors.Is(err, ErrMissingSource))

	_, err = FindSource(filepath.Join(dir, "nope"), nil)
	assert.True(t, errors.Is(err, ErrMissingSource))
}

func TestFindSourceCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp4"))
	touch(t, filepath.Join(dir, "b.ts"))

	got, err := FindSource(dir, []string{".ts"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.ts"), got)
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio", "duration": "99.0"},
			{"codec_type": "video", "width": 1920, "height": 1080, "duration": "100.4"}
		],
		"format": {"duration": "100.500000"}
	}`)

	info, err := ParseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, Info{Duration: 100.5, Width: 1920, Height: 1080}, info)
}

func TestParseProbeFallsBackToStreamDuration(t *testing.T) {
	data := []byte(`{"streams": [{"codec_type": "video", "width": 640, "height": 360, "duration": "12.25"}], "format": {}}`)

	info, err := ParseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, 12.25, info.Duration)
}

func TestParseProbeErrors(t *testing.T) {
	_, err := ParseProbe([]byte(`{"streams": [{"codec_type": "audio"}], "format": {"duration": "3"}}`))
	assert.Error(t, err)

	_, err = ParseProbe([]byte(`{"streams": [{"codec_type": "video", "width": 1, "height": 1}], "format": {}}`))
	assert.Error(t, err)

	_, err = ParseProbe([]byte(`not json`))
	assert.Error(t, err)
}
