package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/shorts-clipper-cli/config"
	"github.com/user/shorts-clipper-cli/db"
)

func TestWriteClipTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clips := []db.Clip{
		{ID: 1, Topic: "Hook", StartSeconds: 7, EndSeconds: 23, Status: db.StatusComplete, Filesize: 2_500_000,
			VerticalPath: "v.mp4", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, Topic: strings.Repeat("long topic ", 10), StartSeconds: 47, EndSeconds: 43, Status: db.StatusSkipped,
			CreatedAt: now.Add(-2 * time.Hour)},
	}

	var buf bytes.Buffer
	writeClipTable(&buf, clips, now)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "0:07")
	assert.Contains(t, lines[2], "16.0s")
	assert.Contains(t, lines[2], "complete+v")
	assert.Contains(t, lines[2], "2.5 MB")
	assert.Contains(t, lines[2], "2 hours ago")
	assert.Contains(t, lines[3], "skipped")
	assert.Contains(t, lines[3], "...")
}

func TestRenditionPath(t *testing.T) {
	c := &db.Clip{ID: 3, Path: "a.mp4", VerticalPath: "a_vertical.mp4", Status: db.StatusComplete}

	p, err := renditionPath(c, false, false)
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", p)

	p, err = renditionPath(c, true, false)
	require.NoError(t, err)
	assert.Equal(t, "a_vertical.mp4", p)

	_, err = renditionPath(c, false, true)
	assert.ErrorContains(t, err, "no captioned version")

	_, err = renditionPath(&db.Clip{ID: 4, Status: db.StatusSkipped}, false, false)
	assert.ErrorContains(t, err, "skipped")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestAPIKeyEnv(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", apiKeyEnv(config.ProviderOpenAI))
	assert.Contains(t, apiKeyEnv(config.ProviderGemini), "GEMINI_API_KEY")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, "", map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSON(nil, path, []string{"x"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"x\"\n]\n", string(data))
}

func TestSetupAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	require.NoError(t, rootCmd.ParseFlags([]string{
		"--download-dir", filepath.Join(dir, "media"),
		"--env-file", filepath.Join(dir, ".env"),
	}))
	t.Cleanup(func() {
		for name, def := range map[string]string{"download-dir": "", "env-file": ".env"} {
			f := rootCmd.Flags().Lookup(name)
			f.Value.Set(def)
			f.Changed = false
		}
	})

	require.NoError(t, setup(rootCmd, nil))
	assert.Equal(t, filepath.Join(dir, "media"), cfg.DownloadDir)
	assert.Equal(t, filepath.Join(dir, "media", "clips"), cfg.OutputDir)
	assert.NotNil(t, logger)
}

type stubRunLedger struct {
	sourceErr error
	source    string
	finished  bool
	runErr    error
}

func (l *stubRunLedger) RunSource(path string) error {
	l.source = path
	return l.sourceErr
}

func (l *stubRunLedger) RunFinished(err error) error {
	l.finished = true
	l.runErr = err
	return nil
}

func TestFinishSplitRun(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Warn})

	l := &stubRunLedger{sourceErr: errors.New("database is locked")}
	splitErr := errors.New("stopped")
	finishSplitRun(l, "/videos/talk.mp4", splitErr, log)

	assert.Equal(t, "/videos/talk.mp4", l.source)
	assert.True(t, l.finished)
	assert.Equal(t, splitErr, l.runErr)
	assert.Contains(t, buf.String(), "recording run source failed")
	assert.Contains(t, buf.String(), "database is locked")

	buf.Reset()
	l = &stubRunLedger{}
	finishSplitRun(l, "", nil, log)
	assert.Empty(t, l.source)
	assert.True(t, l.finished)
	assert.Empty(t, buf.String())
}
