package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderInfoBoxWidth(t *testing.T) {
	box := RenderInfoBox("Run", []string{"short", strings.Repeat("x", 80)}, 30)
	lines := strings.Split(box, "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, 30, lipgloss.Width(l))
	}
	assert.Contains(t, lines[0], "Run")
	assert.Empty(t, RenderInfoBox("Run", nil, 3))
}

func TestPadToWidth(t *testing.T) {
	assert.Equal(t, "ab  ", PadToWidth("ab", 4))
	assert.Equal(t, "abcd", PadToWidth("abcdef", 4))
	assert.Equal(t, "", PadToWidth("abc", 0))
}

func TestProgress(t *testing.T) {
	out := Progress(ProgressState{Stage: "split", Message: "Hook", Current: 1, Total: 4, Finished: []string{"download"}}, 40)
	assert.Contains(t, out, "split")
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "1/4")
	assert.Contains(t, out, "download")

	out = Progress(ProgressState{Stage: "segment", Message: "asking model"}, 40)
	assert.NotContains(t, out, "%")

	out = Progress(ProgressState{Err: errors.New("boom")}, 40)
	assert.Contains(t, out, "boom")

	assert.Empty(t, Progress(ProgressState{}, 5))
}
