package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/shorts-clipper-cli/segment"
)

var segs = []segment.Segment{
	{Topic: "Hook", StartTime: "0:10", EndTime: "0:20", ViralPotential: "HIGH", ContentType: "funny"},
	{Topic: "Middle", StartTime: "1:00", EndTime: "1:30"},
	{Topic: "End", StartTime: "2:00", EndTime: "2:20"},
}

func TestSegmentLabel(t *testing.T) {
	assert.Equal(t, "0:10-0:20  Hook [HIGH] (funny)", SegmentLabel(segs[0]))
	assert.Equal(t, "1:00-1:30  Middle", SegmentLabel(segs[1]))
}

func TestNewSegmentPickerPreselects(t *testing.T) {
	var idx []int
	form := NewSegmentPicker(segs, &idx)
	require.NotNil(t, form)
	assert.Equal(t, []int{0, 1, 2}, idx)
}

func TestSelected(t *testing.T) {
	got := Selected(segs, []int{2, 0, 7})
	require.Len(t, got, 2)
	assert.Equal(t, "Hook", got[0].Topic)
	assert.Equal(t, "End", got[1].Topic)
	assert.Empty(t, Selected(segs, nil))
}

func TestNewConfirmForm(t *testing.T) {
	ok := true
	assert.NotNil(t, NewConfirmForm("Overwrite?", "", &ok))
}
