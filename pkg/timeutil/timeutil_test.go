package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"01:02:03", 3723},
		{"1:02:03", 3723},
		{"02:05", 125},
		{"2:05", 125},
		{"0:00", 0},
		{"59:59", 3599},
		{"45", 45},
		{" 1:30 ", 90},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToSeconds(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToSecondsRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "a:b", "1:2:3:4", "1.5", "one"} {
		_, err := ToSeconds(in)
		assert.Error(t, err, in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "1:05", FormatClock(65.9))
	assert.Equal(t, "59:59", FormatClock(3599))
	assert.Equal(t, "1:02:03", FormatClock(3723))
	assert.Equal(t, "1:45:00", FormatClock(6300))
	assert.Equal(t, "0:00", FormatClock(-4))

	for _, sec := range []float64{59, 3599, 3600, 6300, 36000} {
		back, err := ToSeconds(FormatClock(sec))
		require.NoError(t, err)
		assert.Equal(t, int(sec), back)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:01:30", FormatTime(90))
	assert.Equal(t, "1:11:22", FormatTime(4282))
}

func TestFormatSRT(t *testing.T) {
	assert.Equal(t, "00:00:00,000", FormatSRT(0))
	assert.Equal(t, "00:01:02,500", FormatSRT(62500*time.Millisecond))
	assert.Equal(t, "01:00:00,042", FormatSRT(time.Hour+42*time.Millisecond))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
	assert.Equal(t, 2010*time.Millisecond, Seconds(2.01))
	assert.Equal(t, "00:00:02,010", FormatSRT(Seconds(2.01)))
}
