package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// FormatClock formats seconds as M:SS, the form transcript snippets use.
// From one hour on it switches to H:MM:SS, so every result parses back with
// ToSeconds and stays within the segment timestamp pattern.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	if totalSeconds >= 3600 {
		return FormatTime(seconds)
	}
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// FormatSRT formats a duration as an SRT timestamp (HH:MM:SS,mmm).
func FormatSRT(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3600000
	mins := (ms % 3600000) / 60000
	secs := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, mins, secs, millis)
}

// ToSeconds converts an M:SS, MM:SS or H:MM:SS timestamp to whole seconds.
// Uses the token count: 2 tokens = M:S, 3 tokens = H:M:S. Any other count
// falls back to parsing the whole string as an integer.
func ToSeconds(timeStr string) (int, error) {
	timeStr = strings.TrimSpace(timeStr)
	parts := strings.Split(timeStr, ":")

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1], nil
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2], nil
	}

	n, err := strconv.Atoi(timeStr)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
	}
	return n, nil
}

// Seconds converts float seconds to a time.Duration, rounded to the nearest
// nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
