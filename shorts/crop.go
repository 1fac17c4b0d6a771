// Package shorts converts landscape clips to 9:16 vertical video, centring a
// fixed crop window on the largest face found near the start of the clip.
package shorts

import (
	"errors"
	"fmt"
)

// ErrTooNarrow is returned when the source cannot fit a 9:16 window.
var ErrTooNarrow = errors.New("video is too narrow for 9:16 crop")

// Crop is a fixed crop window in source pixels.
type Crop struct {
	X      int
	Y      int
	Width  int
	Height int
	// FaceFound is false when the window fell back to the frame centre.
	FaceFound bool
}

// Filter returns the ffmpeg crop filter expression for c.
func (c Crop) Filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

// TargetWidth is the 9:16 width for height, rounded down to an even number
// so libx264 accepts it.
func TargetWidth(height int) int {
	w := height * 9 / 16
	return w - w%2
}

// Window computes the full-height crop for a width x height frame, centred on
// faceCenterX when found is true and on the frame centre otherwise. The window
// never leaves the frame.
func Window(width, height int, faceCenterX float64, found bool) (Crop, error) {
	if width <= 0 || height <= 0 {
		return Crop{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	target := TargetWidth(height)
	if width < target {
		return Crop{}, fmt.Errorf("%w: %dx%d needs at least %d px width", ErrTooNarrow, width, height, target)
	}

	center := float64(width) / 2
	if found {
		center = faceCenterX
	}

	x := int(center) - target/2
	if x < 0 {
		x = 0
	}
	if max := width - target; x > max {
		x = max
	}

	return Crop{X: x, Y: 0, Width: target, Height: height, FaceFound: found}, nil
}
