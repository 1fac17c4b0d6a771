package shorts

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"github.com/user/shorts-clipper-cli/media"
)

// DefaultSampleFrames is the number of leading frames searched for a face.
const DefaultSampleFrames = 30

// SampleFrames decodes up to n leading frames of path as 8-bit grayscale
// w x h images.
func SampleFrames(ctx context.Context, path string, w, h, n int) ([][]uint8, error) {
	if n <= 0 {
		n = DefaultSampleFrames
	}

	var out, stderr bytes.Buffer
	stream := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"format":   "rawvideo",
			"pix_fmt":  "gray",
			"frames:v": n,
		}).
		WithOutput(&out).
		WithErrorOutput(&stderr)

	if err := media.RunStream(ctx, stream); err != nil {
		return nil, fmt.Errorf("sample frames: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return splitFrames(out.Bytes(), w, h, n), nil
}

// splitFrames cuts a rawvideo gray buffer into whole frames, dropping any
// trailing partial frame.
func splitFrames(data []byte, w, h, n int) [][]uint8 {
	size := w * h
	if size <= 0 {
		return nil
	}

	var frames [][]uint8
	for off := 0; off+size <= len(data) && len(frames) < n; off += size {
		frames = append(frames, data[off:off+size])
	}
	return frames
}
