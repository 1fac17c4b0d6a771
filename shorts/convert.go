package shorts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"github.com/user/shorts-clipper-cli/media"
)

// Converter turns a clip into a 9:16 vertical video.
type Converter struct {
	// Detector finds faces in sampled frames. When nil the frame centre is used.
	Detector FaceDetector
	// SampleFrames caps how many leading frames are searched for a face.
	SampleFrames int

	// Probe, Sample and Encode default to the ffmpeg-backed implementations.
	Probe  func(path string) (media.Info, error)
	Sample func(ctx context.Context, path string, w, h, n int) ([][]uint8, error)
	Encode func(ctx context.Context, in, out string, c Crop) error

	Logger hclog.Logger
}

// Convert writes a vertical copy of in to out. The crop window is computed
// once, from the first sampled frame that contains a face, and applied to
// every frame.
func (c *Converter) Convert(ctx context.Context, in, out string) (Crop, error) {
	log := c.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	probe := c.Probe
	if probe == nil {
		probe = media.Probe
	}
	info, err := probe(in)
	if err != nil {
		return Crop{}, fmt.Errorf("failed to load clip: %w", err)
	}

	// Fail before decoding any frames if the window cannot fit.
	if _, err := Window(info.Width, info.Height, 0, false); err != nil {
		return Crop{}, err
	}

	centerX, found := c.locateFace(ctx, in, info, log)

	crop, err := Window(info.Width, info.Height, centerX, found)
	if err != nil {
		return Crop{}, err
	}
	if found {
		log.Debug("face found", "path", in, "center_x", centerX, "crop_x", crop.X)
	} else {
		log.Info("no face detected, using frame centre", "path", in)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Crop{}, fmt.Errorf("create output dir: %w", err)
	}

	encode := c.Encode
	if encode == nil {
		encode = EncodeCrop
	}
	if err := encode(ctx, in, out, crop); err != nil {
		return Crop{}, err
	}
	return crop, nil
}

// locateFace returns the horizontal centre of the largest face in the first
// sampled frame that has one.
func (c *Converter) locateFace(ctx context.Context, in string, info media.Info, log hclog.Logger) (float64, bool) {
	if c.Detector == nil {
		return 0, false
	}

	sample := c.Sample
	if sample == nil {
		sample = SampleFrames
	}
	n := c.SampleFrames
	if n <= 0 {
		n = DefaultSampleFrames
	}

	frames, err := sample(ctx, in, info.Width, info.Height, n)
	if err != nil {
		log.Warn("frame sampling failed, using frame centre", "path", in, "error", err)
		return 0, false
	}

	for i, frame := range frames {
		if face, ok := Largest(c.Detector.Detect(frame, info.Width, info.Height)); ok {
			log.Debug("face detected", "frame", i, "col", face.Col, "scale", face.Scale, "q", face.Q)
			return face.CenterX(), true
		}
	}
	return 0, false
}

// EncodeCrop re-encodes in through the fixed crop window with libx264/aac.
func EncodeCrop(ctx context.Context, in, out string, c Crop) error {
	var stderr bytes.Buffer
	stream := ffmpeg.Input(in).
		Output(out, ffmpeg.KwArgs{
			"vf":  c.Filter(),
			"c:v": "libx264",
			"c:a": "aac",
		}).
		OverWriteOutput().
		WithErrorOutput(&stderr)

	if err := media.RunStream(ctx, stream); err != nil {
		if ctx.Err() != nil {
			return err
		}
		lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
		return fmt.Errorf("vertical crop failed: %w: %s", err, lines[len(lines)-1])
	}
	return nil
}

// VerticalPath returns the conventional output path for a clip's vertical
// version: name_vertical.mp4 next to the clip.
func VerticalPath(clipPath string) string {
	ext := filepath.Ext(clipPath)
	return strings.TrimSuffix(clipPath, ext) + "_vertical.mp4"
}
