package captions

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"github.com/user/shorts-clipper-cli/media"
)

// Style is the libass force_style applied when burning captions.
type Style struct {
	FontName string `yaml:"font_name"`
	FontSize int    `yaml:"font_size"`
	Bold     bool   `yaml:"bold"`
	MarginV  int    `yaml:"margin_v"`
	Outline  int    `yaml:"outline"`
	Shadow   int    `yaml:"shadow"`
}

// DefaultStyle is bold bottom-centred text sized for vertical video.
func DefaultStyle() Style {
	return Style{
		FontName: "Arial",
		FontSize: 12,
		Bold:     true,
		MarginV:  40,
		Outline:  2,
		Shadow:   1,
	}
}

// ForceStyle renders s as a force_style value.
func (s Style) ForceStyle() string {
	bold := 0
	if s.Bold {
		bold = 1
	}
	return fmt.Sprintf("Fontsize=%d,Fontname=%s,Bold=%d,MarginV=%d,Outline=%d,Shadow=%d,Alignment=2",
		s.FontSize, s.FontName, bold, s.MarginV, s.Outline, s.Shadow)
}

// Filter returns the subtitles filter that burns srt with style.
func Filter(srt string, style Style) string {
	return fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(srt), style.ForceStyle())
}

// Burn re-encodes video with the captions in srt drawn into the picture.
func Burn(ctx context.Context, video, srt, out string, style Style) error {
	var stderr bytes.Buffer
	stream := ffmpeg.Input(video).
		Output(out, ffmpeg.KwArgs{
			"vf":     Filter(srt, style),
			"c:v":    "libx264",
			"c:a":    "aac",
			"preset": "fast",
		}).
		OverWriteOutput().
		WithErrorOutput(&stderr)

	if err := media.RunStream(ctx, stream); err != nil {
		if ctx.Err() != nil {
			return err
		}
		lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
		return fmt.Errorf("burn caption failed: %w: %s", err, lines[len(lines)-1])
	}
	return nil
}

// CaptionedPath returns name_captioned.mp4 next to video.
func CaptionedPath(video string) string {
	ext := filepath.Ext(video)
	return strings.TrimSuffix(video, ext) + "_captioned.mp4"
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter argument.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "\\'")
	return path
}
