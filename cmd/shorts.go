package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/user/shorts-clipper-cli/captions"
	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/media"
	"github.com/user/shorts-clipper-cli/pipeline"
	"github.com/user/shorts-clipper-cli/shorts"
	"github.com/user/shorts-clipper-cli/youtube"
)

var shortsCmd = &cobra.Command{
	Use:   "shorts <clip>...",
	Short: "Crop clips to 9:16 vertical video",
	Long: `Write name_vertical.mp4 next to each clip. The crop window is centred on
the largest face found in the first sampled frames (pigo cascade from
--cascade or shorts.cascade_file), or on the frame centre.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cascade, _ := cmd.Flags().GetString("cascade")
		if cascade == "" {
			cascade = cfg.Shorts.CascadeFile
		}
		conv, err := newConverter(cascade)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		var errs []error
		for _, in := range args {
			out := shorts.VerticalPath(in)
			crop, err := conv.Convert(ctx, in, out)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Printf("✗ %s: %v\n", in, err)
				errs = append(errs, fmt.Errorf("%s: %w", in, err))
				continue
			}
			how := "centre"
			if crop.FaceFound {
				how = "face"
			}
			fmt.Printf("✓ %s (%dx%d at x=%d, %s)\n", out, crop.Width, crop.Height, crop.X, how)
		}
		return errors.Join(errs...)
	},
}

var captionsCmd = &cobra.Command{
	Use:   "captions",
	Short: "Write SRT captions for segments and optionally burn them in",
	Long: `For each segment in --segments, write <output-dir>/<name>/<name>.srt from
the transcript lines that overlap the padded clip range. With --burn the
captions are drawn into <name>.mp4 (or <name>_vertical.mp4 when present),
producing a *_captioned.mp4 file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		segmentsFile, _ := cmd.Flags().GetString("segments")
		transcriptFile, _ := cmd.Flags().GetString("transcript")
		source, _ := cmd.Flags().GetString("source")
		burn, _ := cmd.Flags().GetBool("burn")

		segs, err := pipeline.ReadSegments(segmentsFile)
		if err != nil {
			return err
		}
		snips, err := youtube.LoadTranscript(transcriptFile)
		if err != nil {
			return err
		}

		// Without a source the end of the video is unknown and ranges are not clamped.
		duration := 1e9
		if source != "" {
			info, err := media.Probe(source)
			if err != nil {
				return fmt.Errorf("failed to load video: %w", err)
			}
			duration = info.Duration
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		var errs []error
		for i, seg := range segs {
			r, reason, err := clip.Plan(seg.StartTime, seg.EndTime, cfg.PadSeconds, duration)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i+1, err)
			}
			if reason != clip.NoSkip {
				logger.Info("skipping segment", "segment", i+1, "reason", reason.String())
				continue
			}

			base := clip.BaseName(seg, cfg.MaxNameLength)
			cues := captions.ForRange(snips, r.Start, r.End)
			if len(cues) == 0 {
				logger.Info("no transcript lines in segment", "segment", i+1, "topic", seg.Topic)
				continue
			}
			srt, err := captions.WriteFile(cfg.OutputDir, base, cues)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s (%d cues)\n", srt, len(cues))

			if !burn {
				continue
			}
			video := filepath.Join(cfg.OutputDir, base+".mp4")
			if v := shorts.VerticalPath(video); fileExists(v) {
				video = v
			}
			if !fileExists(video) {
				logger.Warn("clip not found, not burning", "clip", video)
				continue
			}
			out := captions.CaptionedPath(video)
			if err := captions.Burn(ctx, video, srt, out, cfg.Captions); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				errs = append(errs, err)
				fmt.Printf("✗ %s: %v\n", video, err)
				continue
			}
			fmt.Printf("✓ %s\n", out)
		}
		return errors.Join(errs...)
	},
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func init() {
	shortsCmd.Flags().String("cascade", "", "pigo face cascade file")

	captionsCmd.Flags().String("segments", "", "segments JSON file")
	captionsCmd.Flags().String("transcript", "", "transcript JSON file")
	captionsCmd.Flags().String("source", "", "source video, used to clamp ranges to its length")
	captionsCmd.Flags().Bool("burn", false, "burn the captions into the matching clips")
	captionsCmd.MarkFlagRequired("segments")
	captionsCmd.MarkFlagRequired("transcript")

	rootCmd.AddCommand(shortsCmd)
	rootCmd.AddCommand(captionsCmd)
}
