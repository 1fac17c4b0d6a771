package cmd

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/db"
	"github.com/user/shorts-clipper-cli/pipeline"
	"github.com/user/shorts-clipper-cli/youtube"
)

var downloadCmd = &cobra.Command{
	Use:   "download <youtube-url>",
	Short: "Download a video into the download directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ExtractVideoID(args[0])
		if err != nil {
			return err
		}
		yt, err := youtubeClient()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		path, err := yt.Download(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Video downloaded: %s\n", path)
		return nil
	},
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Cut clips from a local video using a segments file",
	Long: `Cut one clip per segment in --segments out of --source, or out of the
first video file in the download directory. Each segment is padded by
pad_seconds on both sides and clamped to the video length.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		segmentsFile, _ := cmd.Flags().GetString("segments")
		source, _ := cmd.Flags().GetString("source")

		segs, err := pipeline.ReadSegments(segmentsFile)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		sp := newSplitter()
		sp.Source = source
		sp.Progress = func(done, total int, name string) {
			logger.Debug("segment handled", "progress", fmt.Sprintf("%d/%d", done, total), "topic", name)
		}

		var ledger *db.Ledger
		if database, err := openDB(); err != nil {
			logger.Warn("run ledger disabled", "error", err)
		} else {
			defer database.Close()
			if ledger, err = db.StartRun(database, pipeline.NewRunID(), "", ""); err != nil {
				logger.Warn("run ledger disabled", "error", err)
				ledger = nil
			} else {
				sp.Recorder = ledger
			}
		}

		results, splitErr := sp.Split(ctx, segs)
		if ledger != nil {
			src, _ := sp.ResolveSource()
			finishSplitRun(ledger, src, splitErr, logger)
		}

		for _, r := range results {
			fmt.Printf("✓ %s (%.1fs, %s)\n", r.Path, r.Range.Duration(), r.Encoder)
		}
		fmt.Printf("\n%d of %d segment(s) written to %s\n", len(results), len(segs), cfg.OutputDir)

		var encErr *clip.EncodeError
		if errors.As(splitErr, &encErr) {
			return fmt.Errorf("stopped at segment %d: %w", encErr.Index+1, encErr.Err)
		}
		return splitErr
	},
}

// runLedger is the part of the run ledger the split command reports to.
type runLedger interface {
	RunSource(path string) error
	RunFinished(err error) error
}

// finishSplitRun records the source and outcome of a split run. clips retry
// re-cuts from the recorded source, so a failed write is logged.
func finishSplitRun(l runLedger, source string, splitErr error, log hclog.Logger) {
	if source != "" {
		if err := l.RunSource(source); err != nil {
			log.Warn("recording run source failed, clips retry will skip this run", "error", err)
		}
	}
	if err := l.RunFinished(splitErr); err != nil {
		log.Warn("recording run outcome failed", "error", err)
	}
}

func init() {
	splitCmd.Flags().String("segments", "", "segments JSON file")
	splitCmd.Flags().String("source", "", "video to cut (default: first video in the download dir)")
	splitCmd.MarkFlagRequired("segments")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(splitCmd)
}
