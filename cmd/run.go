package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/user/shorts-clipper-cli/pipeline"
	"github.com/user/shorts-clipper-cli/tui"
	"github.com/user/shorts-clipper-cli/tui/forms"
	"github.com/user/shorts-clipper-cli/tui/styles"
)

var runCmd = &cobra.Command{
	Use:   "run <youtube-url>",
	Short: "Run the full pipeline for a video",
	Long: `Fetch the transcript, find segments with the configured LLM, download the
video and cut one clip per segment. --vertical crops each clip to 9:16 and
--captions burns the transcript into it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vertical, _ := cmd.Flags().GetBool("vertical")
		withCaptions, _ := cmd.Flags().GetBool("captions")
		pick, _ := cmd.Flags().GetBool("pick")
		noProgress, _ := cmd.Flags().GetBool("no-progress")
		cascade, _ := cmd.Flags().GetString("cascade")
		if cascade == "" {
			cascade = cfg.Shorts.CascadeFile
		}

		show := !noProgress && isatty.IsTerminal(os.Stdout.Fd())
		if show && !verbose {
			// Log lines would tear the progress box.
			logger.SetLevel(hclog.Warn)
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		yt, err := youtubeClient()
		if err != nil {
			return err
		}
		seg, release, err := newSegmenter(ctx)
		if err != nil {
			return err
		}
		defer release()

		p := &pipeline.Pipeline{
			Transcripts:  yt,
			Videos:       yt,
			Segments:     seg,
			Splitter:     newSplitter(),
			CaptionStyle: cfg.Captions,
			OutputDir:    cfg.OutputDir,
			Options:      pipeline.Options{Vertical: vertical, Captions: withCaptions},
			Logger:       logger.Named("pipeline"),
		}
		if pick {
			p.Options.Pick = forms.Pick
		}
		if vertical {
			conv, err := newConverter(cascade)
			if err != nil {
				return err
			}
			p.Shorts = conv
		}

		database, err := openDB()
		if err != nil {
			logger.Warn("run ledger disabled", "error", err)
		} else {
			defer database.Close()
			p.StartLedger = ledgerStarter(database)
		}

		var plan *pipeline.Plan
		err = withProgress(show, cancel, func(observe func(pipeline.Event)) error {
			p.Observer = observe
			var err error
			plan, err = p.Plan(ctx, args[0])
			return err
		})
		if err != nil {
			return err
		}

		// The picker needs the terminal, so it runs between the two progress views.
		if plan.Segments, err = p.Pick(plan.Segments); err != nil {
			return err
		}

		var rep *pipeline.Report
		runErr := withProgress(show, cancel, func(observe func(pipeline.Event)) error {
			p.Observer = observe
			var err error
			rep, err = p.Execute(ctx, plan)
			return err
		})

		if rep != nil {
			printReport(rep)
		}
		return runErr
	},
}

// withProgress runs fn, feeding its events to the progress view when show is
// set and to the logger otherwise.
func withProgress(show bool, cancel func(), fn func(observe func(pipeline.Event)) error) error {
	if !show {
		return fn(func(e pipeline.Event) {
			if e.Total > 0 {
				logger.Info(e.Message, "stage", string(e.Stage), "progress", fmt.Sprintf("%d/%d", e.Current, e.Total))
				return
			}
			logger.Info(e.Message, "stage", string(e.Stage))
		})
	}

	events := make(chan pipeline.Event, 16)
	errc := make(chan error, 1)
	go func() {
		err := fn(pipeline.ChannelObserver(events))
		if err != nil {
			events <- pipeline.Event{Err: err}
		}
		close(events)
		errc <- err
	}()

	if err := tui.RunProgress(events, cancel); err != nil && !errors.Is(err, tui.ErrInterrupted) {
		logger.Warn("progress display failed", "error", err)
		for range events {
		}
	}
	return <-errc
}

func printReport(rep *pipeline.Report) {
	if len(rep.Clips) == 0 {
		fmt.Println(styles.Warning.Render("No clips written."))
		return
	}

	var lines []string
	lines = append(lines, styles.Header.Render(fmt.Sprintf("%d clip(s) from %s", len(rep.Clips), rep.VideoID)))
	for _, c := range rep.Clips {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styles.Mark(c.Err == nil),
			styles.PrimaryText.Render(truncate(c.Segment.Topic, 40)),
			styles.SecondaryText.Render(fmt.Sprintf("(%.1fs)", c.Range.Duration()))))
		for _, path := range []string{c.Path, c.Vertical, c.Captioned} {
			if path != "" {
				lines = append(lines, "    "+styles.Path.Render(path))
			}
		}
		if c.Err != nil {
			lines = append(lines, "    "+styles.Warning.Render(c.Err.Error()))
		}
	}
	if rep.Source != "" {
		lines = append(lines, "", styles.SecondaryText.Render("source: "+filepath.Base(rep.Source)))
	}
	fmt.Println(styles.Box.Render(strings.Join(lines, "\n")))
}

func init() {
	runCmd.Flags().Bool("vertical", false, "also write a 9:16 version of each clip")
	runCmd.Flags().Bool("captions", false, "burn transcript captions into each clip")
	runCmd.Flags().Bool("pick", false, "choose which proposed segments to cut")
	runCmd.Flags().Bool("no-progress", false, "log progress lines instead of the progress view")
	runCmd.Flags().String("cascade", "", "pigo face cascade file for --vertical")
	rootCmd.AddCommand(runCmd)
}
