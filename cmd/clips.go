package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/db"
	"github.com/user/shorts-clipper-cli/mpv"
	"github.com/user/shorts-clipper-cli/pkg/timeutil"
)

var clipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "Browse clips recorded in the run ledger",
	Long:  `List, play and retry clips written by earlier runs.`,
}

var clipsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent clips, or the clips of one run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		limit, _ := cmd.Flags().GetInt("limit")

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		clips, err := db.SelectClips(database, runID, limit)
		if err != nil {
			return fmt.Errorf("failed to query clips: %w", err)
		}

		writeClipTable(os.Stdout, clips, time.Now())

		if len(clips) == 0 {
			fmt.Println("\nNo clips found.")
		} else {
			fmt.Printf("\n%d clip(s) found.\n", len(clips))
		}
		return nil
	},
}

// writeClipTable renders clips as an aligned table. now anchors the
// relative ages.
func writeClipTable(out io.Writer, clips []db.Clip, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tStart\tEnd\tDuration\tStatus\tSize\tCreated\tTopic")
	fmt.Fprintln(w, "--\t-----\t---\t--------\t------\t----\t-------\t-----")
	for _, c := range clips {
		size := "-"
		if c.Filesize > 0 {
			size = humanize.Bytes(uint64(c.Filesize))
		}
		status := c.Status
		if c.VerticalPath != "" {
			status += "+v"
		}
		if c.CaptionPath != "" {
			status += "+c"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1fs\t%s\t%s\t%s\t%s\n",
			c.ID,
			timeutil.FormatClock(c.StartSeconds),
			timeutil.FormatClock(c.EndSeconds),
			c.Duration(),
			status,
			size,
			humanize.RelTime(c.CreatedAt, now, "ago", "from now"),
			truncate(c.Topic, 40))
	}
	w.Flush()
}

var clipsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := db.SelectRecentRuns(database, limit)
		if err != nil {
			return fmt.Errorf("failed to query runs: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Run\tVideo\tClips\tStarted\tResult")
		fmt.Fprintln(w, "---\t-----\t-----\t-------\t------")
		for _, r := range runs {
			result := "running"
			switch {
			case r.Error != "":
				result = truncate(r.Error, 40)
			case r.FinishedAt != nil:
				result = "ok"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.VideoID, r.ClipCount, humanize.Time(r.StartedAt), result)
		}
		w.Flush()

		if len(runs) == 0 {
			fmt.Println("\nNo runs recorded.")
		}
		return nil
	},
}

var clipsPlayCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Play a clip in mpv",
	Long:  `Open a recorded clip in mpv. --vertical and --captioned pick the corresponding rendition.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clipID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid clip ID: %s", args[0])
		}
		vertical, _ := cmd.Flags().GetBool("vertical")
		captioned, _ := cmd.Flags().GetBool("captioned")
		loop, _ := cmd.Flags().GetBool("loop")

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		c, err := db.SelectClipByID(database, clipID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("clip not found: ID %d", clipID)
		}
		if err != nil {
			return fmt.Errorf("failed to query clip: %w", err)
		}

		path, err := renditionPath(c, vertical, captioned)
		if err != nil {
			return err
		}

		fmt.Printf("Playing clip %d: %s\n", c.ID, c.Topic)
		fmt.Printf("%s - %s (%.1fs)\n", timeutil.FormatClock(c.StartSeconds), timeutil.FormatClock(c.EndSeconds), c.Duration())

		process, err := mpv.Launch(path, loop)
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}
		return process.Wait()
	},
}

// renditionPath picks the file to play for c.
func renditionPath(c *db.Clip, vertical, captioned bool) (string, error) {
	switch {
	case captioned:
		if c.CaptionPath == "" {
			return "", fmt.Errorf("clip %d has no captioned version", c.ID)
		}
		return c.CaptionPath, nil
	case vertical:
		if c.VerticalPath == "" {
			return "", fmt.Errorf("clip %d has no vertical version", c.ID)
		}
		return c.VerticalPath, nil
	case c.Path == "":
		return "", fmt.Errorf("clip %d was not written (%s)", c.ID, c.Status)
	}
	return c.Path, nil
}

var clipsRetryCmd = &cobra.Command{
	Use:   "retry <run-id>",
	Short: "Re-cut clips that failed or were interrupted",
	Long:  `Re-extract every clip of a run that is pending, processing or in error, from the run's recorded source video.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if _, err := db.SelectRunByID(database, args[0]); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run not found: %s", args[0])
		} else if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		candidates := cfg.FfmpegCandidates
		if len(candidates) == 0 {
			candidates = clip.DefaultFfmpegCandidates
		}
		p := &clip.Processor{
			Queue:    &db.RetryQueue{DB: database, RunID: args[0]},
			Encoders: clip.DefaultEncoders(candidates),
			Logger:   logger.Named("retry"),
		}
		done, failed, err := p.Drain(ctx)
		fmt.Printf("%d clip(s) regenerated, %d failed.\n", done, failed)
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d clip(s) still failing, see 'clips list --run %s'", failed, args[0])
		}
		return nil
	},
}

func init() {
	clipsListCmd.Flags().String("run", "", "only list clips of this run")
	clipsListCmd.Flags().Int("limit", 20, "maximum number of clips when no run is given")
	clipsRunsCmd.Flags().Int("limit", 10, "maximum number of runs")
	clipsPlayCmd.Flags().Bool("vertical", false, "play the 9:16 version")
	clipsPlayCmd.Flags().Bool("captioned", false, "play the captioned version")
	clipsPlayCmd.Flags().Bool("loop", true, "loop playback")

	clipsCmd.AddCommand(clipsListCmd)
	clipsCmd.AddCommand(clipsRunsCmd)
	clipsCmd.AddCommand(clipsPlayCmd)
	clipsCmd.AddCommand(clipsRetryCmd)
	rootCmd.AddCommand(clipsCmd)
}
