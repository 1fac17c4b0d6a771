package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/shorts-clipper-cli/pipeline"
	"github.com/user/shorts-clipper-cli/segment"
	"github.com/user/shorts-clipper-cli/youtube"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <youtube-url>",
	Short: "Fetch a video's transcript",
	Long:  `Fetch the manual or automatic English subtitles of a video and print them as JSON snippets with M:SS timestamps.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

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

		snips, err := yt.FetchTranscript(ctx, id)
		if err != nil {
			return err
		}
		if out != "" {
			if err := youtube.SaveTranscript(out, snips); err != nil {
				return err
			}
			fmt.Printf("Transcript saved: %s (%d lines)\n", out, len(snips))
			return nil
		}
		return writeJSON(os.Stdout, "", snips)
	},
}

var segmentCmd = &cobra.Command{
	Use:   "segment [youtube-url]",
	Short: "Find viral-worthy segments in a transcript",
	Long: `Ask the configured LLM for segments. The transcript is fetched from the
URL, or read from --transcript (as written by the transcript command).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		transcriptFile, _ := cmd.Flags().GetString("transcript")

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		var snips []youtube.Snippet
		switch {
		case transcriptFile != "":
			s, err := youtube.LoadTranscript(transcriptFile)
			if err != nil {
				return err
			}
			snips = s
		case len(args) == 1:
			id, err := youtube.ExtractVideoID(args[0])
			if err != nil {
				return err
			}
			yt, err := youtubeClient()
			if err != nil {
				return err
			}
			if snips, err = yt.FetchTranscript(ctx, id); err != nil {
				return err
			}
		default:
			return fmt.Errorf("give a YouTube URL or --transcript")
		}

		seg, release, err := newSegmenter(ctx)
		if err != nil {
			return err
		}
		defer release()

		segs, err := seg.Segment(ctx, snips)
		if err != nil {
			return err
		}

		if out != "" {
			if err := pipeline.WriteSegments(out, segs); err != nil {
				return err
			}
			fmt.Printf("%d segment(s) saved: %s\n", len(segs), out)
			return nil
		}
		data, err := segment.Encode(segs)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	transcriptCmd.Flags().String("out", "", "write the transcript to this file instead of stdout")
	segmentCmd.Flags().String("out", "", "write the segments to this file instead of stdout")
	segmentCmd.Flags().String("transcript", "", "transcript JSON file to segment")

	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(segmentCmd)
}
