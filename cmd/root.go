package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/user/shorts-clipper-cli/config"
	"github.com/user/shorts-clipper-cli/deps"
	"github.com/user/shorts-clipper-cli/tui/styles"
)

var Version = "0.1.0"

// Global flag values and the state built from them in PersistentPreRunE.
var (
	cfgFile     string
	envFile     string
	verbose     bool
	downloadDir string
	outputDir   string
	dbPath      string

	cfg    config.Config
	logger hclog.Logger = hclog.NewNullLogger()
)

var rootCmd = &cobra.Command{
	Use:   "shorts-clipper-cli",
	Short: "Turn YouTube videos into vertical short clips",
	Long: `shorts-clipper-cli finds the most shareable moments of a YouTube video
and cuts them into short clips.

Pipeline:
  - Fetch the video transcript with yt-dlp
  - Ask an LLM (Gemini or OpenAI) for viral-worthy segments
  - Download the video and cut one clip per segment with ffmpeg
  - Optionally crop each clip to 9:16 around the speaker's face
  - Optionally burn transcript captions into the clip`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shorts-clipper-cli version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external tools (ffmpeg, ffprobe, yt-dlp, mpv) and an LLM API key are available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(styles.Header.Render("Checking dependencies..."))
		fmt.Println()

		allGood := true
		for _, d := range deps.All {
			path, err := d.Check()
			switch {
			case err == nil:
				fmt.Printf("%s %s: %s\n", styles.Mark(true), d.Name, styles.SecondaryText.Render(path))
			case d.Optional:
				fmt.Printf("%s %s: not found (optional, %s)\n", styles.SubHeader.Render("-"), d.Name, d.Purpose)
				fmt.Printf("  Install from: %s\n", d.InstallURL)
			default:
				fmt.Printf("%s %s: NOT FOUND (needed for %s)\n", styles.Mark(false), d.Name, d.Purpose)
				fmt.Printf("  Install from: %s\n", d.InstallURL)
				allGood = false
			}
		}

		if cfg.LLM.APIKey() == "" {
			fmt.Printf("%s %s API key: not set (%s)\n", styles.Mark(false), cfg.LLM.Provider, apiKeyEnv(cfg.LLM.Provider))
			allGood = false
		} else {
			fmt.Printf("%s %s API key: set\n", styles.Mark(true), cfg.LLM.Provider)
		}

		fmt.Println()
		if !allGood {
			return fmt.Errorf("some dependencies are missing, install them to use all features")
		}
		fmt.Println(styles.Success.Render("All dependencies are installed!"))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.config/shorts-clipper-cli/config.yaml)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&downloadDir, "download-dir", "", "directory for downloaded videos")
	pf.StringVarP(&outputDir, "output-dir", "o", "", "directory for clips (default <download-dir>/clips)")
	pf.StringVar(&dbPath, "db", "", "run ledger database (default ~/.local/share/shorts-clipper-cli/data.db)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

// setup loads the configuration, applies global flags and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("download-dir") {
		// A new download dir moves the default clips dir with it.
		if !flags.Changed("output-dir") && loaded.OutputDir == config.Default().OutputDir {
			loaded.OutputDir = ""
		}
		loaded.DownloadDir = downloadDir
	}
	if flags.Changed("output-dir") {
		loaded.OutputDir = outputDir
	}
	if flags.Changed("db") {
		loaded.DBPath = dbPath
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger = newLogger(verbose)
	logger.Debug("configuration loaded", "download_dir", cfg.DownloadDir, "output_dir", cfg.OutputDir,
		"provider", cfg.LLM.Provider, "pad_seconds", cfg.PadSeconds)
	return nil
}

func newLogger(debug bool) hclog.Logger {
	level := hclog.Info
	if debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "shorts",
		Level:  level,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Warning.Render("Error:"), err)
		os.Exit(1)
	}
}
