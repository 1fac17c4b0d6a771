package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/config"
	"github.com/user/shorts-clipper-cli/db"
	"github.com/user/shorts-clipper-cli/deps"
	"github.com/user/shorts-clipper-cli/pipeline"
	"github.com/user/shorts-clipper-cli/segmenter"
	"github.com/user/shorts-clipper-cli/shorts"
	"github.com/user/shorts-clipper-cli/youtube"
	"golang.org/x/time/rate"
)

func apiKeyEnv(provider string) string {
	if provider == config.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY or GOOGLE_API_KEY"
}

func youtubeClient() (*youtube.Client, error) {
	if err := deps.CheckYtDlp(); err != nil && cfg.YtDlp == "yt-dlp" {
		return nil, err
	}
	return &youtube.Client{
		Binary:    cfg.YtDlp,
		Dir:       cfg.DownloadDir,
		Languages: cfg.SubtitleLangs,
		Logger:    logger.Named("youtube"),
	}, nil
}

// newSegmenter builds the configured model client. The returned func
// releases it.
func newSegmenter(ctx context.Context) (*segmenter.Segmenter, func(), error) {
	var (
		gen     segmenter.Generator
		release = func() {}
	)
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		g, err := segmenter.NewOpenAIGenerator(cfg.LLM.OpenAIAPIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		if err != nil {
			return nil, nil, err
		}
		gen = g
	default:
		g, err := segmenter.NewGeminiGenerator(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.Model)
		if err != nil {
			return nil, nil, err
		}
		gen = g
		release = func() { g.Close() }
	}

	prompt, err := cfg.LLM.Prompt()
	if err != nil {
		release()
		return nil, nil, err
	}

	every := time.Duration(float64(time.Minute) / cfg.LLM.RequestsPerMinute)
	return &segmenter.Segmenter{
		Generator:   gen,
		Limiter:     rate.NewLimiter(rate.Every(every), 1),
		MaxAttempts: cfg.LLM.MaxAttempts,
		Prompt:      prompt,
		Logger:      logger.Named("segmenter"),
	}, release, nil
}

func newSplitter() *clip.Splitter {
	candidates := cfg.FfmpegCandidates
	if len(candidates) == 0 {
		candidates = clip.DefaultFfmpegCandidates
	}
	return &clip.Splitter{
		SourceDir:     cfg.DownloadDir,
		Extensions:    cfg.Extensions,
		OutputDir:     cfg.OutputDir,
		PadSeconds:    cfg.PadSeconds,
		MaxNameLength: cfg.MaxNameLength,
		Encoders:      clip.DefaultEncoders(candidates),
		Logger:        logger.Named("clip"),
	}
}

// newConverter builds the vertical converter. Without a cascade file the
// crop is centred.
func newConverter(cascade string) (*shorts.Converter, error) {
	c := &shorts.Converter{
		SampleFrames: cfg.Shorts.SampleFrames,
		Logger:       logger.Named("shorts"),
	}
	if cascade == "" {
		logger.Debug("no face cascade configured, crops will be centred")
		return c, nil
	}
	d, err := shorts.LoadPigoDetector(cascade)
	if err != nil {
		return nil, err
	}
	c.Detector = d
	return c, nil
}

func openDB() (*sql.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// ledgerStarter adapts db.StartRun to pipeline.Pipeline.StartLedger.
func ledgerStarter(database *sql.DB) func(runID, url, videoID string) (pipeline.Ledger, error) {
	return func(runID, url, videoID string) (pipeline.Ledger, error) {
		return db.StartRun(database, runID, url, videoID)
	}
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
