// Package config loads CLI settings from defaults, an optional YAML file,
// a .env file and the environment, in that order of precedence (lowest
// first). Command-line flags are applied on top by the cmd package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/user/shorts-clipper-cli/captions"
	"github.com/user/shorts-clipper-cli/clip"
	"github.com/user/shorts-clipper-cli/shorts"
	"gopkg.in/yaml.v3"
)

// Providers accepted in LLM.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds every tunable of the pipeline.
type Config struct {
	DownloadDir      string   `yaml:"download_dir"`
	OutputDir        string   `yaml:"output_dir"`
	DBPath           string   `yaml:"db_path"`
	PadSeconds       float64  `yaml:"pad_seconds"`
	MaxNameLength    int      `yaml:"max_name_length"`
	Extensions       []string `yaml:"extensions"`
	FfmpegCandidates []string `yaml:"ffmpeg_candidates"`
	YtDlp            string   `yaml:"yt_dlp"`
	SubtitleLangs    []string `yaml:"subtitle_langs"`

	LLM      LLMConfig      `yaml:"llm"`
	Shorts   ShortsConfig   `yaml:"shorts"`
	Captions captions.Style `yaml:"captions"`
}

// LLMConfig selects and tunes the segmentation model.
type LLMConfig struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	MaxAttempts       int     `yaml:"max_attempts"`
	// PromptFile replaces the built-in system prompt when set.
	PromptFile string `yaml:"prompt_file"`

	// API keys come from the environment only.
	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`
}

// APIKey returns the key for the selected provider.
func (l LLMConfig) APIKey() string {
	if l.Provider == ProviderOpenAI {
		return l.OpenAIAPIKey
	}
	return l.GeminiAPIKey
}

// ShortsConfig tunes the vertical converter.
type ShortsConfig struct {
	// CascadeFile is a pigo face cascade. Without it the frame centre is used.
	CascadeFile  string `yaml:"cascade_file"`
	SampleFrames int    `yaml:"sample_frames"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DownloadDir:   "downloads",
		OutputDir:     filepath.Join("downloads", "clips"),
		PadSeconds:    clip.DefaultPadSeconds,
		MaxNameLength: clip.DefaultMaxNameLength,
		YtDlp:         "yt-dlp",
		LLM: LLMConfig{
			Provider:          ProviderGemini,
			RequestsPerMinute: 10,
			MaxAttempts:       3,
		},
		Shorts: ShortsConfig{
			SampleFrames: shorts.DefaultSampleFrames,
		},
		Captions: captions.DefaultStyle(),
	}
}

// DefaultPath returns ~/.config/shorts-clipper-cli/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shorts-clipper-cli", "config.yaml"), nil
}

// Load builds the configuration. path names a YAML file; an empty path uses
// DefaultPath() and tolerates its absence, an explicit path must exist.
// envFile is loaded with godotenv when present and never overrides variables
// already set.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := Decode(bytes.NewReader(data), &cfg); err != nil {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads YAML into cfg, keeping values for keys the document omits.
// Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("SHORTS_DOWNLOAD_DIR", &cfg.DownloadDir)
	str("SHORTS_OUTPUT_DIR", &cfg.OutputDir)
	str("SHORTS_DB", &cfg.DBPath)
	str("SHORTS_YT_DLP", &cfg.YtDlp)
	str("SHORTS_PROVIDER", &cfg.LLM.Provider)
	str("SHORTS_MODEL", &cfg.LLM.Model)
	str("SHORTS_CASCADE_FILE", &cfg.Shorts.CascadeFile)
	str("OPENAI_BASE_URL", &cfg.LLM.BaseURL)

	str("GOOGLE_API_KEY", &cfg.LLM.GeminiAPIKey)
	str("GEMINI_API_KEY", &cfg.LLM.GeminiAPIKey)
	str("OPENAI_API_KEY", &cfg.LLM.OpenAIAPIKey)

	if v, ok := lookup("SHORTS_PAD_SECONDS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SHORTS_PAD_SECONDS: %w", err)
		}
		cfg.PadSeconds = f
	}
	return nil
}

// Validate checks ranges and fills any zero values with defaults.
func (c *Config) Validate() error {
	def := Default()

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = def.LLM.Provider
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q (want %s or %s)", c.LLM.Provider, ProviderGemini, ProviderOpenAI)
	}

	if c.PadSeconds < 0 {
		return fmt.Errorf("pad_seconds must not be negative, got %v", c.PadSeconds)
	}
	if c.MaxNameLength < 0 {
		return fmt.Errorf("max_name_length must not be negative, got %d", c.MaxNameLength)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must not be negative")
	}

	// Set defaults
	if c.DownloadDir == "" {
		c.DownloadDir = def.DownloadDir
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.DownloadDir, "clips")
	}
	if c.MaxNameLength == 0 {
		c.MaxNameLength = def.MaxNameLength
	}
	if c.YtDlp == "" {
		c.YtDlp = def.YtDlp
	}
	if c.LLM.RequestsPerMinute == 0 {
		c.LLM.RequestsPerMinute = def.LLM.RequestsPerMinute
	}
	if c.LLM.MaxAttempts <= 0 {
		c.LLM.MaxAttempts = def.LLM.MaxAttempts
	}
	if c.Shorts.SampleFrames <= 0 {
		c.Shorts.SampleFrames = def.Shorts.SampleFrames
	}
	if c.Captions.FontName == "" {
		c.Captions.FontName = def.Captions.FontName
	}
	if c.Captions.FontSize <= 0 {
		c.Captions.FontSize = def.Captions.FontSize
	}

	return nil
}

// Prompt returns the custom system prompt, or "" when none is configured.
func (l LLMConfig) Prompt() (string, error) {
	if l.PromptFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(l.PromptFile)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
