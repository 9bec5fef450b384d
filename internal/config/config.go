// Package config loads the editor's YAML settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentConfigVersion = 1
	DefaultPath          = "tala.yaml"
)

type Config struct {
	StorePath   string   `yaml:"store_path"`
	ListenAddr  string   `yaml:"listen_addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	Translation struct {
		Provider    string `yaml:"provider"`
		Model       string `yaml:"model"`
		Concurrency int    `yaml:"concurrency"`
		BatchSize   int    `yaml:"batch_size"`
	} `yaml:"translation"`

	Transcription struct {
		Provider     string `yaml:"provider"`
		Model        string `yaml:"model"`
		Concurrency  int    `yaml:"concurrency"`
		ChunkSeconds int    `yaml:"chunk_seconds"`
	} `yaml:"transcription"`

	Editor struct {
		SeekStepMs      int     `yaml:"seek_step_ms"`
		PixelsPerSecond float64 `yaml:"pixels_per_second"`
		Autosave        bool    `yaml:"autosave"`
	} `yaml:"editor"`

	ConfigVersion int `yaml:"config_version"`

	path string
}

func Default() *Config {
	c := &Config{}

	c.StorePath = "tala.db"
	c.ListenAddr = ":8080"
	c.CORSOrigins = []string{"*"}

	c.Translation.Provider = "gemini"
	c.Translation.Concurrency = 3
	c.Translation.BatchSize = 50

	c.Transcription.Provider = "gemini"
	c.Transcription.Concurrency = 3
	c.Transcription.ChunkSeconds = 600

	c.Editor.SeekStepMs = 2000
	c.Editor.PixelsPerSecond = 8
	c.Editor.Autosave = false

	c.ConfigVersion = CurrentConfigVersion
	return c
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.ConfigVersion > CurrentConfigVersion {
		return nil, fmt.Errorf(
			"config file %s has version %d, newer than supported %d",
			path,
			cfg.ConfigVersion,
			CurrentConfigVersion,
		)
	}

	cfg.normalize()
	return cfg, nil
}

// Path is the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		path = DefaultPath
	}

	c.ConfigVersion = CurrentConfigVersion
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	c.path = path
	return nil
}

func (c *Config) normalize() {
	defaults := Default()

	c.StorePath = strings.TrimSpace(c.StorePath)
	if c.StorePath == "" {
		c.StorePath = defaults.StorePath
	}
	c.StorePath = filepath.Clean(c.StorePath)

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = defaults.ListenAddr
	}

	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins

	c.Translation.Provider = strings.TrimSpace(strings.ToLower(c.Translation.Provider))
	if c.Translation.Provider == "" {
		c.Translation.Provider = defaults.Translation.Provider
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	c.Translation.Concurrency = clamp(c.Translation.Concurrency, 1, 16)
	if c.Translation.BatchSize <= 0 {
		c.Translation.BatchSize = defaults.Translation.BatchSize
	}

	c.Transcription.Provider = strings.TrimSpace(strings.ToLower(c.Transcription.Provider))
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = defaults.Transcription.Provider
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.Concurrency = clamp(c.Transcription.Concurrency, 1, 16)
	if c.Transcription.ChunkSeconds < 30 {
		c.Transcription.ChunkSeconds = defaults.Transcription.ChunkSeconds
	}

	if c.Editor.SeekStepMs <= 0 {
		c.Editor.SeekStepMs = defaults.Editor.SeekStepMs
	}
	if c.Editor.PixelsPerSecond <= 0 {
		c.Editor.PixelsPerSecond = defaults.Editor.PixelsPerSecond
	}

	c.ConfigVersion = CurrentConfigVersion
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
