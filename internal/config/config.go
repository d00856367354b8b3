// Package config loads service configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// OCRConfig selects and tunes the text detection backend.
type OCRConfig struct {
	// Language is the Tesseract language code.
	Language string `mapstructure:"language"`
	// MinConfidence drops word detections below this confidence (0-100).
	MinConfidence float64 `mapstructure:"min_confidence"`
	// UseRegions switches to the OCR-less region detector.
	UseRegions bool `mapstructure:"use_regions"`
}

// CaptureConfig tunes screenshot capture.
type CaptureConfig struct {
	// CacheTTL is how long a captured screenshot is reused.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// OutputConfig controls persisted artifacts.
type OutputConfig struct {
	// Root is the directory for persisted results.
	Root string `mapstructure:"root"`
	// SaveMerged persists the merged JSON for each parse.
	SaveMerged bool `mapstructure:"save_merged"`
	// SaveImage persists the annotated visualization for each parse.
	SaveImage bool `mapstructure:"save_image"`
}

// StoreConfig controls the optional MySQL result store.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Config is the full service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr"`
	// DetectTimeout bounds each detector call.
	DetectTimeout time.Duration `mapstructure:"detect_timeout"`
	// ResizeLongest downscales the component pass to this longest edge.
	ResizeLongest int `mapstructure:"resize_longest"`

	OCR     OCRConfig     `mapstructure:"ocr"`
	Capture CaptureConfig `mapstructure:"capture"`
	Output  OutputConfig  `mapstructure:"output"`
	Store   StoreConfig   `mapstructure:"store"`
}

// Load reads config.yaml from the given directory (or the working
// directory if empty), falling back to defaults when no file exists.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetDefault("addr", ":5001")
	v.SetDefault("detect_timeout", 30*time.Second)
	v.SetDefault("resize_longest", 800)
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.min_confidence", 0)
	v.SetDefault("ocr.use_regions", false)
	v.SetDefault("capture.cache_ttl", time.Second)
	v.SetDefault("output.root", "data/output")
	v.SetDefault("output.save_merged", true)
	v.SetDefault("output.save_image", false)
	v.SetDefault("store.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
