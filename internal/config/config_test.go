package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":5001" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DetectTimeout != 30*time.Second {
		t.Errorf("DetectTimeout = %v", cfg.DetectTimeout)
	}
	if cfg.ResizeLongest != 800 {
		t.Errorf("ResizeLongest = %d", cfg.ResizeLongest)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("OCR.Language = %q", cfg.OCR.Language)
	}
	if cfg.Capture.CacheTTL != time.Second {
		t.Errorf("Capture.CacheTTL = %v", cfg.Capture.CacheTTL)
	}
	if !cfg.Output.SaveMerged {
		t.Error("Output.SaveMerged = false, want true")
	}
	if cfg.Store.Enabled {
		t.Error("Store.Enabled = true, want false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
addr: ":8080"
detect_timeout: 5s
resize_longest: 0
ocr:
  language: deu
  use_regions: true
output:
  root: /tmp/results
  save_image: true
store:
  enabled: true
  dsn: user:pass@tcp(localhost:3306)/parser
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DetectTimeout != 5*time.Second {
		t.Errorf("DetectTimeout = %v", cfg.DetectTimeout)
	}
	if cfg.ResizeLongest != 0 {
		t.Errorf("ResizeLongest = %d", cfg.ResizeLongest)
	}
	if cfg.OCR.Language != "deu" || !cfg.OCR.UseRegions {
		t.Errorf("OCR = %+v", cfg.OCR)
	}
	if cfg.Output.Root != "/tmp/results" || !cfg.Output.SaveImage {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !cfg.Store.Enabled || cfg.Store.DSN == "" {
		t.Errorf("Store = %+v", cfg.Store)
	}

	// Values absent from the file keep their defaults.
	if cfg.OCR.MinConfidence != 0 {
		t.Errorf("OCR.MinConfidence = %v", cfg.OCR.MinConfidence)
	}
	if !cfg.Output.SaveMerged {
		t.Error("Output.SaveMerged lost its default")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("addr: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}
