package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"screen-parser/internal/element"
)

// SaveJSON writes a merge result to disk as indented JSON, creating parent
// directories as needed.
func SaveJSON(result *element.MergeResult, path string) error {
	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal merge result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a previously persisted merge result.
func LoadJSON(path string) (*element.MergeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var result element.MergeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &result, nil
}

// LoadCompoDetection reads a component detection JSON file.
func LoadCompoDetection(path string) (*element.CompoDetection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var det element.CompoDetection
	if err := json.Unmarshal(data, &det); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &det, nil
}

// LoadTextDetection reads a text detection JSON file.
func LoadTextDetection(path string) (*element.TextDetection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var det element.TextDetection
	if err := json.Unmarshal(data, &det); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &det, nil
}
