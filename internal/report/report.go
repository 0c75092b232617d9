// Package report writes organize run summaries to YAML files.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/bmsort/internal/organizer"
)

// RunConfig records the settings a run was made with.
type RunConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	Storage      string `yaml:"storage"`
	RootFolder   string `yaml:"rootFolder,omitempty"`
	BatchRetries int    `yaml:"batchRetries"`
}

// Report is the document written for one run.
type Report struct {
	Config  RunConfig          `yaml:"config"`
	Summary *organizer.Summary `yaml:"summary"`
}

// WriteYAML writes r to path, creating parent directories as needed.
func WriteYAML(path string, r Report) error {
	if r.Summary == nil {
		return fmt.Errorf("report: no summary to write")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadYAML loads a report written by WriteYAML.
func ReadYAML(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}
