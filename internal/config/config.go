// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cconley717/Coin180/internal/heatmap"
	"github.com/cconley717/Coin180/internal/pipeline"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Capture configures the frame source feeding the analyzer.
type Capture struct {
	// Provider selects the frame source: "stub" or "dir".
	Provider   string `yaml:"provider"`
	FramesDir  string `yaml:"frames_dir"`
	IntervalMs int    `yaml:"interval_ms"`
}

// Analyzer configures the out-of-process heatmap analysis service.
type Analyzer struct {
	// Transport selects the channel: "stdio" (subprocess) or "websocket".
	Transport string          `yaml:"transport"`
	Command   string          `yaml:"command"`
	Args      []string        `yaml:"args"`
	URL       string          `yaml:"url"`
	Options   heatmap.Options `yaml:"options"`
}

// Recorder configures tick-record persistence.
type Recorder struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App             `yaml:"app"`
	Capture  Capture         `yaml:"capture"`
	Analyzer Analyzer        `yaml:"analyzer"`
	Pipeline pipeline.Config `yaml:"pipeline"`
	Recorder Recorder        `yaml:"recorder"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
