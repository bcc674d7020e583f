// Package config provides configuration loading and management for acf.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Archive backends.
const (
	BackendSQLite = "sqlite"
	BackendKV     = "kv"
)

// Config represents the complete acf configuration
type Config struct {
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Data      DataConfig      `yaml:"data"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Profiles  ProfilesConfig  `yaml:"profiles"`
	Archive   ArchiveConfig   `yaml:"archive"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`
}

// KnowledgeConfig locates the taxonomy documents
type KnowledgeConfig struct {
	// Dir holds markdown and N-Triples documents (empty = bundled taxonomy)
	Dir string `yaml:"dir"`
}

// DataConfig locates evaluation records
type DataConfig struct {
	// Dir is scanned recursively for *.json records
	Dir string `yaml:"dir"`
}

// ScoringConfig configures the scoring pipeline
type ScoringConfig struct {
	// System restricts scoring to one system ID (empty = auto-detect)
	System string `yaml:"system"`
}

// ProfilesConfig configures where scored profiles are written
type ProfilesConfig struct {
	Dir string `yaml:"dir"`
}

// ArchiveConfig configures the profile history archive
type ArchiveConfig struct {
	// Backend is "sqlite" or "kv" (NATS JetStream key-value)
	Backend string `yaml:"backend"`
	// Path is the SQLite database file
	Path string `yaml:"path"`
	// Bucket is the JetStream KV bucket name
	Bucket string `yaml:"bucket"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// Subject receives profile triples
	Subject string `yaml:"subject"`
	// QuerySubject receives query requests when serving
	QuerySubject string `yaml:"query_subject"`
}

// MetricsConfig configures Prometheus output
type MetricsConfig struct {
	// Textfile is written in node-exporter textfile format (empty = off)
	Textfile string `yaml:"textfile"`
}

// WatchConfig configures data-directory watching
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// LogLevels lists the accepted log.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Knowledge: KnowledgeConfig{
			Dir: "", // Bundled
		},
		Data: DataConfig{
			Dir: "data",
		},
		Profiles: ProfilesConfig{
			Dir: "profiles",
		},
		Archive: ArchiveConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join("profiles", "history.db"),
			Bucket:  "ACF_PROFILES",
		},
		NATS: NATSConfig{
			Subject:      "graph.ingest.entity",
			QuerySubject: "acf.query.request",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	switch c.Archive.Backend {
	case BackendSQLite:
		if c.Archive.Path == "" {
			return fmt.Errorf("archive.path is required for the sqlite backend")
		}
	case BackendKV:
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required for the kv backend")
		}
	default:
		return fmt.Errorf("archive.backend must be %q or %q, got %q", BackendSQLite, BackendKV, c.Archive.Backend)
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v, got %q", LogLevels, c.Log.Level)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. Environment references
// are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Knowledge.Dir != "" {
		c.Knowledge.Dir = other.Knowledge.Dir
	}
	if other.Data.Dir != "" {
		c.Data.Dir = other.Data.Dir
	}
	if other.Scoring.System != "" {
		c.Scoring.System = other.Scoring.System
	}
	if other.Profiles.Dir != "" {
		c.Profiles.Dir = other.Profiles.Dir
	}

	// Archive
	if other.Archive.Backend != "" {
		c.Archive.Backend = other.Archive.Backend
	}
	if other.Archive.Path != "" {
		c.Archive.Path = other.Archive.Path
	}
	if other.Archive.Bucket != "" {
		c.Archive.Bucket = other.Archive.Bucket
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.QuerySubject != "" {
		c.NATS.QuerySubject = other.NATS.QuerySubject
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
