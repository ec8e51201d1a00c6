package config

import (
	"fmt"
	"time"
)

// Config represents a sift.yaml configuration file.
// All values are optional and act as defaults for sift extract flags.
// CLI flags always override config values.
type Config struct {
	Mode    string        `yaml:"mode"` // artifact (default) or plain
	Storage StorageConfig `yaml:"storage"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// StorageConfig holds archive storage defaults from the config file.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // dir or s3
	Path        string `yaml:"path"`    // directory, or "bucket/prefix" for s3
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds completion adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"` // webhook or redis
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
