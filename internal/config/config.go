// Package config defines all configuration structures for rxncenter.  No I/O
// lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// FeaturizerConfig holds pairwise featurizer tunables.
type FeaturizerConfig struct {
	// MaxAtomsLimit rejects batches whose largest reaction exceeds it; 0 disables.
	MaxAtomsLimit int `mapstructure:"max_atoms_limit"`
	// BatchSize is the number of reactions stacked into one exported batch.
	BatchSize int `mapstructure:"batch_size"`
}

// Export sink kinds.
const (
	SinkDir   = "dir"
	SinkMinIO = "minio"
)

// ExportConfig selects where tensors are written.
type ExportConfig struct {
	Sink string `mapstructure:"sink"` // "dir" | "minio"
	Dir  string `mapstructure:"dir"`
}

// MinIOConfig holds object storage connection parameters.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	CreateBucket    bool   `mapstructure:"create_bucket"`
}

// MetricsConfig controls the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Featurizer FeaturizerConfig  `mapstructure:"featurizer"`
	Export     ExportConfig      `mapstructure:"export"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
	Log        logging.LogConfig `mapstructure:"log"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Featurizer
	if c.Featurizer.BatchSize < 1 {
		return fmt.Errorf("config: featurizer.batch_size must be ≥ 1, got %d", c.Featurizer.BatchSize)
	}
	if c.Featurizer.MaxAtomsLimit < 0 {
		return fmt.Errorf("config: featurizer.max_atoms_limit must be ≥ 0, got %d", c.Featurizer.MaxAtomsLimit)
	}

	// Export
	switch c.Export.Sink {
	case SinkDir:
		if c.Export.Dir == "" {
			return fmt.Errorf("config: export.dir is required when export.sink is %q", SinkDir)
		}
	case SinkMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when export.sink is %q", SinkMinIO)
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when export.sink is %q", SinkMinIO)
		}
	default:
		return fmt.Errorf("config: export.sink %q is invalid; expected dir|minio", c.Export.Sink)
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}

//Personal.AI order the ending
