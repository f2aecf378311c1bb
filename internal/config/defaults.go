package config

import "github.com/spf13/viper"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultBatchSize     = 64
	DefaultMaxAtomsLimit = 0

	DefaultExportSink = SinkDir
	DefaultExportDir  = "./features"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIORegion   = "us-east-1"
	DefaultMinIOBucket   = "rxncenter"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMetricsNamespace = "rxncenter"
)

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set by the caller are left unchanged so explicit configuration
// always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Featurizer ────────────────────────────────────────────────────────────
	if cfg.Featurizer.BatchSize == 0 {
		cfg.Featurizer.BatchSize = DefaultBatchSize
	}

	// ── Export ────────────────────────────────────────────────────────────────
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = DefaultExportSink
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = DefaultExportDir
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// registerDefaults declares every key on v.  viper only resolves environment
// overrides during Unmarshal for keys it already knows about.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("featurizer.batch_size", DefaultBatchSize)
	v.SetDefault("featurizer.max_atoms_limit", DefaultMaxAtomsLimit)

	v.SetDefault("export.sink", DefaultExportSink)
	v.SetDefault("export.dir", DefaultExportDir)

	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", DefaultMinIORegion)
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
	v.SetDefault("minio.create_bucket", true)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
}

//Personal.AI order the ending
