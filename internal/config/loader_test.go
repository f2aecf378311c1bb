package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
featurizer:
  batch_size: 16
  max_atoms_limit: 200
export:
  sink: minio
  dir: /tmp/features
minio:
  endpoint: "minio:9000"
  access_key_id: "key"
  secret_access_key: "secret"
  bucket: "uspto"
  create_bucket: false
log:
  level: debug
  format: json
metrics:
  enabled: true
  namespace: "rxn"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(WithConfigPath(createTempConfigFile(t, validConfigYAML)))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Featurizer.BatchSize)
	assert.Equal(t, 200, cfg.Featurizer.MaxAtomsLimit)
	assert.Equal(t, SinkMinIO, cfg.Export.Sink)
	assert.Equal(t, "minio:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "key", cfg.MinIO.AccessKeyID)
	assert.Equal(t, "uspto", cfg.MinIO.Bucket)
	assert.False(t, cfg.MinIO.CreateBucket)
	assert.Equal(t, DefaultMinIORegion, cfg.MinIO.Region)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "rxn", cfg.Metrics.Namespace)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(WithConfigPath("non_existent_config.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(WithConfigPath(createTempConfigFile(t, "invalid_yaml: [")))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, `
featurizer:
  batch_size: -1
`)
	_, err := Load(WithConfigPath(path))
	assert.ErrorIs(t, err, ErrConfigValidation)
	assert.Contains(t, err.Error(), "featurizer.batch_size")
}

func TestLoad_EnvOverride(t *testing.T) {
	setEnvVars(t, map[string]string{
		"RXNCENTER_FEATURIZER_BATCH_SIZE": "8",
		"RXNCENTER_MINIO_BUCKET":          "from-env",
	})

	cfg, err := Load(WithConfigPath(createTempConfigFile(t, validConfigYAML)))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Featurizer.BatchSize)
	assert.Equal(t, "from-env", cfg.MinIO.Bucket)
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(WithConfigPath(createTempConfigFile(t, "log:\n  level: warn\n")))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultBatchSize, cfg.Featurizer.BatchSize)
	assert.Equal(t, DefaultExportSink, cfg.Export.Sink)
	assert.Equal(t, DefaultExportDir, cfg.Export.Dir)
	assert.True(t, cfg.MinIO.CreateBucket)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_WithSearchPaths(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(WithSearchPaths(t.TempDir(), filepath.Dir(path)))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Featurizer.BatchSize)

	_, err = Load(WithSearchPaths(t.TempDir()))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_WithOverrides(t *testing.T) {
	setEnvVars(t, map[string]string{"RXNCENTER_FEATURIZER_BATCH_SIZE": "8"})

	cfg, err := Load(
		WithConfigPath(createTempConfigFile(t, validConfigYAML)),
		WithOverrides(map[string]interface{}{"featurizer.batch_size": 7777}),
	)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Featurizer.BatchSize)
}

func TestLoadFromFile_Convenience(t *testing.T) {
	cfg, err := LoadFromFile(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	setEnvVars(t, map[string]string{
		"RXNCENTER_EXPORT_SINK":                "minio",
		"RXNCENTER_MINIO_ENDPOINT":             "object-store:9000",
		"RXNCENTER_MINIO_USE_SSL":              "true",
		"RXNCENTER_METRICS_ENABLED":            "true",
		"RXNCENTER_LOG_FORMAT":                 "json",
		"RXNCENTER_FEATURIZER_MAX_ATOMS_LIMIT": "120",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, SinkMinIO, cfg.Export.Sink)
	assert.Equal(t, "object-store:9000", cfg.MinIO.Endpoint)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 120, cfg.Featurizer.MaxAtomsLimit)
}

func TestMustLoad(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() { MustLoad(WithConfigPath(path)) })
	assert.Panics(t, func() { MustLoad(WithConfigPath("non_existent.yaml")) })
}

func TestLoad_SetsGlobalConfig(t *testing.T) {
	cfg, err := Load(WithConfigPath(createTempConfigFile(t, validConfigYAML)))
	require.NoError(t, err)
	assert.Equal(t, cfg, Get())
}

//Personal.AI order the ending
