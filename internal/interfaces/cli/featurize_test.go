package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/rxncenter/internal/application/featurization"
	"github.com/turtacn/rxncenter/internal/infrastructure/storage/npy"
	"github.com/turtacn/rxncenter/pkg/errors"
)

const trainingInput = `# reaction  edits
[CH3:1][OH:2].[NH3:3] 2-3
[CH2:1]=[CH2:2] 1-2

[CH3:1][CH2:2][OH:3] 2-3;1-2
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reactions.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFeaturizeCmd_Flags(t *testing.T) {
	cmd := NewFeaturizeCmd()
	for _, name := range []string{"input", "out", "batch-size", "inference", "sink", "run-id", "metrics-out"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "i", cmd.Flags().Lookup("input").Shorthand)
}

func TestFeaturizeCmd_MissingInput(t *testing.T) {
	_, _, err := executeRoot(t, "featurize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestFeaturizeCmd_TrainingToDir(t *testing.T) {
	out := t.TempDir()
	stdout, stderr, err := executeRoot(t,
		"featurize",
		"--input", writeInput(t, trainingInput),
		"--out", out,
		"--batch-size", "2",
		"--run-id", "run-1",
		"-o", "json",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "featurized 3 reactions into 2 batches")

	var res featurization.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "training", res.Kind)
	assert.Equal(t, 3, res.Reactions)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, 2, res.Chunks[0].Size)
	assert.Equal(t, 1, res.Chunks[1].Size)
	// 2 + 2 + 4 directed positives.
	assert.Equal(t, 8, res.Positives)

	for _, dir := range []string{"batch-0000", "batch-0001"} {
		for _, name := range []string{npy.FeaturesFile, npy.LabelsFile, npy.SparseFile, npy.ManifestFile} {
			assert.FileExists(t, filepath.Join(out, "run-1", dir, name))
		}
	}

	raw, err := os.ReadFile(filepath.Join(out, "run-1", "batch-0000", npy.ManifestFile))
	require.NoError(t, err)
	var m npy.Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 2, m.Size)
	assert.Equal(t, 3, m.MaxAtoms)
	assert.Equal(t, []int{2, 3, 3, 10}, m.Arrays["features"].Shape)
}

func TestFeaturizeCmd_InferenceFromStdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out := t.TempDir()

	cmd := NewRootCommand()
	var stdout, stderr strings.Builder
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader("[CH3:1][OH:2]\n[NH3:1]\n"))
	cmd.SetArgs([]string{"featurize", "--input", "-", "--inference", "--out", out, "--run-id", "inf", "-o", "table"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "BATCH")
	assert.FileExists(t, filepath.Join(out, "inf", "batch-0000", npy.FeaturesFile))
	assert.NoFileExists(t, filepath.Join(out, "inf", "batch-0000", npy.LabelsFile))
}

func TestFeaturizeCmd_TrainingRequiresEdits(t *testing.T) {
	_, _, err := executeRoot(t,
		"featurize",
		"--input", writeInput(t, "[CH3:1][OH:2]\n"),
		"--out", t.TempDir(),
	)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidEdit, errors.GetCode(err))
}

func TestFeaturizeCmd_InputNotFound(t *testing.T) {
	_, _, err := executeRoot(t, "featurize", "--input", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestFeaturizeCmd_InvalidSink(t *testing.T) {
	_, _, err := executeRoot(t,
		"featurize",
		"--input", writeInput(t, trainingInput),
		"--sink", "tape",
	)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestFeaturizeCmd_NegativeBatchSize(t *testing.T) {
	_, _, err := executeRoot(t,
		"featurize",
		"--input", writeInput(t, trainingInput),
		"--batch-size", "-3",
	)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestFeaturizeCmd_BadReactionFails(t *testing.T) {
	_, _, err := executeRoot(t,
		"featurize",
		"--input", writeInput(t, "[CH3:1][OH:3] 1-2\n"),
		"--out", t.TempDir(),
	)
	require.Error(t, err)
	assert.Equal(t, errors.CodeAtomMapInvalid, errors.GetCode(err))
}

func TestFeaturizeCmd_MetricsTextfile(t *testing.T) {
	t.Setenv("RXNCENTER_METRICS_ENABLED", "true")
	metricsPath := filepath.Join(t.TempDir(), "rxncenter.prom")

	_, _, err := executeRoot(t,
		"featurize",
		"--input", writeInput(t, trainingInput),
		"--out", t.TempDir(),
		"--metrics-out", metricsPath,
	)
	require.NoError(t, err)

	raw, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `rxncenter_batches_total{kind="training",status="success"} 1`)
	assert.Contains(t, body, `rxncenter_exports_total{sink="dir",status="success"} 1`)
	assert.Contains(t, body, "rxncenter_positive_labels_total 8")
}

//Personal.AI order the ending
