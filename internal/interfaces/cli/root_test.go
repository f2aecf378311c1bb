package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/rxncenter/pkg/errors"
)

// executeRoot runs the root command with args in an isolated HOME and
// returns stdout, stderr and the error.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "rxncenter", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, Version)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"featurize", "inspect", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	pf := cmd.PersistentFlags()

	for _, name := range []string{"config", "log-level", "output", "verbose", "no-color", "timeout"} {
		assert.NotNil(t, pf.Lookup(name), name)
	}
	assert.Equal(t, "v", pf.Lookup("verbose").Shorthand)
	assert.Equal(t, "text", pf.Lookup("output").DefValue)
	assert.Equal(t, "c", pf.Lookup("config").Shorthand)
}

func TestVersionCmd_JSON(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	out, _, err := executeRoot(t, "version", "-o", "json")
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, GitCommit, info.Commit)
}

func TestVersionCmd_Text(t *testing.T) {
	out, _, err := executeRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rxncenter "+Version)
}

func TestExecute_UnknownSubcommand(t *testing.T) {
	_, _, err := executeRoot(t, "unknownsubcommand")
	assert.Error(t, err)
}

func TestExecute_InvalidOutputFormat(t *testing.T) {
	_, _, err := executeRoot(t, "version", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestExecute_MissingConfigFile(t *testing.T) {
	_, _, err := executeRoot(t, "version", "--config", "/nonexistent/rxncenter.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := GetCLIContext(cmd)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestPrintResult_WithoutContextFallsBackToJSON(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, PrintResult(cmd, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	PrintError(cmd, nil)
	assert.Empty(t, buf.String())

	PrintError(cmd, errors.InvalidSMILES("bad"))
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "[MOL_001] bad")
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONGER"}, [][]string{{"xyz", "1"}, {"q"}})
	want := "A    LONGER\n" +
		"---  ------\n" +
		"xyz  1     \n" +
		"q  " + "  " + "      \n"
	assert.Equal(t, want, out)
	assert.Empty(t, FormatTable(nil, nil))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd", padRight("abcd", 2))
}

//Personal.AI order the ending
