package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/actions"
)

func hostWith(env map[string]string) *actions.Core {
	c := actions.New(os.Stderr)
	c.LookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return c
}

func TestLoad(t *testing.T) {
	t.Setenv("GITHUB_WORKSPACE", "/github/workspace")
	in, err := Load(hostWith(map[string]string{
		"INPUT_COMMANDS":           "test run",
		"INPUT_UPDATE_CFN_LINT":    "True",
		"INPUT_UPDATE_TASKCAT":     "FALSE",
		"INPUT_AWS-ACCOUNT-ID":     "1234567890",
		"INPUT_ARTIFACT-S3-BUCKET": "reports",
	}))
	require.NoError(t, err)
	assert.Equal(t, "test run", in.RawCommands)
	assert.Equal(t, []string{"test", "run"}, in.Commands)
	assert.True(t, in.UpdateCfnLint)
	assert.False(t, in.UpdateTaskcat)
	assert.Equal(t, "1234567890", in.AWSAccountID)
	assert.Equal(t, "reports", in.ArtifactS3Bucket)
	assert.Equal(t, "/github/workspace", in.Workspace)
}

func TestLoadEmptyFlagsAreFalse(t *testing.T) {
	in, err := Load(hostWith(map[string]string{
		"INPUT_COMMANDS":        "test run",
		"INPUT_UPDATE_CFN_LINT": "",
	}))
	require.NoError(t, err)
	assert.False(t, in.UpdateCfnLint)
	assert.False(t, in.UpdateTaskcat)
}

func TestLoadRejectsInvalidFlag(t *testing.T) {
	_, err := Load(hostWith(map[string]string{
		"INPUT_COMMANDS":       "test run",
		"INPUT_UPDATE_TASKCAT": "test",
	}))
	var invalid *actions.InvalidBooleanInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, InputUpdateTaskcat, invalid.Name)
	assert.Equal(t, "Input does not meet YAML 1.2 \"Core Schema\" specification: update_taskcat\n"+
		"Support boolean input list: `true | True | TRUE | false | False | FALSE`", err.Error())
}

func TestLoadChecksCfnLintFirst(t *testing.T) {
	_, err := Load(hostWith(map[string]string{
		"INPUT_UPDATE_CFN_LINT": "yes",
		"INPUT_UPDATE_TASKCAT":  "no",
	}))
	var invalid *actions.InvalidBooleanInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, InputUpdateCfnLint, invalid.Name)
}

func TestSplitCommands(t *testing.T) {
	assert.Equal(t, []string{""}, SplitCommands(""))
	assert.Equal(t, []string{"test", "run"}, SplitCommands("test run"))
	assert.Equal(t, []string{"test", "", "run"}, SplitCommands("test  run"))
	assert.Equal(t, []string{"-h"}, SplitCommands("-h"))
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputs.yaml")
	data := "inputs:\n  commands: test run\n  update_taskcat: \"true\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv(InputFileEnv, path)

	f, got, err := ReadInputFile()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	v, ok := f.Lookup("commands")
	assert.True(t, ok)
	assert.Equal(t, "test run", v)
	_, ok = f.Lookup("aws-account-id")
	assert.False(t, ok)

	h := hostWith(nil)
	h.Fallback = f.Lookup
	in, err := Load(h)
	require.NoError(t, err)
	assert.True(t, in.UpdateTaskcat)
	assert.Equal(t, []string{"test", "run"}, in.Commands)
	assert.Equal(t, "", in.AWSAccountID)
}

func TestReadInputFileMissing(t *testing.T) {
	t.Setenv(InputFileEnv, filepath.Join(t.TempDir(), "nope.yaml"))
	f, _, err := ReadInputFile()
	require.NoError(t, err)
	assert.Empty(t, f.Inputs)

	t.Setenv(InputFileEnv, "")
	_, path, err := ReadInputFile()
	require.NoError(t, err)
	assert.Equal(t, "", path)
}
