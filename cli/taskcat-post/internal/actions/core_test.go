package actions

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(env map[string]string) (*Core, *bytes.Buffer) {
	var out bytes.Buffer
	c := New(&out)
	c.LookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return c, &out
}

func TestInputEnvName(t *testing.T) {
	assert.Equal(t, "INPUT_COMMANDS", InputEnvName("commands"))
	assert.Equal(t, "INPUT_AWS-ACCOUNT-ID", InputEnvName("aws-account-id"))
	assert.Equal(t, "INPUT_MY_INPUT", InputEnvName("my input"))
}

func TestGetInput(t *testing.T) {
	c, _ := newTestCore(map[string]string{"INPUT_COMMANDS": "  test run \n"})
	assert.Equal(t, "test run", c.GetInput("commands"))
	assert.Equal(t, "", c.GetInput("aws-account-id"))
}

func TestGetInputFallback(t *testing.T) {
	c, _ := newTestCore(map[string]string{"INPUT_COMMANDS": ""})
	c.Fallback = func(name string) (string, bool) {
		return "from-file-" + name, true
	}
	assert.Equal(t, "", c.GetInput("commands"), "a set variable wins even when empty")
	assert.Equal(t, "from-file-aws-account-id", c.GetInput("aws-account-id"))
}

func TestGetBooleanInput(t *testing.T) {
	cases := map[string]bool{
		"true": true, "True": true, "TRUE": true,
		"false": false, "False": false, "FALSE": false,
	}
	for raw, want := range cases {
		c, _ := newTestCore(map[string]string{"INPUT_UPDATE_TASKCAT": raw})
		got, err := c.GetBooleanInput("update_taskcat")
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestGetBooleanInputRejectsOtherValues(t *testing.T) {
	for _, raw := range []string{"test", "yes", "1", "tRUE", ""} {
		c, _ := newTestCore(map[string]string{"INPUT_UPDATE_TASKCAT": raw})
		_, err := c.GetBooleanInput("update_taskcat")
		var invalid *InvalidBooleanInputError
		require.ErrorAs(t, err, &invalid, raw)
		assert.Equal(t, "update_taskcat", invalid.Name)
		assert.Equal(t, "Input does not meet YAML 1.2 \"Core Schema\" specification: update_taskcat\n"+
			"Support boolean input list: `true | True | TRUE | false | False | FALSE`", err.Error())
	}
}

func TestLogOutput(t *testing.T) {
	c, out := newTestCore(nil)
	c.Info("Output from\r\n taskcat's stdout")
	c.Warning("50% done\nnext")
	c.Error("boom")
	c.SetSecret("1234567890")
	c.SetSecret("")
	want := "Output from\r\n taskcat's stdout\n" +
		"::warning::50%25 done%0Anext\n" +
		"::error::boom\n" +
		"::add-mask::1234567890\n"
	assert.Equal(t, want, out.String())
}

func TestDebugHiddenByDefault(t *testing.T) {
	t.Setenv("RUNNER_DEBUG", "")
	c, out := newTestCore(nil)
	c.Debug("hidden")
	assert.Empty(t, out.String())

	t.Setenv("RUNNER_DEBUG", "1")
	var buf bytes.Buffer
	c = New(&buf)
	c.Debug("shown")
	assert.Equal(t, "::debug::shown\n", buf.String())
}

func TestSetFailed(t *testing.T) {
	c, out := newTestCore(nil)
	assert.False(t, c.Failed())
	assert.Equal(t, 0, c.ExitCode())

	c.SetFailed("The taskcat test did not complete successfully.")
	assert.True(t, c.Failed())
	assert.Equal(t, 1, c.ExitCode())
	assert.Equal(t, "::error::The taskcat test did not complete successfully.\n", out.String())
}
