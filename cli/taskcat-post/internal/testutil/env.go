package testutil

import (
	"bytes"
	"strings"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/actions"
)

// NewHost returns an actions.Core whose inputs come from env and whose
// output is captured in the returned buffer.
func NewHost(env map[string]string) (*actions.Core, *bytes.Buffer) {
	var out bytes.Buffer
	c := actions.New(&out)
	c.LookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return c, &out
}

// Lines splits captured host output into lines, dropping the final newline.
func Lines(out *bytes.Buffer) []string {
	s := strings.TrimSuffix(out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
