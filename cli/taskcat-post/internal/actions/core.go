package actions

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// InvalidBooleanInputError reports a boolean input outside the YAML 1.2 core
// schema set accepted by GetBooleanInput.
type InvalidBooleanInputError struct {
	Name string
}

func (e *InvalidBooleanInputError) Error() string {
	return fmt.Sprintf("Input does not meet YAML 1.2 \"Core Schema\" specification: %s\n"+
		"Support boolean input list: `true | True | TRUE | false | False | FALSE`", e.Name)
}

var (
	trueValues  = []string{"true", "True", "TRUE"}
	falseValues = []string{"false", "False", "FALSE"}
)

// Core is the runner-facing half of the post step: input lookup, log sink
// and failure reporting.
type Core struct {
	Log *log.Logger

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Fallback is consulted for inputs whose INPUT_ variable is unset.
	Fallback func(name string) (string, bool)

	mu       sync.Mutex
	failed   bool
	exitCode int
}

// New returns a Core writing workflow commands to out. RUNNER_DEBUG=1
// enables ::debug:: output.
func New(out io.Writer) *Core {
	l := log.New()
	l.SetOutput(out)
	l.SetFormatter(Formatter{})
	l.SetLevel(log.InfoLevel)
	if os.Getenv("RUNNER_DEBUG") == "1" {
		l.SetLevel(log.DebugLevel)
	}
	return &Core{Log: l, LookupEnv: os.LookupEnv}
}

// InputEnvName maps an input name to the variable the runner sets for it.
func InputEnvName(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// GetInput returns the trimmed value of the named input, or "" when unset.
func (c *Core) GetInput(name string) string {
	lookup := c.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(InputEnvName(name)); ok {
		return strings.TrimSpace(v)
	}
	if c.Fallback != nil {
		if v, ok := c.Fallback(name); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// GetBooleanInput parses the named input with the YAML 1.2 core schema
// boolean forms. Any other value, the empty string included, is an
// *InvalidBooleanInputError.
func (c *Core) GetBooleanInput(name string) (bool, error) {
	v := c.GetInput(name)
	for _, t := range trueValues {
		if v == t {
			return true, nil
		}
	}
	for _, f := range falseValues {
		if v == f {
			return false, nil
		}
	}
	return false, &InvalidBooleanInputError{Name: name}
}

func (c *Core) Info(msg string) { c.Log.Info(msg) }

func (c *Core) Debug(msg string) { c.Log.Debug(msg) }

func (c *Core) Warning(msg string) { c.Log.Warn(msg) }

func (c *Core) Error(msg string) { c.Log.Error(msg) }

// SetSecret registers value with the runner so it is masked in the job log.
func (c *Core) SetSecret(value string) {
	if value == "" {
		return
	}
	c.Log.WithField(commandField, "add-mask").Info(value)
}

// SetFailed reports msg as the run's fatal error and sets the exit code to 1.
// Only the first call counts; later ones are logged as plain errors.
func (c *Core) SetFailed(msg string) {
	c.mu.Lock()
	first := !c.failed
	c.failed = true
	c.exitCode = 1
	c.mu.Unlock()
	c.Log.Error(msg)
	if !first {
		c.Log.Debug("run already marked as failed")
	}
}

// Failed reports whether SetFailed has been called.
func (c *Core) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

func (c *Core) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}
