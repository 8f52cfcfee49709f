package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// InputFileEnv names a YAML file supplying inputs when the post step runs
// outside the runner.
const InputFileEnv = "TASKCAT_ACTION_INPUTS"

// InputFile is the on-disk form:
//
//	inputs:
//	  commands: test run
//	  update_taskcat: "true"
type InputFile struct {
	Inputs map[string]string `yaml:"inputs"`
}

// Lookup returns the value for name and whether the file sets it.
func (f InputFile) Lookup(name string) (string, bool) {
	v, ok := f.Inputs[name]
	return v, ok
}

// ReadInputFile loads the file named by TASKCAT_ACTION_INPUTS. An unset
// variable or a missing file yields an empty InputFile.
func ReadInputFile() (InputFile, string, error) {
	var f InputFile
	f.Inputs = map[string]string{}
	path := strings.TrimSpace(os.Getenv(InputFileEnv))
	if path == "" {
		return f, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, path, nil
		}
		return f, path, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, path, err
	}
	if f.Inputs == nil {
		f.Inputs = map[string]string{}
	}
	return f, path, nil
}
