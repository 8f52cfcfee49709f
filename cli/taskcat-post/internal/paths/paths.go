package paths

import (
	"path/filepath"
	"strings"
)

// OutputDirName is the directory taskcat writes its reports to.
const OutputDirName = "taskcat_outputs"

// OutputDir returns the report directory with a trailing separator.
// - workspace set  : <workspace>/taskcat_outputs/
// - workspace empty: taskcat_outputs/ (relative to the working directory)
func OutputDir(workspace string) string {
	workspace = strings.TrimSpace(workspace)
	if workspace == "" {
		return OutputDirName + string(filepath.Separator)
	}
	return filepath.Join(workspace, OutputDirName) + string(filepath.Separator)
}

// ArtifactName is the base name of dir, ignoring any trailing separator.
func ArtifactName(dir string) string {
	return filepath.Base(strings.TrimRight(dir, `/\`))
}
