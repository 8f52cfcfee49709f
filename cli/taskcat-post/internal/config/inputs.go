package config

import (
	"os"
	"strings"
)

const (
	InputCommands         = "commands"
	InputUpdateCfnLint    = "update_cfn_lint"
	InputUpdateTaskcat    = "update_taskcat"
	InputAWSAccountID     = "aws-account-id"
	InputArtifactName     = "artifact-name"
	InputArtifactS3Bucket = "artifact-s3-bucket"
	InputArtifactS3Prefix = "artifact-s3-prefix"
	InputAWSRegion        = "aws-region"
)

// Host is the input side of the runner.
type Host interface {
	GetInput(name string) string
	GetBooleanInput(name string) (bool, error)
}

// Inputs is the validated configuration for one post-step run.
type Inputs struct {
	// RawCommands is the commands input as received.
	RawCommands string
	// Commands is RawCommands split on single spaces.
	Commands      []string
	UpdateCfnLint bool
	UpdateTaskcat bool
	AWSAccountID  string

	ArtifactName     string
	ArtifactS3Bucket string
	ArtifactS3Prefix string
	AWSRegion        string

	// Workspace is GITHUB_WORKSPACE, empty outside the runner.
	Workspace string
}

// Load reads and validates the action inputs. A bad boolean flag is returned
// as the host's error unchanged; nothing else can fail.
func Load(h Host) (Inputs, error) {
	var in Inputs
	var err error
	if in.UpdateCfnLint, err = boolInput(h, InputUpdateCfnLint); err != nil {
		return Inputs{}, err
	}
	if in.UpdateTaskcat, err = boolInput(h, InputUpdateTaskcat); err != nil {
		return Inputs{}, err
	}
	in.RawCommands = h.GetInput(InputCommands)
	in.Commands = SplitCommands(in.RawCommands)
	in.AWSAccountID = h.GetInput(InputAWSAccountID)
	in.ArtifactName = h.GetInput(InputArtifactName)
	in.ArtifactS3Bucket = h.GetInput(InputArtifactS3Bucket)
	in.ArtifactS3Prefix = h.GetInput(InputArtifactS3Prefix)
	in.AWSRegion = h.GetInput(InputAWSRegion)
	in.Workspace = os.Getenv("GITHUB_WORKSPACE")
	return in, nil
}

// boolInput maps an unset flag to false and defers everything else to the
// host's boolean grammar.
func boolInput(h Host, name string) (bool, error) {
	if h.GetInput(name) == "" {
		return false, nil
	}
	return h.GetBooleanInput(name)
}

// SplitCommands splits on single spaces with no quoting support, so "" gives
// one empty argument and repeated spaces give empty arguments.
func SplitCommands(raw string) []string {
	return strings.Split(raw, " ")
}
