package runner

import (
	"context"
	"fmt"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/config"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/execx"
)

const (
	// PackageManager installs the tool upgrades.
	PackageManager = "pip"
	// PrimaryTool is the test tool the action wraps.
	PrimaryTool = "taskcat"

	ToolCfnLint = "cfn_lint"
	ToolTaskcat = "taskcat"
)

// MainCommandFailedMessage is reported when taskcat exits non-zero.
const MainCommandFailedMessage = "The taskcat test did not complete successfully."

// Host is the runner-side API the post step needs.
type Host interface {
	config.Host
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	SetSecret(value string)
	SetFailed(msg string)
}

// Artifacts masks and uploads taskcat's reports.
type Artifacts interface {
	MaskAndPublish(ctx context.Context, accountID string) error
}

// UpgradeCommandFailedError is a pip upgrade that could not start or exited
// non-zero. Code is -1 when the command never started.
type UpgradeCommandFailedError struct {
	Tool string
	Code int
	Err  error
}

func (e *UpgradeCommandFailedError) Error() string {
	if e.Code == -1 && e.Err != nil {
		return fmt.Sprintf("Unable to upgrade %s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("Upgrading %s failed with exit code %d", e.Tool, e.Code)
}

func (e *UpgradeCommandFailedError) Unwrap() error { return e.Err }

// MainCommandFailedError is taskcat exiting non-zero.
type MainCommandFailedError struct {
	Code int
}

func (e *MainCommandFailedError) Error() string { return MainCommandFailedMessage }

// UpgradeCommand is the pip invocation that upgrades tool.
func UpgradeCommand(tool string) execx.Command {
	return execx.Command{Name: PackageManager, Args: []string{"install", "--upgrade", tool}}
}

// MainCommand is the taskcat invocation for the configured arguments.
func MainCommand(args []string) execx.Command {
	return execx.Command{Name: PrimaryTool, Args: append([]string(nil), args...)}
}

// run starts cmd, logs its output and waits for it to exit.
func run(ctx context.Context, sp execx.Spawner, h Host, cmd execx.Command) (execx.Result, error) {
	p, err := sp.Start(ctx, cmd, func(_ execx.Stream, chunk string) {
		h.Info(execx.TrimLineEnding(chunk))
	})
	if err != nil {
		return execx.Result{Code: -1, Err: err}, err
	}
	return p.Wait(), nil
}
