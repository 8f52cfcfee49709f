package runner

import (
	"context"
	"fmt"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/config"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/execx"
)

// ArtifactsFactory builds the artifact step once the inputs are known.
type ArtifactsFactory func(in config.Inputs) (Artifacts, error)

// PostEntrypoint runs the post step once.
type PostEntrypoint struct {
	Host      Host
	Spawner   execx.Spawner
	Artifacts ArtifactsFactory
}

// Run executes the post step. Any fatal error has already been reported
// through Host.SetFailed when Run returns it; an upgrade failure is only
// logged as a warning and does not stop taskcat from running.
func (p *PostEntrypoint) Run(ctx context.Context) error {
	in, err := config.Load(p.Host)
	if err != nil {
		p.Host.SetFailed(err.Error())
		return err
	}
	p.Host.Info("Received commands: " + in.RawCommands)
	p.Host.SetSecret(in.AWSAccountID)

	if in.UpdateCfnLint {
		if err := p.upgrade(ctx, ToolCfnLint); err != nil {
			p.Host.Warning(err.Error())
		}
	}
	if in.UpdateTaskcat {
		if err := p.upgrade(ctx, ToolTaskcat); err != nil {
			p.Host.Warning(err.Error())
		}
	}
	return p.runTaskcat(ctx, in)
}

func (p *PostEntrypoint) upgrade(ctx context.Context, tool string) error {
	res, err := run(ctx, p.Spawner, p.Host, UpgradeCommand(tool))
	if err != nil {
		return &UpgradeCommandFailedError{Tool: tool, Code: -1, Err: err}
	}
	if res.Code != 0 {
		return &UpgradeCommandFailedError{Tool: tool, Code: res.Code, Err: res.Err}
	}
	return nil
}

// runTaskcat runs the main command, then the artifact step exactly once,
// then reports the outcome. When both fail, taskcat's failure is the fatal
// one and the artifact error is logged.
func (p *PostEntrypoint) runTaskcat(ctx context.Context, in config.Inputs) error {
	res, err := run(ctx, p.Spawner, p.Host, MainCommand(in.Commands))
	if err != nil {
		err = fmt.Errorf("failed to start %s: %w", PrimaryTool, err)
		p.Host.SetFailed(err.Error())
		return err
	}

	artErr := p.publish(ctx, in)

	if res.Code != 0 {
		if artErr != nil {
			p.Host.Error(artErr.Error())
		}
		mainErr := &MainCommandFailedError{Code: res.Code}
		p.Host.SetFailed(mainErr.Error())
		return mainErr
	}
	if artErr != nil {
		p.Host.SetFailed(artErr.Error())
		return artErr
	}
	return nil
}

func (p *PostEntrypoint) publish(ctx context.Context, in config.Inputs) error {
	a, err := p.Artifacts(in)
	if err != nil {
		return fmt.Errorf("artifact upload unavailable: %w", err)
	}
	return a.MaskAndPublish(ctx, in.AWSAccountID)
}
