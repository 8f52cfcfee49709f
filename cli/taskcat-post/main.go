// Command taskcat-post is the post step of the taskcat GitHub action. It
// takes no flags: every setting arrives as an action input.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/actions"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/artifact"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/artifactclient"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/config"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/execx"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	core := actions.New(os.Stdout)
	if f, path, err := config.ReadInputFile(); err != nil {
		core.Log.WithError(err).Warnf("ignoring input file %s", path)
	} else {
		core.Fallback = f.Lookup
	}

	// No timeout: only the runner cancelling the job stops a child.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entry := &runner.PostEntrypoint{
		Host:      core,
		Spawner:   execx.Exec{Log: core.Log},
		Artifacts: artifactsFor(core),
	}
	_ = entry.Run(ctx)
	return core.ExitCode()
}

func artifactsFor(core *actions.Core) runner.ArtifactsFactory {
	return func(in config.Inputs) (runner.Artifacts, error) {
		client, err := artifactclient.New(artifactclient.Options{
			S3Bucket: in.ArtifactS3Bucket,
			S3Prefix: in.ArtifactS3Prefix,
			Region:   in.AWSRegion,
			Log:      core.Log,
		})
		if err != nil {
			return nil, err
		}
		return artifact.NewManager(client, core, in.Workspace, in.ArtifactName), nil
	}
}
