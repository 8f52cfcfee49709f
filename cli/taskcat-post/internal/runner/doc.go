// Package runner is the post step itself: it validates the action inputs,
// optionally upgrades cfn-lint and taskcat with pip, runs taskcat and hands
// its reports to the artifact package.
//
// Commands run one at a time. Each chunk a child writes to stdout or stderr
// is logged as an info line with one trailing line ending removed; no line
// buffering is done, so a chunk holding several lines is logged as one entry.
// No timeout is applied to any child: a hung taskcat hangs the step until the
// runner cancels the job.
package runner
