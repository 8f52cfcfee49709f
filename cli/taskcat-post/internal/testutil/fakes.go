package testutil

import (
	"context"
	"sync"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/artifactclient"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/execx"
)

// Script is the scripted behaviour of one fake process.
type Script struct {
	Stdout   []string
	Stderr   []string
	Code     int
	StartErr error
}

// FakeSpawner is an execx.Spawner that replays Scripts keyed by the full
// command line ("pip install --upgrade taskcat"). Unknown commands get
// Default.
type FakeSpawner struct {
	Scripts map[string]Script
	Default Script

	mu        sync.Mutex
	started   []execx.Command
	active    int
	maxActive int
}

func (f *FakeSpawner) Start(_ context.Context, cmd execx.Command, out execx.OutputFunc) (execx.Process, error) {
	f.mu.Lock()
	f.started = append(f.started, cmd)
	script, ok := f.Scripts[cmd.String()]
	if !ok {
		script = f.Default
	}
	if script.StartErr != nil {
		f.mu.Unlock()
		return nil, script.StartErr
	}
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()

	p := &fakeProcess{code: script.Code, done: make(chan struct{}), spawner: f}
	go func() {
		defer close(p.done)
		if out == nil {
			return
		}
		for _, c := range script.Stdout {
			out(execx.Stdout, c)
		}
		for _, c := range script.Stderr {
			out(execx.Stderr, c)
		}
	}()
	return p, nil
}

// Started returns the commands in launch order.
func (f *FakeSpawner) Started() []execx.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]execx.Command(nil), f.started...)
}

// MaxActive is the largest number of processes alive at the same time.
func (f *FakeSpawner) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

type fakeProcess struct {
	code    int
	done    chan struct{}
	spawner *FakeSpawner
	once    sync.Once
}

func (p *fakeProcess) Wait() execx.Result {
	<-p.done
	p.once.Do(func() {
		p.spawner.mu.Lock()
		p.spawner.active--
		p.spawner.mu.Unlock()
	})
	return execx.Result{Code: p.code}
}

// UploadCall records one UploadArtifact invocation.
type UploadCall struct {
	Name    string
	Files   []string
	RootDir string
}

// FakeArtifactClient records uploads and returns Err.
type FakeArtifactClient struct {
	Err error
	// OnUpload runs before the call returns, for ordering assertions.
	OnUpload func(UploadCall)

	mu    sync.Mutex
	Calls []UploadCall
}

func (f *FakeArtifactClient) UploadArtifact(_ context.Context, name string, files []string, rootDir string) (artifactclient.UploadResponse, error) {
	call := UploadCall{Name: name, Files: append([]string(nil), files...), RootDir: rootDir}
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	f.mu.Unlock()
	if f.OnUpload != nil {
		f.OnUpload(call)
	}
	if f.Err != nil {
		return artifactclient.UploadResponse{}, f.Err
	}
	return artifactclient.UploadResponse{ID: "1", Size: int64(len(files))}, nil
}

// RecordingLog collects Info lines.
type RecordingLog struct {
	mu    sync.Mutex
	lines []string
}

func (r *RecordingLog) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, msg)
}

func (r *RecordingLog) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
