package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stream identifies which output of a child process a chunk came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Command is a single invocation: executable name and ordered arguments.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// OutputFunc receives each chunk of decoded output as it is read. It is
// called from one goroutine per stream and must be safe for concurrent use.
type OutputFunc func(stream Stream, chunk string)

type Result struct {
	Code int
	Err  error
}

// Process is a started command.
type Process interface {
	// Wait blocks until every output chunk has been delivered and the
	// process has exited.
	Wait() Result
}

// Spawner starts commands.
type Spawner interface {
	Start(ctx context.Context, cmd Command, out OutputFunc) (Process, error)
}

// maxChunkSize is the source buffer size of transform.Reader.
const maxChunkSize = 4096

// Exec is the os/exec backed Spawner. Stdin is the null device and stdout
// and stderr are decoded as UTF-8.
type Exec struct {
	// Log receives a "+ cmd" trace at debug level; nil disables it.
	Log *log.Logger
	// ChunkSize bounds a single read; zero means 4 KiB. The UTF-8 decoder
	// never returns more than 4 KiB per read, so larger values have no effect.
	ChunkSize int
}

func (e Exec) Start(ctx context.Context, c Command, out OutputFunc) (Process, error) {
	if e.Log != nil {
		e.Log.Debugf("+ %s", c)
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = nil
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.Name, err)
	}
	size := e.ChunkSize
	if size <= 0 || size > maxChunkSize {
		size = maxChunkSize
	}
	p := &execProcess{cmd: cmd}
	p.wg.Add(2)
	go p.pump(stdout, Stdout, size, out)
	go p.pump(stderr, Stderr, size, out)
	return p, nil
}

type execProcess struct {
	cmd *exec.Cmd
	wg  sync.WaitGroup
}

// pump forwards every read from r as one chunk. Incomplete UTF-8 sequences
// are held back until the rest of the rune arrives.
func (p *execProcess) pump(r io.Reader, s Stream, size int, out OutputFunc) {
	defer p.wg.Done()
	dec := transform.NewReader(r, unicode.UTF8.NewDecoder())
	buf := make([]byte, size)
	var pending []byte
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			var chunk []byte
			chunk, pending = splitIncomplete(append(pending, buf[:n]...))
			if len(chunk) > 0 && out != nil {
				out(s, string(chunk))
			}
		}
		if err != nil {
			if len(pending) > 0 && out != nil {
				out(s, string(pending))
			}
			return
		}
	}
}

// splitIncomplete separates a trailing partial rune from b.
func splitIncomplete(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i], append([]byte(nil), b[i:]...)
			}
			break
		}
	}
	return b, nil
}

func (p *execProcess) Wait() Result {
	// cmd.Wait closes the pipes, so drain them first.
	p.wg.Wait()
	return exitResult(p.cmd.Wait())
}

// exitResult maps a Wait error to an exit code: the process's own code, -1
// when a signal killed it (including context cancellation), 1 otherwise.
func exitResult(err error) Result {
	code := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			code = ee.ExitCode()
		} else {
			code = 1
		}
	}
	return Result{Code: code, Err: err}
}

// TrimLineEnding removes one trailing "\r\n" or "\n" from chunk. Line endings
// inside the chunk are kept.
func TrimLineEnding(chunk string) string {
	if strings.HasSuffix(chunk, "\r\n") {
		return chunk[:len(chunk)-2]
	}
	return strings.TrimSuffix(chunk, "\n")
}
