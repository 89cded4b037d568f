package execs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/termcam/pkg/log"
)

// ErrStart is returned when a process cannot be started.
var ErrStart = errors.New("start")

// stderrLimit caps how much of a child's stderr is kept for diagnostics.
const stderrLimit = 4096

// Process is a running child whose stdout is read as a stream.
type Process struct {
	start  time.Time
	stdout io.ReadCloser
	cmd    *exec.Cmd
	stderr *tailBuffer
	name   string
	once   sync.Once
	err    error
}

// Start launches c with its stdout connected to a pipe. The child is killed
// when ctx is done.
func Start(ctx context.Context, c Command) (*Process, error) {
	ctx, span := otel.Tracer("execs").Start(ctx, "exec.start", trace.WithAttributes(
		attribute.String("command", c.String()),
	))
	defer span.End()

	if c.Command == "" {
		return nil, ErrEmptyCommand
	}

	err := c.Compile()
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G204: Subprocess launched with configured arguments.
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Env = c.GetEnv()

	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStart, err)
	}

	err = cmd.Start()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("%w %s: %w", ErrStart, c.Command, err)
	}

	log.WithContext(ctx).DebugContext(ctx, "process started",
		slog.String("command", c.String()),
		slog.Int("pid", cmd.Process.Pid),
	)

	return &Process{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		name:   c.Command,
		start:  time.Now(),
	}, nil
}

// Stdout returns the child's standard output.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// Stderr returns the most recent output the child wrote to stderr.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// Stop kills the child if it is still running and waits for it to exit.
// Repeated calls return the first result.
func (p *Process) Stop() error {
	p.once.Do(func() {
		err := p.cmd.Process.Kill()
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			slog.Debug("kill process", slog.String("command", p.name), slog.Any("error", err))
		}

		err = p.cmd.Wait()

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			p.err = fmt.Errorf("wait %s: %w", p.name, err)
		}

		slog.Debug("process stopped",
			slog.String("command", p.name),
			slog.Duration("uptime", time.Since(p.start)),
		)
	})

	return p.err
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   []byte
	limit int
	mu    sync.Mutex
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return string(bytes.TrimSpace(t.buf))
}
