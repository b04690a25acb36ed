// Package tuitest drives a compiled binary inside a pseudo terminal, replays
// scripted keystrokes, and records what the program drew. Terminal capability
// queries (cursor position, foreground and background color) are answered
// inline so bubbletea programs do not hang waiting for a real terminal.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultCols    = 120
	defaultRows    = 32
	defaultTimeout = 5 * time.Second
)

// Step is one scripted interaction: wait, then send the bytes. Either part
// may be zero.
type Step struct {
	Wait time.Duration
	Send []byte
}

// Options configures a single scripted run.
type Options struct {
	Command          []string
	Dir              string
	Env              []string
	Cols             int
	Rows             int
	Script           []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording holds everything the program wrote to the terminal.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Run spawns the command in a PTY, replays the script, and waits for exit.
func Run(ctx context.Context, opts Options) (*Recording, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = withTerm(append(os.Environ(), opts.Env...))

	size := &pty.Winsize{Rows: uint16(orDefault(opts.Rows, defaultRows)), Cols: uint16(orDefault(opts.Cols, defaultCols))}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	rec := &recorder{out: ptmx}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		rec.drain(ptmx)
	}()

	start := time.Now()
	for _, step := range opts.Script {
		if step.Wait > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: script interrupted: %w", ctx.Err())
			case <-time.After(step.Wait):
			}
		}
		if len(step.Send) > 0 {
			if _, err := ptmx.Write(step.Send); err != nil {
				return nil, fmt.Errorf("tuitest: send keys: %w", err)
			}
		}
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case err := <-waitErr:
		if err != nil && !exitAllowed(err, opts) {
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for exit: %w", ctx.Err())
	}

	_ = ptmx.Close()
	<-drained

	raw := rec.captured.Bytes()
	return &Recording{
		Raw:      raw,
		Frames:   parseFrames(raw),
		Duration: time.Since(start),
	}, nil
}

func exitAllowed(err error, opts Options) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range opts.AllowedExitCodes {
			if exitErr.ExitCode() == code {
				return true
			}
		}
	}
	return opts.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

// recorder accumulates terminal output and answers capability queries on the
// fly. The pending buffer keeps a short tail so a query split across two
// reads is still recognized.
type recorder struct {
	out      io.Writer
	captured bytes.Buffer
	pending  []byte
}

func (r *recorder) drain(src io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			r.captured.Write(buf[:n])
			r.answerQueries(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

var terminalQueries = []struct {
	query, reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

func (r *recorder) answerQueries(chunk []byte) {
	r.pending = append(r.pending, chunk...)
	for {
		answered := false
		for _, tq := range terminalQueries {
			if idx := bytes.Index(r.pending, tq.query); idx >= 0 {
				r.pending = r.pending[idx+len(tq.query):]
				_, _ = r.out.Write(tq.reply)
				answered = true
			}
		}
		if !answered {
			break
		}
	}
	if len(r.pending) > 256 {
		r.pending = r.pending[len(r.pending)-64:]
	}
}

func withTerm(env []string) []string {
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

var (
	// KeyEnter sends a carriage return to the PTY.
	KeyEnter = []byte{'\r'}
	// KeyCtrlC requests the program to terminate.
	KeyCtrlC = []byte{3}
	// KeyEsc exits transient overlays inside the TUI.
	KeyEsc = []byte{27}
)
