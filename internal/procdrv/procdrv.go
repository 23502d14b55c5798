// Package procdrv provides low-level subprocess lifecycle management for the
// padprobe harness: spawn, write-to-stdin, bounded wait, and guaranteed
// release. It is internal to the padprobe package.
//
// A Handle moves through an explicit state machine:
//
//	Spawned -> Running -> {Exited | TimedOut | Killed}
//
// Terminal states are entered exactly once, and every exit path funnels
// through Release, so a run can never leave a zombie or an orphaned process.
package procdrv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"
	"go.uber.org/zap"
)

// State is a lifecycle state of a Handle.
type State int

const (
	StateSpawned State = iota
	StateRunning
	StateExited
	StateTimedOut
	StateKilled
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateTimedOut:
		return "timed-out"
	case StateKilled:
		return "killed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type trigger int

const (
	triggerStarted trigger = iota
	triggerExited
	triggerTimedOut
	triggerInterrupted
)

// newLifecycle builds the handle state machine. Terminal states have no
// outgoing transitions, so a second terminal trigger is rejected by the
// machine itself.
func newLifecycle() *stateless.StateMachine {
	sm := stateless.NewStateMachine(StateSpawned)
	sm.Configure(StateSpawned).
		Permit(triggerStarted, StateRunning)
	sm.Configure(StateRunning).
		Permit(triggerExited, StateExited).
		Permit(triggerTimedOut, StateTimedOut).
		Permit(triggerInterrupted, StateKilled)
	return sm
}

// Terminal records how a process ended.
type Terminal struct {
	State    State
	ExitCode int    // valid when State is StateExited
	Signal   string // signal used, when State is StateTimedOut or StateKilled
}

// Error represents a process driving failure.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("procdrv: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("procdrv: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// streamBuffer is an append-only buffer safe for one concurrent writer (the
// exec copy goroutine) and readers taking snapshots mid-run.
type streamBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *streamBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *streamBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf...)
}

// Controller owns the lifecycle of spawned processes. A Handle is exclusively
// owned by the Controller that spawned it; all writes and termination go
// through the Controller.
type Controller struct {
	log        *zap.Logger
	killSignal os.Signal
}

// New creates a Controller. killSignal is used to force-terminate targets on
// timeout or interrupt.
func New(log *zap.Logger, killSignal os.Signal) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if killSignal == nil {
		killSignal = syscall.SIGKILL
	}
	return &Controller{log: log, killSignal: killSignal}
}

// Handle represents one live or completed subprocess.
type Handle struct {
	// ID identifies the run in logs.
	ID string

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *streamBuffer
	stderr  *streamBuffer
	machine *stateless.StateMachine

	// waitDone is closed once cmd.Wait has returned and waitErr is set.
	waitDone chan struct{}
	waitErr  error

	mu          sync.Mutex
	term        Terminal
	terminalSet bool

	releaseOnce sync.Once
}

// Spawn launches the target with stdin writable and stdout/stderr drained
// concurrently into append-only buffers from the moment the process starts.
// A missing or non-invocable executable fails with *Error before any handle
// exists.
func (c *Controller) Spawn(command string, args, env []string, dir string) (*Handle, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	h := &Handle{
		ID:       uuid.NewString(),
		cmd:      cmd,
		stdout:   &streamBuffer{},
		stderr:   &streamBuffer{},
		machine:  newLifecycle(),
		waitDone: make(chan struct{}),
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &Error{Op: "spawn", Path: command, Err: err}
	}
	h.stdin = stdin

	// os/exec copies each stream in its own goroutine, so output produced
	// while the harness is still writing input is drained without blocking.
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr

	if err := cmd.Start(); err != nil {
		return nil, &Error{Op: "spawn", Path: command, Err: err}
	}
	if err := h.machine.Fire(triggerStarted); err != nil {
		// Unreachable with a fresh machine; surface it rather than hide it.
		return nil, &Error{Op: "spawn", Path: command, Err: err}
	}

	go func() {
		h.waitErr = cmd.Wait()
		close(h.waitDone)
	}()

	c.log.Debug("spawned target",
		zap.String("run", h.ID),
		zap.String("command", command),
		zap.Int("pid", cmd.Process.Pid))

	return h, nil
}

// Write appends bytes to the target's stdin. Pipes are unbuffered, so the
// target observes the bytes as soon as it reads. Writing after the process
// has exited is not an error; the input is dropped with a warning, since the
// target can no longer be forced to read it.
func (c *Controller) Write(h *Handle, p []byte) error {
	if h.exited() {
		c.log.Warn("write after exit; input dropped",
			zap.String("run", h.ID),
			zap.ByteString("payload", p))
		return nil
	}

	if _, err := h.stdin.Write(p); err != nil {
		if h.exited() || errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
			c.log.Warn("write raced with exit; input dropped",
				zap.String("run", h.ID),
				zap.ByteString("payload", p))
			return nil
		}
		return &Error{Op: "write", Err: err}
	}
	return nil
}

// AwaitExit blocks until the target exits naturally, the timeout elapses, or
// ctx is cancelled. On timeout or cancellation the target is force-terminated
// and reaped before AwaitExit returns, so no zombie survives either path.
// Cancellation is reported via the returned error alongside the Killed
// terminal record.
func (c *Controller) AwaitExit(ctx context.Context, h *Handle, timeout time.Duration) (Terminal, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.waitDone:
		term := Terminal{State: StateExited, ExitCode: h.cmd.ProcessState.ExitCode()}
		h.toTerminal(triggerExited, term)
		c.log.Debug("target exited", zap.String("run", h.ID), zap.Int("code", term.ExitCode))
		return h.Terminal(), nil

	case <-timer.C:
		c.kill(h)
		<-h.waitDone
		term := Terminal{State: StateTimedOut, Signal: c.killSignal.String()}
		h.toTerminal(triggerTimedOut, term)
		c.log.Debug("target timed out and was killed",
			zap.String("run", h.ID),
			zap.Duration("timeout", timeout))
		return h.Terminal(), nil

	case <-ctx.Done():
		c.kill(h)
		<-h.waitDone
		term := Terminal{State: StateKilled, Signal: c.killSignal.String()}
		h.toTerminal(triggerInterrupted, term)
		c.log.Debug("run interrupted; target killed", zap.String("run", h.ID))
		return h.Terminal(), ctx.Err()
	}
}

// Interrupt force-terminates and reaps the target immediately, entering the
// Killed terminal state. Safe to call on an already-terminated handle.
func (c *Controller) Interrupt(h *Handle) Terminal {
	if !h.exited() {
		c.kill(h)
	}
	<-h.waitDone
	h.toTerminal(triggerInterrupted, Terminal{State: StateKilled, Signal: c.killSignal.String()})
	return h.Terminal()
}

// Release frees all OS resources held by the handle: stdin pipe, process
// table entry. It runs at most once, is safe on every exit path, and kills
// and reaps the target if it is somehow still running.
func (c *Controller) Release(h *Handle) {
	h.releaseOnce.Do(func() {
		_ = h.stdin.Close()

		select {
		case <-h.waitDone:
		default:
			c.kill(h)
			<-h.waitDone
			h.toTerminal(triggerInterrupted, Terminal{State: StateKilled, Signal: c.killSignal.String()})
		}

		c.log.Debug("released", zap.String("run", h.ID), zap.Stringer("state", h.State()))
	})
}

func (c *Controller) kill(h *Handle) {
	if err := h.cmd.Process.Signal(c.killSignal); err != nil && !errors.Is(err, os.ErrProcessDone) {
		c.log.Warn("kill failed", zap.String("run", h.ID), zap.Error(err))
	}
}

// State returns the handle's current lifecycle state.
func (h *Handle) State() State {
	return h.machine.MustState().(State)
}

// Terminal returns the terminal record. Valid only once the handle has
// reached a terminal state.
func (h *Handle) Terminal() Terminal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.term
}

// Output snapshots the captured stdout and stderr. Callable mid-run; the
// buffers are append-only until release.
func (h *Handle) Output() (stdout, stderr []byte) {
	return h.stdout.Bytes(), h.stderr.Bytes()
}

// exited reports whether the process has been reaped.
func (h *Handle) exited() bool {
	select {
	case <-h.waitDone:
		return true
	default:
		return false
	}
}

// toTerminal fires the transition and records the terminal state, exactly
// once. A second call is a no-op: the machine has no transitions out of
// terminal states and terminalSet guards the record.
func (h *Handle) toTerminal(tr trigger, term Terminal) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.terminalSet {
		return false
	}
	if err := h.machine.Fire(tr); err != nil {
		return false
	}
	h.term = term
	h.terminalSet = true
	return true
}
