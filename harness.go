package padprobe

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cboone/padprobe/internal/procdrv"
)

// Result is the record of one completed (non-aborted) run: exactly one
// verdict plus the fully captured output, per the harness invariant that no
// run ends in an indeterminate state.
type Result struct {
	RunID    string
	Scenario string
	Verdict  Verdict
	Output   *CapturedOutput
	Duration time.Duration
}

// diagnosticTailLines bounds the stderr excerpt attached to abort logs.
const diagnosticTailLines = 10

// Run executes one scenario: spawn the target, drain its output
// concurrently, drive the timed input sequence, wait (bounded by the
// timeout) for natural exit or force-terminate, release all resources, and
// evaluate the captured output into a verdict.
//
// Run returns an error instead of a Result only when no verdict exists:
// a *SpawnError (target missing or not invocable; nothing was scheduled),
// an *InfraError (the scheduler overslept or the input channel broke, so
// the scenario timing is invalid), or an *AbortError (ctx was cancelled
// mid-run; the target has been killed and reaped). It never hangs past the
// configured timeout and never leaves the subprocess attached to the harness.
func Run(ctx context.Context, sc Scenario, userOpts ...Option) (*Result, error) {
	opts := defaultOptions()
	for _, o := range userOpts {
		o(&opts)
	}
	if sc.Timeout > 0 {
		opts.timeout = sc.Timeout
	}
	if opts.markersOnStdout {
		sc.MarkersOnStdout = true
	}
	log := opts.logger

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctrl := procdrv.New(log, opts.killSignal)

	env := append(append([]string(nil), sc.Env...), opts.env...)
	h, err := ctrl.Spawn(sc.Command, sc.Args, env, sc.Dir)
	if err != nil {
		return nil, &SpawnError{Path: sc.Command, Err: err}
	}
	// Guaranteed release on every path out of this function, including
	// panics and early returns below.
	defer ctrl.Release(h)

	log.Info("run started",
		zap.String("run", h.ID),
		zap.String("scenario", sc.Name),
		zap.String("command", sc.Command))

	if err := driveEvents(ctx, ctrl, h, sc.Events, opts.slack, log); err != nil {
		if ctx.Err() != nil {
			term := ctrl.Interrupt(h)
			logAbort(log, h, term)
			return nil, &AbortError{RunID: h.ID, Err: ctx.Err()}
		}
		// Scheduler defect or broken input channel: the run is unusable,
		// tear down and surface it.
		ctrl.Interrupt(h)
		return nil, err
	}

	term, waitErr := ctrl.AwaitExit(ctx, h, opts.timeout)
	if waitErr != nil {
		logAbort(log, h, term)
		return nil, &AbortError{RunID: h.ID, Err: waitErr}
	}

	ctrl.Release(h)
	stdout, stderr := h.Output()
	captured := NewCapturedOutput(stdout, stderr, statusFromTerminal(term))

	verdict := Evaluate(captured, sc)
	log.Info("run finished",
		zap.String("run", h.ID),
		zap.String("scenario", sc.Name),
		zap.Stringer("verdict", verdict.Kind),
		zap.Stringer("status", verdict.Status),
		zap.Duration("duration", time.Since(start)))

	return &Result{
		RunID:    h.ID,
		Scenario: sc.Name,
		Verdict:  verdict,
		Output:   captured,
		Duration: time.Since(start),
	}, nil
}

// RunT executes a scenario inside a test, failing the test on spawn errors,
// scheduler defects, or interruption. The returned Result is always
// non-nil; assertions on the verdict are the caller's.
func RunT(t testing.TB, sc Scenario, userOpts ...Option) *Result {
	t.Helper()
	res, err := Run(context.Background(), sc, userOpts...)
	if err != nil {
		t.Fatalf("padprobe: run: %v", err)
	}
	return res
}

// statusFromTerminal maps the controller's terminal record to the public
// Status. Timeout kills carry the conventional 124 sentinel.
func statusFromTerminal(term procdrv.Terminal) Status {
	switch term.State {
	case procdrv.StateExited:
		return Status{Kind: StatusExited, ExitCode: term.ExitCode}
	case procdrv.StateTimedOut:
		return Status{Kind: StatusTimedOut, ExitCode: TimeoutExitCode, Signal: term.Signal}
	default:
		return Status{Kind: StatusKilled, ExitCode: -1, Signal: term.Signal}
	}
}

// logAbort attaches a diagnostic excerpt to interrupted runs so the abort is
// actionable without rerunning.
func logAbort(log *zap.Logger, h *procdrv.Handle, term procdrv.Terminal) {
	_, stderr := h.Output()
	excerpt := NewCapturedOutput(nil, stderr, Status{}).tail(diagnosticTailLines)
	log.Warn("run aborted",
		zap.String("run", h.ID),
		zap.Stringer("state", term.State),
		zap.String("diagnostic_tail", excerpt))
}
