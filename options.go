package padprobe

import (
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type options struct {
	timeout         time.Duration
	slack           time.Duration
	killSignal      os.Signal
	logger          *zap.Logger
	env             []string
	markersOnStdout bool
}

// Option configures a single Run.
type Option func(*options)

// WithTimeout sets the ceiling on the wait for natural exit after all input
// events have been sent. When it elapses the target is force-terminated.
// Scenarios may override it per-run via Scenario.Timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithSlack sets the scheduler's oversleep tolerance per input event.
// Oversleeping beyond it invalidates the scenario's timing and aborts the run
// with an InfraError. A value of 0 or below uses the default (50ms).
func WithSlack(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.slack = d
		}
	}
}

// WithKillSignal sets the signal used to force-terminate the target on
// timeout or interrupt. Defaults to SIGKILL.
func WithKillSignal(sig os.Signal) Option {
	return func(o *options) {
		o.killSignal = sig
	}
}

// WithLogger sets the logger for lifecycle events and warnings
// (write-after-exit, scheduler oversleep). Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEnv appends environment variables to the target's environment, on top
// of any set by the scenario. Each entry should be in "KEY=VALUE" format.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithMarkersOnStdout widens the marker search to include stdout for every
// scenario in the run, for targets that merge their diagnostics into the
// output stream. Equivalent to setting Scenario.MarkersOnStdout per scenario.
func WithMarkersOnStdout() Option {
	return func(o *options) {
		o.markersOnStdout = true
	}
}

const (
	defaultTimeout = 5 * time.Second
	defaultSlack   = 50 * time.Millisecond
)

func defaultOptions() options {
	return options{
		timeout:    defaultTimeout,
		slack:      defaultSlack,
		killSignal: syscall.SIGKILL,
		logger:     zap.NewNop(),
	}
}
