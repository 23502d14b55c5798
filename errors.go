package padprobe

import (
	"errors"
	"fmt"
	"time"
)

// SpawnError reports that the target could not be started: the executable is
// missing, not invocable, or the working directory does not exist. It is
// fatal to the run; no input is scheduled and no process handle exists.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("padprobe: spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsSpawnError reports whether err is or wraps a SpawnError.
func IsSpawnError(err error) bool {
	var spawnErr *SpawnError
	return err != nil && errors.As(err, &spawnErr)
}

// InfraError reports a defect in the harness itself: the scheduler overslept
// an event's delay by more than the configured slack, or the input channel to
// the target broke mid-run, so the scenario's press/hold timing can no longer
// be trusted. It is never attributed to the target.
type InfraError struct {
	Event     int // index of the affected input event
	Overshoot time.Duration
	Slack     time.Duration
	Err       error // non-nil when the input channel itself failed
}

func (e *InfraError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("padprobe: schedule: event %d: input delivery failed: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("padprobe: schedule: event %d overslept by %v (slack %v); scenario timing invalidated",
		e.Event, e.Overshoot, e.Slack)
}

func (e *InfraError) Unwrap() error {
	return e.Err
}

// IsInfraError reports whether err is or wraps an InfraError.
func IsInfraError(err error) bool {
	var infraErr *InfraError
	return err != nil && errors.As(err, &infraErr)
}

// AbortError reports that a run was interrupted before it could be evaluated.
// The target has been force-terminated and reaped; no verdict exists.
type AbortError struct {
	RunID string
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("padprobe: run %s aborted: %v", e.RunID, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// IsAbortError reports whether err is or wraps an AbortError.
func IsAbortError(err error) bool {
	var abortErr *AbortError
	return err != nil && errors.As(err, &abortErr)
}
