package padprobe

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
)

// TimeoutExitCode is the conventional sentinel for a harness-imposed timeout,
// matching the exit code of timeout(1).
const TimeoutExitCode = 124

// StatusKind identifies how a run reached its terminal state.
type StatusKind int

const (
	// StatusExited means the target exited on its own.
	StatusExited StatusKind = iota
	// StatusTimedOut means the harness force-terminated the target after the
	// run timeout elapsed.
	StatusTimedOut
	// StatusKilled means the target was force-terminated because the run was
	// interrupted.
	StatusKilled
)

// Status is the terminal status of a completed run.
type Status struct {
	Kind     StatusKind
	ExitCode int    // exit code, or TimeoutExitCode for timeouts, -1 for kills
	Signal   string // signal used to terminate, when Kind is not StatusExited
}

func (s Status) String() string {
	switch s.Kind {
	case StatusExited:
		return fmt.Sprintf("exited(%d)", s.ExitCode)
	case StatusTimedOut:
		return fmt.Sprintf("timed-out(%s)", s.Signal)
	case StatusKilled:
		return fmt.Sprintf("killed(%s)", s.Signal)
	}
	return fmt.Sprintf("unknown(%d)", int(s.Kind))
}

// CapturedOutput is an immutable record of everything the target wrote,
// plus its terminal status. It is frozen when the run ends; a killed target
// may leave it empty or truncated, which is valid.
type CapturedOutput struct {
	stdout []byte
	stderr []byte
	status Status
}

// NewCapturedOutput builds a CapturedOutput from raw buffers. It is exported
// so verdict logic can be exercised in table tests without spawning anything.
func NewCapturedOutput(stdout, stderr []byte, status Status) *CapturedOutput {
	return &CapturedOutput{
		stdout: append([]byte(nil), stdout...),
		stderr: append([]byte(nil), stderr...),
		status: status,
	}
}

// Stdout returns the raw captured standard output.
func (o *CapturedOutput) Stdout() string {
	return string(o.stdout)
}

// Stderr returns the raw captured diagnostic output.
func (o *CapturedOutput) Stderr() string {
	return string(o.stderr)
}

// Status returns the terminal status of the run.
func (o *CapturedOutput) Status() Status {
	return o.status
}

// Diagnostic returns the diagnostic output with ANSI escape sequences
// stripped. The curses-based simulator decorates stderr when it inherits a
// terminal; marker search always runs over the sanitized text.
func (o *CapturedOutput) Diagnostic() string {
	return stripansi.Strip(string(o.stderr))
}

// DiagnosticLines returns the sanitized diagnostic output split into lines,
// without trailing empty lines.
func (o *CapturedOutput) DiagnosticLines() []string {
	return splitLines(o.Diagnostic())
}

// markerText returns the sanitized text markers are searched over: the
// diagnostic output, widened to include sanitized stdout for targets that
// merge their diagnostics into the output stream.
func (o *CapturedOutput) markerText(includeStdout bool) string {
	if !includeStdout {
		return o.Diagnostic()
	}
	return o.Diagnostic() + "\n" + stripansi.Strip(string(o.stdout))
}

func (o *CapturedOutput) markerLines(includeStdout bool) []string {
	return splitLines(o.markerText(includeStdout))
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Contains reports whether the sanitized diagnostic output contains substr.
func (o *CapturedOutput) Contains(substr string) bool {
	return strings.Contains(o.Diagnostic(), substr)
}

// tail returns the last n lines of the sanitized diagnostic output, for
// excerpting in logs and abort messages.
func (o *CapturedOutput) tail(n int) string {
	lines := o.DiagnosticLines()
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
