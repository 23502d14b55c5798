// Package padprobe provides black-box testing for interactive control-surface
// simulators.
//
// padprobe spawns a real simulator binary, writes a precisely timed sequence
// of key tokens to its stdin, captures stdout and stderr, bounds the run with
// a timeout, and classifies the outcome by searching the diagnostic output
// for expected markers. It is built for targets whose behavior branches on
// hold duration (press-to-release intervals measured against a threshold of a
// few hundred milliseconds), where coarse scheduling silently invalidates a
// scenario.
//
// # Quick Start
//
//	func TestHoldEntersLock(t *testing.T) {
//		sc := padprobe.Scenario{
//			Name:    "hold-past-threshold",
//			Command: "./trellis_simulation",
//			Dir:     "build-simulation",
//			Events: append(
//				padprobe.Hold('Q', 700*time.Millisecond),
//				padprobe.After(100*time.Millisecond, padprobe.Quit()),
//			),
//			Markers:      []string{"PARAM_LOCK: Successfully entered parameter lock mode"},
//			MarkerPrefix: "PARAM_LOCK:",
//		}
//		res := padprobe.RunT(t, sc)
//		if res.Verdict.Kind != padprobe.Success {
//			t.Fatalf("verdict: %v", res.Verdict)
//		}
//	}
//
// # Scenarios
//
// A [Scenario] is a declarative value: target command, working directory, an
// ordered list of [InputEvent] (delay before sending, payload bytes), the
// expected markers, and the acceptable exit codes. Scenarios are constructible
// in code or loaded from YAML with [LoadSuite]; they are independent of the
// engine and can be built and validated without spawning anything.
//
// # Input Protocol
//
// The target consumes single-character tokens: an uppercase letter or digit is
// a press edge, the matching lowercase letter (or shifted symbol, for digits)
// is the release edge, and ESC (0x1b) requests clean shutdown. [Press],
// [Release], [Quit], and [Hold] build payloads in this vocabulary.
//
// # Timing
//
// Events are written strictly in order; an event's delay begins only after the
// previous write completed, and each write is flushed before the next delay
// starts. The scheduler measures its own oversleep and reports anything beyond
// a small slack (default 50ms) as an [InfraError]: a defect in the test
// infrastructure, not in the target.
//
// # Lifecycle
//
// Every run ends in exactly one of three terminal states: natural exit,
// harness-imposed timeout kill, or kill on interrupt. Resources (pipes,
// process table entry) are released on every path; a run never leaves an
// orphaned subprocess and never hangs past its timeout.
//
// # Verdicts
//
// [Evaluate] is a pure function of the captured output and the scenario: an
// exact marker hit with an acceptable terminal status is [Success]; a line
// sharing the scenario's marker prefix is [Partial]; anything else is
// [Failure]. A timeout kill counts as acceptable when the scenario sets
// ExpectTimeout, since interactive targets are deliberately force-stopped at
// the end of most scenarios.
//
// # Snapshots
//
// [CapturedOutput.MatchSnapshot] compares normalized diagnostic output to
// golden files under testdata. Set PADPROBE_UPDATE=1 to create or update
// golden files.
//
// # Requirements
//
//   - Go 1.24+
//   - Linux or macOS
package padprobe
