package padprobe

import (
	"fmt"
	"strings"
)

// VerdictKind is the three-way classification of a completed run.
type VerdictKind int

const (
	// Failure means no expected marker (nor any related diagnostic line)
	// was found, or the terminal status was unacceptable.
	Failure VerdictKind = iota
	// Partial means a diagnostic line shared the scenario's marker prefix
	// but no expected marker matched exactly, or a marker matched while the
	// terminal status was unacceptable.
	Partial
	// Success means an expected marker matched exactly and the terminal
	// status was acceptable.
	Success
)

func (k VerdictKind) String() string {
	switch k {
	case Success:
		return "SUCCESS"
	case Partial:
		return "PARTIAL"
	case Failure:
		return "FAILURE"
	}
	return fmt.Sprintf("VerdictKind(%d)", int(k))
}

// Verdict is the final classification of one scenario run. Every run that was
// not aborted produces exactly one Verdict.
type Verdict struct {
	Kind VerdictKind
	// MatchedMarker is the first expected marker found in the diagnostic
	// output, or empty when none matched.
	MatchedMarker string
	// Reason explains Partial and Failure classifications.
	Reason string
	// Status is the terminal status the verdict was computed against.
	Status Status
}

func (v Verdict) String() string {
	if v.Reason == "" {
		return fmt.Sprintf("%s (%s)", v.Kind, v.Status)
	}
	return fmt.Sprintf("%s (%s): %s", v.Kind, v.Status, v.Reason)
}

// Evaluate classifies a completed run. It is a pure function of the captured
// output and the scenario: identical inputs always produce identical verdicts.
//
// The exit status is acceptable iff the target exited naturally with a code in
// the scenario's acceptable set, or the run timed out and the scenario expects
// to be force-stopped. The marker check is an ordered substring search over
// the sanitized diagnostic output, widened to include stdout when the scenario
// sets MarkersOnStdout: an exact marker hit with an acceptable status is
// Success; an exact hit with an unacceptable status, or a line merely sharing
// the marker prefix, is Partial; anything else is Failure.
func Evaluate(captured *CapturedOutput, sc Scenario) Verdict {
	status := captured.Status()
	statusOK := statusAcceptable(status, sc)
	text := captured.markerText(sc.MarkersOnStdout)

	matched := ""
	for _, m := range sc.Markers {
		if strings.Contains(text, m) {
			matched = m
			break
		}
	}

	switch {
	case matched != "" && statusOK:
		return Verdict{Kind: Success, MatchedMarker: matched, Status: status}

	case matched != "":
		return Verdict{
			Kind:          Partial,
			MatchedMarker: matched,
			Reason:        fmt.Sprintf("marker matched but terminal status %s is not acceptable", status),
			Status:        status,
		}

	case sc.MarkerPrefix != "" && hasLineWithPrefix(captured, sc.MarkerPrefix, sc.MarkersOnStdout):
		return Verdict{
			Kind:   Partial,
			Reason: fmt.Sprintf("related diagnostic lines with prefix %q, but no expected marker", sc.MarkerPrefix),
			Status: status,
		}

	case !statusOK:
		return Verdict{
			Kind:   Failure,
			Reason: fmt.Sprintf("no expected marker found and terminal status %s is not acceptable", status),
			Status: status,
		}

	default:
		return Verdict{
			Kind:   Failure,
			Reason: "no expected marker found in diagnostic output",
			Status: status,
		}
	}
}

func statusAcceptable(status Status, sc Scenario) bool {
	switch status.Kind {
	case StatusExited:
		for _, code := range sc.acceptableExitCodes() {
			if status.ExitCode == code {
				return true
			}
		}
		return false
	case StatusTimedOut:
		return sc.ExpectTimeout
	default:
		return false
	}
}

func hasLineWithPrefix(captured *CapturedOutput, prefix string, includeStdout bool) bool {
	for _, line := range captured.markerLines(includeStdout) {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return true
		}
	}
	return false
}
