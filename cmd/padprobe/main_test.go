package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cboone/padprobe"
)

func resultWith(kind padprobe.VerdictKind) *padprobe.Result {
	return &padprobe.Result{
		Scenario: "sc",
		Verdict:  padprobe.Verdict{Kind: kind, Reason: "why"},
		Duration: 100 * time.Millisecond,
	}
}

func TestExitCodeFor(t *testing.T) {
	require.Equal(t, exitSuccess, exitCodeFor(nil))
	require.Equal(t, exitSuccess, exitCodeFor([]*padprobe.Result{
		resultWith(padprobe.Success),
	}))
	require.Equal(t, exitTestFailure, exitCodeFor([]*padprobe.Result{
		resultWith(padprobe.Success),
		resultWith(padprobe.Partial),
	}))
	require.Equal(t, exitTestFailure, exitCodeFor([]*padprobe.Result{
		resultWith(padprobe.Failure),
	}))
}

func TestDetailFor(t *testing.T) {
	ok := resultWith(padprobe.Success)
	ok.Verdict.MatchedMarker = "PARAM_LOCK: marker"
	ok.Verdict.Reason = ""
	require.Equal(t, "PARAM_LOCK: marker", detailFor(ok))

	bad := resultWith(padprobe.Failure)
	require.Equal(t, "why", detailFor(bad))
}
