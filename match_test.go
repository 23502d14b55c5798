package padprobe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cboone/padprobe"
)

func capturedWith(stdout, stderr string, status padprobe.Status) *padprobe.CapturedOutput {
	return padprobe.NewCapturedOutput([]byte(stdout), []byte(stderr), status)
}

func TestMarkerMatcher(t *testing.T) {
	o := capturedWith("", "boot\n"+lockMarker+"\n", exited(0))

	ok, _ := padprobe.Marker(lockMarker)(o)
	require.True(t, ok)

	ok, desc := padprobe.Marker("absent")(o)
	require.False(t, ok)
	require.Contains(t, desc, "absent")
}

func TestMarkerStripsAnsi(t *testing.T) {
	o := capturedWith("", "\x1b[1;32m"+lockMarker+"\x1b[0m\n", exited(0))

	ok, _ := padprobe.Marker(lockMarker)(o)
	require.True(t, ok)
}

func TestMarkerPrefixMatcher(t *testing.T) {
	o := capturedWith("", "  PARAM_LOCK: something related\n", exited(0))

	ok, _ := padprobe.MarkerPrefix("PARAM_LOCK:")(o)
	require.True(t, ok)

	ok, _ = padprobe.MarkerPrefix("GRID:")(o)
	require.False(t, ok)
}

func TestStdoutMatcher(t *testing.T) {
	o := capturedWith("press Q\n", "", exited(0))

	ok, _ := padprobe.Stdout("press Q")(o)
	require.True(t, ok)

	ok, _ = padprobe.Stdout("press A")(o)
	require.False(t, ok)
}

func TestRegexpMatcher(t *testing.T) {
	o := capturedWith("", "PARAM_LOCK: held for 712ms\n", exited(0))

	ok, _ := padprobe.Regexp(`held for \d+ms`)(o)
	require.True(t, ok)
}

func TestStatusMatchers(t *testing.T) {
	clean := capturedWith("", "", exited(0))
	killed := capturedWith("", "", timedOut())

	ok, _ := padprobe.ExitedWith(0)(clean)
	require.True(t, ok)
	ok, _ = padprobe.ExitedWith(1)(clean)
	require.False(t, ok)

	ok, _ = padprobe.TimedOut()(killed)
	require.True(t, ok)
	ok, _ = padprobe.TimedOut()(clean)
	require.False(t, ok)
}

func TestCombinators(t *testing.T) {
	o := capturedWith("press Q\n", lockMarker+"\n", exited(0))

	ok, _ := padprobe.All(padprobe.Marker(lockMarker), padprobe.Stdout("press Q"))(o)
	require.True(t, ok)

	ok, _ = padprobe.All(padprobe.Marker(lockMarker), padprobe.Stdout("press A"))(o)
	require.False(t, ok)

	ok, _ = padprobe.Any(padprobe.Marker("absent"), padprobe.Stdout("press Q"))(o)
	require.True(t, ok)

	ok, _ = padprobe.Not(padprobe.Marker("absent"))(o)
	require.True(t, ok)
}

func TestEmptyMatcher(t *testing.T) {
	ok, _ := padprobe.Empty()(capturedWith("", "", exited(0)))
	require.True(t, ok)

	ok, _ = padprobe.Empty()(capturedWith("x", "", exited(0)))
	require.False(t, ok)
}

func TestDiagnosticLines(t *testing.T) {
	o := capturedWith("", "one\r\ntwo\n\n", exited(0))
	require.Equal(t, []string{"one", "two"}, o.DiagnosticLines())
}
