package procdrv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSpawnMissingBinary(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn(filepath.Join(t.TempDir(), "does-not-exist"), nil, nil, "")
	require.Nil(t, h, "no handle may exist for a failed spawn")

	var drvErr *Error
	require.True(t, errors.As(err, &drvErr), "want *Error, got %v", err)
	require.Equal(t, "spawn", drvErr.Op)
}

func TestNaturalExitCapturesBothStreams(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("sh", []string{"-c", "echo out; echo err 1>&2; exit 3"}, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	term, err := ctrl.AwaitExit(context.Background(), h, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, StateExited, term.State)
	require.Equal(t, 3, term.ExitCode)
	require.Equal(t, StateExited, h.State())

	stdout, stderr := h.Output()
	require.Equal(t, "out\n", string(stdout))
	require.Equal(t, "err\n", string(stderr))
}

func TestEmptyOutputIsValid(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("true", nil, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	term, err := ctrl.AwaitExit(context.Background(), h, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, StateExited, term.State)

	stdout, stderr := h.Output()
	require.Empty(t, stdout)
	require.Empty(t, stderr)
}

func TestTimeoutKillsAndReaps(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("sleep", []string{"5"}, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	start := time.Now()
	term, err := ctrl.AwaitExit(context.Background(), h, 100*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, StateTimedOut, term.State)
	require.NotEmpty(t, term.Signal)
	require.Less(t, time.Since(start), 2*time.Second, "kill and reap must not wait out the target")
	require.Equal(t, StateTimedOut, h.State())
}

func TestInterruptDuringWait(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("sleep", []string{"5"}, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	term, err := ctrl.AwaitExit(ctx, h, 10*time.Second)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateKilled, term.State)
	require.Equal(t, StateKilled, h.State())
}

func TestWriteAfterExitIsNoOp(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("true", nil, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	_, err = ctrl.AwaitExit(context.Background(), h, 2*time.Second)
	require.NoError(t, err)

	require.NoError(t, ctrl.Write(h, []byte("Q")), "write after exit must be a warning, not an error")
}

func TestWriteReachesStdin(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("head", []string{"-c", "5"}, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	require.NoError(t, ctrl.Write(h, []byte("hello")))

	term, err := ctrl.AwaitExit(context.Background(), h, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, StateExited, term.State)

	stdout, _ := h.Output()
	require.Equal(t, "hello", string(stdout))
}

func TestReleaseKillsRunningTarget(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("sleep", []string{"5"}, nil, "")
	require.NoError(t, err)

	start := time.Now()
	ctrl.Release(h)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, StateKilled, h.State())

	// Idempotent.
	ctrl.Release(h)
	require.Equal(t, StateKilled, h.State())
}

func TestTerminalStateIsEnteredOnce(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)

	h, err := ctrl.Spawn("true", nil, nil, "")
	require.NoError(t, err)
	defer ctrl.Release(h)

	term, err := ctrl.AwaitExit(context.Background(), h, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, StateExited, term.State)

	// A later interrupt cannot re-enter a terminal state.
	after := ctrl.Interrupt(h)
	require.Equal(t, StateExited, after.State)
	require.Equal(t, StateExited, h.State())
}

func TestSpawnSetsDirAndEnv(t *testing.T) {
	ctrl := New(zap.NewNop(), nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "probe"), []byte("here;"), 0o644))

	h, err := ctrl.Spawn("sh", []string{"-c", "cat probe; printf '%s' \"$PROBE_VAR\""}, []string{"PROBE_VAR=on"}, dir)
	require.NoError(t, err)
	defer ctrl.Release(h)

	_, err = ctrl.AwaitExit(context.Background(), h, 2*time.Second)
	require.NoError(t, err)

	stdout, _ := h.Output()
	require.Equal(t, "here;on", string(stdout))
}
