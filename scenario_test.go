package padprobe_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cboone/padprobe"
)

func TestLoadSuite(t *testing.T) {
	scenarios, err := padprobe.LoadSuite(filepath.Join("testdata", "suite.yaml"))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	hold := scenarios[0]
	require.Equal(t, "hold-past-threshold", hold.Name)
	require.Equal(t, "./trellis_simulation", hold.Command)
	require.Equal(t, "build-simulation", hold.Dir)
	require.Equal(t, 5*time.Second, hold.Timeout)
	require.Equal(t, []int{0, 124}, hold.ExitCodes)
	require.Equal(t, "PARAM_LOCK:", hold.MarkerPrefix)

	require.Len(t, hold.Events, 3)
	require.Equal(t, []byte("Q"), hold.Events[0].Payload)
	require.Equal(t, time.Duration(0), hold.Events[0].DelayBefore)
	require.Equal(t, []byte("q"), hold.Events[1].Payload)
	require.Equal(t, 700*time.Millisecond, hold.Events[1].DelayBefore)
	require.Equal(t, []byte{0x1b}, hold.Events[2].Payload, "quit event must carry ESC")

	tap := scenarios[1]
	require.Equal(t, "short-tap-no-lock", tap.Name)
	require.Equal(t, 100*time.Millisecond, tap.Events[1].DelayBefore)
}

func TestLoadSuiteMarkersOnStdout(t *testing.T) {
	yaml := "scenarios:\n" +
		"  - name: merged\n" +
		"    command: ./sim\n" +
		"    markers-on-stdout: true\n" +
		"    events:\n" +
		"      - quit: true\n"
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	scenarios, err := padprobe.LoadSuite(path)
	require.NoError(t, err)
	require.True(t, scenarios[0].MarkersOnStdout)
}

func TestLoadSuiteRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing command",
			yaml: "scenarios:\n  - name: broken\n    events:\n      - send: \"Q\"\n",
		},
		{
			name: "empty payload",
			yaml: "scenarios:\n  - name: broken\n    command: ./sim\n    events:\n      - after: 5ms\n",
		},
		{
			name: "send and quit together",
			yaml: "scenarios:\n  - name: broken\n    command: ./sim\n    events:\n      - send: \"Q\"\n        quit: true\n",
		},
		{
			name: "bad duration",
			yaml: "scenarios:\n  - name: broken\n    command: ./sim\n    events:\n      - after: soon\n        send: \"Q\"\n",
		},
		{
			name: "no scenarios",
			yaml: "scenarios: []\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "suite.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))

			_, err := padprobe.LoadSuite(path)
			require.Error(t, err)
		})
	}
}

func TestLoadSuiteMissingFile(t *testing.T) {
	_, err := padprobe.LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestScenarioValidate(t *testing.T) {
	valid := padprobe.Scenario{
		Name:    "ok",
		Command: "./sim",
		Events:  padprobe.Hold('Q', 50*time.Millisecond),
	}
	require.NoError(t, valid.Validate())

	negative := valid
	negative.Events = []padprobe.InputEvent{{DelayBefore: -time.Second, Payload: []byte("Q")}}
	require.Error(t, negative.Validate())

	badTimeout := valid
	badTimeout.Timeout = -time.Second
	require.Error(t, badTimeout.Validate())
}
