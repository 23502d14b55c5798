// Command simbin is a minimal fixture imitating the control-surface
// simulator's visible contract, for testing the padprobe harness. It reads
// single-byte key tokens from stdin and writes diagnostics the way the real
// simulator does.
//
// Behavior:
//   - Uppercase letter or digit: press edge; records the press time
//   - Lowercase letter or shifted digit symbol: release edge; when the
//     press-to-release interval meets the hold threshold, prints
//     "PARAM_LOCK: Successfully entered parameter lock mode" on stderr
//   - A release with no matching press prints a "PARAM_LOCK:" diagnostic
//     (but not the success line) on stderr
//   - ESC (0x1b): prints "shutting down" and exits with status 0
//   - Newlines and carriage returns are ignored
//
// Environment knobs (test-only):
//   - SIMBIN_HOLD_MS: hold threshold in milliseconds (default 500)
//   - SIMBIN_IGNORE_QUIT=1: ignore ESC, for harness timeout tests
//   - SIMBIN_DIAG_STDOUT=1: write diagnostics to stdout instead of stderr,
//     imitating targets that merge the two streams
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode"
)

const defaultHoldMillis = 500

// shiftToDigit maps shifted-symbol release tokens back to their digit.
var shiftToDigit = map[byte]byte{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
}

func main() {
	threshold := time.Duration(defaultHoldMillis) * time.Millisecond
	if v := os.Getenv("SIMBIN_HOLD_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			threshold = time.Duration(ms) * time.Millisecond
		}
	}
	ignoreQuit := os.Getenv("SIMBIN_IGNORE_QUIT") == "1"

	diag := io.Writer(os.Stderr)
	if os.Getenv("SIMBIN_DIAG_STDOUT") == "1" {
		diag = os.Stdout
	}

	fmt.Println("simbin ready")

	pressedAt := make(map[byte]time.Time)
	buf := make([]byte, 1)

	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			// stdin closed: the harness released the pipe.
			return
		}
		if n == 0 {
			continue
		}
		b := buf[0]

		switch {
		case b == '\n' || b == '\r':
			// Line-oriented senders terminate tokens with newlines.

		case b == 0x1b:
			if ignoreQuit {
				fmt.Println("quit ignored")
				continue
			}
			fmt.Println("shutting down")
			os.Exit(0)

		case unicode.IsUpper(rune(b)) || unicode.IsDigit(rune(b)):
			pressedAt[b] = time.Now()
			fmt.Printf("press %c\n", b)

		case unicode.IsLower(rune(b)):
			release(diag, pressedAt, byte(unicode.ToUpper(rune(b))), b, threshold)

		default:
			if digit, ok := shiftToDigit[b]; ok {
				release(diag, pressedAt, digit, b, threshold)
			} else {
				fmt.Printf("ignored %q\n", b)
			}
		}
	}
}

func release(diag io.Writer, pressedAt map[byte]time.Time, key, token byte, threshold time.Duration) {
	fmt.Printf("release %c\n", token)

	at, ok := pressedAt[key]
	if !ok {
		fmt.Fprintf(diag, "PARAM_LOCK: Ignoring release of %c without matching press\n", key)
		return
	}
	delete(pressedAt, key)

	if held := time.Since(at); held >= threshold {
		fmt.Fprintln(diag, "PARAM_LOCK: Successfully entered parameter lock mode")
	}
}
