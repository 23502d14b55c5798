package padprobe

import (
	"fmt"
	"time"
	"unicode"
)

// The target's input protocol is single-character tokens: an uppercase letter
// or digit is a press edge, the matching lowercase letter (or shifted symbol,
// for digits) is the release edge, and ESC requests clean shutdown.

// escByte is the clean-shutdown token.
const escByte = 0x1b

// digitShift maps a digit press token to its shifted-symbol release token
// (US keyboard layout, matching the simulator's input layer).
var digitShift = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
}

// Press returns the press-edge payload for a button key.
// Letters are normalized to uppercase; digits are sent as-is.
// Panics on runes outside the protocol (not a letter or digit).
func Press(r rune) []byte {
	switch {
	case unicode.IsUpper(r):
		return []byte(string(r))
	case unicode.IsLower(r):
		return []byte(string(unicode.ToUpper(r)))
	case unicode.IsDigit(r):
		return []byte(string(r))
	}
	panic(fmt.Sprintf("padprobe: press: %q is not a press token", r))
}

// Release returns the release-edge payload for a button key.
// Letters are normalized to lowercase; digits map to their shifted symbol
// (1 releases as '!', 0 releases as ')').
// Panics on runes outside the protocol.
func Release(r rune) []byte {
	switch {
	case unicode.IsUpper(r):
		return []byte(string(unicode.ToLower(r)))
	case unicode.IsLower(r):
		return []byte(string(r))
	default:
		if symbol, ok := digitShift[r]; ok {
			return []byte(string(symbol))
		}
	}
	panic(fmt.Sprintf("padprobe: release: %q is not a release token", r))
}

// Quit returns the clean-shutdown payload (ESC).
func Quit() []byte {
	return []byte{escByte}
}

// After builds an InputEvent that sends payload after waiting d.
func After(d time.Duration, payload []byte) InputEvent {
	return InputEvent{DelayBefore: d, Payload: payload}
}

// Hold builds the press-hold-release gesture for one button: press
// immediately, release after holding for d. This is the core gesture for
// targets that branch on hold duration.
func Hold(r rune, d time.Duration) []InputEvent {
	return []InputEvent{
		{Payload: Press(r)},
		{DelayBefore: d, Payload: Release(r)},
	}
}
