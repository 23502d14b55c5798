package padprobe

import (
	"fmt"
	"regexp"
	"strings"
)

// A Matcher reports whether a CapturedOutput satisfies a condition.
// The string return is a human-readable description for error messages.
type Matcher func(o *CapturedOutput) (ok bool, description string)

// Marker matches if the sanitized diagnostic output contains the given
// literal string anywhere.
func Marker(s string) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		return o.Contains(s), fmt.Sprintf("diagnostic output to contain %q", s)
	}
}

// MarkerPrefix matches if any diagnostic line starts with the given prefix.
func MarkerPrefix(prefix string) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		desc := fmt.Sprintf("diagnostic line with prefix %q", prefix)
		for _, line := range o.DiagnosticLines() {
			if strings.HasPrefix(strings.TrimSpace(line), prefix) {
				return true, desc
			}
		}
		return false, desc
	}
}

// Stdout matches if the raw standard output contains the given substring.
func Stdout(s string) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		return strings.Contains(o.Stdout(), s), fmt.Sprintf("stdout to contain %q", s)
	}
}

// Regexp matches if the sanitized diagnostic output matches the regular
// expression. The pattern is compiled once; an invalid pattern causes a panic.
func Regexp(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return func(o *CapturedOutput) (bool, string) {
		return re.MatchString(o.Diagnostic()), fmt.Sprintf("diagnostic output to match regexp %q", pattern)
	}
}

// ExitedWith matches if the target exited on its own with the given code.
func ExitedWith(code int) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		desc := fmt.Sprintf("target to exit with code %d", code)
		st := o.Status()
		return st.Kind == StatusExited && st.ExitCode == code, desc
	}
}

// TimedOut matches if the harness force-terminated the target on timeout.
func TimedOut() Matcher {
	return func(o *CapturedOutput) (bool, string) {
		return o.Status().Kind == StatusTimedOut, "run to end in a timeout kill"
	}
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		ok, desc := m(o)
		return !ok, "NOT(" + desc + ")"
	}
}

// All matches when every provided matcher matches.
func All(matchers ...Matcher) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		descs := make([]string, 0, len(matchers))
		for _, m := range matchers {
			ok, desc := m(o)
			descs = append(descs, desc)
			if !ok {
				return false, "all of: " + strings.Join(descs, ", ")
			}
		}
		return true, "all of: " + strings.Join(descs, ", ")
	}
}

// Any matches when at least one provided matcher matches.
func Any(matchers ...Matcher) Matcher {
	return func(o *CapturedOutput) (bool, string) {
		descs := make([]string, 0, len(matchers))
		for _, m := range matchers {
			ok, desc := m(o)
			descs = append(descs, desc)
			if ok {
				return true, "any of: " + strings.Join(descs, ", ")
			}
		}
		return false, "any of: " + strings.Join(descs, ", ")
	}
}

// Empty matches when the target produced no output at all.
func Empty() Matcher {
	return func(o *CapturedOutput) (bool, string) {
		return len(o.stdout) == 0 && len(o.stderr) == 0, "no captured output"
	}
}
