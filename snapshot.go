package padprobe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MatchSnapshot compares the run's normalized diagnostic output against a
// golden file stored in testdata/<sanitized-test-name>/<sanitized-name>.txt.
//
// Set PADPROBE_UPDATE=1 to create or update golden files.
func (o *CapturedOutput) MatchSnapshot(t testing.TB, name string) {
	t.Helper()

	dir := filepath.Join("testdata", sanitizeName(t.Name()))
	path := filepath.Join(dir, sanitizeName(name)+".txt")

	// Normalize for stable diffs:
	// - strip ANSI escapes
	// - trim trailing spaces on each line
	// - remove trailing blank lines
	// - end with a single newline
	content := normalizeForSnapshot(o.Diagnostic())

	if shouldUpdate() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("padprobe: snapshot: failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("padprobe: snapshot: failed to write golden file: %v", err)
		}
		return
	}

	golden, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("padprobe: snapshot: golden file not found: %s\nRun with PADPROBE_UPDATE=1 to create it.\n\nActual diagnostic output:\n%s", path, content)
		}
		t.Fatalf("padprobe: snapshot: failed to read golden file: %v", err)
	}

	if string(golden) != content {
		t.Fatalf("padprobe: snapshot: mismatch for %q\nGolden file: %s\nRun with PADPROBE_UPDATE=1 to update.\n\n--- golden ---\n%s\n--- actual ---\n%s",
			name, path, string(golden), content)
	}
}

// normalizeForSnapshot normalizes diagnostic text for stable golden diffs.
func normalizeForSnapshot(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")

	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n") + "\n"
}

// sanitizeName replaces characters that are not filesystem-safe.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

// shouldUpdate returns true if PADPROBE_UPDATE is set to a truthy value.
func shouldUpdate() bool {
	v := os.Getenv("PADPROBE_UPDATE")
	return v == "1" || v == "true" || v == "yes"
}
