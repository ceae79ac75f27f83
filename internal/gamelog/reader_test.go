package gamelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("failed to open %s for append: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to append to %s: %v", path, err)
	}
}

func TestReadAllLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "complete lines",
			content: "first\nsecond\nthird\n",
			want:    []string{"first", "second", "third"},
		},
		{
			name:    "final unterminated fragment excluded",
			content: "first\nsecond\npartial",
			want:    []string{"first", "second"},
		},
		{
			name:    "crlf terminators stripped",
			content: "first\r\nsecond\r\n",
			want:    []string{"first", "second"},
		},
		{
			name:    "empty lines preserved",
			content: "first\n\nthird\n",
			want:    []string{"first", "", "third"},
		},
		{
			name:    "only a fragment",
			content: "no terminator yet",
			want:    nil,
		},
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "game.log")
			writeFile(t, path, tt.content)

			r := NewReader(path)
			got, err := r.ReadAllLines()
			if err != nil {
				t.Fatalf("ReadAllLines() error = %v", err)
			}
			assertLines(t, got, tt.want)
		})
	}
}

func TestReadAllLinesRestartable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "a\nb\n")

	r := NewReader(path)
	for i := 0; i < 2; i++ {
		got, err := r.ReadAllLines()
		if err != nil {
			t.Fatalf("ReadAllLines() call %d error = %v", i+1, err)
		}
		assertLines(t, got, []string{"a", "b"})
	}
}

func TestReadNewLinesIdempotentUntilAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "one\ntwo\n")

	r := NewReader(path)
	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("first ReadNewLines() error = %v", err)
	}
	assertLines(t, got, []string{"one", "two"})

	got, err = r.ReadNewLines()
	if err != nil {
		t.Fatalf("second ReadNewLines() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no lines without an append, got %v", got)
	}
}

func TestReadNewLinesAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "old\n")

	r := NewReader(path)
	if _, err := r.ReadNewLines(); err != nil {
		t.Fatalf("initial ReadNewLines() error = %v", err)
	}

	appendFile(t, path, "new1\nnew2\nnew3\n")
	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() after append error = %v", err)
	}
	assertLines(t, got, []string{"new1", "new2", "new3"})
}

func TestReadNewLinesBuffersPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "complete\n")

	r := NewReader(path)
	if _, err := r.ReadNewLines(); err != nil {
		t.Fatalf("initial ReadNewLines() error = %v", err)
	}

	// A partial line must yield nothing until its terminator arrives.
	appendFile(t, path, "half a li")
	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() on partial error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no lines for partial write, got %v", got)
	}

	appendFile(t, path, "ne\n")
	got, err = r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() after completion error = %v", err)
	}
	assertLines(t, got, []string{"half a line"})
}

func TestSetPositionResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "seen1\nseen2\n")

	// First run consumes everything and saves its position.
	first := NewReader(path)
	if _, err := first.ReadNewLines(); err != nil {
		t.Fatalf("first run ReadNewLines() error = %v", err)
	}
	savedOffset, savedSize := first.Position(), first.FileSize()

	appendFile(t, path, "fresh\n")

	// Second run restores the saved position and must only see the append.
	second := NewReader(path)
	second.SetPosition(savedOffset, savedSize)
	got, err := second.ReadNewLines()
	if err != nil {
		t.Fatalf("resumed ReadNewLines() error = %v", err)
	}
	assertLines(t, got, []string{"fresh"})
}

func TestRotationDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "a long original line\nanother long line\n")

	r := NewReader(path)
	if _, err := r.ReadNewLines(); err != nil {
		t.Fatalf("initial ReadNewLines() error = %v", err)
	}

	// Overwrite with strictly fewer bytes: the next read must return the
	// full content of the new file from its start.
	writeFile(t, path, "rotated\n")
	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() after rotation error = %v", err)
	}
	assertLines(t, got, []string{"rotated"})
}

func TestSetPositionStaleAgainstRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "short\n")

	// Saved state from a longer, pre-rotation file.
	r := NewReader(path)
	r.SetPosition(500, 1000)

	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() with stale position error = %v", err)
	}
	assertLines(t, got, []string{"short"})
	if r.Position() != 6 {
		t.Errorf("expected position 6 after reread, got %d", r.Position())
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.log")

	r := NewReader(path)
	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() on missing file error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no lines for missing file, got %v", got)
	}

	// The file appearing later must be picked up from the start.
	writeFile(t, path, "late arrival\n")
	got, err = r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() after file creation error = %v", err)
	}
	assertLines(t, got, []string{"late arrival"})
}

func TestInvalidBytesAreSubstituted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	if err := os.WriteFile(path, []byte("good line\nbad \xff\xfe bytes\nanother good\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	r := NewReader(path)
	got, err := r.ReadNewLines()
	if err != nil {
		t.Fatalf("ReadNewLines() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[1], "�") {
		t.Errorf("expected substitution rune in malformed line, got %q", got[1])
	}
	if got[0] != "good line" || got[2] != "another good" {
		t.Errorf("well-formed lines must pass through unchanged, got %v", got)
	}
}

func TestPositionOnlyAdvancesPastTerminatedBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	writeFile(t, path, "done\nhalf")

	r := NewReader(path)
	if _, err := r.ReadNewLines(); err != nil {
		t.Fatalf("ReadNewLines() error = %v", err)
	}
	if r.Position() != 5 {
		t.Errorf("expected position 5 (past 'done\\n' only), got %d", r.Position())
	}
	if r.FileSize() != 9 {
		t.Errorf("expected observed size 9, got %d", r.FileSize())
	}
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines %v, got %d lines %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
