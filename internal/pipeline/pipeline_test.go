package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	touch(t, dir, "show.mp4")
	touch(t, dir, "old.rmvb")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "movie.srt")
	touch(t, dir, "web.webm")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"movie.mkv", "old.rmvb", "show.mp4"}
	got := basenames(files)
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_AllVideoExtensions(t *testing.T) {
	dir := t.TempDir()
	exts := []string{".mkv", ".mp4", ".avi", ".rmvb", ".rm", ".mov",
		".flv", ".mpg", ".mpeg", ".wmv"}
	for _, ext := range exts {
		touch(t, dir, "file"+ext)
	}
	touch(t, dir, "file.jpg")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != len(exts) {
		t.Errorf("got %d files, want %d", len(files), len(exts))
	}
}

func TestDiscover_TopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "main.mkv")
	os.MkdirAll(filepath.Join(dir, "Season 01"), 0o755)
	touch(t, filepath.Join(dir, "Season 01"), "ep01.mkv")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1 (no recursion)", len(files))
	}
}

func TestDiscover_Sorted(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "c.mkv")
	touch(t, dir, "a.mkv")
	touch(t, dir, "b.mkv")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a.mkv", "b.mkv", "c.mkv"}
	if !sliceEqual(basenames(files), want) {
		t.Errorf("got %v, want %v", basenames(files), want)
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDiscover_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "MOVIE.MKV")
	touch(t, dir, "Show.Mp4")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 (case-insensitive ext matching)", len(files))
	}
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	path := filepath.Join(dir, "movie.mkv")

	files, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("got %v, want [%s]", files, path)
	}
}

func TestDiscover_SingleFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt")

	if _, err := Discover(filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("want error for non-video single file input")
	}
}

func TestDiscover_MissingInput(t *testing.T) {
	if _, err := Discover("/does/not/exist"); err == nil {
		t.Error("want error for missing input")
	}
}

func TestIsVideo(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"a.mkv", true},
		{"a.RMVB", true},
		{"a.srt", false},
		{"a.webm", false},
		{"a", false},
	}
	for _, tc := range cases {
		if got := IsVideo(tc.path); got != tc.want {
			t.Errorf("IsVideo(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

// --- Stats tests ---

func TestRunStats_SpaceSaved(t *testing.T) {
	s := RunStats{TotalInputBytes: 1000, TotalOutputBytes: 600}
	if got := s.SpaceSaved(); got != 400 {
		t.Errorf("SpaceSaved: got %d, want 400", got)
	}

	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	if got := s2.SpaceSaved(); got != -50 {
		t.Errorf("SpaceSaved (negative): got %d, want -50", got)
	}
}

func TestStatusString(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{StatusCompleted, "completed"},
		{StatusSkipped, "skipped"},
		{StatusFailed, "failed"},
		{Status(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestRunStatsCount(t *testing.T) {
	var s RunStats
	s.count(Outcome{Status: StatusCompleted, OutputBytes: 100})
	s.count(Outcome{Status: StatusCompleted, OutputBytes: 200})
	s.count(Outcome{Status: StatusSkipped})
	s.count(Outcome{Status: StatusFailed})

	if s.Completed != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Errorf("counts: got %d/%d/%d, want 2/1/1", s.Completed, s.Skipped, s.Failed)
	}
	if s.TotalOutputBytes != 300 {
		t.Errorf("TotalOutputBytes: got %d, want 300", s.TotalOutputBytes)
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
