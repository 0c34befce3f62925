// Package subtitles resolves external subtitle sidecar files and normalizes
// their text encoding for the burn-in filter.
package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Sidecar extensions the burn-in filter accepts (lowercase, with leading dot).
var sidecarExts = map[string]bool{
	".srt": true,
	".ass": true,
}

// IsSidecar reports whether path has a supported subtitle extension.
func IsSidecar(path string) bool {
	return sidecarExts[strings.ToLower(filepath.Ext(path))]
}

// Usable reports whether path names an existing regular file with a
// supported subtitle extension.
func Usable(path string) bool {
	if !IsSidecar(path) {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// FindSidecar looks for a subtitle file next to videoPath. A candidate
// matches when its own stem contains the video's stem, so both
// "Show.S01E01.srt" and "Show.S01E01.eng.srt" are found for
// "Show.S01E01.mkv". Candidates are checked in sorted order and the first
// match wins; "" is returned when none exists.
func FindSidecar(videoPath string) string {
	dir := filepath.Dir(videoPath)
	stem := stemOf(videoPath)
	if stem == "" {
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if IsSidecar(name) && strings.Contains(stemOf(name), stem) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

// EnsureUTF8 makes sure the subtitle text at path is valid UTF-8, which the
// burn-in filter requires. When the file already is, path itself is returned
// and cleanup is a no-op. Otherwise the detected legacy encoding is decoded
// into a temp copy and that copy's path is returned; the caller runs cleanup
// once the transcode is done. The original sidecar is never modified.
func EnsureUTF8(path string) (usePath string, cleanup func(), err error) {
	cleanup = func() {}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", cleanup, fmt.Errorf("read subtitle %q: %w", path, err)
	}
	if utf8.Valid(b) {
		return path, cleanup, nil
	}

	enc, name, _ := charset.DetermineEncoding(b, "")
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", cleanup, fmt.Errorf("decode subtitle %q from %s: %w", path, name, err)
	}

	// Keep the original extension so the filter's format detection still works.
	tmp, err := os.CreateTemp("", "retrograde-*"+strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return "", cleanup, err
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", cleanup, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", cleanup, err
	}

	name = tmp.Name()
	return name, func() { os.Remove(name) }, nil
}

// stemOf returns the basename without its extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
