package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Video extensions the converter accepts (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".rmvb": true,
	".rm":   true,
	".mov":  true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
	".wmv":  true,
}

// IsVideo reports whether path has a supported video extension.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover resolves the input argument into the ordered batch list. A
// directory yields its video files (top level only, no recursion, so the
// flat destination mapping cannot silently collide across subdirectories);
// a single video file yields itself. Paths come back sorted for a
// deterministic processing order.
func Discover(input string) ([]string, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", input, err)
	}

	if !fi.IsDir() {
		if !IsVideo(input) {
			return nil, fmt.Errorf("input %q is not a supported video file", input)
		}
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read input dir %q: %w", input, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsVideo(e.Name()) {
			files = append(files, filepath.Join(input, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
