package ffmpeg

import "regexp"

// Recognizable stderr patterns of a failed transcode, checked in order
// against the tail; the first match supplies the report's hint. These cover
// the failures the batch actually produces in the field rather than every
// message the transcoder can emit.
var failureHints = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(`(?i)No such file or directory`), "input file unreadable"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input`), "input corrupt or not a video file"},
	{regexp.MustCompile(`(?i)Unknown encoder|Encoder not found`), "encoder missing from the ffmpeg build"},
	{regexp.MustCompile(`(?i)Error initializing filter 'subtitles'|Unable to (open|parse) .*subtitle`), "subtitle burn-in failed"},
	{regexp.MustCompile(`(?i)No space left on device`), "output device full"},
	{regexp.MustCompile(`(?i)Permission denied`), "destination not writable"},
	{regexp.MustCompile(`(?i)Conversion failed`), "transcode aborted"},
}

// ClassifyFailure scans the stderr tail of a failed run for a known failure
// pattern and returns a short explanation, or "" when nothing recognizable
// is there.
func ClassifyFailure(tail []string) string {
	for _, fh := range failureHints {
		for _, line := range tail {
			if fh.re.MatchString(line) {
				return fh.hint
			}
		}
	}
	return ""
}
