package ffmpeg

import "testing"

func TestFilterBuilderOrder(t *testing.T) {
	got := NewFilterBuilder().
		Crop(1440, 1080, 240, 0).
		Scale(640, 480).
		BurnExternal("/subs/movie.srt").
		Build()
	want := "crop=1440:1080:240:0,scale=640:480,subtitles=/subs/movie.srt"
	if got != want {
		t.Errorf("chain: got %q, want %q", got, want)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	if got := NewFilterBuilder().Build(); got != "" {
		t.Errorf("empty builder: got %q, want empty", got)
	}
}

func TestFilterBuilderSkipsInvalid(t *testing.T) {
	got := NewFilterBuilder().
		Crop(0, 0, 0, 0).
		Scale(854, 480).
		Build()
	if got != "scale=854:480" {
		t.Errorf("got %q, want scale only", got)
	}
}

func TestFilterBuilderInternalTrack(t *testing.T) {
	got := NewFilterBuilder().BurnInternal("/in/movie.mkv", 2).Build()
	if got != "subtitles=/in/movie.mkv:si=2" {
		t.Errorf("got %q", got)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/plain/path.srt", "/plain/path.srt"},
		{"/with space/file.srt", "/with space/file.srt"},
		{"/odd:colon.srt", `/odd\:colon.srt`},
		{"/comma,name.srt", `/comma\,name.srt`},
		{"/it's.srt", `/it\'s.srt`},
		{"/br[ack]ets.srt", `/br\[ack\]ets.srt`},
	}
	for _, tc := range cases {
		if got := escapeFilterPath(tc.in); got != tc.want {
			t.Errorf("escape(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
