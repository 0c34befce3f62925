package planner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/probe"
)

// --- Helper builders ---

func defaultCfg() *config.Config {
	cfg := config.Default()
	return &cfg
}

func sourceInfo(path string, w, h int) *probe.MediaInfo {
	return &probe.MediaInfo{
		Path:     path,
		Width:    w,
		Height:   h,
		Duration: 1800,
		Size:     700 * 1024 * 1024,
	}
}

func withSubs(info *probe.MediaInfo, tracks ...probe.SubtitleTrack) *probe.MediaInfo {
	info.SubtitleTracks = tracks
	return info
}

// --- Aspect decision tests ---

func TestBuildPlan_WideNoCrop(t *testing.T) {
	plan, err := BuildPlan(defaultCfg(), sourceInfo("/in/movie.mkv", 1920, 1080), "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.NeedsCrop() {
		t.Error("crop disabled in config, but plan crops")
	}
	if plan.OutputWidth != WidescreenWidth || plan.OutputHeight != PresetHeight {
		t.Errorf("output: got %s, want %dx%d", plan.OutputResolution(), WidescreenWidth, PresetHeight)
	}
}

func TestBuildPlan_WideCropped(t *testing.T) {
	cfg := defaultCfg()
	cfg.CropToStandard = true

	plan, err := BuildPlan(cfg, sourceInfo("/in/movie.mkv", 1920, 1080), "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if !plan.NeedsCrop() {
		t.Fatal("1920x1080 with crop enabled should crop")
	}
	want := CropRect{Width: 1440, Height: 1080, X: 240, Y: 0}
	if *plan.Crop != want {
		t.Errorf("crop: got %s, want %s", plan.Crop, want)
	}
	if plan.OutputWidth != StandardWidth || plan.OutputHeight != PresetHeight {
		t.Errorf("output: got %s, want %dx%d", plan.OutputResolution(), StandardWidth, PresetHeight)
	}
}

func TestBuildPlan_NarrowNeverCropped(t *testing.T) {
	cfg := defaultCfg()
	cfg.CropToStandard = true

	cases := []struct {
		name string
		w, h int
	}{
		{"exact 4:3", 640, 480},
		{"narrower than 4:3", 600, 600},
		{"portrait", 480, 854},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := BuildPlan(cfg, sourceInfo("/in/clip.mp4", tc.w, tc.h), "/out")
			if err != nil {
				t.Fatalf("BuildPlan: %v", err)
			}
			if plan.NeedsCrop() {
				t.Errorf("%dx%d cropped, want full frame (crop never pads)", tc.w, tc.h)
			}
			if plan.OutputWidth != WidescreenWidth {
				t.Errorf("output width: got %d, want %d", plan.OutputWidth, WidescreenWidth)
			}
		})
	}
}

func TestCenteredStandardCrop(t *testing.T) {
	cases := []struct {
		name string
		w, h int
		want CropRect
	}{
		{"1080p", 1920, 1080, CropRect{1440, 1080, 240, 0}},
		{"720p", 1280, 720, CropRect{960, 720, 160, 0}},
		{"DVD wide", 720, 404, CropRect{538, 404, 91, 0}},
		{"barely wide", 641, 480, CropRect{640, 480, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := centeredStandardCrop(tc.w, tc.h)
			if *got != tc.want {
				t.Errorf("crop(%dx%d): got %s, want %s", tc.w, tc.h, got, tc.want)
			}
			if got.X+got.Width > tc.w {
				t.Errorf("crop window exceeds frame: x=%d w=%d frame=%d", got.X, got.Width, tc.w)
			}
		})
	}
}

// --- Subtitle decision tests ---

func TestBuildPlan_InternalTrack(t *testing.T) {
	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubInternal
	cfg.SubtitleTrack = 1

	info := withSubs3("/in/show.mkv")
	plan, err := BuildPlan(cfg, info, "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Subtitle.Source != BurnInternal || plan.Subtitle.TrackIndex != 1 {
		t.Errorf("subtitle: got %s, want internal track 1", plan.Subtitle)
	}
}

func TestBuildPlan_InternalTrackMissing(t *testing.T) {
	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubInternal
	cfg.SubtitleTrack = 5

	_, err := BuildPlan(cfg, withSubs3("/in/show.mkv"), "/out")
	if !errors.Is(err, ErrSubtitleTrack) {
		t.Errorf("got %v, want ErrSubtitleTrack", err)
	}
}

func TestBuildPlan_InternalTrackNoSubs(t *testing.T) {
	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubInternal
	cfg.SubtitleTrack = 0

	_, err := BuildPlan(cfg, sourceInfo("/in/bare.mp4", 1280, 720), "/out")
	if !errors.Is(err, ErrSubtitleTrack) {
		t.Errorf("got %v, want ErrSubtitleTrack", err)
	}
}

func withSubs3(path string) *probe.MediaInfo {
	return withSubs(sourceInfo(path, 1920, 1080),
		probe.SubtitleTrack{Index: 0, StreamIndex: 2, Codec: "subrip", Language: "eng"},
		probe.SubtitleTrack{Index: 1, StreamIndex: 3, Codec: "ass", Language: "por"},
		probe.SubtitleTrack{Index: 2, StreamIndex: 4, Codec: "subrip"},
	)
}

func TestBuildPlan_ExternalSidecar(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	sidecar := filepath.Join(dir, "movie.srt")
	for _, p := range []string{video, sidecar} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubExternal

	plan, err := BuildPlan(cfg, sourceInfo(video, 1920, 1080), "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Subtitle.Source != BurnExternal || plan.Subtitle.Path != sidecar {
		t.Errorf("subtitle: got %s, want external %s", plan.Subtitle, sidecar)
	}
}

func TestBuildPlan_ExternalSidecarMissing(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubExternal

	// No sidecar present: never an error, just no burn.
	plan, err := BuildPlan(cfg, sourceInfo(video, 1920, 1080), "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Subtitle.Source != BurnNone {
		t.Errorf("subtitle: got %s, want none", plan.Subtitle)
	}
}

func TestBuildPlan_ExternalFixedFile(t *testing.T) {
	dir := t.TempDir()
	fixed := filepath.Join(dir, "translated.ass")
	if err := os.WriteFile(fixed, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubExternal
	cfg.SubtitleFile = fixed

	plan, err := BuildPlan(cfg, sourceInfo("/in/movie.mkv", 1920, 1080), "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Subtitle.Source != BurnExternal || plan.Subtitle.Path != fixed {
		t.Errorf("subtitle: got %s, want external %s", plan.Subtitle, fixed)
	}
}

func TestBuildPlan_ExternalFixedFileWrongExt(t *testing.T) {
	dir := t.TempDir()
	fixed := filepath.Join(dir, "subs.txt")
	if err := os.WriteFile(fixed, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultCfg()
	cfg.SubtitleMode = config.SubExternal
	cfg.SubtitleFile = fixed

	plan, err := BuildPlan(cfg, sourceInfo("/in/movie.mkv", 1920, 1080), "/out")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Subtitle.Source != BurnNone {
		t.Errorf("unsupported extension should degrade to no burn, got %s", plan.Subtitle)
	}
}

// --- Destination path tests ---

func TestOutputPath(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"/in/Movie.Name.2019.mkv", "/out/Movie.Name.2019.avi"},
		{"/in/clip.rmvb", "/out/clip.avi"},
		{"/in/noext", "/out/noext.avi"},
		{"/in/already.avi", "/out/already.avi"},
	}
	for _, tc := range cases {
		if got := OutputPath("/out", tc.source); got != tc.want {
			t.Errorf("OutputPath(%q): got %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestBuildPlan_DestPath(t *testing.T) {
	plan, err := BuildPlan(defaultCfg(), sourceInfo("/library/Show S01E01.mkv", 1280, 720), "/converted")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	want := "/converted/Show S01E01.avi"
	if plan.DestPath != want {
		t.Errorf("dest: got %q, want %q", plan.DestPath, want)
	}
}

// --- Bitrate and estimation tests ---

func TestClampBitrate(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{500, config.MinVideoBitrate},
		{config.MinVideoBitrate, config.MinVideoBitrate},
		{3000, 3000},
		{config.MaxVideoBitrate, config.MaxVideoBitrate},
		{20000, config.MaxVideoBitrate},
	}
	for _, tc := range cases {
		if got := ClampBitrate(tc.in); got != tc.want {
			t.Errorf("ClampBitrate(%d): got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestEstimateOutputBytes(t *testing.T) {
	// 3000k video + 192k audio over 60s = 3192 * 1000 / 8 * 60 bytes.
	got := EstimateOutputBytes(3000, 60)
	want := int64(3192 * 1000 / 8 * 60)
	if got != want {
		t.Errorf("estimate: got %d, want %d", got, want)
	}

	if EstimateOutputBytes(3000, 0) != 0 {
		t.Error("unknown duration should estimate 0")
	}

	// Out-of-range bitrate is clamped before estimating.
	if EstimateOutputBytes(99999, 60) != EstimateOutputBytes(config.MaxVideoBitrate, 60) {
		t.Error("estimate should clamp the video bitrate")
	}
}
