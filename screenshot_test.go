package barboard

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestFileLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"after-drag", "after-drag"},
		{"frame.01", "frame.01"},
		{"Zone Focus", "zone-focus"},
		{"path/to//thing", "path-to-thing"},
		{"  pasted!  ", "pasted"},
		{"", "unlabeled"},
		{"#$%", "unlabeled"},
	}
	for _, tt := range tests {
		if got := fileLabel(tt.in); got != tt.want {
			t.Errorf("fileLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueue(t *testing.T) {
	var s screenshotter
	s.request("a")
	s.request("b")
	if len(s.queue) != 2 || s.queue[1] != "b" {
		t.Errorf("queue = %v", s.queue)
	}
}

func TestSaveImageCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots", "run1")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	if err := saveImage(dir, "After Drag", "shot", img); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "shot_*_after-drag.png"))
	if len(matches) != 1 {
		t.Errorf("files = %v", matches)
	}
}
