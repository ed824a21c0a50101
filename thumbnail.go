package barboard

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
)

// Thumbnail defaults.
const (
	DefaultThumbnailWidth  = 320
	DefaultThumbnailHeight = 200
	thumbnailPadding       = 16
)

// ContentBounds returns the union of every node's bounds. ok is false for
// an empty scene.
func (sc *Scene) ContentBounds() (r Rect, ok bool) {
	for _, n := range sc.Nodes {
		if !ok {
			r, ok = n.Bounds(), true
			continue
		}
		r = r.Union(n.Bounds())
	}
	return r, ok
}

// CaptureThumbnail renders sc, framed to fit its content, into a w×h image.
// Selection, zone focus and the grid are left out. The scene is not
// modified.
func CaptureThumbnail(sc *Scene, data ExternalLookup, w, h int) (image.Image, error) {
	surf, err := renderFitted(sc, data, w, h)
	if err != nil {
		return nil, err
	}
	return surf.Image(), nil
}

// ExportPNG writes sc, framed like CaptureThumbnail, as a w×h PNG to out.
func ExportPNG(out io.Writer, sc *Scene, data ExternalLookup, w, h int) error {
	surf, err := renderFitted(sc, data, w, h)
	if err != nil {
		return err
	}
	return surf.EncodePNG(out)
}

func renderFitted(sc *Scene, data ExternalLookup, w, h int) (*RasterSurface, error) {
	surf, err := NewRasterSurface(w, h)
	if err != nil {
		return nil, err
	}
	view := *sc
	view.Selection = Selection{}
	view.Interaction.ActiveBoardID = ""
	view.Interaction.ActiveZoneID = ""
	if b, ok := sc.ContentBounds(); ok {
		view.Viewport = FrameRect(b, float64(w), float64(h), thumbnailPadding)
	}
	r := NewRenderer()
	r.Grid = false
	if err := r.Attach(surf); err != nil {
		return nil, err
	}
	if err := r.Render(&view, data); err != nil {
		return nil, err
	}
	return surf, nil
}

// ThumbnailWriter returns a ThumbnailFunc writing timestamped PNG thumbnails
// of the given size into dir.
func ThumbnailWriter(dir string, data ExternalLookup, w, h int) ThumbnailFunc {
	return func(sc *Scene) error {
		img, err := CaptureThumbnail(sc, data, w, h)
		if err != nil {
			return fmt.Errorf("barboard: capture thumbnail: %w", err)
		}
		return saveImage(dir, fmt.Sprintf("v%d", sc.Version()), "thumb", img)
	}
}

// saveImage writes img as dir/<prefix>_<timestamp>_<label>.png, creating dir
// when needed, and returns the error of the first failing step.
func saveImage(dir, label, prefix string, img image.Image) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("barboard: create %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%s_%s.png", prefix, time.Now().Format("20060102_150405"), fileLabel(label))
	if err := gg.SavePNG(filepath.Join(dir, name), img); err != nil {
		return fmt.Errorf("barboard: save %s: %w", name, err)
	}
	return nil
}

// fileLabel lowercases label and joins its letter, digit and dot runs with
// dashes. Labels with none of those become "unlabeled".
func fileLabel(label string) string {
	parts := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '.'
	})
	if len(parts) == 0 {
		return "unlabeled"
	}
	return strings.Join(parts, "-")
}
