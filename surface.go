package barboard

import "errors"

// ErrNoSurface is returned by Renderer.Attach when the surface is missing or
// cannot be drawn to.
var ErrNoSurface = errors.New("barboard: no drawing surface")

// FontSpec selects a face of the built-in Go font family. Size is in world
// units.
type FontSpec struct {
	Size float64
	Bold bool
}

// Surface is a 2D drawing target. Geometry passed to the drawing methods is
// in world units and goes through the matrix set with SetTransform; stroke
// widths and font sizes scale with it. Only scale and translate matrices are
// supported.
type Surface interface {
	// Size returns the pixel size of the target.
	Size() (w, h int)
	// Resize changes the pixel size of the target, discarding its content.
	Resize(w, h int) error

	Clear(c Color)
	SetTransform(m [6]float64)

	FillRect(r Rect, radius float64, c Color)
	FillGradient(r Rect, radius float64, from, to Color, vertical bool)
	StrokeRect(r Rect, radius, width float64, c Color)
	FillEllipse(r Rect, c Color)
	StrokeEllipse(r Rect, width float64, c Color)
	Line(a, b Vec2, width float64, c Color)

	// Text draws s with its top-left corner at (x, y).
	Text(s string, x, y float64, f FontSpec, c Color)
	// MeasureText returns the size of s in world units, independent of the
	// current transform.
	MeasureText(s string, f FontSpec) (w, h float64)
}

// fontSizeKey buckets a pixel font size so that faces can be cached while
// the zoom animates.
func fontSizeKey(px float64) float64 {
	if px < 1 {
		return 1
	}
	return float64(int(px*2+0.5)) / 2
}
