package barboard

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Zoom limits applied to every viewport change.
const (
	MinZoom = 0.1
	MaxZoom = 8.0
)

// Viewport transition tuning.
const (
	// ViewportDecay is the exponential decay rate, per second, of an animated
	// transition toward its target.
	ViewportDecay = 12.0
	// MaxFrameDelta caps the time step of one transition step.
	MaxFrameDelta = 100 * time.Millisecond

	snapPan  = 0.5
	snapZoom = 0.001

	// wheelZoomRate converts wheel delta (pixels) into a zoom exponent.
	wheelZoomRate = 0.0015
)

// Viewport is the pan/zoom transform from world to screen:
//
//	screen = (world + pan) * zoom
type Viewport struct {
	PanX, PanY float64
	Zoom       float64
}

// clampZoom limits z to [MinZoom, MaxZoom].
func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(z, MaxZoom))
}

// normalized returns v with a usable zoom. The second result is false when
// the zoom is not a positive finite number.
func (v Viewport) normalized() (Viewport, bool) {
	if !(v.Zoom > 0) || math.IsInf(v.Zoom, 0) || math.IsNaN(v.PanX) || math.IsNaN(v.PanY) {
		return v, false
	}
	v.Zoom = clampZoom(v.Zoom)
	return v, true
}

// Matrix returns the world-to-screen matrix Scale(zoom) * Translate(pan).
func (v Viewport) Matrix() [6]float64 {
	return multiplyAffine(scaleTransform(v.Zoom), translateTransform(v.PanX, v.PanY))
}

// WorldToScreen converts a world-space point to screen pixels.
func (v Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(v.Matrix(), wx, wy)
}

// ScreenToWorld converts screen pixels to a world-space point.
func (v Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return transformPoint(invertAffine(v.Matrix()), sx, sy)
}

// VisibleBounds returns the world-space rectangle visible on a screen of the
// given size.
func (v Viewport) VisibleBounds(screenW, screenH float64) Rect {
	return transformRect(invertAffine(v.Matrix()), Rect{Width: screenW, Height: screenH})
}

// Panned returns v moved by a screen-space delta. The world moves with the
// pointer regardless of zoom.
func (v Viewport) Panned(dsx, dsy float64) Viewport {
	v.PanX += dsx / v.Zoom
	v.PanY += dsy / v.Zoom
	return v
}

// ZoomedAt returns v scaled by factor, keeping the world point under the
// screen point (sx, sy) fixed.
func (v Viewport) ZoomedAt(sx, sy, factor float64) Viewport {
	wx, wy := v.ScreenToWorld(sx, sy)
	z := clampZoom(v.Zoom * factor)
	return Viewport{
		PanX: sx/z - wx,
		PanY: sy/z - wy,
		Zoom: z,
	}
}

// WheelZoomFactor converts a wheel delta in pixels to a multiplicative zoom
// factor. Scrolling down (positive) zooms out.
func WheelZoomFactor(deltaY float64) float64 {
	return math.Exp(-deltaY * wheelZoomRate)
}

// FrameRect returns the viewport that centers world rectangle r on a screen
// of the given size, scaled to fit with padding pixels on each side.
func FrameRect(r Rect, screenW, screenH, padding float64) Viewport {
	availW := math.Max(screenW-2*padding, 1)
	availH := math.Max(screenH-2*padding, 1)
	z := 1.0
	if r.Width > 0 && r.Height > 0 {
		z = math.Min(availW/r.Width, availH/r.Height)
	}
	z = clampZoom(z)
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	return Viewport{
		PanX: screenW/(2*z) - cx,
		PanY: screenH/(2*z) - cy,
		Zoom: z,
	}
}

// near reports whether v is within snapping distance of t on every axis.
func (v Viewport) near(t Viewport) bool {
	return math.Abs(t.PanX-v.PanX) < snapPan &&
		math.Abs(t.PanY-v.PanY) < snapPan &&
		math.Abs(t.Zoom-v.Zoom) < snapZoom
}

// decayToward moves v toward t by exponential decay over dt.
func (v Viewport) decayToward(t Viewport, dt time.Duration) Viewport {
	k := 1 - math.Exp(-ViewportDecay*dt.Seconds())
	return Viewport{
		PanX: v.PanX + (t.PanX-v.PanX)*k,
		PanY: v.PanY + (t.PanY-v.PanY)*k,
		Zoom: v.Zoom + (t.Zoom-v.Zoom)*k,
	}
}

// viewportTween holds the tweens of a FlyTo transition, one per axis.
type viewportTween struct {
	x, y, zoom *gween.Tween
	target     Viewport
}

func newViewportTween(from, to Viewport, duration float32, easeFn ease.TweenFunc) *viewportTween {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	return &viewportTween{
		x:      gween.New(float32(from.PanX), float32(to.PanX), duration, easeFn),
		y:      gween.New(float32(from.PanY), float32(to.PanY), duration, easeFn),
		zoom:   gween.New(float32(from.Zoom), float32(to.Zoom), duration, easeFn),
		target: to,
	}
}

// step advances the tweens and returns the new viewport and whether the
// transition has finished.
func (t *viewportTween) step(dt time.Duration) (Viewport, bool) {
	s := float32(dt.Seconds())
	x, doneX := t.x.Update(s)
	y, doneY := t.y.Update(s)
	z, doneZ := t.zoom.Update(s)
	if doneX && doneY && doneZ {
		return t.target, true
	}
	return Viewport{PanX: float64(x), PanY: float64(y), Zoom: float64(z)}, false
}
