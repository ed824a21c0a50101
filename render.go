package barboard

import (
	"fmt"
	"math"
)

// Theme holds the colors the renderer falls back to when content leaves a
// color unset.
type Theme struct {
	Background  Color
	Grid        Color
	Text        Color
	MutedText   Color
	NodeFill    Color
	NodeBorder  Color
	BoardFill   Color
	BoardHeader Color
	CardFill    Color
	Accent      Color
	Selection   Color
	Handle      Color
	Focus       Color
	Good        Color
	Warning     Color
	Critical    Color
}

// DefaultTheme returns the light theme used by hosts that set none.
func DefaultTheme() Theme {
	return Theme{
		Background:  Color{0.96, 0.95, 0.93, 1},
		Grid:        Color{0.82, 0.80, 0.77, 1},
		Text:        Color{0.13, 0.12, 0.11, 1},
		MutedText:   Color{0.42, 0.40, 0.38, 1},
		NodeFill:    Color{0.99, 0.85, 0.45, 1},
		NodeBorder:  Color{0.55, 0.50, 0.45, 1},
		BoardFill:   Color{1, 1, 1, 1},
		BoardHeader: Color{0.20, 0.22, 0.27, 1},
		CardFill:    Color{1, 1, 0.98, 1},
		Accent:      Color{0.80, 0.36, 0.18, 1},
		Selection:   Color{0.15, 0.45, 0.95, 1},
		Handle:      Color{1, 1, 1, 1},
		Focus:       Color{0.15, 0.45, 0.95, 0.9},
		Good:        Color{0.18, 0.60, 0.32, 1},
		Warning:     Color{0.90, 0.62, 0.10, 1},
		Critical:    Color{0.82, 0.18, 0.16, 1},
	}
}

// Screen-space sizes of the selection overlay, in device-independent pixels.
const (
	handleSize       = 8
	selectionPadding = 3
	selectionWidth   = 1.5
)

// Background dot grid.
const (
	gridSpacing = 40
	minGridZoom = 0.35
)

// RenderStats describes the last Render call.
type RenderStats struct {
	Drawn  int
	Culled int
}

// Renderer paints a Scene snapshot onto a Surface. It only reads the scene
// and the external data it is given.
type Renderer struct {
	Theme Theme
	// Grid enables the background dot grid.
	Grid bool

	surface     Surface
	width       float64 // logical size in device-independent pixels
	height      float64
	deviceScale float64
	stats       RenderStats
}

// NewRenderer returns a renderer with the default theme and no surface.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme(), Grid: true, deviceScale: 1}
}

// Attach binds the renderer to s. It fails with ErrNoSurface when s is nil
// or has no pixels; the renderer keeps its previous surface in that case.
func (r *Renderer) Attach(s Surface) error {
	if s == nil {
		return ErrNoSurface
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: surface is %dx%d", ErrNoSurface, w, h)
	}
	r.surface = s
	r.width = float64(w) / r.deviceScale
	r.height = float64(h) / r.deviceScale
	return nil
}

// Surface returns the attached surface, or nil.
func (r *Renderer) Surface() Surface { return r.surface }

// Resize sets the logical size of the canvas and the device pixel ratio. The
// surface is resized to w*scale by h*scale pixels.
func (r *Renderer) Resize(w, h int, scale float64) error {
	if r.surface == nil {
		return ErrNoSurface
	}
	if scale <= 0 {
		scale = 1
	}
	pw := int(math.Round(float64(w) * scale))
	ph := int(math.Round(float64(h) * scale))
	if err := r.surface.Resize(pw, ph); err != nil {
		return fmt.Errorf("barboard: resize surface: %w", err)
	}
	r.width, r.height, r.deviceScale = float64(w), float64(h), scale
	return nil
}

// Size returns the logical canvas size.
func (r *Renderer) Size() (w, h float64) { return r.width, r.height }

// Stats returns counters from the last Render call.
func (r *Renderer) Stats() RenderStats { return r.stats }

// Render repaints the surface from sc. data may be nil, in which case domain
// nodes draw as unresolved.
func (r *Renderer) Render(sc *Scene, data ExternalLookup) error {
	s := r.surface
	if s == nil {
		return ErrNoSurface
	}
	if data == nil {
		data = ExternalTable(nil)
	}
	r.stats = RenderStats{}

	s.SetTransform(identityTransform)
	s.Clear(r.Theme.Background)

	view := sc.Viewport
	s.SetTransform(multiplyAffine(scaleTransform(r.deviceScale), view.Matrix()))
	visible := view.VisibleBounds(r.width, r.height)
	r.drawGrid(view, visible)

	for _, n := range sc.Sorted() {
		if !n.Bounds().Intersects(visible) {
			r.stats.Culled++
			continue
		}
		r.drawNode(n, data)
		r.stats.Drawn++
	}

	r.drawZoneFocus(sc)
	r.drawSelection(sc)
	return nil
}

func (r *Renderer) drawGrid(view Viewport, visible Rect) {
	if !r.Grid || view.Zoom < minGridZoom {
		return
	}
	dot := 1.5 / view.Zoom
	x0 := math.Floor(visible.X/gridSpacing) * gridSpacing
	y0 := math.Floor(visible.Y/gridSpacing) * gridSpacing
	for x := x0; x <= visible.X+visible.Width; x += gridSpacing {
		for y := y0; y <= visible.Y+visible.Height; y += gridSpacing {
			r.surface.FillRect(Rect{X: x - dot/2, Y: y - dot/2, Width: dot, Height: dot}, 0, r.Theme.Grid)
		}
	}
}

// drawSelection outlines every selected node. Resize handles are shown only
// when they can be used.
func (r *Renderer) drawSelection(sc *Scene) {
	z := sc.Viewport.Zoom
	pad := selectionPadding / z
	for _, id := range sc.Selection.IDs() {
		n := sc.Nodes[id]
		if n == nil {
			continue
		}
		b := n.Bounds()
		outline := Rect{X: b.X - pad, Y: b.Y - pad, Width: b.Width + 2*pad, Height: b.Height + 2*pad}
		r.surface.StrokeRect(outline, 0, selectionWidth/z, r.Theme.Selection)
	}
	n := resizeTarget(sc)
	if n == nil {
		return
	}
	hs := handleSize / z
	for _, p := range handlePoints(n.Bounds()) {
		h := Rect{X: p.X - hs/2, Y: p.Y - hs/2, Width: hs, Height: hs}
		r.surface.FillRect(h, 0, r.Theme.Handle)
		r.surface.StrokeRect(h, 0, 1/z, r.Theme.Selection)
	}
}

// drawZoneFocus outlines the zone or section being edited.
func (r *Renderer) drawZoneFocus(sc *Scene) {
	in := sc.Interaction
	if in.ActiveBoardID == "" || in.ActiveZoneID == "" {
		return
	}
	n := sc.Nodes[in.ActiveBoardID]
	if n == nil || n.Collapsed {
		return
	}
	b := n.board()
	if b == nil || b.Structure == nil {
		return
	}
	for _, zr := range LayoutZones(b.Structure, BoardBodyRect(n.Bounds())) {
		if zr.ZoneID != in.ActiveZoneID {
			continue
		}
		target := zr.Rect
		for _, sr := range zr.Sections {
			if sr.ID == in.ActiveZoneSection && sr.ID != DefaultSectionID {
				target = sr.Rect
			}
		}
		r.surface.StrokeRect(target, 4, 2/sc.Viewport.Zoom, r.Theme.Focus)
	}
}
