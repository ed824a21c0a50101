package barboard

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel lazily creates the 1x1 white source image used for all
// untextured triangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// EbitenSurface draws into an offscreen ebiten image with DrawTriangles and
// text/v2. The host blits Image onto the screen each frame.
type EbitenSurface struct {
	target  *ebiten.Image
	m       [6]float64
	regular *text.GoTextFaceSource
	bold    *text.GoTextFaceSource
	faces   map[FontSpec]*text.GoTextFace

	verts []ebiten.Vertex
	inds  []uint16
}

// NewEbitenSurface returns a w×h surface backed by a new ebiten image.
func NewEbitenSurface(w, h int) (*EbitenSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrNoSurface, w, h)
	}
	regular, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("barboard: load regular font: %w", err)
	}
	bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("barboard: load bold font: %w", err)
	}
	return &EbitenSurface{
		target:  ebiten.NewImage(w, h),
		m:       identityTransform,
		regular: regular,
		bold:    bold,
		faces:   make(map[FontSpec]*text.GoTextFace),
	}, nil
}

// Image returns the backing image.
func (s *EbitenSurface) Image() *ebiten.Image { return s.target }

// Size implements Surface.
func (s *EbitenSurface) Size() (int, int) {
	b := s.target.Bounds()
	return b.Dx(), b.Dy()
}

// Resize implements Surface.
func (s *EbitenSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrNoSurface, w, h)
	}
	if cw, ch := s.Size(); cw == w && ch == h {
		return nil
	}
	s.target.Deallocate()
	s.target = ebiten.NewImage(w, h)
	return nil
}

// Clear implements Surface.
func (s *EbitenSurface) Clear(c Color) {
	s.target.Fill(c.RGBA())
}

// SetTransform implements Surface.
func (s *EbitenSurface) SetTransform(m [6]float64) { s.m = m }

// vertex transforms a world point and returns a premultiplied vertex.
func (s *EbitenSurface) vertex(p Vec2, c Color) ebiten.Vertex {
	x, y := transformPoint(s.m, p.X, p.Y)
	a := clamp01(c.A)
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(clamp01(c.R) * a),
		ColorG: float32(clamp01(c.G) * a),
		ColorB: float32(clamp01(c.B) * a),
		ColorA: float32(a),
	}
}

func (s *EbitenSurface) flush() {
	if len(s.inds) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	s.target.DrawTriangles(s.verts, s.inds, ensureWhitePixel(), op)
	s.verts = s.verts[:0]
	s.inds = s.inds[:0]
}

// fillPolygon draws a convex polygon. shade gives the color of each point.
func (s *EbitenSurface) fillPolygon(pts []Vec2, shade func(Vec2) Color) {
	if len(pts) < 3 {
		return
	}
	base := uint16(len(s.verts))
	for _, p := range pts {
		s.verts = append(s.verts, s.vertex(p, shade(p)))
	}
	s.inds = append(s.inds, fanIndices(len(pts), base)...)
	s.flush()
}

func (s *EbitenSurface) strokePolyline(pts []Vec2, width float64, closed bool, c Color) {
	for _, q := range strokeQuads(pts, width, closed) {
		base := uint16(len(s.verts))
		for _, p := range q {
			s.verts = append(s.verts, s.vertex(p, c))
		}
		s.inds = append(s.inds, base, base+1, base+2, base+1, base+3, base+2)
	}
	s.flush()
}

func solid(c Color) func(Vec2) Color {
	return func(Vec2) Color { return c }
}

// FillRect implements Surface.
func (s *EbitenSurface) FillRect(r Rect, radius float64, c Color) {
	s.fillPolygon(roundedRectPoints(r, radius), solid(c))
}

// FillGradient implements Surface.
func (s *EbitenSurface) FillGradient(r Rect, radius float64, from, to Color, vertical bool) {
	s.fillPolygon(roundedRectPoints(r, radius), func(p Vec2) Color {
		var t float64
		if vertical && r.Height > 0 {
			t = (p.Y - r.Y) / r.Height
		} else if !vertical && r.Width > 0 {
			t = (p.X - r.X) / r.Width
		}
		return lerpColor(from, to, clamp01(t))
	})
}

// StrokeRect implements Surface.
func (s *EbitenSurface) StrokeRect(r Rect, radius, width float64, c Color) {
	s.strokePolyline(roundedRectPoints(r, radius), width, true, c)
}

// FillEllipse implements Surface.
func (s *EbitenSurface) FillEllipse(r Rect, c Color) {
	s.fillPolygon(ellipsePoints(r), solid(c))
}

// StrokeEllipse implements Surface.
func (s *EbitenSurface) StrokeEllipse(r Rect, width float64, c Color) {
	s.strokePolyline(ellipsePoints(r), width, true, c)
}

// Line implements Surface.
func (s *EbitenSurface) Line(a, b Vec2, width float64, c Color) {
	s.strokePolyline([]Vec2{a, b}, width, false, c)
}

func (s *EbitenSurface) face(f FontSpec) *text.GoTextFace {
	key := FontSpec{Size: fontSizeKey(f.Size), Bold: f.Bold}
	if face, ok := s.faces[key]; ok {
		return face
	}
	src := s.regular
	if f.Bold {
		src = s.bold
	}
	face := &text.GoTextFace{Source: src, Size: key.Size}
	s.faces[key] = face
	return face
}

// Text implements Surface.
func (s *EbitenSurface) Text(str string, x, y float64, f FontSpec, c Color) {
	px := f.Size * matrixScale(s.m)
	if px < 2 || str == "" {
		return
	}
	face := s.face(FontSpec{Size: px, Bold: f.Bold})
	sx, sy := transformPoint(s.m, x, y)
	op := &text.DrawOptions{}
	op.GeoM.Translate(sx, sy)
	op.ColorScale.ScaleWithColor(c.RGBA())
	text.Draw(s.target, str, face, op)
}

// MeasureText implements Surface.
func (s *EbitenSurface) MeasureText(str string, f FontSpec) (float64, float64) {
	face := s.face(f)
	m := face.Metrics()
	return text.Measure(str, face, m.HAscent+m.HDescent+m.HLineGap)
}
