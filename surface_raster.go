package barboard

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// RasterSurface draws into an in-memory RGBA image with fogleman/gg. It needs
// no GPU and is used for thumbnails, PNG export and headless hosts.
type RasterSurface struct {
	dc      *gg.Context
	m       [6]float64
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[FontSpec]font.Face
}

// NewRasterSurface returns a w×h raster surface.
func NewRasterSurface(w, h int) (*RasterSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: raster size %dx%d", ErrNoSurface, w, h)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("barboard: parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("barboard: parse bold font: %w", err)
	}
	return &RasterSurface{
		dc:      gg.NewContext(w, h),
		m:       identityTransform,
		regular: regular,
		bold:    bold,
		faces:   make(map[FontSpec]font.Face),
	}, nil
}

// Size implements Surface.
func (s *RasterSurface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

// Resize implements Surface.
func (s *RasterSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: raster size %dx%d", ErrNoSurface, w, h)
	}
	if w != s.dc.Width() || h != s.dc.Height() {
		s.dc = gg.NewContext(w, h)
	}
	return nil
}

// Image returns the drawn image.
func (s *RasterSurface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the drawn image as PNG.
func (s *RasterSurface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("barboard: encode png: %w", err)
	}
	return nil
}

// Clear implements Surface.
func (s *RasterSurface) Clear(c Color) {
	s.dc.SetColor(c.RGBA())
	s.dc.Clear()
}

// SetTransform implements Surface.
func (s *RasterSurface) SetTransform(m [6]float64) { s.m = m }

func (s *RasterSurface) path(r Rect, radius float64) {
	rr := transformRect(s.m, r)
	if radius > 0 {
		s.dc.DrawRoundedRectangle(rr.X, rr.Y, rr.Width, rr.Height, radius*matrixScale(s.m))
		return
	}
	s.dc.DrawRectangle(rr.X, rr.Y, rr.Width, rr.Height)
}

// FillRect implements Surface.
func (s *RasterSurface) FillRect(r Rect, radius float64, c Color) {
	s.path(r, radius)
	s.dc.SetColor(c.RGBA())
	s.dc.Fill()
}

// FillGradient implements Surface.
func (s *RasterSurface) FillGradient(r Rect, radius float64, from, to Color, vertical bool) {
	rr := transformRect(s.m, r)
	var g gg.Gradient
	if vertical {
		g = gg.NewLinearGradient(rr.X, rr.Y, rr.X, rr.Y+rr.Height)
	} else {
		g = gg.NewLinearGradient(rr.X, rr.Y, rr.X+rr.Width, rr.Y)
	}
	g.AddColorStop(0, from.RGBA())
	g.AddColorStop(1, to.RGBA())
	s.path(r, radius)
	s.dc.SetFillStyle(g)
	s.dc.Fill()
}

// StrokeRect implements Surface.
func (s *RasterSurface) StrokeRect(r Rect, radius, width float64, c Color) {
	s.path(r, radius)
	s.dc.SetLineWidth(width * matrixScale(s.m))
	s.dc.SetColor(c.RGBA())
	s.dc.Stroke()
}

func (s *RasterSurface) ellipse(r Rect) {
	rr := transformRect(s.m, r)
	s.dc.DrawEllipse(rr.X+rr.Width/2, rr.Y+rr.Height/2, rr.Width/2, rr.Height/2)
}

// FillEllipse implements Surface.
func (s *RasterSurface) FillEllipse(r Rect, c Color) {
	s.ellipse(r)
	s.dc.SetColor(c.RGBA())
	s.dc.Fill()
}

// StrokeEllipse implements Surface.
func (s *RasterSurface) StrokeEllipse(r Rect, width float64, c Color) {
	s.ellipse(r)
	s.dc.SetLineWidth(width * matrixScale(s.m))
	s.dc.SetColor(c.RGBA())
	s.dc.Stroke()
}

// Line implements Surface.
func (s *RasterSurface) Line(a, b Vec2, width float64, c Color) {
	x0, y0 := transformPoint(s.m, a.X, a.Y)
	x1, y1 := transformPoint(s.m, b.X, b.Y)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineWidth(width * matrixScale(s.m))
	s.dc.SetColor(c.RGBA())
	s.dc.DrawLine(x0, y0, x1, y1)
	s.dc.Stroke()
}

func (s *RasterSurface) face(f FontSpec) font.Face {
	key := FontSpec{Size: fontSizeKey(f.Size), Bold: f.Bold}
	if face, ok := s.faces[key]; ok {
		return face
	}
	src := s.regular
	if f.Bold {
		src = s.bold
	}
	face := truetype.NewFace(src, &truetype.Options{Size: key.Size, DPI: 72, Hinting: font.HintingNone})
	s.faces[key] = face
	return face
}

// Text implements Surface.
func (s *RasterSurface) Text(str string, x, y float64, f FontSpec, c Color) {
	px := f.Size * matrixScale(s.m)
	if px < 2 || str == "" {
		return
	}
	face := s.face(FontSpec{Size: px, Bold: f.Bold})
	sx, sy := transformPoint(s.m, x, y)
	ascent := float64(face.Metrics().Ascent) / 64
	s.dc.SetFontFace(face)
	s.dc.SetColor(c.RGBA())
	s.dc.DrawString(str, sx, sy+ascent)
}

// MeasureText implements Surface.
func (s *RasterSurface) MeasureText(str string, f FontSpec) (float64, float64) {
	face := s.face(f)
	w := float64(font.MeasureString(face, str)) / 64
	h := float64(face.Metrics().Height) / 64
	return w, h
}
