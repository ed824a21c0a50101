package barboard

import "math"

// arcSegments is the number of segments used per quarter circle.
const arcSegments = 8

// roundedRectPoints returns the outline of r with corners of the given radius,
// clockwise from the top-left. A zero radius yields the four corners.
func roundedRectPoints(r Rect, radius float64) []Vec2 {
	radius = math.Min(radius, math.Min(r.Width, r.Height)/2)
	if radius <= 0 {
		return []Vec2{
			{r.X, r.Y},
			{r.X + r.Width, r.Y},
			{r.X + r.Width, r.Y + r.Height},
			{r.X, r.Y + r.Height},
		}
	}
	corners := [4]struct{ cx, cy, start float64 }{
		{r.X + r.Width - radius, r.Y + radius, -math.Pi / 2},
		{r.X + r.Width - radius, r.Y + r.Height - radius, 0},
		{r.X + radius, r.Y + r.Height - radius, math.Pi / 2},
		{r.X + radius, r.Y + radius, math.Pi},
	}
	pts := make([]Vec2, 0, 4*(arcSegments+1))
	for _, c := range corners {
		for i := 0; i <= arcSegments; i++ {
			a := c.start + float64(i)/arcSegments*math.Pi/2
			pts = append(pts, Vec2{c.cx + radius*math.Cos(a), c.cy + radius*math.Sin(a)})
		}
	}
	return pts
}

// ellipsePoints returns the outline of the ellipse inscribed in r.
func ellipsePoints(r Rect) []Vec2 {
	n := 4 * arcSegments
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	rx, ry := r.Width/2, r.Height/2
	pts := make([]Vec2, n)
	for i := range pts {
		a := float64(i) / float64(n) * 2 * math.Pi
		pts[i] = Vec2{cx + rx*math.Cos(a), cy + ry*math.Sin(a)}
	}
	return pts
}

// fanIndices returns triangle indices for a convex polygon of n points,
// offset by base. 3*(n-2) indices.
func fanIndices(n int, base uint16) []uint16 {
	if n < 3 {
		return nil
	}
	inds := make([]uint16, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		inds = append(inds, base, base+uint16(i), base+uint16(i+1))
	}
	return inds
}

// strokeQuads expands a polyline into one quad per segment, each as four
// points (left-start, right-start, left-end, right-end). closed joins the
// last point back to the first.
func strokeQuads(points []Vec2, width float64, closed bool) [][4]Vec2 {
	n := len(points)
	if n < 2 {
		return nil
	}
	segs := n - 1
	if closed {
		segs = n
	}
	hw := width / 2
	quads := make([][4]Vec2, 0, segs)
	for i := 0; i < segs; i++ {
		a := points[i]
		b := points[(i+1)%n]
		px, py := perpendicular(a, b)
		quads = append(quads, [4]Vec2{
			{a.X + px*hw, a.Y + py*hw},
			{a.X - px*hw, a.Y - py*hw},
			{b.X + px*hw, b.Y + py*hw},
			{b.X - px*hw, b.Y - py*hw},
		})
	}
	return quads
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// lerpColor mixes a and b; t = 0 gives a.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
