package barboard

import "math"

// ResizeHandle identifies one of the eight resize grips around a selected
// node.
type ResizeHandle uint8

const (
	HandleNone ResizeHandle = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

// handlePoints returns the centers of the eight handles of b, in
// ResizeHandle order starting at HandleTopLeft.
func handlePoints(b Rect) [8]Vec2 {
	x0, y0 := b.X, b.Y
	x1, y1 := b.X+b.Width, b.Y+b.Height
	xm, ym := b.X+b.Width/2, b.Y+b.Height/2
	return [8]Vec2{
		{x0, y0}, {xm, y0}, {x1, y0}, {x1, ym},
		{x1, y1}, {xm, y1}, {x0, y1}, {x0, ym},
	}
}

// resizeTarget returns the node whose handles are live: the only selected
// node, in creative mode, when it has a size of its own.
func resizeTarget(sc *Scene) *Node {
	if sc.Interaction.Mode != ModeCreative || sc.Selection.Len() != 1 {
		return nil
	}
	n := sc.Nodes[sc.Selection.IDs()[0]]
	if n == nil || n.Kind == KindGroup {
		return nil
	}
	return n
}

// HandleAt returns the resize handle under the world point (x, y) and the
// node it belongs to.
func HandleAt(sc *Scene, x, y float64) (ResizeHandle, *Node) {
	n := resizeTarget(sc)
	if n == nil {
		return HandleNone, nil
	}
	reach := (handleSize/2 + 2) / sc.Viewport.Zoom
	for i, p := range handlePoints(n.Bounds()) {
		if math.Abs(x-p.X) <= reach && math.Abs(y-p.Y) <= reach {
			return ResizeHandle(i + 1), n
		}
	}
	return HandleNone, nil
}

// NodeAt returns the topmost non-group node under the world point (x, y), or
// nil. Groups are reached through their members.
func NodeAt(sc *Scene, x, y float64) *Node {
	nodes := sc.Sorted()
	tolerance := 4 / sc.Viewport.Zoom
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Kind != KindGroup && nodeContains(n, x, y, tolerance) {
			return n
		}
	}
	return nil
}

// nodeContains tests (x, y) against the drawn outline of n. tolerance widens
// thin lines so they stay clickable.
func nodeContains(n *Node, x, y, tolerance float64) bool {
	b := n.Bounds()
	switch c := n.Content.(type) {
	case *LineContent:
		a := Vec2{b.X, b.Y}
		e := Vec2{b.X + b.Width, b.Y + b.Height}
		if c.Rising {
			a = Vec2{b.X, b.Y + b.Height}
			e = Vec2{b.X + b.Width, b.Y}
		}
		return segmentDistance(Vec2{x, y}, a, e) <= max(c.Width/2, tolerance)
	case *ShapeContent:
		if c.Shape == ShapeEllipse {
			return ellipseContains(b, x, y)
		}
	case *IconContent:
		return ellipseContains(b, x, y)
	}
	return b.Contains(x, y)
}

func ellipseContains(b Rect, x, y float64) bool {
	rx, ry := b.Width/2, b.Height/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	dx := (x - b.X - rx) / rx
	dy := (y - b.Y - ry) / ry
	return dx*dx+dy*dy <= 1
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = max(0, min(1, ((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l2))
	}
	cx, cy := a.X+t*dx-p.X, a.Y+t*dy-p.Y
	return math.Sqrt(cx*cx + cy*cy)
}

// resizedBounds applies a pointer delta to origin through handle h. The edge
// opposite the handle stays fixed and the result never drops below the
// minimum node size.
func resizedBounds(origin Rect, h ResizeHandle, dx, dy float64) Rect {
	left, top := origin.X, origin.Y
	right, bottom := origin.X+origin.Width, origin.Y+origin.Height
	switch h {
	case HandleTopLeft, HandleLeft, HandleBottomLeft:
		left = min(left+dx, right-MinNodeWidth)
	case HandleTopRight, HandleRight, HandleBottomRight:
		right = max(right+dx, left+MinNodeWidth)
	}
	switch h {
	case HandleTopLeft, HandleTop, HandleTopRight:
		top = min(top+dy, bottom-MinNodeHeight)
	case HandleBottomLeft, HandleBottom, HandleBottomRight:
		bottom = max(bottom+dy, top+MinNodeHeight)
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// dragRect returns the normalized box spanned by two world points, grown to
// the minimum node size away from the anchor a.
func dragRect(a, b Vec2) Rect {
	r := Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}
	if math.Abs(r.Width) < MinNodeWidth {
		r.Width = math.Copysign(MinNodeWidth, r.Width)
	}
	if math.Abs(r.Height) < MinNodeHeight {
		r.Height = math.Copysign(MinNodeHeight, r.Height)
	}
	return r.Normalized()
}
