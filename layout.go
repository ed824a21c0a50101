package barboard

// Zone grid metrics in world units.
const (
	boardPadding    = 10
	zoneGap         = 8
	zoneLabelHeight = 22
	zonePadding     = 6
)

// SectionRect is the laid-out box of a zone's content area or of one of its
// sections. The zone's own content uses DefaultSectionID.
type SectionRect struct {
	ID   string
	Rect Rect
}

// ZoneRect is the laid-out box of one zone.
type ZoneRect struct {
	ZoneID   string
	Rect     Rect
	Label    Rect
	Sections []SectionRect // first entry is always the default content section
}

// BoardBodyRect returns the area of a board below its header where zones are
// laid out.
func BoardBodyRect(bounds Rect) Rect {
	body := Rect{
		X:      bounds.X,
		Y:      bounds.Y + BoardHeaderHeight,
		Width:  bounds.Width,
		Height: bounds.Height - BoardHeaderHeight,
	}
	return body.Inset(boardPadding)
}

// LayoutZones places the structure's zones on a grid inside area. Zones flow
// left to right, top to bottom, each taking the first free slot that fits its
// column and row span. Spans wider than the grid are clamped.
func LayoutZones(s *Structure, area Rect) []ZoneRect {
	if s == nil || len(s.Zones) == 0 {
		return nil
	}
	cols := s.columns()

	type slot struct{ row, col, cs, rs int }
	slots := make([]slot, len(s.Zones))
	var occupied [][]bool
	rows := 0

	free := func(row, col, cs, rs int) bool {
		if col+cs > cols {
			return false
		}
		for r := row; r < row+rs; r++ {
			if r >= len(occupied) {
				continue
			}
			for c := col; c < col+cs; c++ {
				if occupied[r][c] {
					return false
				}
			}
		}
		return true
	}

	for i, z := range s.Zones {
		cs := min(max(z.ColSpan, 1), cols)
		rs := max(z.RowSpan, 1)
		placed := false
		for row := 0; !placed; row++ {
			for col := 0; col < cols; col++ {
				if !free(row, col, cs, rs) {
					continue
				}
				for len(occupied) < row+rs {
					occupied = append(occupied, make([]bool, cols))
				}
				for r := row; r < row+rs; r++ {
					for c := col; c < col+cs; c++ {
						occupied[r][c] = true
					}
				}
				slots[i] = slot{row, col, cs, rs}
				rows = max(rows, row+rs)
				placed = true
				break
			}
		}
	}

	cellW := (area.Width - zoneGap*float64(cols-1)) / float64(cols)
	cellH := (area.Height - zoneGap*float64(rows-1)) / float64(rows)
	cellW = max(cellW, 0)
	cellH = max(cellH, 0)

	out := make([]ZoneRect, len(s.Zones))
	for i, z := range s.Zones {
		sl := slots[i]
		r := Rect{
			X:      area.X + float64(sl.col)*(cellW+zoneGap),
			Y:      area.Y + float64(sl.row)*(cellH+zoneGap),
			Width:  cellW*float64(sl.cs) + zoneGap*float64(sl.cs-1),
			Height: cellH*float64(sl.rs) + zoneGap*float64(sl.rs-1),
		}
		out[i] = layoutZone(z, r)
	}
	return out
}

// layoutZone splits a zone box into its label strip and stacked sections.
func layoutZone(z Zone, r Rect) ZoneRect {
	zr := ZoneRect{
		ZoneID: z.ID,
		Rect:   r,
		Label:  Rect{X: r.X, Y: r.Y, Width: r.Width, Height: min(zoneLabelHeight, r.Height)},
	}
	body := Rect{X: r.X, Y: r.Y + zr.Label.Height, Width: r.Width, Height: r.Height - zr.Label.Height}.Inset(zonePadding)

	n := 1 + len(z.Sections)
	h := max((body.Height-zonePadding*float64(n-1))/float64(n), 0)
	zr.Sections = make([]SectionRect, 0, n)
	zr.Sections = append(zr.Sections, SectionRect{
		ID:   DefaultSectionID,
		Rect: Rect{X: body.X, Y: body.Y, Width: body.Width, Height: h},
	})
	for i, sec := range z.Sections {
		y := body.Y + float64(i+1)*(h+zonePadding)
		zr.Sections = append(zr.Sections, SectionRect{
			ID:   sec.ID,
			Rect: Rect{X: body.X, Y: y, Width: body.Width, Height: h},
		})
	}
	return zr
}

// ZoneAt returns the zone and section under the world point (x, y) of a board
// node, using the same layout the renderer draws. ok is false when the point
// is outside every zone or the board has no structure.
func ZoneAt(n *Node, x, y float64) (zoneID, sectionID string, ok bool) {
	b := n.board()
	if b == nil || b.Structure == nil || n.Collapsed {
		return "", "", false
	}
	for _, zr := range LayoutZones(b.Structure, BoardBodyRect(n.Bounds())) {
		if !zr.Rect.Contains(x, y) {
			continue
		}
		for _, sr := range zr.Sections[1:] {
			if sr.Rect.Contains(x, y) {
				return zr.ZoneID, sr.ID, true
			}
		}
		return zr.ZoneID, DefaultSectionID, true
	}
	return "", "", false
}
