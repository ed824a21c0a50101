package barboard

import "maps"

// pruneSelection returns sel restricted to ids present in nodes. sel itself is
// returned when nothing needs pruning.
func pruneSelection(sel Selection, nodes map[NodeID]*Node) Selection {
	stale := false
	for id := range sel {
		if nodes[id] == nil {
			stale = true
			break
		}
	}
	if !stale {
		return sel
	}
	out := make(Selection, len(sel))
	for id := range sel {
		if nodes[id] != nil {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s *Store) setSelection(sel Selection) {
	cur := s.scene
	if maps.Equal(sel, cur.Selection) {
		return
	}
	next := cur.shallow()
	next.Selection = sel
	s.commit(next, Change{Op: OpSelection, IDs: sel.IDs()})
}

// Select replaces the selection with the given ids. Unknown ids are ignored.
func (s *Store) Select(ids ...NodeID) {
	sel := make(Selection, len(ids))
	for _, id := range ids {
		if s.scene.Nodes[id] != nil {
			sel[id] = struct{}{}
		}
	}
	s.setSelection(sel)
}

// AddToSelection extends the selection with the given ids.
func (s *Store) AddToSelection(ids ...NodeID) {
	sel := maps.Clone(s.scene.Selection)
	for _, id := range ids {
		if s.scene.Nodes[id] != nil {
			sel[id] = struct{}{}
		}
	}
	s.setSelection(sel)
}

// ToggleSelection flips whether id is selected.
func (s *Store) ToggleSelection(id NodeID) {
	if s.scene.Nodes[id] == nil {
		return
	}
	sel := maps.Clone(s.scene.Selection)
	if sel.Has(id) {
		delete(sel, id)
	} else {
		sel[id] = struct{}{}
	}
	s.setSelection(sel)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.setSelection(Selection{})
}

// SelectAll selects every top-level node: ungrouped nodes and outermost
// groups.
func (s *Store) SelectAll() {
	sc := s.scene
	sel := make(Selection, len(sc.Nodes))
	for id := range sc.Nodes {
		sel[sc.TopGroupOf(id)] = struct{}{}
	}
	s.setSelection(sel)
}

// SelectInRect selects the top-level nodes whose bounds intersect the world
// rectangle r. With additive set, they are added to the current selection.
func (s *Store) SelectInRect(r Rect, additive bool) {
	sc := s.scene
	r = r.Normalized()
	sel := Selection{}
	if additive {
		sel = maps.Clone(sc.Selection)
	}
	for id, n := range sc.Nodes {
		if n.Bounds().Intersects(r) {
			sel[sc.TopGroupOf(id)] = struct{}{}
		}
	}
	s.setSelection(sel)
}
