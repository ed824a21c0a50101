package barboard

import (
	"maps"
	"slices"
)

// GroupOf returns the group that directly contains id, or "" when the node is
// not grouped. Membership is stored only on the group, so this is a scan.
func (sc *Scene) GroupOf(id NodeID) NodeID {
	for gid, g := range sc.Nodes {
		if slices.Contains(g.children(), id) {
			return gid
		}
	}
	return ""
}

// TopGroupOf returns the outermost group containing id, or id itself when it
// is not grouped. Clicks on a grouped node select this.
func (sc *Scene) TopGroupOf(id NodeID) NodeID {
	for depth := 0; depth < len(sc.Nodes); depth++ {
		p := sc.GroupOf(id)
		if p == "" {
			break
		}
		id = p
	}
	return id
}

// descendants returns every node below group gid, nested groups included.
func descendants(sc *Scene, gid NodeID) []NodeID {
	var out []NodeID
	seen := map[NodeID]bool{gid: true}
	stack := []NodeID{gid}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := sc.Nodes[id]
		if n == nil {
			continue
		}
		for _, c := range n.children() {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			stack = append(stack, c)
		}
	}
	return out
}

// sanitizeChildren filters ids down to the nodes group gid may legally hold:
// existing, not gid itself or one of its ancestors, not owned by another
// group, and without duplicates.
func sanitizeChildren(sc *Scene, gid NodeID, ids []NodeID) []NodeID {
	ancestors := map[NodeID]bool{gid: true}
	for p := sc.GroupOf(gid); p != "" && !ancestors[p]; p = sc.GroupOf(p) {
		ancestors[p] = true
	}
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if sc.Nodes[id] == nil || ancestors[id] || slices.Contains(out, id) {
			continue
		}
		if owner := sc.GroupOf(id); owner != "" && owner != gid {
			continue
		}
		out = append(out, id)
	}
	return out
}

// translateNode moves node id by (dx, dy) inside sc. sc.Nodes must already be
// a private copy.
func translateNode(sc *Scene, id NodeID, dx, dy float64) {
	n := sc.Nodes[id]
	if n == nil {
		return
	}
	cp := n.Clone()
	cp.X += dx
	cp.Y += dy
	sc.Nodes[id] = cp
}

// refreshGroups refits every group among touched and every group containing
// a touched node.
func refreshGroups(sc *Scene, touched []NodeID) {
	var gids []NodeID
	for _, id := range touched {
		if n := sc.Nodes[id]; n != nil && n.Kind == KindGroup {
			gids = append(gids, id)
		}
		if p := sc.GroupOf(id); p != "" {
			gids = append(gids, p)
		}
	}
	if len(gids) > 0 {
		refreshGroupBounds(sc, gids)
	}
}

// refreshGroupBounds refits the given groups and then their ancestors so each
// group's box is the union of its children.
func refreshGroupBounds(sc *Scene, gids []NodeID) {
	queue := slices.Clone(gids)
	for steps := 0; len(queue) > 0 && steps <= 4*len(sc.Nodes); steps++ {
		gid := queue[0]
		queue = queue[1:]
		if fitGroup(sc, gid) {
			if p := sc.GroupOf(gid); p != "" {
				queue = append(queue, p)
			}
		}
	}
}

// fitGroup sets the box of group gid to the union of its children and reports
// whether the box changed.
func fitGroup(sc *Scene, gid NodeID) bool {
	g := sc.Nodes[gid]
	if g == nil || g.Kind != KindGroup {
		return false
	}
	var box Rect
	first := true
	for _, c := range g.children() {
		n := sc.Nodes[c]
		if n == nil {
			continue
		}
		if first {
			box = n.Bounds()
			first = false
		} else {
			box = box.Union(n.Bounds())
		}
	}
	if first || (g.X == box.X && g.Y == box.Y && g.W == box.Width && g.H == box.Height) {
		return false
	}
	cp := g.Clone()
	cp.X, cp.Y, cp.W, cp.H = box.X, box.Y, box.Width, box.Height
	sc.Nodes[gid] = cp
	return true
}

// pruneGroups drops dangling child ids from every group and deletes groups
// left empty, repeating until stable. sc.Nodes must already be a private
// copy. It returns the ids of the deleted groups.
func pruneGroups(sc *Scene) []NodeID {
	var removed, refit []NodeID
	for changed := true; changed; {
		changed = false
		for _, gid := range slices.Sorted(maps.Keys(sc.Nodes)) {
			g := sc.Nodes[gid]
			if g == nil || g.Kind != KindGroup {
				continue
			}
			kids := g.children()
			kept := slices.DeleteFunc(slices.Clone(kids), func(c NodeID) bool { return sc.Nodes[c] == nil })
			if len(kept) == len(kids) && len(kids) > 0 {
				continue
			}
			changed = true
			if len(kept) == 0 {
				delete(sc.Nodes, gid)
				removed = append(removed, gid)
				continue
			}
			cp := g.Clone()
			cp.Content.(*GroupContent).ChildrenIDs = kept
			sc.Nodes[gid] = cp
			refit = append(refit, gid)
		}
	}
	refit = slices.DeleteFunc(refit, func(id NodeID) bool { return sc.Nodes[id] == nil })
	if len(refit) > 0 {
		refreshGroupBounds(sc, refit)
	}
	return removed
}

// detach removes id from its current group inside sc, deleting the group if
// it becomes empty. It returns the ids whose nodes were removed.
func detach(sc *Scene, id NodeID) []NodeID {
	gid := sc.GroupOf(id)
	if gid == "" {
		return nil
	}
	g := sc.Nodes[gid].Clone()
	gc := g.Content.(*GroupContent)
	gc.ChildrenIDs = slices.DeleteFunc(gc.ChildrenIDs, func(c NodeID) bool { return c == id })
	if len(gc.ChildrenIDs) == 0 {
		delete(sc.Nodes, gid)
		return append([]NodeID{gid}, detach(sc, gid)...)
	}
	sc.Nodes[gid] = g
	refreshGroupBounds(sc, []NodeID{gid})
	return nil
}

// Group wraps the given nodes in a new group placed above them and returns
// its id. Nodes already in a group move to the new one. At least two existing
// nodes are required; otherwise "" is returned and nothing changes.
func (s *Store) Group(ids ...NodeID) NodeID {
	cur := s.scene
	var members []NodeID
	for _, id := range ids {
		if cur.Nodes[id] != nil && !slices.Contains(members, id) {
			members = append(members, id)
		}
	}
	if len(members) < 2 {
		return ""
	}
	// A group and its own descendant cannot both be members.
	for _, id := range slices.Clone(members) {
		if cur.Nodes[id].Kind != KindGroup {
			continue
		}
		for _, d := range descendants(cur, id) {
			members = slices.DeleteFunc(members, func(m NodeID) bool { return m == d })
		}
	}
	if len(members) < 2 {
		return ""
	}

	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	z := 0
	for i, id := range members {
		detach(next, id)
		if n := next.Nodes[id]; i == 0 || n.ZIndex > z {
			z = n.ZIndex
		}
	}
	gid := s.freshID(next)
	next.Nodes[gid] = &Node{
		ID:      gid,
		Kind:    KindGroup,
		ZIndex:  z + 1,
		Content: &GroupContent{ChildrenIDs: members},
	}
	fitGroup(next, gid)
	next.Selection = Selection{gid: {}}
	s.commit(next, Change{Op: OpUpdateNodes, IDs: append([]NodeID{gid}, members...)})
	return gid
}

// Ungroup dissolves a group. Its children stay where they are and join the
// group's own parent group, if any. The children become the selection.
func (s *Store) Ungroup(gid NodeID) bool {
	cur := s.scene
	g := cur.Nodes[gid]
	if g == nil || g.Kind != KindGroup {
		return false
	}
	kids := slices.Clone(g.children())
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	parent := cur.GroupOf(gid)
	delete(next.Nodes, gid)
	if parent != "" {
		p := next.Nodes[parent].Clone()
		pc := p.Content.(*GroupContent)
		i := slices.Index(pc.ChildrenIDs, gid)
		pc.ChildrenIDs = slices.Replace(pc.ChildrenIDs, i, i+1, kids...)
		next.Nodes[parent] = p
		refreshGroupBounds(next, []NodeID{parent})
	}
	next.Selection = make(Selection, len(kids))
	for _, k := range kids {
		next.Selection[k] = struct{}{}
	}
	if cur.Interaction.ActiveBoardID == gid {
		next.Interaction.ActiveBoardID = ""
	}
	s.commit(next, Change{Op: OpDeleteNodes, IDs: []NodeID{gid}})
	return true
}

// AddToGroup moves the given nodes into group gid. Nodes that would create a
// cycle are skipped. It reports whether any node joined.
func (s *Store) AddToGroup(gid NodeID, ids ...NodeID) bool {
	cur := s.scene
	g := cur.Nodes[gid]
	if g == nil || g.Kind != KindGroup {
		return false
	}
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	var joined []NodeID
	for _, id := range ids {
		if next.Nodes[id] == nil || next.GroupOf(id) == gid {
			continue
		}
		// Detaching can delete the group chain; never detach an ancestor of gid.
		if id == gid || slices.Contains(descendants(next, id), gid) {
			continue
		}
		detach(next, id)
		if next.Nodes[gid] == nil {
			return false
		}
		joined = append(joined, id)
	}
	if len(joined) == 0 {
		return false
	}
	cp := next.Nodes[gid].Clone()
	gc := cp.Content.(*GroupContent)
	gc.ChildrenIDs = append(gc.ChildrenIDs, joined...)
	next.Nodes[gid] = cp
	refreshGroupBounds(next, []NodeID{gid})
	s.commit(next, Change{Op: OpUpdateNodes, IDs: append([]NodeID{gid}, joined...)})
	return true
}

// RemoveFromGroup takes the given nodes out of group gid. A group left empty
// is deleted.
func (s *Store) RemoveFromGroup(gid NodeID, ids ...NodeID) bool {
	cur := s.scene
	g := cur.Nodes[gid]
	if g == nil || g.Kind != KindGroup {
		return false
	}
	kids := g.children()
	var leaving []NodeID
	for _, id := range ids {
		if slices.Contains(kids, id) && !slices.Contains(leaving, id) {
			leaving = append(leaving, id)
		}
	}
	if len(leaving) == 0 {
		return false
	}
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	var removed []NodeID
	for _, id := range leaving {
		removed = append(removed, detach(next, id)...)
	}
	if len(removed) > 0 {
		next.Selection = pruneSelection(cur.Selection, next.Nodes)
		s.commit(next, Change{Op: OpDeleteNodes, IDs: removed})
		return true
	}
	s.commit(next, Change{Op: OpUpdateNodes, IDs: append([]NodeID{gid}, leaving...)})
	return true
}

// MoveNodes translates the given nodes by (dx, dy) in one mutation. Groups
// move with all their descendants, and every affected group is refitted.
func (s *Store) MoveNodes(ids []NodeID, dx, dy float64) bool {
	if dx == 0 && dy == 0 {
		return false
	}
	cur := s.scene
	moving := make(map[NodeID]bool)
	for _, id := range ids {
		n := cur.Nodes[id]
		if n == nil {
			continue
		}
		moving[id] = true
		if n.Kind == KindGroup {
			for _, d := range descendants(cur, id) {
				moving[d] = true
			}
		}
	}
	if len(moving) == 0 {
		return false
	}
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	touched := slices.Sorted(maps.Keys(moving))
	for _, id := range touched {
		translateNode(next, id, dx, dy)
	}
	refreshGroups(next, touched)
	s.commit(next, Change{Op: OpUpdateNodes, IDs: touched})
	return true
}

// BringToFront raises the given nodes above every other node, keeping their
// relative order.
func (s *Store) BringToFront(ids ...NodeID) bool {
	return s.restack(ids, true)
}

// SendToBack lowers the given nodes below every other node, keeping their
// relative order.
func (s *Store) SendToBack(ids ...NodeID) bool {
	return s.restack(ids, false)
}

func (s *Store) restack(ids []NodeID, front bool) bool {
	cur := s.scene
	var nodes []*Node
	for _, id := range ids {
		if n := cur.Nodes[id]; n != nil && !slices.Contains(nodes, n) {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return false
	}
	slices.SortFunc(nodes, compareNodes)
	base := cur.maxZ() + 1
	if !front {
		base = cur.minZ() - len(nodes)
	}
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	touched := make([]NodeID, len(nodes))
	for i, n := range nodes {
		cp := n.Clone()
		cp.ZIndex = base + i
		next.Nodes[n.ID] = cp
		touched[i] = n.ID
	}
	s.commit(next, Change{Op: OpUpdateNodes, IDs: touched})
	return true
}
