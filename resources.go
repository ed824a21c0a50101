package barboard

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// BoardResource is a saved snapshot of a board's content, structure included,
// that can be applied to other boards.
type BoardResource struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Order     int           `json:"order"`
	Content   *BoardContent `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (r BoardResource) clone() BoardResource {
	if r.Content != nil {
		r.Content = r.Content.clone().(*BoardContent)
	}
	return r
}

// Resources returns copies of the saved board resources in order.
func (s *Store) Resources() []BoardResource {
	out := make([]BoardResource, len(s.scene.Resources))
	for i, r := range s.scene.Resources {
		out[i] = r.clone()
	}
	return out
}

func (s *Store) persistResource(r BoardResource) {
	if s.persistence != nil {
		s.persistence.PersistBoardResource(r.clone())
	}
}

// SaveBoardAsResource snapshots the content of board nodeID as a resource.
// An empty id is replaced with a fresh one; an id that already exists is
// overwritten in place and keeps its order. It reports false when nodeID is
// not a board.
func (s *Store) SaveBoardAsResource(nodeID NodeID, name, id string) bool {
	cur := s.scene
	n := cur.Nodes[nodeID]
	if n == nil || n.board() == nil {
		return false
	}
	if id == "" {
		id = "res-" + string(newNodeID())
	}
	if name == "" {
		name = n.board().Title
	}
	r := BoardResource{
		ID:        id,
		Name:      name,
		Content:   n.board().clone().(*BoardContent),
		CreatedAt: time.Now().UTC(),
	}
	next := cur.shallow()
	next.Resources = slices.Clone(cur.Resources)
	if i := slices.IndexFunc(next.Resources, func(e BoardResource) bool { return e.ID == id }); i >= 0 {
		r.Order = next.Resources[i].Order
		r.CreatedAt = next.Resources[i].CreatedAt
		next.Resources[i] = r
	} else {
		r.Order = len(next.Resources)
		if n := len(next.Resources); n > 0 {
			r.Order = next.Resources[n-1].Order + 1
		}
		next.Resources = append(next.Resources, r)
	}
	s.commit(next, Change{Op: OpResources})
	s.persistResource(r)
	return true
}

// ApplyResourceToBoard replaces the content of board nodeID with a copy of the
// resource's content. Unknown boards or resources are ignored.
func (s *Store) ApplyResourceToBoard(nodeID NodeID, resourceID string) bool {
	cur := s.scene
	n := cur.Nodes[nodeID]
	if n == nil || n.board() == nil {
		return false
	}
	i := slices.IndexFunc(cur.Resources, func(r BoardResource) bool { return r.ID == resourceID })
	if i < 0 || cur.Resources[i].Content == nil {
		return false
	}
	out := n.Clone()
	out.Content = cur.Resources[i].Content.clone()
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	next.Nodes[nodeID] = out
	if cur.Interaction.ActiveBoardID == nodeID {
		next.Interaction = refocus(cur.Interaction, out.board().Structure)
	}
	s.commit(next, Change{Op: OpUpdateNodes, IDs: []NodeID{nodeID}})
	return true
}

// MoveBoardResource swaps a resource with its neighbor: direction < 0 moves it
// up, > 0 moves it down. Moving past either end is a no-op.
func (s *Store) MoveBoardResource(id string, direction int) bool {
	cur := s.scene
	i := slices.IndexFunc(cur.Resources, func(r BoardResource) bool { return r.ID == id })
	if i < 0 || direction == 0 {
		return false
	}
	j := i + 1
	if direction < 0 {
		j = i - 1
	}
	if j < 0 || j >= len(cur.Resources) {
		return false
	}
	next := cur.shallow()
	next.Resources = slices.Clone(cur.Resources)
	a, b := next.Resources[i], next.Resources[j]
	a.Order, b.Order = b.Order, a.Order
	next.Resources[i], next.Resources[j] = b, a
	s.commit(next, Change{Op: OpResources})
	s.persistResource(a)
	s.persistResource(b)
	return true
}

// DeleteBoardResource removes a saved resource.
func (s *Store) DeleteBoardResource(id string) bool {
	cur := s.scene
	i := slices.IndexFunc(cur.Resources, func(r BoardResource) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	next := cur.shallow()
	next.Resources = slices.Delete(slices.Clone(cur.Resources), i, i+1)
	s.commit(next, Change{Op: OpResources})
	if s.persistence != nil {
		s.persistence.RemoveBoardResource(id)
	}
	return true
}

// LoadResources installs previously persisted resources, replacing the
// current ones. Entries are ordered by Order, then id; duplicates keep the
// first occurrence. Nothing is mirrored back to persistence.
func (s *Store) LoadResources(rs []BoardResource) {
	seen := make(map[string]bool, len(rs))
	var list []BoardResource
	for _, r := range rs {
		if r.ID == "" || r.Content == nil || seen[r.ID] || r.Content.Structure.Validate() != nil {
			continue
		}
		seen[r.ID] = true
		list = append(list, r.clone())
	}
	slices.SortStableFunc(list, func(a, b BoardResource) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	cur := s.scene
	next := cur.shallow()
	next.Resources = list
	s.commit(next, Change{Op: OpResources})
}
