package barboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/atotto/clipboard"
)

// pasteOffset is how far, in world units, each successive paste is shifted
// from the copied nodes.
const pasteOffset = 24

// CopySelection copies the selected nodes into the store's internal clipboard
// and returns them in paint order. Selected groups bring their descendants.
func (s *Store) CopySelection() []Node {
	sc := s.scene
	ids := make(map[NodeID]bool)
	for id := range sc.Selection {
		if sc.Nodes[id] == nil {
			continue
		}
		ids[id] = true
		if sc.Nodes[id].Kind == KindGroup {
			for _, d := range descendants(sc, id) {
				ids[d] = true
			}
		}
	}
	nodes := make([]*Node, 0, len(ids))
	for id := range ids {
		nodes = append(nodes, sc.Nodes[id].Clone())
	}
	slices.SortFunc(nodes, compareNodes)
	s.clip = nodes
	s.pasteCount = 0

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = *n.Clone()
	}
	return out
}

// Paste inserts the internal clipboard with fresh ids, shifted by a growing
// offset, above every existing node. The pasted nodes become the selection.
func (s *Store) Paste() []NodeID {
	if len(s.clip) == 0 {
		return nil
	}
	s.pasteCount++
	d := float64(pasteOffset * s.pasteCount)
	nodes := make([]Node, len(s.clip))
	for i, n := range s.clip {
		nodes[i] = *n.Clone()
	}
	return s.PasteNodes(nodes, d, d)
}

// PasteNodes inserts copies of nodes with fresh ids, shifted by (dx, dy). The
// copies keep their relative z-order and sit above every existing node. Group
// children are remapped to the new ids; children outside the pasted set are
// dropped. Invalid nodes are skipped. The new ids are returned in paint order
// and become the selection.
func (s *Store) PasteNodes(nodes []Node, dx, dy float64) []NodeID {
	cur := s.scene
	src := make([]*Node, 0, len(nodes))
	for i := range nodes {
		n := nodes[i].Clone()
		if n.Content == nil {
			n.Content = newContent(n.Kind)
		}
		if n.valid() {
			src = append(src, n)
		}
	}
	if len(src) == 0 {
		return nil
	}
	slices.SortStableFunc(src, func(a, b *Node) int { return a.ZIndex - b.ZIndex })

	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	remap := make(map[NodeID]NodeID, len(src))
	for _, n := range src {
		id := s.freshID(next)
		if n.ID != "" {
			remap[n.ID] = id
		}
		n.ID = id
		next.Nodes[id] = n // reserve the id
	}

	base := cur.maxZ() + 1
	var added, groups []NodeID
	for i, n := range src {
		n.X += dx
		n.Y += dy
		n.W = max(n.W, MinNodeWidth)
		n.H = max(n.H, MinNodeHeight)
		n.ZIndex = base + i
		if g, ok := n.Content.(*GroupContent); ok {
			var kids []NodeID
			for _, c := range g.ChildrenIDs {
				if nid, ok := remap[c]; ok && !slices.Contains(kids, nid) {
					kids = append(kids, nid)
				}
			}
			g.ChildrenIDs = kids
			groups = append(groups, n.ID)
		}
		added = append(added, n.ID)
	}
	// A child claimed by two pasted groups stays with only one of them.
	for _, gid := range groups {
		g := next.Nodes[gid].Content.(*GroupContent)
		kids := g.ChildrenIDs
		g.ChildrenIDs = nil
		g.ChildrenIDs = sanitizeChildren(next, gid, kids)
	}
	removed := pruneGroups(next)
	added = slices.DeleteFunc(added, func(id NodeID) bool { return slices.Contains(removed, id) })
	refreshGroups(next, groups)

	next.Selection = make(Selection, len(added))
	for _, id := range added {
		if next.GroupOf(id) != "" {
			continue
		}
		next.Selection[id] = struct{}{}
	}
	s.commit(next, Change{Op: OpAddNodes, IDs: added})
	return added
}

// Clipboard moves serialized nodes to and from the host's clipboard.
type Clipboard interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

// SystemClipboard is the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ReadAll implements Clipboard.
func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

// clipboardFormat tags clipboard payloads written by this package.
const clipboardFormat = "barboard/nodes"

type clipboardPayload struct {
	Format string `json:"format"`
	Nodes  []Node `json:"nodes"`
}

// EncodeClipboard serializes nodes for the system clipboard.
func EncodeClipboard(nodes []Node) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(clipboardPayload{Format: clipboardFormat, Nodes: nodes}); err != nil {
		return "", fmt.Errorf("barboard: encode clipboard: %w", err)
	}
	return buf.String(), nil
}

// DecodeClipboard parses a payload written by EncodeClipboard. Text from
// other applications yields an error.
func DecodeClipboard(text string) ([]Node, error) {
	var p clipboardPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("barboard: decode clipboard: %w", err)
	}
	if p.Format != clipboardFormat {
		return nil, fmt.Errorf("barboard: clipboard holds %q, not board nodes", p.Format)
	}
	return p.Nodes, nil
}
