package barboard

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Persistence mirrors templates and board resources to durable storage. The
// Store calls it after committing and never waits on or checks the outcome:
// implementations must return promptly and handle their own failures.
type Persistence interface {
	PersistTemplate(t Template)
	PersistBoardResource(r BoardResource)
	RemoveBoardResource(id string)
}

// Document is the portable form of a board: its nodes and viewport. It is
// what the CLI reads and writes and what the system clipboard carries.
type Document struct {
	Nodes    []Node   `json:"nodes"`
	Viewport Viewport `json:"viewport"`
}

// Document returns the current nodes in paint order and the viewport.
func (s *Store) Document() Document {
	sc := s.scene
	doc := Document{Viewport: sc.Viewport}
	for _, n := range sc.Sorted() {
		doc.Nodes = append(doc.Nodes, *n.Clone())
	}
	return doc
}

// LoadDocument replaces every node with the document's, keeping their ids and
// z-indices. Interaction state, selection and zone focus are reset. Nodes with
// an invalid kind or a duplicate id fail the whole load.
func (s *Store) LoadDocument(doc Document) error {
	nodes := make(map[NodeID]*Node, len(doc.Nodes))
	for i := range doc.Nodes {
		n := doc.Nodes[i].Clone()
		if n.ID == "" {
			return fmt.Errorf("barboard: node %d has no id", i)
		}
		if !n.valid() {
			return fmt.Errorf("barboard: node %s has invalid %s content", n.ID, n.Kind)
		}
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("barboard: duplicate node id %s", n.ID)
		}
		if b := n.board(); b != nil {
			if err := b.Structure.Validate(); err != nil {
				return fmt.Errorf("barboard: node %s: %w", n.ID, err)
			}
		}
		n.W = max(n.W, MinNodeWidth)
		n.H = max(n.H, MinNodeHeight)
		nodes[n.ID] = n
	}

	cur := s.scene
	next := cur.shallow()
	next.Nodes = nodes
	// Re-validate group membership against the loaded set.
	var groups []NodeID
	for _, id := range slices.Sorted(maps.Keys(nodes)) {
		n := nodes[id]
		if n.Kind != KindGroup {
			continue
		}
		g := n.Content.(*GroupContent)
		// Clear first so GroupOf only sees competing owners.
		kids := g.ChildrenIDs
		g.ChildrenIDs = nil
		g.ChildrenIDs = sanitizeChildren(next, id, kids)
		groups = append(groups, id)
	}
	pruneGroups(next)
	refreshGroups(next, groups)

	if v, ok := doc.Viewport.normalized(); ok {
		next.Viewport = v
	}
	next.Target = nil
	next.Selection = Selection{}
	next.Interaction = InteractionState{Tool: cur.Interaction.Tool, Mode: cur.Interaction.Mode}
	s.tween = nil
	s.commit(next, Change{Op: OpLoad})
	return nil
}

// ReadDocument decodes a JSON document.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("barboard: decode document: %w", err)
	}
	return doc, nil
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("barboard: encode document: %w", err)
	}
	return nil
}
