package barboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// NodeID is an opaque node identifier, owned by the Store.
type NodeID string

// newNodeID returns a fresh random id.
func newNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Minimum node size in world units. Resizing and creation never go below it.
const (
	MinNodeWidth  = 24
	MinNodeHeight = 24
)

// BoardHeaderHeight is the title bar height of a board in world units. A
// collapsed board shows only its header.
const BoardHeaderHeight = 36

// Node is the atomic scene entity. Nodes handed out by the Store are shared
// with snapshots and MUST NOT be mutated; use Store.UpdateNode instead.
type Node struct {
	ID        NodeID
	Kind      NodeKind
	X, Y      float64
	W, H      float64
	ZIndex    int
	Collapsed bool
	Content   Content
}

// --- Constructors ---

// NewNode returns a node of the given content's kind with the given box.
// The id is assigned by Store.AddNode.
func NewNode(content Content, x, y, w, h float64) Node {
	n := Node{X: x, Y: y, W: w, H: h, Content: content}
	if content != nil {
		n.Kind = content.Kind()
	}
	return n
}

// NewTextNode returns a text node.
func NewTextNode(text string, x, y, w, h float64) Node {
	return NewNode(&TextContent{Text: text, FontSize: 16}, x, y, w, h)
}

// NewShapeNode returns a rectangle shape filled with fill.
func NewShapeNode(fill string, x, y, w, h float64) Node {
	return NewNode(&ShapeContent{Shape: ShapeRect, Fill: fill}, x, y, w, h)
}

// NewBoardNode returns a container board, optionally structured.
func NewBoardNode(title string, structure *Structure, x, y, w, h float64) Node {
	return NewNode(&BoardContent{Title: title, Structure: structure.Clone()}, x, y, w, h)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	cp := *n
	cp.Content = cloneContent(n.Content)
	return &cp
}

// Bounds returns the node's world-space box. Collapsed boards report only
// their header so that hit testing matches what is drawn.
func (n *Node) Bounds() Rect {
	h := n.H
	if n.Collapsed && n.Kind == KindBoard {
		h = min(h, BoardHeaderHeight)
	}
	return Rect{X: n.X, Y: n.Y, Width: n.W, Height: h}
}

// valid reports whether the node is well-formed: a known kind whose content
// matches it and, for boards, a structure with unique zone and section ids.
func (n *Node) valid() bool {
	if n.Content == nil {
		return false
	}
	if n.Content.Kind() != n.Kind || newContent(n.Kind) == nil {
		return false
	}
	if b := n.board(); b != nil && b.Structure.Validate() != nil {
		return false
	}
	return true
}

// children returns the ids a group aggregates, or nil for other kinds.
func (n *Node) children() []NodeID {
	if g, ok := n.Content.(*GroupContent); ok {
		return g.ChildrenIDs
	}
	return nil
}

// board returns the board payload, or nil for other kinds.
func (n *Node) board() *BoardContent {
	b, _ := n.Content.(*BoardContent)
	return b
}

// --- JSON ---

type nodeJSON struct {
	ID        NodeID          `json:"id"`
	Kind      NodeKind        `json:"kind"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	W         float64         `json:"w"`
	H         float64         `json:"h"`
	ZIndex    int             `json:"z"`
	Collapsed bool            `json:"collapsed,omitempty"`
	Content   json.RawMessage `json:"content"`
}

// MarshalJSON encodes the node with a kind discriminant next to its content.
func (n Node) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(n.Content)
	if err != nil {
		return nil, fmt.Errorf("barboard: marshal %s content: %w", n.Kind, err)
	}
	return json.Marshal(nodeJSON{
		ID: n.ID, Kind: n.Kind,
		X: n.X, Y: n.Y, W: n.W, H: n.H,
		ZIndex: n.ZIndex, Collapsed: n.Collapsed,
		Content: content,
	})
}

// UnmarshalJSON decodes a node written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content := newContent(raw.Kind)
	if content == nil {
		return fmt.Errorf("barboard: unknown node kind %d", raw.Kind)
	}
	if len(raw.Content) > 0 && string(raw.Content) != "null" {
		if err := json.Unmarshal(raw.Content, content); err != nil {
			return fmt.Errorf("barboard: decode %s content: %w", raw.Kind, err)
		}
	}
	*n = Node{
		ID: raw.ID, Kind: raw.Kind,
		X: raw.X, Y: raw.Y, W: raw.W, H: raw.H,
		ZIndex: raw.ZIndex, Collapsed: raw.Collapsed,
		Content: content,
	}
	return nil
}

// --- Patches ---

// Patch is a partial node update. Nil fields are left untouched. Content keys
// are merged shallowly into the node's payload by JSON field name; Replace, when
// set, swaps the payload wholesale and must have the node's kind.
type Patch struct {
	X, Y      *float64
	W, H      *float64
	ZIndex    *int
	Collapsed *bool
	Content   map[string]any
	Replace   Content
}

// PatchPosition returns a patch that moves a node.
func PatchPosition(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// PatchSize returns a patch that resizes a node.
func PatchSize(w, h float64) Patch {
	return Patch{W: &w, H: &h}
}

// PatchContent returns a patch that merges the given content fields.
func PatchContent(fields map[string]any) Patch {
	return Patch{Content: fields}
}

// empty reports whether the patch changes nothing.
func (p Patch) empty() bool {
	return p.X == nil && p.Y == nil && p.W == nil && p.H == nil &&
		p.ZIndex == nil && p.Collapsed == nil && len(p.Content) == 0 && p.Replace == nil
}

// apply returns a patched copy of n. The second result is false when the
// patch is malformed for this node, in which case n is left as is.
func (p Patch) apply(n *Node) (*Node, bool) {
	out := n.Clone()
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.W != nil {
		out.W = max(*p.W, MinNodeWidth)
	}
	if p.H != nil {
		out.H = max(*p.H, MinNodeHeight)
	}
	if p.ZIndex != nil {
		out.ZIndex = *p.ZIndex
	}
	if p.Collapsed != nil {
		out.Collapsed = *p.Collapsed
	}
	if p.Replace != nil {
		if p.Replace.Kind() != n.Kind {
			return n, false
		}
		out.Content = p.Replace.clone()
	}
	if len(p.Content) > 0 {
		merged, ok := mergeContent(out.Content, p.Content)
		if !ok {
			return n, false
		}
		out.Content = merged
	}
	if b := out.board(); b != nil && b.Structure.Validate() != nil {
		return n, false
	}
	return out, true
}

// mergeContent overlays fields onto c by JSON key and decodes the result into
// a fresh payload of the same kind. Keys unknown to the payload, or values of
// the wrong type, reject the whole merge.
func mergeContent(c Content, fields map[string]any) (Content, bool) {
	base, err := json.Marshal(c)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, false
	}
	if m == nil {
		m = make(map[string]any, len(fields))
	}
	maps.Copy(m, fields)
	merged, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	out := newContent(c.Kind())
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return nil, false
	}
	return out, true
}
