package barboard

import (
	"cmp"
	"maps"
	"slices"
)

// Scene is an immutable snapshot of the board. The Store replaces it wholesale
// on every mutation; a Scene obtained from Store.Snapshot is never modified
// afterwards and may be read freely, including from a render pass.
type Scene struct {
	Nodes       map[NodeID]*Node
	Viewport    Viewport
	Target      *Viewport // pending animated transition, nil when idle
	Selection   Selection
	Interaction InteractionState
	Templates   []Template      // user-saved; built-ins come from BuiltinTemplates
	Resources   []BoardResource // ordered by Order
	UIFlags     map[string]bool

	version uint64
}

// Version increases by one with every committed mutation.
func (sc *Scene) Version() uint64 { return sc.version }

// Node returns the node with the given id, or nil.
func (sc *Scene) Node(id NodeID) *Node { return sc.Nodes[id] }

// Sorted returns all nodes in paint order: ascending z-index, ties broken by id
// so the order is stable across snapshots.
func (sc *Scene) Sorted() []*Node {
	out := make([]*Node, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, compareNodes)
	return out
}

func compareNodes(a, b *Node) int {
	if c := cmp.Compare(a.ZIndex, b.ZIndex); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// maxZ returns the highest z-index in the scene, or -1 when empty.
func (sc *Scene) maxZ() int {
	z := -1
	for _, n := range sc.Nodes {
		z = max(z, n.ZIndex)
	}
	return z
}

// minZ returns the lowest z-index in the scene, or 0 when empty.
func (sc *Scene) minZ() int {
	first := true
	z := 0
	for _, n := range sc.Nodes {
		if first || n.ZIndex < z {
			z = n.ZIndex
			first = false
		}
	}
	return z
}

// UIFlag returns the value of a host UI flag.
func (sc *Scene) UIFlag(name string) bool { return sc.UIFlags[name] }

// shallow returns a copy of the snapshot sharing every map and slice with sc.
// Callers replace the parts they edit.
func (sc *Scene) shallow() *Scene {
	cp := *sc
	cp.version = sc.version + 1
	return &cp
}

// Selection is a set of node ids.
type Selection map[NodeID]struct{}

// Has reports whether id is selected.
func (s Selection) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the selected ids in sorted order.
func (s Selection) IDs() []NodeID {
	return slices.Sorted(maps.Keys(s))
}

// Len returns the number of selected ids.
func (s Selection) Len() int { return len(s) }

// InteractionState is ephemeral gesture and tool state. It is never persisted.
type InteractionState struct {
	Tool              Tool
	Mode              Mode
	Dragging          bool
	Resizing          bool
	Panning           bool
	ActiveBoardID     NodeID
	ActiveZoneID      string
	ActiveZoneSection string
	CaptureThumbnail  bool
}

// InteractionPatch is a partial InteractionState update.
type InteractionPatch struct {
	Tool              *Tool
	Mode              *Mode
	Dragging          *bool
	Resizing          *bool
	Panning           *bool
	ActiveBoardID     *NodeID
	ActiveZoneID      *string
	ActiveZoneSection *string
}

func (p InteractionPatch) apply(s InteractionState) InteractionState {
	if p.Tool != nil {
		s.Tool = *p.Tool
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.Dragging != nil {
		s.Dragging = *p.Dragging
	}
	if p.Resizing != nil {
		s.Resizing = *p.Resizing
	}
	if p.Panning != nil {
		s.Panning = *p.Panning
	}
	if p.ActiveBoardID != nil {
		s.ActiveBoardID = *p.ActiveBoardID
	}
	if p.ActiveZoneID != nil {
		s.ActiveZoneID = *p.ActiveZoneID
	}
	if p.ActiveZoneSection != nil {
		s.ActiveZoneSection = *p.ActiveZoneSection
	}
	return s
}

// ChangeOp classifies a committed mutation.
type ChangeOp uint8

const (
	OpAddNodes ChangeOp = iota
	OpUpdateNodes
	OpDeleteNodes
	OpSelection
	OpViewport
	OpInteraction
	OpStructure
	OpTemplates
	OpResources
	OpUIFlag
	OpLoad
)

var changeOpNames = [...]string{
	OpAddNodes:    "add",
	OpUpdateNodes: "update",
	OpDeleteNodes: "delete",
	OpSelection:   "selection",
	OpViewport:    "viewport",
	OpInteraction: "interaction",
	OpStructure:   "structure",
	OpTemplates:   "templates",
	OpResources:   "resources",
	OpUIFlag:      "ui-flag",
	OpLoad:        "load",
}

func (op ChangeOp) String() string {
	if int(op) < len(changeOpNames) {
		return changeOpNames[op]
	}
	return "unknown"
}

// Change describes one committed mutation. IDs lists the nodes it touched, if
// any.
type Change struct {
	Op  ChangeOp
	IDs []NodeID
}

// Listener is called after a mutation with the committed snapshot.
type Listener func(scene *Scene, change Change)

type listenerEntry struct {
	id int
	fn Listener
}

// Store is the single source of truth for a board. All mutation goes through
// its methods; each mutation is atomic and produces exactly one notification.
// A Store is not safe for concurrent use: drive it from one goroutine.
type Store struct {
	scene *Scene

	listeners  []listenerEntry
	nextListen int
	rendering  int
	notifying  bool
	pending    []Change

	persistence Persistence
	clip        []*Node
	pasteCount  int
	tween       *viewportTween
	debug       bool
}

// NewStore returns an empty store with an identity viewport and the pointer
// tool in creative mode.
func NewStore() *Store {
	return &Store{
		scene: &Scene{
			Nodes:     map[NodeID]*Node{},
			Viewport:  Viewport{Zoom: 1},
			Selection: Selection{},
			UIFlags:   map[string]bool{},
		},
	}
}

// Snapshot returns the current scene. It is O(1).
func (s *Store) Snapshot() *Scene { return s.scene }

// SetPersistence installs the adapter that mirrors templates and resources.
// Pass nil to disable mirroring.
func (s *Store) SetPersistence(p Persistence) { s.persistence = p }

// SetDebugMode enables or disables per-commit logging to stderr.
func (s *Store) SetDebugMode(enabled bool) { s.debug = enabled }

// Subscribe registers fn to be called after every mutation. The returned
// function removes it; calling it more than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextListen++
	id := s.nextListen
	s.listeners = append(slices.Clip(s.listeners), listenerEntry{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(slices.Clone(s.listeners), func(e listenerEntry) bool {
			return e.id == id
		})
	}
}

// BeginRender marks the start of a render pass. Notifications raised until
// the matching EndRender are held back and delivered afterwards.
func (s *Store) BeginRender() { s.rendering++ }

// EndRender closes a render pass and flushes held notifications.
func (s *Store) EndRender() {
	if s.rendering == 0 {
		return
	}
	s.rendering--
	if s.rendering == 0 && !s.notifying {
		s.flush()
	}
}

// commit installs next as the current scene and notifies listeners.
func (s *Store) commit(next *Scene, change Change) {
	s.scene = next
	if s.debug {
		s.debugf("commit v%d: %s %v", next.version, change.Op, change.IDs)
		debugCheckSceneSize(next)
	}
	s.pending = appendChange(s.pending, change)
	if s.rendering > 0 || s.notifying {
		return
	}
	s.flush()
}

// appendChange queues c, folding it into the previous entry when both have the
// same op. Held-back viewport steps collapse into one notification this way.
func appendChange(q []Change, c Change) []Change {
	if n := len(q); n > 0 && q[n-1].Op == c.Op {
		last := &q[n-1]
		for _, id := range c.IDs {
			if !slices.Contains(last.IDs, id) {
				last.IDs = append(last.IDs, id)
			}
		}
		return q
	}
	return append(q, Change{Op: c.Op, IDs: slices.Clone(c.IDs)})
}

// flush delivers queued changes in order. Mutations made by listeners are
// queued and delivered by this same loop, never re-entrantly.
func (s *Store) flush() {
	s.notifying = true
	defer func() { s.notifying = false }()
	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		for _, l := range s.listeners {
			l.fn(s.scene, c)
		}
	}
	s.pending = nil
}

// AddOption customizes AddNode.
type AddOption func(*addConfig)

type addConfig struct {
	z    int
	hasZ bool
}

// WithZIndex places the new node at z instead of above every existing node.
func WithZIndex(z int) AddOption {
	return func(c *addConfig) {
		c.z = z
		c.hasZ = true
	}
}

// AddNode inserts a copy of n under a fresh id and returns that id. The node
// goes above every existing node unless WithZIndex is given. A node with an
// unknown kind or mismatched content is rejected and "" is returned. Group
// children that do not exist or already belong to another group are dropped;
// a group left with no children is rejected.
func (s *Store) AddNode(n Node, opts ...AddOption) NodeID {
	var cfg addConfig
	for _, o := range opts {
		o(&cfg)
	}
	if n.Content == nil {
		n.Content = newContent(n.Kind)
	}
	if !n.valid() {
		return ""
	}
	cur := s.scene
	node := n.Clone()
	node.ID = s.freshID(cur)
	node.W = max(node.W, MinNodeWidth)
	node.H = max(node.H, MinNodeHeight)
	if cfg.hasZ {
		node.ZIndex = cfg.z
	} else {
		node.ZIndex = cur.maxZ() + 1
	}

	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	if g, ok := node.Content.(*GroupContent); ok {
		g.ChildrenIDs = sanitizeChildren(next, node.ID, g.ChildrenIDs)
		if len(g.ChildrenIDs) == 0 {
			return ""
		}
		next.Nodes[node.ID] = node
		refreshGroups(next, []NodeID{node.ID})
	} else {
		next.Nodes[node.ID] = node
	}
	s.commit(next, Change{Op: OpAddNodes, IDs: []NodeID{node.ID}})
	return node.ID
}

func (s *Store) freshID(sc *Scene) NodeID {
	for {
		id := newNodeID()
		if _, taken := sc.Nodes[id]; !taken {
			return id
		}
	}
}

// UpdateNode applies p to the node with the given id. Unknown ids, empty
// patches and malformed patches are ignored and report false. Moving a group
// moves its children; moving or resizing a grouped node refits its groups.
func (s *Store) UpdateNode(id NodeID, p Patch) bool {
	cur := s.scene
	n := cur.Nodes[id]
	if n == nil || p.empty() {
		return false
	}
	if n.Kind == KindGroup {
		// group bounds are derived from the children
		p.W, p.H = nil, nil
	}
	out, ok := p.apply(n)
	if !ok {
		return false
	}
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	touched := []NodeID{id}
	if g, ok := out.Content.(*GroupContent); ok {
		g.ChildrenIDs = sanitizeChildren(next, id, g.ChildrenIDs)
		if len(g.ChildrenIDs) == 0 {
			return false
		}
	}
	next.Nodes[id] = out
	if b := out.board(); b != nil && cur.Interaction.ActiveBoardID == id {
		next.Interaction = refocus(cur.Interaction, b.Structure)
	}
	if out.Kind == KindGroup {
		if dx, dy := out.X-n.X, out.Y-n.Y; dx != 0 || dy != 0 {
			for _, cid := range descendants(next, id) {
				translateNode(next, cid, dx, dy)
				touched = append(touched, cid)
			}
		}
	}
	refreshGroups(next, touched)
	s.commit(next, Change{Op: OpUpdateNodes, IDs: touched})
	return true
}

// DeleteNodes removes the given nodes. Deleted ids are pruned from the
// selection and from every group; groups left empty are removed as well.
// Zone focus on a deleted board is cleared. Unknown ids are ignored.
func (s *Store) DeleteNodes(ids ...NodeID) {
	cur := s.scene
	doomed := make(map[NodeID]bool, len(ids))
	for _, id := range ids {
		if cur.Nodes[id] != nil {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return
	}
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	for id := range doomed {
		delete(next.Nodes, id)
	}

	for _, id := range pruneGroups(next) {
		doomed[id] = true
	}

	next.Selection = pruneSelection(cur.Selection, next.Nodes)
	if doomed[cur.Interaction.ActiveBoardID] {
		next.Interaction.ActiveBoardID = ""
		next.Interaction.ActiveZoneID = ""
		next.Interaction.ActiveZoneSection = ""
	}
	removed := slices.Sorted(maps.Keys(doomed))
	s.commit(next, Change{Op: OpDeleteNodes, IDs: removed})
}

// ToggleCollapse flips the collapsed flag of a node.
func (s *Store) ToggleCollapse(id NodeID) bool {
	n := s.scene.Nodes[id]
	if n == nil {
		return false
	}
	c := !n.Collapsed
	return s.UpdateNode(id, Patch{Collapsed: &c})
}

// UpdateStructure replaces the structure of a board node. The structure is
// copied; passing nil detaches the structure. Invalid structures (duplicate
// zone or section ids) are ignored.
func (s *Store) UpdateStructure(id NodeID, st *Structure) bool {
	n := s.scene.Nodes[id]
	if n == nil || n.board() == nil || st.Validate() != nil {
		return false
	}
	return s.commitStructure(id, st.Clone())
}

// commitStructure writes st into the board as one structure change. st must
// already be owned by the caller.
func (s *Store) commitStructure(id NodeID, st *Structure) bool {
	cur := s.scene
	n := cur.Nodes[id]
	if n == nil || n.board() == nil {
		return false
	}
	out := n.Clone()
	out.board().Structure = st
	next := cur.shallow()
	next.Nodes = maps.Clone(cur.Nodes)
	next.Nodes[id] = out
	if cur.Interaction.ActiveBoardID == id {
		next.Interaction = refocus(cur.Interaction, st)
	}
	s.commit(next, Change{Op: OpStructure, IDs: []NodeID{id}})
	return true
}

// refocus drops zone focus that no longer resolves in st, falling back to
// the zone's default section when only the section vanished.
func refocus(in InteractionState, st *Structure) InteractionState {
	z := st.Zone(in.ActiveZoneID)
	if z == nil {
		in.ActiveZoneID = ""
		in.ActiveZoneSection = ""
		return in
	}
	if in.ActiveZoneSection != DefaultSectionID && z.Section(in.ActiveZoneSection) == nil {
		in.ActiveZoneSection = DefaultSectionID
	}
	return in
}

// SetActiveTool switches the canvas tool.
func (s *Store) SetActiveTool(t Tool) {
	s.UpdateInteractionState(InteractionPatch{Tool: &t})
}

// SetMode switches the interaction mode.
func (s *Store) SetMode(m Mode) {
	s.UpdateInteractionState(InteractionPatch{Mode: &m})
}

// UpdateInteractionState applies p to the ephemeral interaction state. A
// patch that changes nothing does not notify.
func (s *Store) UpdateInteractionState(p InteractionPatch) {
	cur := s.scene
	st := p.apply(cur.Interaction)
	if st == cur.Interaction {
		return
	}
	next := cur.shallow()
	next.Interaction = st
	s.commit(next, Change{Op: OpInteraction})
}

// SetUIFlag records a host UI flag such as a panel being open.
func (s *Store) SetUIFlag(name string, value bool) {
	cur := s.scene
	if cur.UIFlags[name] == value {
		return
	}
	next := cur.shallow()
	next.UIFlags = maps.Clone(cur.UIFlags)
	next.UIFlags[name] = value
	s.commit(next, Change{Op: OpUIFlag})
}

// RequestThumbnail asks the frame loop to capture a thumbnail on its next
// tick.
func (s *Store) RequestThumbnail() {
	cur := s.scene
	if cur.Interaction.CaptureThumbnail {
		return
	}
	next := cur.shallow()
	next.Interaction.CaptureThumbnail = true
	s.commit(next, Change{Op: OpInteraction})
}

// ConsumeThumbnailRequest reports whether a capture was requested and resets
// the request.
func (s *Store) ConsumeThumbnailRequest() bool {
	cur := s.scene
	if !cur.Interaction.CaptureThumbnail {
		return false
	}
	next := cur.shallow()
	next.Interaction.CaptureThumbnail = false
	s.commit(next, Change{Op: OpInteraction})
	return true
}
