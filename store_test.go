package barboard

import (
	"encoding/json"
	"slices"
	"testing"
)

// recorder counts store notifications.
type recorder struct {
	changes []Change
	scenes  []*Scene
}

func record(s *Store) *recorder {
	r := &recorder{}
	s.Subscribe(func(sc *Scene, c Change) {
		r.changes = append(r.changes, c)
		r.scenes = append(r.scenes, sc)
	})
	return r
}

func (r *recorder) reset() {
	r.changes = nil
	r.scenes = nil
}

func shape(s *Store, x, y float64) NodeID {
	return s.AddNode(NewShapeNode("#ffffff", x, y, 100, 60))
}

// --- AddNode ---

func TestAddNodeAssignsIDAndStacks(t *testing.T) {
	s := NewStore()
	r := record(s)
	a := shape(s, 0, 0)
	b := shape(s, 10, 10)
	if a == "" || b == "" || a == b {
		t.Fatalf("ids = %q, %q", a, b)
	}
	sc := s.Snapshot()
	if sc.Node(b).ZIndex <= sc.Node(a).ZIndex {
		t.Errorf("z: a=%d b=%d, want b above a", sc.Node(a).ZIndex, sc.Node(b).ZIndex)
	}
	if got := sc.Sorted(); got[0].ID != a || got[1].ID != b {
		t.Error("Sorted should return paint order")
	}
	if len(r.changes) != 2 || r.changes[0].Op != OpAddNodes {
		t.Errorf("changes = %+v, want two adds", r.changes)
	}
}

func TestAddNodeWithZIndex(t *testing.T) {
	s := NewStore()
	shape(s, 0, 0)
	id := s.AddNode(NewShapeNode("#000", 0, 0, 10, 10), WithZIndex(-5))
	if z := s.Snapshot().Node(id).ZIndex; z != -5 {
		t.Errorf("z = %d, want -5", z)
	}
}

func TestAddNodeRejectsMismatchedContent(t *testing.T) {
	s := NewStore()
	r := record(s)
	n := Node{Kind: KindText, Content: &ShapeContent{}}
	if id := s.AddNode(n); id != "" {
		t.Errorf("AddNode = %q, want rejection", id)
	}
	if len(r.changes) != 0 {
		t.Error("rejected add must not notify")
	}
}

func TestAddNodeEnforcesMinimumSize(t *testing.T) {
	s := NewStore()
	id := s.AddNode(NewShapeNode("#000", 0, 0, 1, 1))
	n := s.Snapshot().Node(id)
	if n.W != MinNodeWidth || n.H != MinNodeHeight {
		t.Errorf("size = %vx%v, want minimum", n.W, n.H)
	}
}

func TestAddNodeCopiesInput(t *testing.T) {
	s := NewStore()
	tc := &TextContent{Text: "Mise en place"}
	id := s.AddNode(NewNode(tc, 0, 0, 100, 40))
	tc.Text = "changed"
	if got := s.Snapshot().Node(id).Content.(*TextContent).Text; got != "Mise en place" {
		t.Errorf("stored text = %q, the caller's payload leaked in", got)
	}
}

// --- Snapshots ---

func TestSnapshotsAreImmutable(t *testing.T) {
	s := NewStore()
	id := shape(s, 0, 0)
	before := s.Snapshot()
	s.UpdateNode(id, PatchPosition(50, 60))
	if n := before.Node(id); n.X != 0 || n.Y != 0 {
		t.Errorf("old snapshot changed: (%v,%v)", n.X, n.Y)
	}
	if n := s.Snapshot().Node(id); n.X != 50 || n.Y != 60 {
		t.Errorf("new snapshot = (%v,%v)", n.X, n.Y)
	}
	if s.Snapshot().Version() != before.Version()+1 {
		t.Error("version should advance by one per mutation")
	}
}

// --- UpdateNode ---

func TestUpdateNodeIgnoresUnknownAndEmpty(t *testing.T) {
	s := NewStore()
	id := shape(s, 0, 0)
	r := record(s)
	if s.UpdateNode("missing", PatchPosition(1, 1)) {
		t.Error("unknown id should report false")
	}
	if s.UpdateNode(id, Patch{}) {
		t.Error("empty patch should report false")
	}
	if len(r.changes) != 0 {
		t.Error("ignored updates must not notify")
	}
}

func TestUpdateNodeContentMerge(t *testing.T) {
	s := NewStore()
	id := s.AddNode(NewTextNode("Happy hour", 0, 0, 200, 40))
	if !s.UpdateNode(id, PatchContent(map[string]any{"text": "Last call"})) {
		t.Fatal("merge rejected")
	}
	tc := s.Snapshot().Node(id).Content.(*TextContent)
	if tc.Text != "Last call" || tc.FontSize != 16 {
		t.Errorf("content = %+v, want text replaced and font size kept", tc)
	}

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"unknown key", map[string]any{"bogus": 1}},
		{"wrong type", map[string]any{"text": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s.UpdateNode(id, PatchContent(tt.fields)) {
				t.Error("malformed patch accepted")
			}
		})
	}
}

func TestUpdateNodeReplaceKindMismatch(t *testing.T) {
	s := NewStore()
	id := s.AddNode(NewTextNode("x", 0, 0, 100, 40))
	if s.UpdateNode(id, Patch{Replace: &ShapeContent{}}) {
		t.Error("replacing with another kind should fail")
	}
}

// --- DeleteNodes ---

func TestDeletePrunesSelectionInSameNotification(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	s.Select(a, b)
	r := record(s)

	s.DeleteNodes(a)
	if len(r.changes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(r.changes))
	}
	sc := r.scenes[0]
	if sc.Selection.Has(a) || !sc.Selection.Has(b) {
		t.Errorf("selection = %v, want only %s", sc.Selection.IDs(), b)
	}
	for id := range sc.Selection {
		if sc.Nodes[id] == nil {
			t.Errorf("selection holds deleted id %s", id)
		}
	}
}

func TestDeleteCascadesToGroups(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	c := shape(s, 400, 0)
	g := s.Group(a, b)
	r := record(s)

	s.DeleteNodes(a)
	sc := s.Snapshot()
	if got := sc.Node(g).children(); !slices.Equal(got, []NodeID{b}) {
		t.Errorf("children = %v, want [%s]", got, b)
	}

	s.DeleteNodes(b)
	if s.Snapshot().Node(g) != nil {
		t.Error("empty group should be removed")
	}
	last := r.changes[len(r.changes)-1]
	if !slices.Contains(last.IDs, g) {
		t.Errorf("delete change %v should list the dropped group", last.IDs)
	}
	if s.Snapshot().Node(c) == nil {
		t.Error("unrelated node deleted")
	}
}

func TestDeleteClearsZoneFocus(t *testing.T) {
	s := NewStore()
	tpl, _ := s.Template("kanban")
	b := s.AddNode(NewBoardNode("Service", tpl.Structure, 0, 0, 600, 400))
	zid := tpl.Structure.Zones[0].ID
	if !s.FocusZone(b, zid, "") {
		t.Fatal("FocusZone failed")
	}
	s.DeleteNodes(b)
	in := s.Snapshot().Interaction
	if in.ActiveBoardID != "" || in.ActiveZoneID != "" {
		t.Errorf("focus = %+v, want cleared", in)
	}
}

func TestDeleteUnknownIsSilent(t *testing.T) {
	s := NewStore()
	r := record(s)
	s.DeleteNodes("nope")
	if len(r.changes) != 0 {
		t.Error("deleting unknown ids must not notify")
	}
}

// --- Groups ---

func TestGroupSingleParent(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	c := shape(s, 400, 0)
	g1 := s.Group(a, b)
	g2 := s.Group(b, c)
	if g1 == "" || g2 == "" {
		t.Fatal("grouping failed")
	}
	sc := s.Snapshot()
	if sc.GroupOf(b) != g2 {
		t.Errorf("GroupOf(b) = %s, want %s", sc.GroupOf(b), g2)
	}
	if slices.Contains(sc.Node(g1).children(), b) {
		t.Error("b still listed by its old group")
	}
	owners := 0
	for _, n := range sc.Nodes {
		if slices.Contains(n.children(), b) {
			owners++
		}
	}
	if owners != 1 {
		t.Errorf("b has %d owners, want 1", owners)
	}
}

func TestGroupNeedsTwoNodes(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	if g := s.Group(a); g != "" {
		t.Error("single-node group created")
	}
	if g := s.Group(a, "missing"); g != "" {
		t.Error("group with an unknown member created")
	}
}

func TestGroupBoundsAndMove(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 100)
	g := s.Group(a, b)
	got := s.Snapshot().Node(g).Bounds()
	want := Rect{0, 0, 300, 160}
	if got != want {
		t.Errorf("group bounds = %v, want %v", got, want)
	}

	r := record(s)
	if !s.MoveNodes([]NodeID{g}, 10, 20) {
		t.Fatal("MoveNodes failed")
	}
	if len(r.changes) != 1 {
		t.Errorf("notifications = %d, want 1", len(r.changes))
	}
	sc := s.Snapshot()
	if n := sc.Node(b); n.X != 210 || n.Y != 120 {
		t.Errorf("child moved to (%v,%v)", n.X, n.Y)
	}
	if gb := sc.Node(g).Bounds(); gb.X != 10 || gb.Y != 20 {
		t.Errorf("group bounds = %v", gb)
	}
}

func TestUngroupSelectsChildren(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	g := s.Group(a, b)
	if !s.Ungroup(g) {
		t.Fatal("Ungroup failed")
	}
	sc := s.Snapshot()
	if sc.Node(g) != nil {
		t.Error("group still present")
	}
	if !sc.Selection.Has(a) || !sc.Selection.Has(b) || sc.Selection.Len() != 2 {
		t.Errorf("selection = %v", sc.Selection.IDs())
	}
}

func TestNestedGroupsTopGroup(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	c := shape(s, 400, 0)
	inner := s.Group(a, b)
	outer := s.Group(inner, c)
	sc := s.Snapshot()
	if sc.TopGroupOf(a) != outer {
		t.Errorf("TopGroupOf(a) = %s, want %s", sc.TopGroupOf(a), outer)
	}
	if sc.TopGroupOf(outer) != outer {
		t.Error("TopGroupOf(outer) should be itself")
	}
	if s.AddToGroup(inner, outer) {
		t.Error("adding an ancestor to its descendant should fail")
	}
}

func TestRemoveFromGroupDropsEmpty(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	g := s.Group(a, b)
	if !s.RemoveFromGroup(g, a, b) {
		t.Fatal("RemoveFromGroup failed")
	}
	sc := s.Snapshot()
	if sc.Node(g) != nil {
		t.Error("empty group kept")
	}
	if sc.Node(a) == nil || sc.Node(b) == nil {
		t.Error("children should survive")
	}
	if sc.Selection.Has(g) {
		t.Error("selection holds the removed group")
	}
}

func TestRestack(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 0, 0)
	c := shape(s, 0, 0)
	s.BringToFront(a)
	order := func() []NodeID {
		var ids []NodeID
		for _, n := range s.Snapshot().Sorted() {
			ids = append(ids, n.ID)
		}
		return ids
	}
	if got := order(); !slices.Equal(got, []NodeID{b, c, a}) {
		t.Errorf("after BringToFront = %v", got)
	}
	s.SendToBack(c)
	if got := order(); !slices.Equal(got, []NodeID{c, b, a}) {
		t.Errorf("after SendToBack = %v", got)
	}
}

// --- Selection ---

func TestSelectionOps(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	r := record(s)

	s.Select(a, "missing")
	if sel := s.Snapshot().Selection; sel.Len() != 1 || !sel.Has(a) {
		t.Errorf("Select = %v", sel.IDs())
	}
	s.Select(a)
	if len(r.changes) != 1 {
		t.Error("re-selecting the same set must not notify")
	}
	s.ToggleSelection(b)
	s.ToggleSelection(a)
	if sel := s.Snapshot().Selection; sel.Len() != 1 || !sel.Has(b) {
		t.Errorf("after toggles = %v", sel.IDs())
	}
	s.ClearSelection()
	if s.Snapshot().Selection.Len() != 0 {
		t.Error("ClearSelection left ids")
	}
}

func TestSelectAllAndRectUseTopGroups(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	c := shape(s, 1000, 1000)
	g := s.Group(a, b)

	s.SelectAll()
	sel := s.Snapshot().Selection
	if sel.Len() != 2 || !sel.Has(g) || !sel.Has(c) {
		t.Errorf("SelectAll = %v, want group and c", sel.IDs())
	}

	s.SelectInRect(Rect{-10, -10, 50, 50}, false)
	sel = s.Snapshot().Selection
	if sel.Len() != 1 || !sel.Has(g) {
		t.Errorf("SelectInRect = %v, want the group", sel.IDs())
	}
	s.SelectInRect(Rect{1100, 1100, -200, -200}, true)
	if sel := s.Snapshot().Selection; sel.Len() != 2 {
		t.Errorf("additive inverted rect = %v", sel.IDs())
	}
}

// --- Notifications ---

func TestRenderDefersNotifications(t *testing.T) {
	s := NewStore()
	r := record(s)
	s.BeginRender()
	shape(s, 0, 0)
	shape(s, 10, 0)
	if len(r.changes) != 0 {
		t.Fatal("notified during render")
	}
	s.EndRender()
	if len(r.changes) != 1 || len(r.changes[0].IDs) != 2 {
		t.Errorf("changes = %+v, want one folded add of two ids", r.changes)
	}
	s.EndRender() // unbalanced end is harmless
}

func TestListenerMutationsAreQueued(t *testing.T) {
	s := NewStore()
	var order []ChangeOp
	depth, maxDepth := 0, 0
	s.Subscribe(func(sc *Scene, c Change) {
		depth++
		maxDepth = max(maxDepth, depth)
		order = append(order, c.Op)
		if c.Op == OpAddNodes {
			s.Select(c.IDs...)
		}
		depth--
	})
	shape(s, 0, 0)
	if !slices.Equal(order, []ChangeOp{OpAddNodes, OpSelection}) {
		t.Errorf("order = %v", order)
	}
	if maxDepth != 1 {
		t.Errorf("listener re-entered, depth %d", maxDepth)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	un := s.Subscribe(func(*Scene, Change) { calls++ })
	shape(s, 0, 0)
	un()
	un()
	shape(s, 0, 0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestInteractionStateNoopPatch(t *testing.T) {
	s := NewStore()
	r := record(s)
	s.SetActiveTool(ToolPointer)
	if len(r.changes) != 0 {
		t.Error("unchanged interaction state must not notify")
	}
	s.SetMode(ModeExecutive)
	if s.Snapshot().Interaction.Mode != ModeExecutive || len(r.changes) != 1 {
		t.Error("mode change not committed")
	}
}

func TestThumbnailRequest(t *testing.T) {
	s := NewStore()
	if s.ConsumeThumbnailRequest() {
		t.Error("no request pending")
	}
	s.RequestThumbnail()
	s.RequestThumbnail()
	if !s.ConsumeThumbnailRequest() || s.ConsumeThumbnailRequest() {
		t.Error("request should be consumed exactly once")
	}
}

// --- Clipboard ---

func TestCopyPasteFreshIDsAndOrder(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := s.AddNode(NewTextNode("Specials", 50, 50, 120, 40))
	s.Select(a, b)
	copied := s.CopySelection()
	if len(copied) != 2 || copied[0].ID != a {
		t.Fatalf("copied = %d nodes", len(copied))
	}

	r := record(s)
	ids := s.Paste()
	if len(ids) != 2 || len(r.changes) != 1 {
		t.Fatalf("paste = %v, changes %d", ids, len(r.changes))
	}
	sc := s.Snapshot()
	for _, id := range ids {
		if id == a || id == b {
			t.Errorf("pasted node reused id %s", id)
		}
	}
	pa, pb := sc.Node(ids[0]), sc.Node(ids[1])
	if pa.Kind != KindShape || pb.Kind != KindText {
		t.Error("pasted nodes out of paint order")
	}
	if pa.ZIndex <= sc.Node(b).ZIndex || pb.ZIndex <= pa.ZIndex {
		t.Error("pasted nodes should sit above the originals, in order")
	}
	if pa.X != pasteOffset || pa.Y != pasteOffset {
		t.Errorf("first paste at (%v,%v), want offset %d", pa.X, pa.Y, pasteOffset)
	}
	if !sc.Selection.Has(ids[0]) || sc.Selection.Len() != 2 {
		t.Error("pasted nodes should be selected")
	}

	again := s.Paste()
	if n := s.Snapshot().Node(again[0]); n.X != 2*pasteOffset {
		t.Errorf("second paste at x=%v, want %d", n.X, 2*pasteOffset)
	}
}

func TestPasteRemapsGroupChildren(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	g := s.Group(a, b)
	s.Select(g)
	s.CopySelection()
	ids := s.Paste()
	if len(ids) != 3 {
		t.Fatalf("pasted %d nodes, want 3", len(ids))
	}
	sc := s.Snapshot()
	var pg *Node
	for _, id := range ids {
		if sc.Node(id).Kind == KindGroup {
			pg = sc.Node(id)
		}
	}
	if pg == nil {
		t.Fatal("no pasted group")
	}
	for _, c := range pg.children() {
		if c == a || c == b || !slices.Contains(ids, c) {
			t.Errorf("pasted group child %s not remapped", c)
		}
	}
	if sc.Selection.Len() != 1 || !sc.Selection.Has(pg.ID) {
		t.Errorf("selection = %v, want only the pasted group", sc.Selection.IDs())
	}
}

func TestClipboardEncoding(t *testing.T) {
	nodes := []Node{NewTextNode("Negroni week", 1, 2, 100, 40)}
	text, err := EncodeClipboard(nodes)
	if err != nil {
		t.Fatalf("EncodeClipboard: %v", err)
	}
	back, err := DecodeClipboard(text)
	if err != nil {
		t.Fatalf("DecodeClipboard: %v", err)
	}
	if len(back) != 1 || back[0].Content.(*TextContent).Text != "Negroni week" {
		t.Errorf("decoded = %+v", back)
	}
	if _, err := DecodeClipboard("just some text"); err == nil {
		t.Error("plain text should not decode as nodes")
	}
}

// --- Documents ---

func TestDocumentRoundTrip(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	g := s.Group(a, b)
	s.UpdateViewport(Viewport{PanX: 10, PanY: 20, Zoom: 2}, true, false)

	data, err := json.Marshal(s.Document())
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	t2 := NewStore()
	if err := t2.LoadDocument(doc); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	sc := t2.Snapshot()
	if len(sc.Nodes) != 3 || sc.GroupOf(a) != g {
		t.Errorf("loaded %d nodes, GroupOf(a) = %s", len(sc.Nodes), sc.GroupOf(a))
	}
	if sc.Viewport.Zoom != 2 {
		t.Errorf("zoom = %v", sc.Viewport.Zoom)
	}
}

func TestLoadDocumentRejectsDuplicates(t *testing.T) {
	n := NewTextNode("x", 0, 0, 50, 50)
	n.ID = "same"
	s := NewStore()
	if err := s.LoadDocument(Document{Nodes: []Node{n, n}}); err == nil {
		t.Error("duplicate ids accepted")
	}
}
