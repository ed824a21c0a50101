package barboard

import (
	"slices"
	"testing"
)

// fakePersistence records what the store mirrors.
type fakePersistence struct {
	templates []Template
	resources []BoardResource
	removed   []string
}

func (f *fakePersistence) PersistTemplate(t Template)           { f.templates = append(f.templates, t) }
func (f *fakePersistence) PersistBoardResource(r BoardResource) { f.resources = append(f.resources, r) }
func (f *fakePersistence) RemoveBoardResource(id string)        { f.removed = append(f.removed, id) }

func templatedBoard(t *testing.T, s *Store, templateID string, w, h float64) NodeID {
	t.Helper()
	id := s.AddNode(NewBoardNode("Board", nil, 0, 0, w, h))
	if !s.ApplyTemplate(id, templateID) {
		t.Fatalf("ApplyTemplate(%s) failed", templateID)
	}
	return id
}

func structureOf(s *Store, id NodeID) *Structure {
	return s.Snapshot().Node(id).board().Structure
}

// --- Templates ---

func TestBuiltinCatalog(t *testing.T) {
	var ids []string
	for _, tpl := range BuiltinTemplates() {
		ids = append(ids, tpl.ID)
		if !tpl.BuiltIn {
			t.Errorf("%s not marked built-in", tpl.ID)
		}
		if err := tpl.Structure.Validate(); err != nil {
			t.Errorf("%s: %v", tpl.ID, err)
		}
	}
	want := []string{"costing-review", "kanban", "menu-engineering", "prep-board", "weekly-specials"}
	if !slices.Equal(ids, want) {
		t.Errorf("catalog = %v, want %v", ids, want)
	}
}

func TestApplyTemplateDeepCopies(t *testing.T) {
	s := NewStore()
	a := templatedBoard(t, s, "prep-board", 900, 600)
	b := templatedBoard(t, s, "prep-board", 900, 600)

	if !s.UpdateSectionContent(a, "mise", "am", "limes x40") {
		t.Fatal("UpdateSectionContent failed")
	}
	if got := structureOf(s, b).Zone("mise").Section("am").Content; got != "" {
		t.Errorf("edit on one board leaked into another: %q", got)
	}
	tpl, _ := s.Template("prep-board")
	if got := tpl.Structure.Zone("mise").Section("am").Content; got != "" {
		t.Errorf("edit leaked into the template: %q", got)
	}
	if BuiltinTemplates()[0].Structure.Zones[0].Content != "" {
		t.Error("built-in catalog was modified")
	}
}

func TestApplyTemplateUnknown(t *testing.T) {
	s := NewStore()
	board := s.AddNode(NewBoardNode("x", nil, 0, 0, 400, 300))
	text := s.AddNode(NewTextNode("x", 0, 0, 100, 40))
	if s.ApplyTemplate(board, "nope") || s.ApplyTemplate(text, "kanban") || s.ApplyTemplate("nope", "kanban") {
		t.Error("invalid ApplyTemplate reported success")
	}
}

func TestSaveTemplatePersists(t *testing.T) {
	s := NewStore()
	p := &fakePersistence{}
	s.SetPersistence(p)
	board := templatedBoard(t, s, "kanban", 600, 400)
	st := structureOf(s, board).Clone()
	st.TemplateID = ""
	st.Name = "Bar kanban"

	id := s.SaveTemplate(st)
	if id == "" || id == "kanban" {
		t.Fatalf("SaveTemplate = %q", id)
	}
	if len(p.templates) != 1 || p.templates[0].ID != id {
		t.Errorf("persisted = %+v", p.templates)
	}
	all := s.Templates()
	if last := all[len(all)-1]; last.ID != id || last.BuiltIn {
		t.Errorf("user template = %+v", last)
	}

	// Saving again under the same id replaces it.
	st.TemplateID = id
	st.Name = "Bar kanban v2"
	if again := s.SaveTemplate(st); again != id {
		t.Errorf("resave id = %q, want %q", again, id)
	}
	if got := len(s.Templates()); got != len(BuiltinTemplates())+1 {
		t.Errorf("templates = %d after resave", got)
	}

	st.Zones = append(st.Zones, st.Zones[0])
	if s.SaveTemplate(st) != "" {
		t.Error("structure with duplicate zone ids saved")
	}
}

func TestLoadTemplatesSkipsBuiltinsAndInvalid(t *testing.T) {
	s := NewStore()
	p := &fakePersistence{}
	s.SetPersistence(p)
	good := Template{ID: "tpl-1", Name: "Closing", Structure: &Structure{Columns: 1, Zones: []Zone{{ID: "a"}}}}
	bad := Template{ID: "tpl-2", Structure: &Structure{Zones: []Zone{{ID: "a"}, {ID: "a"}}}}
	shadow := Template{ID: "kanban", Structure: &Structure{}}
	s.LoadTemplates([]Template{good, bad, shadow})
	if got := len(s.Templates()); got != len(BuiltinTemplates())+1 {
		t.Errorf("templates = %d", got)
	}
	if len(p.templates) != 0 {
		t.Error("loading must not write back")
	}
}

// --- Structure edits ---

func TestStructureEditOneNotification(t *testing.T) {
	s := NewStore()
	board := templatedBoard(t, s, "kanban", 600, 400)
	r := record(s)

	tests := []struct {
		name string
		edit func() bool
	}{
		{"zone content", func() bool { return s.UpdateZoneContent(board, "todo", "restock") }},
		{"zone label", func() bool { return s.UpdateZoneLabel(board, "done", "Finished") }},
		{"span", func() bool { return s.SetZoneSpan(board, "todo", 2, 1) }},
		{"columns", func() bool { return s.SetStructureColumns(board, 2) }},
		{"section", func() bool { return s.AddSection(board, "doing", "Bar back") != "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.reset()
			if !tt.edit() {
				t.Fatal("edit failed")
			}
			if len(r.changes) != 1 || r.changes[0].Op != OpStructure {
				t.Errorf("changes = %+v, want one structure change", r.changes)
			}
		})
	}

	r.reset()
	if s.UpdateZoneContent(board, "missing", "x") || s.UpdateSectionLabel(board, "todo", "missing", "x") {
		t.Error("edit of a missing target succeeded")
	}
	if len(r.changes) != 0 {
		t.Error("failed edits must not notify")
	}
}

func TestApplyStyleToAllZones(t *testing.T) {
	s := NewStore()
	board := templatedBoard(t, s, "kanban", 600, 400)
	bg := "#ff0000"
	s.UpdateZoneContent(board, "done", "keep me")
	if !s.UpdateZoneStyle(board, "todo", StylePatch{Background: &bg}) {
		t.Fatal("UpdateZoneStyle failed")
	}
	if !s.ApplyStyleToAllZones(board, "todo") {
		t.Fatal("ApplyStyleToAllZones failed")
	}
	st := structureOf(s, board)
	for _, z := range st.Zones {
		if z.Style.Background != bg {
			t.Errorf("zone %s background = %s", z.ID, z.Style.Background)
		}
	}
	if st.Zone("done").Content != "keep me" || st.Zone("done").Label != "Done" {
		t.Error("style propagation touched content or labels")
	}
}

func TestAddZoneUniqueIDs(t *testing.T) {
	s := NewStore()
	board := s.AddNode(NewBoardNode("Bar", nil, 0, 0, 600, 400))
	first := s.AddZone(board, "Back bar")
	second := s.AddZone(board, "Back bar")
	if first != "back-bar" || second == first || second == "" {
		t.Errorf("zone ids = %q, %q", first, second)
	}
	if got := structureOf(s, board).Columns; got != 1 {
		t.Errorf("implicit structure columns = %d", got)
	}
	if s.AddZone(s.AddNode(NewTextNode("x", 0, 0, 10, 10)), "z") != "" {
		t.Error("AddZone on a text node succeeded")
	}
}

func TestZoneFocusFollowsDeletes(t *testing.T) {
	s := NewStore()
	board := templatedBoard(t, s, "prep-board", 900, 600)
	if !s.FocusZone(board, "mise", "am") {
		t.Fatal("FocusZone failed")
	}
	if s.FocusZone(board, "mise", "missing") {
		t.Error("focusing a missing section succeeded")
	}

	s.DeleteSection(board, "mise", "am")
	in := s.Snapshot().Interaction
	if in.ActiveZoneID != "mise" || in.ActiveZoneSection != DefaultSectionID {
		t.Errorf("after section delete focus = %q/%q", in.ActiveZoneID, in.ActiveZoneSection)
	}

	s.DeleteZone(board, "mise")
	in = s.Snapshot().Interaction
	if in.ActiveZoneID != "" || in.ActiveZoneSection != "" {
		t.Errorf("after zone delete focus = %q/%q", in.ActiveZoneID, in.ActiveZoneSection)
	}
}

func TestUpdateStructureRejectsInvalid(t *testing.T) {
	s := NewStore()
	board := templatedBoard(t, s, "kanban", 600, 400)
	bad := &Structure{Zones: []Zone{{ID: "x", Sections: []Section{{ID: "s"}, {ID: "s"}}}}}
	if s.UpdateStructure(board, bad) {
		t.Error("duplicate section ids accepted")
	}
	if !s.UpdateStructure(board, nil) || structureOf(s, board) != nil {
		t.Error("detaching the structure failed")
	}
}

func duplicateZones() *Structure {
	return &Structure{Columns: 2, Zones: []Zone{{ID: "a", Label: "A"}, {ID: "a", Label: "B"}}}
}

func TestInvalidStructureRejectedOnEveryPath(t *testing.T) {
	tests := []struct {
		name  string
		write func(s *Store, board NodeID) bool
	}{
		{"update replace", func(s *Store, board NodeID) bool {
			return s.UpdateNode(board, Patch{Replace: &BoardContent{Title: "Bad", Structure: duplicateZones()}})
		}},
		{"update content key", func(s *Store, board NodeID) bool {
			return s.UpdateNode(board, PatchContent(map[string]any{
				"structure": map[string]any{"columns": 2, "zones": []any{
					map[string]any{"id": "a", "label": "A"},
					map[string]any{"id": "a", "label": "B"},
				}},
			}))
		}},
		{"add", func(s *Store, _ NodeID) bool {
			return s.AddNode(NewBoardNode("Bad", duplicateZones(), 0, 500, 400, 300)) != ""
		}},
		{"paste", func(s *Store, _ NodeID) bool {
			return len(s.PasteNodes([]Node{NewBoardNode("Bad", duplicateZones(), 0, 0, 400, 300)}, 10, 10)) != 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			board := templatedBoard(t, s, "kanban", 600, 400)
			before := len(s.Snapshot().Nodes)
			if tt.write(s, board) {
				t.Fatal("structure with duplicate zone ids accepted")
			}
			if got := len(s.Snapshot().Nodes); got != before {
				t.Errorf("nodes = %d, want %d", got, before)
			}
			if err := structureOf(s, board).Validate(); err != nil {
				t.Errorf("board structure corrupted: %v", err)
			}
			if !s.UpdateZoneContent(board, "todo", "Ingredients") {
				t.Error("zone edits stopped working")
			}
		})
	}
}

func TestReplaceBoardContentRefocuses(t *testing.T) {
	s := NewStore()
	board := templatedBoard(t, s, "kanban", 600, 400)
	if !s.FocusZone(board, "doing", "") {
		t.Fatal("FocusZone failed")
	}
	next := &BoardContent{Title: "Service", Structure: &Structure{Columns: 1, Zones: []Zone{{ID: "todo", Label: "To do"}}}}
	if !s.UpdateNode(board, Patch{Replace: next}) {
		t.Fatal("replace rejected")
	}
	in := s.Snapshot().Interaction
	if in.ActiveBoardID != board || in.ActiveZoneID != "" || in.ActiveZoneSection != "" {
		t.Errorf("focus = %q/%q/%q, want the zone cleared", in.ActiveBoardID, in.ActiveZoneID, in.ActiveZoneSection)
	}
}

// --- Resources ---

func TestResourcesOrderAndPersistence(t *testing.T) {
	s := NewStore()
	p := &fakePersistence{}
	s.SetPersistence(p)
	board := templatedBoard(t, s, "kanban", 600, 400)

	for _, id := range []string{"a", "b", "c"} {
		if !s.SaveBoardAsResource(board, "Board "+id, id) {
			t.Fatalf("save %s failed", id)
		}
	}
	ids := func() []string {
		var out []string
		for _, r := range s.Resources() {
			out = append(out, r.ID)
		}
		return out
	}
	if got := ids(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("order = %v", got)
	}

	if !s.MoveBoardResource("c", -1) {
		t.Fatal("move failed")
	}
	if got := ids(); !slices.Equal(got, []string{"a", "c", "b"}) {
		t.Errorf("after move = %v", got)
	}
	if s.MoveBoardResource("a", -1) {
		t.Error("moving the first resource up succeeded")
	}

	// Overwriting keeps the slot.
	s.SaveBoardAsResource(board, "Renamed", "c")
	if got := ids(); !slices.Equal(got, []string{"a", "c", "b"}) {
		t.Errorf("after overwrite = %v", got)
	}

	s.DeleteBoardResource("a")
	if !slices.Equal(p.removed, []string{"a"}) {
		t.Errorf("removed = %v", p.removed)
	}
	if len(p.resources) != 6 {
		t.Errorf("persisted writes = %d, want 6", len(p.resources))
	}
}

func TestApplyResourceCopiesContent(t *testing.T) {
	s := NewStore()
	src := templatedBoard(t, s, "kanban", 600, 400)
	s.UpdateZoneContent(src, "todo", "order ice")
	s.SaveBoardAsResource(src, "", "res")
	if got := s.Resources()[0].Name; got != "Board" {
		t.Errorf("default name = %q, want the board title", got)
	}

	dst := s.AddNode(NewBoardNode("Empty", nil, 700, 0, 600, 400))
	if !s.ApplyResourceToBoard(dst, "res") {
		t.Fatal("ApplyResourceToBoard failed")
	}
	s.UpdateZoneContent(dst, "todo", "changed")
	if got := s.Resources()[0].Content.Structure.Zone("todo").Content; got != "order ice" {
		t.Errorf("resource content = %q, edits leaked back", got)
	}
	if s.ApplyResourceToBoard(dst, "missing") {
		t.Error("unknown resource applied")
	}
}

func TestLoadResourcesSorted(t *testing.T) {
	s := NewStore()
	s.LoadResources([]BoardResource{
		{ID: "z", Order: 1, Content: &BoardContent{}},
		{ID: "y", Order: 0, Content: &BoardContent{}},
		{ID: "x", Order: 1, Content: &BoardContent{}},
		{ID: "y", Order: 5, Content: &BoardContent{}},
		{ID: "", Order: 0, Content: &BoardContent{}},
		{ID: "w", Order: 0},
	})
	var got []string
	for _, r := range s.Resources() {
		got = append(got, r.ID)
	}
	if !slices.Equal(got, []string{"y", "x", "z"}) {
		t.Errorf("order = %v, want [y x z]", got)
	}
}

// --- Layout ---

func TestLayoutZonesGrid(t *testing.T) {
	tpl, _ := NewStore().Template("prep-board")
	area := Rect{10, 46, 880, 544}
	zs := LayoutZones(tpl.Structure, area)
	if len(zs) != 4 {
		t.Fatalf("zones = %d", len(zs))
	}
	assertNear(t, "cell width", zs[0].Rect.Width, 288)
	assertNear(t, "second column x", zs[1].Rect.X, 10+288+zoneGap)
	notes := zs[3]
	assertNear(t, "spanning width", notes.Rect.Width, 880)
	assertNear(t, "second row y", notes.Rect.Y, 46+268+zoneGap)
	if got := len(zs[0].Sections); got != 3 || zs[0].Sections[0].ID != DefaultSectionID {
		t.Errorf("mise sections = %+v", zs[0].Sections)
	}
	if LayoutZones(nil, area) != nil {
		t.Error("nil structure should lay out nothing")
	}
}

func TestZoneAt(t *testing.T) {
	s := NewStore()
	board := templatedBoard(t, s, "prep-board", 900, 600)
	n := s.Snapshot().Node(board)
	tests := []struct {
		name      string
		x, y      float64
		zone, sec string
		ok        bool
	}{
		{"header", 100, 10, "", "", false},
		{"zone content", 100, 100, "mise", DefaultSectionID, true},
		{"section", 100, 180, "mise", "am", true},
		{"spanning zone", 800, 400, "notes", DefaultSectionID, true},
		{"gap between zones", 10 + 288 + zoneGap/2, 100, "", "", false},
		{"outside", 2000, 2000, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, sec, ok := ZoneAt(n, tt.x, tt.y)
			if z != tt.zone || sec != tt.sec || ok != tt.ok {
				t.Errorf("ZoneAt(%v,%v) = %q %q %v, want %q %q %v", tt.x, tt.y, z, sec, ok, tt.zone, tt.sec, tt.ok)
			}
		})
	}

	s.ToggleCollapse(board)
	if _, _, ok := ZoneAt(s.Snapshot().Node(board), 100, 100); ok {
		t.Error("collapsed boards have no zones")
	}
}
