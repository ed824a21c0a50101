package barboard

import (
	"errors"
	"image/color"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

// drawOp is one recorded Surface call.
type drawOp struct {
	kind  string
	rect  Rect
	color Color
	text  string
}

// recordingSurface is a Surface that records draw calls instead of painting.
type recordingSurface struct {
	w, h int
	m    [6]float64
	ops  []drawOp
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{w: w, h: h, m: identityTransform}
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return ErrNoSurface
	}
	s.w, s.h = w, h
	return nil
}

func (s *recordingSurface) add(kind string, r Rect, c Color) {
	s.ops = append(s.ops, drawOp{kind: kind, rect: r, color: c})
}

func (s *recordingSurface) Clear(c Color)             { s.ops = nil; s.add("clear", Rect{}, c) }
func (s *recordingSurface) SetTransform(m [6]float64) { s.m = m }
func (s *recordingSurface) FillRect(r Rect, _ float64, c Color) {
	s.add("fill", r, c)
}
func (s *recordingSurface) FillGradient(r Rect, _ float64, from, _ Color, _ bool) {
	s.add("gradient", r, from)
}
func (s *recordingSurface) StrokeRect(r Rect, _, _ float64, c Color) { s.add("stroke", r, c) }
func (s *recordingSurface) FillEllipse(r Rect, c Color)              { s.add("ellipse", r, c) }
func (s *recordingSurface) StrokeEllipse(r Rect, _ float64, c Color) { s.add("stroke-ellipse", r, c) }
func (s *recordingSurface) Line(a, b Vec2, _ float64, c Color) {
	s.add("line", Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}, c)
}

func (s *recordingSurface) Text(str string, x, y float64, _ FontSpec, c Color) {
	s.ops = append(s.ops, drawOp{kind: "text", rect: Rect{X: x, Y: y}, color: c, text: str})
}

func (s *recordingSurface) MeasureText(str string, f FontSpec) (float64, float64) {
	return float64(utf8.RuneCountInString(str)) * f.Size * 0.5, f.Size * 1.2
}

func (s *recordingSurface) texts() []string {
	var out []string
	for _, op := range s.ops {
		if op.kind == "text" {
			out = append(out, op.text)
		}
	}
	return out
}

func (s *recordingSurface) count(kind string, c Color) int {
	n := 0
	for _, op := range s.ops {
		if op.kind == kind && op.color == c {
			n++
		}
	}
	return n
}

func (s *recordingSurface) firstIndex(c Color) int {
	return slices.IndexFunc(s.ops, func(op drawOp) bool { return op.color == c })
}

func newTestRenderer(t *testing.T) (*Renderer, *recordingSurface) {
	t.Helper()
	r := NewRenderer()
	r.Grid = false
	surf := newRecordingSurface(800, 600)
	if err := r.Attach(surf); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return r, surf
}

func mustColor(t *testing.T, hex string) Color {
	t.Helper()
	c, ok := ParseHexColor(hex)
	if !ok {
		t.Fatalf("bad color %s", hex)
	}
	return c
}

func TestRenderWithoutSurface(t *testing.T) {
	r := NewRenderer()
	if err := r.Render(NewStore().Snapshot(), nil); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Render err = %v, want ErrNoSurface", err)
	}
	if err := r.Attach(nil); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Attach(nil) err = %v", err)
	}
	if err := r.Attach(newRecordingSurface(0, 10)); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Attach(0x10) err = %v", err)
	}
	if r.Surface() != nil {
		t.Error("failed attach kept a surface")
	}
	if err := r.Resize(100, 100, 1); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Resize err = %v", err)
	}
}

func TestRenderPaintOrderFollowsZIndex(t *testing.T) {
	s := NewStore()
	red := s.AddNode(NewShapeNode("#ff0000", 0, 0, 100, 100))
	s.AddNode(NewShapeNode("#00ff00", 50, 50, 100, 100))
	r, surf := newTestRenderer(t)

	if err := r.Render(s.Snapshot(), nil); err != nil {
		t.Fatal(err)
	}
	ri, gi := surf.firstIndex(mustColor(t, "#ff0000")), surf.firstIndex(mustColor(t, "#00ff00"))
	if ri < 0 || gi < 0 || ri > gi {
		t.Fatalf("red at %d, green at %d; want red first", ri, gi)
	}

	s.BringToFront(red)
	if err := r.Render(s.Snapshot(), nil); err != nil {
		t.Fatal(err)
	}
	ri, gi = surf.firstIndex(mustColor(t, "#ff0000")), surf.firstIndex(mustColor(t, "#00ff00"))
	if ri < gi {
		t.Errorf("after BringToFront red at %d, green at %d", ri, gi)
	}
}

func TestRenderCullsOffscreen(t *testing.T) {
	s := NewStore()
	s.AddNode(NewShapeNode("#ff0000", 10, 10, 100, 100))
	s.AddNode(NewShapeNode("#00ff00", 5000, 5000, 100, 100))
	r, surf := newTestRenderer(t)
	if err := r.Render(s.Snapshot(), nil); err != nil {
		t.Fatal(err)
	}
	if st := r.Stats(); st.Drawn != 1 || st.Culled != 1 {
		t.Errorf("stats = %+v", st)
	}
	if surf.firstIndex(mustColor(t, "#00ff00")) >= 0 {
		t.Error("offscreen node was drawn")
	}

	// Panning brings it into view.
	s.UpdateViewport(Viewport{PanX: -5000, PanY: -5000, Zoom: 1}, true, false)
	r.Render(s.Snapshot(), nil)
	if st := r.Stats(); st.Drawn != 1 || st.Culled != 1 || surf.firstIndex(mustColor(t, "#00ff00")) < 0 {
		t.Errorf("after pan stats = %+v", st)
	}
}

func TestRenderDoesNotMutateStore(t *testing.T) {
	s := NewStore()
	board := s.AddNode(NewBoardNode("Prep", nil, 0, 0, 900, 600))
	s.ApplyTemplate(board, "prep-board")
	s.AddNode(NewNode(&CostingSingleContent{RecipeID: "a"}, 950, 0, 200, 120))
	s.Select(board)
	s.FocusZone(board, "mise", "am")
	r, _ := newTestRenderer(t)
	rec := record(s)
	before := s.Snapshot()

	for range 3 {
		if err := r.Render(s.Snapshot(), nil); err != nil {
			t.Fatal(err)
		}
	}
	if s.Snapshot() != before || before.Version() != s.Snapshot().Version() {
		t.Error("rendering replaced the scene")
	}
	if len(rec.changes) != 0 {
		t.Errorf("rendering notified %d changes", len(rec.changes))
	}
}

func TestRenderText(t *testing.T) {
	s := NewStore()
	s.AddNode(NewTextNode("Ice delivery at four", 0, 0, 400, 100))
	r, surf := newTestRenderer(t)
	r.Render(s.Snapshot(), nil)
	if got := strings.Join(surf.texts(), "|"); got != "Ice delivery at four" {
		t.Errorf("texts = %q", got)
	}
}

func TestRenderBoardZones(t *testing.T) {
	s := NewStore()
	board := s.AddNode(NewBoardNode("Service", nil, 0, 0, 600, 400))
	s.ApplyTemplate(board, "kanban")
	r, surf := newTestRenderer(t)
	r.Render(s.Snapshot(), nil)
	got := strings.Join(surf.texts(), "|")
	for _, want := range []string{"Service", "To do", "In progress", "Done"} {
		if !strings.Contains(got, want) {
			t.Errorf("texts %q missing %q", got, want)
		}
	}

	s.ToggleCollapse(board)
	r.Render(s.Snapshot(), nil)
	if got := strings.Join(surf.texts(), "|"); strings.Contains(got, "To do") {
		t.Errorf("collapsed board drew its zones: %q", got)
	}
}

func TestRenderDomainCards(t *testing.T) {
	s := NewStore()
	id := s.AddNode(NewNode(&CostingSingleContent{RecipeID: "a"}, 0, 0, 240, 140))
	r, surf := newTestRenderer(t)

	r.Render(s.Snapshot(), nil)
	if got := strings.Join(surf.texts(), "|"); !strings.Contains(got, "not found in catalog") {
		t.Errorf("unresolved card = %q", got)
	}

	data := ExternalTable{id: {Costing: Resolver{}.ResolveCostingData("a", 0, testRecipes, testIngredients)}}
	r.Render(s.Snapshot(), data)
	got := strings.Join(surf.texts(), "|")
	if !strings.Contains(got, "Gin shot") || !strings.Contains(got, "cost 2.00  price 8.00") {
		t.Errorf("resolved card = %q", got)
	}
	if surf.count("fill", r.Theme.Good) != 1 {
		t.Error("healthy costing should show the good status bar")
	}
}

func TestRenderSelectionHandles(t *testing.T) {
	s := NewStore()
	a := shape(s, 0, 0)
	b := shape(s, 200, 0)
	r, surf := newTestRenderer(t)

	s.Select(a)
	r.Render(s.Snapshot(), nil)
	if got := surf.count("fill", r.Theme.Handle); got != 8 {
		t.Errorf("handles = %d, want 8", got)
	}

	s.Select(a, b)
	r.Render(s.Snapshot(), nil)
	if got := surf.count("fill", r.Theme.Handle); got != 0 {
		t.Errorf("multi-selection handles = %d, want 0", got)
	}
	if got := surf.count("stroke", r.Theme.Selection); got != 2 {
		t.Errorf("selection outlines = %d, want 2", got)
	}

	s.Select(a)
	s.SetMode(ModeExecutive)
	r.Render(s.Snapshot(), nil)
	if got := surf.count("fill", r.Theme.Handle); got != 0 {
		t.Errorf("executive mode handles = %d, want 0", got)
	}
}

func TestRenderZoneFocus(t *testing.T) {
	s := NewStore()
	board := s.AddNode(NewBoardNode("Service", nil, 0, 0, 600, 400))
	s.ApplyTemplate(board, "kanban")
	r, surf := newTestRenderer(t)
	s.FocusZone(board, "doing", "")
	r.Render(s.Snapshot(), nil)
	if got := surf.count("stroke", r.Theme.Focus); got != 1 {
		t.Errorf("focus outlines = %d, want 1", got)
	}
}

func TestRendererResize(t *testing.T) {
	r, surf := newTestRenderer(t)
	if err := r.Resize(400, 300, 2); err != nil {
		t.Fatal(err)
	}
	if w, h := surf.Size(); w != 800 || h != 600 {
		t.Errorf("surface = %dx%d, want 800x600", w, h)
	}
	if w, h := r.Size(); w != 400 || h != 300 {
		t.Errorf("logical = %vx%v", w, h)
	}
	r.Render(NewStore().Snapshot(), nil)
	assertNear(t, "device scale", surf.m[0], 2)
}

func TestColorRGBA(t *testing.T) {
	c := mustColor(t, "#ff8000")
	if got := c.RGBA(); got != (color.NRGBA{R: 255, G: 128, B: 0, A: 255}) {
		t.Errorf("RGBA = %+v", got)
	}
}
