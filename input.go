package barboard

import "math"

// DragDeadZone is the pointer travel, in screen pixels, before a press on a
// node turns into a drag.
const DragDeadZone = 4

// GestureType identifies a gesture reported to an EventSink.
type GestureType uint8

const (
	GesturePointerDown GestureType = iota
	GestureClick
	GestureDoubleClick
	GestureDragStart
	GestureDrag
	GestureDragEnd
	GestureResize
	GestureCreate
	GesturePan
	GestureZoom
	GestureMarquee
	GestureRejected // an editing gesture refused by the current mode
)

func (g GestureType) String() string {
	switch g {
	case GesturePointerDown:
		return "pointer-down"
	case GestureClick:
		return "click"
	case GestureDoubleClick:
		return "double-click"
	case GestureDragStart:
		return "drag-start"
	case GestureDrag:
		return "drag"
	case GestureDragEnd:
		return "drag-end"
	case GestureResize:
		return "resize"
	case GestureCreate:
		return "create"
	case GesturePan:
		return "pan"
	case GestureZoom:
		return "zoom"
	case GestureMarquee:
		return "marquee"
	case GestureRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// edits reports whether the phase writes to nodes.
func (p pointerPhase) edits() bool {
	return p == phaseDragging || p == phaseResizing || p == phaseCreating
}

// GestureEvent carries one interaction for an EventSink.
type GestureEvent struct {
	Type      GestureType
	NodeID    NodeID // empty over the canvas
	ScreenX   float64
	ScreenY   float64
	WorldX    float64
	WorldY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// World-space delta since the previous event of the gesture (drag, pan).
	DeltaX float64
	DeltaY float64
	// Zoom after the event (GestureZoom).
	Zoom float64
}

// EventSink receives gesture events from an InteractionManager, for example
// to feed an ECS or analytics.
type EventSink interface {
	EmitEvent(event GestureEvent)
}

// pointerPhase is the state of the pointer state machine.
type pointerPhase uint8

const (
	phaseIdle pointerPhase = iota
	phasePanning
	phasePressing
	phaseDragging
	phaseResizing
	phaseCreating
	phaseMarquee
)

func (p pointerPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phasePanning:
		return "panning"
	case phasePressing:
		return "pressing"
	case phaseDragging:
		return "dragging"
	case phaseResizing:
		return "resizing"
	case phaseCreating:
		return "creating"
	case phaseMarquee:
		return "marquee"
	default:
		return "unknown"
	}
}

// Default sizes of nodes placed with a single click of a creation tool.
var createSizes = map[Tool]Vec2{
	ToolShape: {160, 100},
	ToolText:  {200, 48},
	ToolLine:  {160, 24},
	ToolBoard: {480, 320},
}

// InteractionManager turns host pointer, wheel and keyboard events into Store
// mutations. Coordinates are host-relative screen pixels; they are mapped to
// world space with the same viewport transform the Renderer uses.
type InteractionManager struct {
	store     *Store
	sink      EventSink
	clipboard Clipboard

	phase  pointerPhase
	button MouseButton

	startX, startY float64 // screen position of the press
	lastX, lastY   float64
	startWorld     Vec2

	target  NodeID // pressed, resized or created node
	handle  ResizeHandle
	origin  Rect
	moved   bool
	marquee Rect

	additive bool
	copied   string // last payload written to the system clipboard
}

// NewInteractionManager returns a manager driving s.
func NewInteractionManager(s *Store) *InteractionManager {
	return &InteractionManager{store: s}
}

// SetEventSink sets the receiver of gesture events. Nil disables them.
func (m *InteractionManager) SetEventSink(sink EventSink) { m.sink = sink }

// SetClipboard mirrors copy and paste to c. Nil keeps copy and paste inside
// the store.
func (m *InteractionManager) SetClipboard(c Clipboard) { m.clipboard = c }

// Phase returns the current pointer state name, for debugging and tests.
func (m *InteractionManager) Phase() string { return m.phase.String() }

// Marquee returns the rubber-band rectangle in world units while a marquee
// selection is in progress.
func (m *InteractionManager) Marquee() (Rect, bool) {
	return m.marquee, m.phase == phaseMarquee
}

func (m *InteractionManager) emit(t GestureType, id NodeID, sx, sy float64, mods KeyModifiers, dx, dy float64) {
	if m.sink == nil {
		return
	}
	v := m.store.Snapshot().Viewport
	wx, wy := v.ScreenToWorld(sx, sy)
	m.sink.EmitEvent(GestureEvent{
		Type:      t,
		NodeID:    id,
		ScreenX:   sx,
		ScreenY:   sy,
		WorldX:    wx,
		WorldY:    wy,
		Button:    m.button,
		Modifiers: mods,
		DeltaX:    dx,
		DeltaY:    dy,
		Zoom:      v.Zoom,
	})
}

func (m *InteractionManager) creative() bool {
	return m.store.Snapshot().Interaction.Mode == ModeCreative
}

func boolPtr(b bool) *bool { return &b }

// PointerDown starts a gesture at screen point (sx, sy).
func (m *InteractionManager) PointerDown(sx, sy float64, button MouseButton, mods KeyModifiers) {
	if m.phase != phaseIdle {
		m.finish(sx, sy, mods, false)
	}
	sc := m.store.Snapshot()
	in := sc.Interaction
	wx, wy := sc.Viewport.ScreenToWorld(sx, sy)

	m.button = button
	m.startX, m.startY = sx, sy
	m.lastX, m.lastY = sx, sy
	m.startWorld = Vec2{wx, wy}
	m.target = ""
	m.moved = false
	m.handle = HandleNone

	if button == MouseButtonRight {
		return
	}
	if button == MouseButtonMiddle || in.Tool == ToolHand || mods&ModAlt != 0 {
		m.phase = phasePanning
		m.store.UpdateInteractionState(InteractionPatch{Panning: boolPtr(true)})
		m.emit(GesturePointerDown, "", sx, sy, mods, 0, 0)
		return
	}

	if in.Tool.creates() {
		if in.Mode != ModeCreative {
			m.emit(GestureRejected, "", sx, sy, mods, 0, 0)
			return
		}
		m.beginCreate(in.Tool, Vec2{wx, wy})
		m.emit(GestureCreate, m.target, sx, sy, mods, 0, 0)
		return
	}

	if h, n := HandleAt(sc, wx, wy); h != HandleNone {
		m.phase = phaseResizing
		m.target = n.ID
		m.handle = h
		m.origin = n.Bounds()
		m.store.UpdateInteractionState(InteractionPatch{Resizing: boolPtr(true)})
		m.emit(GesturePointerDown, n.ID, sx, sy, mods, 0, 0)
		return
	}

	if n := NodeAt(sc, wx, wy); n != nil {
		id := n.ID
		if mods&ModCtrl == 0 {
			if g := sc.TopGroupOf(id); g != "" {
				id = g
			}
		}
		switch {
		case mods&ModShift != 0:
			m.store.ToggleSelection(id)
		case !sc.Selection.Has(id):
			m.store.Select(id)
		}
		m.phase = phasePressing
		m.target = id
		m.emit(GesturePointerDown, id, sx, sy, mods, 0, 0)
		return
	}

	m.phase = phaseMarquee
	m.additive = mods&ModShift != 0
	m.marquee = Rect{X: wx, Y: wy}
	if !m.additive {
		m.store.ClearSelection()
	}
	m.emit(GesturePointerDown, "", sx, sy, mods, 0, 0)
}

// beginCreate places a minimum-size node of the tool's kind at p.
func (m *InteractionManager) beginCreate(t Tool, p Vec2) {
	var c Content
	switch t {
	case ToolShape:
		c = &ShapeContent{Shape: ShapeRoundRect}
	case ToolText:
		c = &TextContent{Text: "Text", FontSize: defaultFontSize}
	case ToolLine:
		c = &LineContent{Width: 2}
	case ToolBoard:
		c = &BoardContent{Title: "Board"}
	default:
		return
	}
	id := m.store.AddNode(NewNode(c, p.X, p.Y, MinNodeWidth, MinNodeHeight))
	if id == "" {
		return
	}
	m.store.Select(id)
	m.phase = phaseCreating
	m.target = id
}

// PointerMove advances the current gesture.
func (m *InteractionManager) PointerMove(sx, sy float64, mods KeyModifiers) {
	sc := m.store.Snapshot()
	v := sc.Viewport
	dsx, dsy := sx-m.lastX, sy-m.lastY
	if !m.moved && math.Hypot(sx-m.startX, sy-m.startY) > DragDeadZone {
		m.moved = true
	}
	wx, wy := v.ScreenToWorld(sx, sy)

	if m.phase.edits() && !m.creative() {
		// the mode left creative mid-gesture
		m.emit(GestureRejected, m.target, sx, sy, mods, 0, 0)
		m.phase = phaseIdle
		m.finish(sx, sy, mods, false)
		m.lastX, m.lastY = sx, sy
		return
	}

	switch m.phase {
	case phasePanning:
		if dsx != 0 || dsy != 0 {
			m.store.UpdateViewport(v.Panned(dsx, dsy), true, false)
			m.emit(GesturePan, "", sx, sy, mods, dsx/v.Zoom, dsy/v.Zoom)
		}
	case phasePressing:
		if !m.moved {
			break
		}
		if !m.creative() {
			m.emit(GestureRejected, m.target, sx, sy, mods, 0, 0)
			m.phase = phaseIdle
			break
		}
		m.phase = phaseDragging
		m.store.UpdateInteractionState(InteractionPatch{Dragging: boolPtr(true)})
		m.emit(GestureDragStart, m.target, sx, sy, mods, 0, 0)
		m.dragBy(sx, sy, (sx-m.startX)/v.Zoom, (sy-m.startY)/v.Zoom, mods)
	case phaseDragging:
		m.dragBy(sx, sy, dsx/v.Zoom, dsy/v.Zoom, mods)
	case phaseResizing:
		r := resizedBounds(m.origin, m.handle, wx-m.startWorld.X, wy-m.startWorld.Y)
		p := Patch{X: &r.X, W: &r.Width}
		if n := sc.Nodes[m.target]; n == nil || !n.Collapsed || n.Kind != KindBoard {
			p.Y, p.H = &r.Y, &r.Height
		}
		m.store.UpdateNode(m.target, p)
		m.emit(GestureResize, m.target, sx, sy, mods, 0, 0)
	case phaseCreating:
		if !m.moved {
			break
		}
		m.placeCreated(dragRect(m.startWorld, Vec2{wx, wy}), (wx-m.startWorld.X)*(wy-m.startWorld.Y) < 0)
	case phaseMarquee:
		m.marquee = Rect{X: m.startWorld.X, Y: m.startWorld.Y, Width: wx - m.startWorld.X, Height: wy - m.startWorld.Y}.Normalized()
	}
	m.lastX, m.lastY = sx, sy
}

func (m *InteractionManager) dragBy(sx, sy, dx, dy float64, mods KeyModifiers) {
	if dx == 0 && dy == 0 {
		return
	}
	ids := m.store.Snapshot().Selection.IDs()
	m.store.MoveNodes(ids, dx, dy)
	m.emit(GestureDrag, m.target, sx, sy, mods, dx, dy)
}

// placeCreated sets the box of the node being created. rising applies to
// lines drawn toward the top-right or bottom-left.
func (m *InteractionManager) placeCreated(r Rect, rising bool) {
	p := Patch{X: &r.X, Y: &r.Y, W: &r.Width, H: &r.Height}
	if n := m.store.Snapshot().Nodes[m.target]; n != nil && n.Kind == KindLine {
		p.Content = map[string]any{"rising": rising}
	}
	m.store.UpdateNode(m.target, p)
}

// PointerUp ends the current gesture.
func (m *InteractionManager) PointerUp(sx, sy float64, mods KeyModifiers) {
	m.finish(sx, sy, mods, true)
}

// PointerLeave abandons the pointer; the gesture ends as if released where
// it was last seen, without a click.
func (m *InteractionManager) PointerLeave() {
	m.finish(m.lastX, m.lastY, 0, false)
}

func (m *InteractionManager) finish(sx, sy float64, mods KeyModifiers, released bool) {
	switch m.phase {
	case phasePressing:
		if released && !m.moved {
			if mods&ModShift == 0 && m.store.Snapshot().Selection.Len() > 1 {
				m.store.Select(m.target)
			}
			m.emit(GestureClick, m.target, sx, sy, mods, 0, 0)
		}
	case phaseDragging:
		m.emit(GestureDragEnd, m.target, sx, sy, mods, 0, 0)
	case phaseCreating:
		if !m.moved {
			tool := m.store.Snapshot().Interaction.Tool
			size := createSizes[tool]
			m.placeCreated(Rect{X: m.startWorld.X, Y: m.startWorld.Y, Width: size.X, Height: size.Y}, false)
		}
		m.store.SetActiveTool(ToolPointer)
	case phaseMarquee:
		if m.moved {
			m.store.SelectInRect(m.marquee, m.additive)
			m.emit(GestureMarquee, "", sx, sy, mods, 0, 0)
		}
	}
	in := m.store.Snapshot().Interaction
	if in.Dragging || in.Resizing || in.Panning {
		f := false
		m.store.UpdateInteractionState(InteractionPatch{Dragging: &f, Resizing: &f, Panning: &f})
	}
	m.phase = phaseIdle
	m.target = ""
	m.handle = HandleNone
	m.marquee = Rect{}
}

// DoubleClick focuses the board zone under (sx, sy), or clears zone focus
// when the point is on no zone.
func (m *InteractionManager) DoubleClick(sx, sy float64, mods KeyModifiers) {
	sc := m.store.Snapshot()
	wx, wy := sc.Viewport.ScreenToWorld(sx, sy)
	n := NodeAt(sc, wx, wy)
	if n == nil {
		m.store.ClearZoneFocus()
		m.emit(GestureDoubleClick, "", sx, sy, mods, 0, 0)
		return
	}
	if zone, section, ok := ZoneAt(n, wx, wy); ok {
		m.store.FocusZone(n.ID, zone, section)
	} else {
		m.store.ClearZoneFocus()
	}
	m.emit(GestureDoubleClick, n.ID, sx, sy, mods, 0, 0)
}

// Wheel zooms by the vertical wheel delta, keeping the world point under
// the cursor fixed. Wheel events over the canvas are always consumed, so the
// result is true even when the zoom is unchanged; hosts use it to suppress
// their own scrolling.
func (m *InteractionManager) Wheel(sx, sy, dx, dy float64, mods KeyModifiers) bool {
	if dy == 0 {
		return true
	}
	v := m.store.Snapshot().Viewport
	next := v.ZoomedAt(sx, sy, WheelZoomFactor(dy))
	m.store.UpdateViewport(next, true, false)
	m.emit(GestureZoom, "", sx, sy, mods, 0, 0)
	return true
}
