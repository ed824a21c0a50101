package barboard

// injectKind identifies a synthetic input event.
type injectKind uint8

const (
	injectPress injectKind = iota
	injectMove
	injectRelease
	injectDoubleClick
	injectWheel
	injectKey
)

// syntheticEvent is a single injected input event. Screen coordinates are
// used and converted to world coordinates by the InteractionManager,
// identical to real pointer input.
type syntheticEvent struct {
	kind             injectKind
	screenX, screenY float64
	wheelY           float64
	button           MouseButton
	key              Key
	mods             KeyModifiers
}

// Injector queues synthetic input and feeds it to an InteractionManager one
// event per frame. Hosts use it for automation; tests use it to drive the
// same code paths as real input.
type Injector struct {
	m     *InteractionManager
	queue []syntheticEvent
	mods  KeyModifiers
}

// NewInjector returns an injector feeding m.
func NewInjector(m *InteractionManager) *Injector {
	return &Injector{m: m}
}

// SetModifiers sets the modifier keys held for subsequently queued events.
func (in *Injector) SetModifiers(mods KeyModifiers) { in.mods = mods }

// Pending returns the number of queued events.
func (in *Injector) Pending() int { return len(in.queue) }

func (in *Injector) push(e syntheticEvent) {
	e.mods = in.mods
	in.queue = append(in.queue, e)
}

// InjectPress queues a left-button press at the given screen coordinates.
func (in *Injector) InjectPress(x, y float64) {
	in.push(syntheticEvent{kind: injectPress, screenX: x, screenY: y, button: MouseButtonLeft})
}

// InjectMove queues a pointer move to the given screen coordinates.
func (in *Injector) InjectMove(x, y float64) {
	in.push(syntheticEvent{kind: injectMove, screenX: x, screenY: y})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (in *Injector) InjectRelease(x, y float64) {
	in.push(syntheticEvent{kind: injectRelease, screenX: x, screenY: y})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two frames.
func (in *Injector) InjectClick(x, y float64) {
	in.InjectPress(x, y)
	in.InjectRelease(x, y)
}

// InjectDoubleClick queues a full double click at the given screen
// coordinates.
func (in *Injector) InjectDoubleClick(x, y float64) {
	in.InjectClick(x, y)
	in.push(syntheticEvent{kind: injectDoubleClick, screenX: x, screenY: y})
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). Minimum frames is 2 (press + release).
func (in *Injector) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	in.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		in.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	in.InjectMove(toX, toY)
	in.InjectRelease(toX, toY)
}

// InjectWheel queues a vertical wheel step at the given screen coordinates.
func (in *Injector) InjectWheel(x, y, dy float64) {
	in.push(syntheticEvent{kind: injectWheel, screenX: x, screenY: y, wheelY: dy})
}

// InjectKey queues a key press.
func (in *Injector) InjectKey(k Key) {
	in.push(syntheticEvent{kind: injectKey, key: k})
}

// Process dispatches the oldest queued event. It reports whether an event
// was consumed, in which case the host should skip real input this frame.
func (in *Injector) Process() bool {
	if len(in.queue) == 0 {
		return false
	}
	e := in.queue[0]
	copy(in.queue, in.queue[1:])
	in.queue = in.queue[:len(in.queue)-1]

	switch e.kind {
	case injectPress:
		in.m.PointerDown(e.screenX, e.screenY, e.button, e.mods)
	case injectMove:
		in.m.PointerMove(e.screenX, e.screenY, e.mods)
	case injectRelease:
		in.m.PointerUp(e.screenX, e.screenY, e.mods)
	case injectDoubleClick:
		in.m.DoubleClick(e.screenX, e.screenY, e.mods)
	case injectWheel:
		in.m.Wheel(e.screenX, e.screenY, 0, e.wheelY, e.mods)
	case injectKey:
		in.m.KeyDown(e.key, e.mods)
	}
	return true
}

// Drain dispatches every queued event.
func (in *Injector) Drain() {
	for in.Process() {
	}
}
