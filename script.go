package barboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action    string   `json:"action"`
	Label     string   `json:"label,omitempty"`
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	FromX     float64  `json:"fromX,omitempty"`
	FromY     float64  `json:"fromY,omitempty"`
	ToX       float64  `json:"toX,omitempty"`
	ToY       float64  `json:"toY,omitempty"`
	DeltaY    float64  `json:"deltaY,omitempty"`
	Frames    int      `json:"frames,omitempty"`
	Key       string   `json:"key,omitempty"`
	Tool      string   `json:"tool,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

var scriptKeys = map[string]Key{
	"delete":    KeyDelete,
	"backspace": KeyBackspace,
	"escape":    KeyEscape,
	"a":         KeyA,
	"c":         KeyC,
	"g":         KeyG,
	"v":         KeyV,
	"x":         KeyX,
	"left":      KeyArrowLeft,
	"right":     KeyArrowRight,
	"up":        KeyArrowUp,
	"down":      KeyArrowDown,
}

var scriptModifiers = map[string]KeyModifiers{
	"shift": ModShift,
	"ctrl":  ModCtrl,
	"alt":   ModAlt,
	"meta":  ModMeta,
}

// Script sequences injected input and screenshots across frames for
// automated testing of a board. Load one with LoadScript and call Step once
// per frame.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool

	// OnScreenshot is called for "screenshot" steps.
	OnScreenshot func(label string)
}

// LoadScript parses a JSON script. Unknown actions, keys, tools, modes and
// modifiers are rejected here rather than while running.
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("barboard: parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("barboard: parse script: no steps")
	}
	for i, st := range f.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("barboard: parse script: step %d: %w", i, err)
		}
	}
	return &Script{steps: f.Steps}, nil
}

func (st scriptStep) validate() error {
	for _, m := range st.Modifiers {
		if _, ok := scriptModifiers[strings.ToLower(m)]; !ok {
			return fmt.Errorf("unknown modifier %q", m)
		}
	}
	switch st.Action {
	case "click", "doubleClick", "drag", "wheel", "wait", "screenshot", "thumbnail":
	case "key":
		if _, ok := scriptKeys[strings.ToLower(st.Key)]; !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
	case "tool":
		if _, ok := ParseTool(st.Tool); !ok {
			return fmt.Errorf("unknown tool %q", st.Tool)
		}
	case "mode":
		if _, ok := ParseMode(st.Mode); !ok {
			return fmt.Errorf("unknown mode %q", st.Mode)
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func (st scriptStep) modifiers() KeyModifiers {
	var mods KeyModifiers
	for _, m := range st.Modifiers {
		mods |= scriptModifiers[strings.ToLower(m)]
	}
	return mods
}

// Done reports whether all steps have been executed.
func (sc *Script) Done() bool { return sc.done }

// Step advances the script by one frame: it waits for queued input to
// drain, then queues the next action on in or applies it to s.
func (sc *Script) Step(in *Injector, s *Store) {
	if sc.done {
		return
	}
	if in.Pending() > 0 {
		return
	}
	if sc.waitCount > 0 {
		sc.waitCount--
		return
	}
	if sc.cursor >= len(sc.steps) {
		sc.done = true
		return
	}

	st := sc.steps[sc.cursor]
	sc.cursor++
	in.SetModifiers(st.modifiers())

	switch st.Action {
	case "screenshot":
		if sc.OnScreenshot != nil {
			sc.OnScreenshot(st.Label)
		}
	case "thumbnail":
		s.RequestThumbnail()
	case "click":
		in.InjectClick(st.X, st.Y)
	case "doubleClick":
		in.InjectDoubleClick(st.X, st.Y)
	case "drag":
		in.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		in.InjectWheel(st.X, st.Y, st.DeltaY)
	case "key":
		in.InjectKey(scriptKeys[strings.ToLower(st.Key)])
	case "tool":
		t, _ := ParseTool(st.Tool)
		s.SetActiveTool(t)
	case "mode":
		m, _ := ParseMode(st.Mode)
		s.SetMode(m)
	case "wait":
		if st.Frames > 0 {
			sc.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if sc.cursor >= len(sc.steps) && sc.waitCount == 0 && in.Pending() == 0 {
		sc.done = true
	}
}

// RunScript plays sc to completion against s without a host, dispatching
// one injected event per frame.
func RunScript(sc *Script, m *InteractionManager, s *Store) {
	in := NewInjector(m)
	for !sc.Done() {
		sc.Step(in, s)
		in.Process()
	}
	in.Drain()
}
