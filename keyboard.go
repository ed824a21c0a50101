package barboard

// Key is a keyboard key understood by the InteractionManager. Hosts map
// their native key codes onto it.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyDelete
	KeyBackspace
	KeyEscape
	KeyA
	KeyC
	KeyG
	KeyV
	KeyX
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
)

// Arrow-key nudge distances in world units.
const (
	nudgeStep      = 1
	nudgeShiftStep = 10
)

// command reports whether the platform command modifier is held.
func command(mods KeyModifiers) bool {
	return mods&(ModCtrl|ModMeta) != 0
}

// KeyDown handles a key press. It reports whether the key was consumed.
func (m *InteractionManager) KeyDown(key Key, mods KeyModifiers) bool {
	sc := m.store.Snapshot()
	sel := sc.Selection.IDs()
	switch {
	case key == KeyDelete || key == KeyBackspace:
		if len(sel) == 0 {
			return false
		}
		if !m.editable() {
			return true
		}
		m.store.DeleteNodes(sel...)
		return true

	case key == KeyEscape:
		if sc.Interaction.ActiveZoneID != "" {
			m.store.ClearZoneFocus()
			return true
		}
		if len(sel) > 0 {
			m.store.ClearSelection()
			return true
		}
		return false

	case key == KeyA && command(mods):
		m.store.SelectAll()
		return true

	case key == KeyC && command(mods):
		m.copy()
		return true

	case key == KeyX && command(mods):
		if !m.editable() {
			return true
		}
		m.copy()
		m.store.DeleteNodes(sel...)
		return true

	case key == KeyV && command(mods):
		if !m.editable() {
			return true
		}
		m.paste()
		return true

	case key == KeyG && command(mods):
		if !m.editable() {
			return true
		}
		if mods&ModShift != 0 {
			for _, id := range sel {
				if n := sc.Nodes[id]; n != nil && n.Kind == KindGroup {
					m.store.Ungroup(id)
				}
			}
			return true
		}
		m.store.Group(sel...)
		return true

	case key >= KeyArrowLeft && key <= KeyArrowDown:
		if len(sel) == 0 {
			return false
		}
		if !m.editable() {
			return true
		}
		step := float64(nudgeStep)
		if mods&ModShift != 0 {
			step = nudgeShiftStep
		}
		var dx, dy float64
		switch key {
		case KeyArrowLeft:
			dx = -step
		case KeyArrowRight:
			dx = step
		case KeyArrowUp:
			dy = -step
		case KeyArrowDown:
			dy = step
		}
		m.store.MoveNodes(sel, dx, dy)
		return true
	}
	return false
}

// editable reports whether the mode allows editing, reporting a rejected
// gesture when it does not.
func (m *InteractionManager) editable() bool {
	if m.creative() {
		return true
	}
	m.emit(GestureRejected, "", m.lastX, m.lastY, 0, 0, 0)
	return false
}

// copy fills the store clipboard and mirrors it to the system clipboard.
func (m *InteractionManager) copy() {
	nodes := m.store.CopySelection()
	if m.clipboard == nil || len(nodes) == 0 {
		return
	}
	text, err := EncodeClipboard(nodes)
	if err != nil {
		m.store.debugf("copy: %v", err)
		return
	}
	if err := m.clipboard.WriteAll(text); err != nil {
		m.store.debugf("copy: %v", err)
		return
	}
	m.copied = text
}

// paste prefers board nodes placed on the system clipboard by another board
// and falls back to the store clipboard.
func (m *InteractionManager) paste() {
	if m.clipboard != nil {
		if text, err := m.clipboard.ReadAll(); err == nil && text != m.copied {
			if nodes, err := DecodeClipboard(text); err == nil && len(nodes) > 0 {
				m.store.PasteNodes(nodes, pasteOffset, pasteOffset)
				return
			}
		}
	}
	m.store.Paste()
}
