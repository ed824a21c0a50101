package barboard

import (
	"strings"
	"unicode"
)

// editStructure runs edit on a private copy of the board's structure and
// commits the copy as one change. The edit reports false when its target is
// missing, in which case nothing is committed.
func (s *Store) editStructure(id NodeID, edit func(st *Structure) bool) bool {
	n := s.scene.Nodes[id]
	if n == nil {
		return false
	}
	b := n.board()
	if b == nil || b.Structure == nil {
		return false
	}
	st := b.Structure.Clone()
	if !edit(st) || st.Validate() != nil {
		return false
	}
	return s.commitStructure(id, st)
}

func (s *Store) editZone(id NodeID, zoneID string, edit func(z *Zone) bool) bool {
	return s.editStructure(id, func(st *Structure) bool {
		z := st.Zone(zoneID)
		return z != nil && edit(z)
	})
}

// UpdateZoneContent sets the content text of a zone.
func (s *Store) UpdateZoneContent(id NodeID, zoneID, content string) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		z.Content = content
		return true
	})
}

// UpdateZoneLabel sets the label of a zone.
func (s *Store) UpdateZoneLabel(id NodeID, zoneID, label string) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		z.Label = label
		return true
	})
}

// UpdateZoneStyle patches the frame style of a zone.
func (s *Store) UpdateZoneStyle(id NodeID, zoneID string, p StylePatch) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		z.Style = p.Apply(z.Style)
		return true
	})
}

// UpdateZoneContentStyle patches the style of a zone's content area.
func (s *Store) UpdateZoneContentStyle(id NodeID, zoneID string, p StylePatch) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		z.ContentStyle = p.Apply(z.ContentStyle)
		return true
	})
}

// SetZoneSpan sets how many grid columns and rows a zone covers. Values below
// one are treated as one.
func (s *Store) SetZoneSpan(id NodeID, zoneID string, colSpan, rowSpan int) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		z.ColSpan = max(colSpan, 1)
		z.RowSpan = max(rowSpan, 1)
		return true
	})
}

// SetStructureColumns sets the column count of a board's zone grid.
func (s *Store) SetStructureColumns(id NodeID, columns int) bool {
	return s.editStructure(id, func(st *Structure) bool {
		st.Columns = max(columns, 1)
		return true
	})
}

// UpdateSectionContent sets the content of a section. DefaultSectionID
// addresses the zone's own content.
func (s *Store) UpdateSectionContent(id NodeID, zoneID, sectionID, content string) bool {
	if sectionID == DefaultSectionID {
		return s.UpdateZoneContent(id, zoneID, content)
	}
	return s.editZone(id, zoneID, func(z *Zone) bool {
		sec := z.Section(sectionID)
		if sec == nil {
			return false
		}
		sec.Content = content
		return true
	})
}

// UpdateSectionLabel renames a section.
func (s *Store) UpdateSectionLabel(id NodeID, zoneID, sectionID, label string) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		sec := z.Section(sectionID)
		if sec == nil {
			return false
		}
		sec.Label = label
		return true
	})
}

// UpdateSectionStyle patches the style of a section. DefaultSectionID
// addresses the zone's content style.
func (s *Store) UpdateSectionStyle(id NodeID, zoneID, sectionID string, p StylePatch) bool {
	if sectionID == DefaultSectionID {
		return s.UpdateZoneContentStyle(id, zoneID, p)
	}
	return s.editZone(id, zoneID, func(z *Zone) bool {
		sec := z.Section(sectionID)
		if sec == nil {
			return false
		}
		sec.Style = p.Apply(sec.Style)
		return true
	})
}

// AddZone appends a zone labelled label and returns its id, or "" when id is
// not a board. A board without a structure gets a one-column anonymous
// structure holding the new zone.
func (s *Store) AddZone(id NodeID, label string) string {
	n := s.scene.Nodes[id]
	if n == nil || n.board() == nil {
		return ""
	}
	st := n.board().Structure.Clone()
	if st == nil {
		st = &Structure{Columns: 1}
	}
	z := Zone{Label: label, Style: headerStyle, ContentStyle: bodyStyle}
	if len(st.Zones) > 0 {
		last := st.Zones[len(st.Zones)-1]
		z.Style, z.ContentStyle = last.Style, last.ContentStyle
	}
	z.ID = st.uniqueZoneID(slug(label, "zone"))
	st.Zones = append(st.Zones, z)
	if !s.commitStructure(id, st) {
		return ""
	}
	return z.ID
}

// DeleteZone removes a zone. Focus on it is cleared.
func (s *Store) DeleteZone(id NodeID, zoneID string) bool {
	return s.editStructure(id, func(st *Structure) bool {
		i := st.zoneIndex(zoneID)
		if i < 0 {
			return false
		}
		st.Zones = append(st.Zones[:i], st.Zones[i+1:]...)
		return true
	})
}

// AddSection appends a section to a zone and returns its id, or "" when the
// zone does not exist.
func (s *Store) AddSection(id NodeID, zoneID, label string) string {
	var sectionID string
	ok := s.editZone(id, zoneID, func(z *Zone) bool {
		sectionID = z.uniqueSectionID(slug(label, "section"))
		z.Sections = append(z.Sections, Section{ID: sectionID, Label: label, Style: z.ContentStyle})
		return true
	})
	if !ok {
		return ""
	}
	return sectionID
}

// DeleteSection removes a section from a zone. If it was the focused
// section, focus moves to the zone's default content section.
func (s *Store) DeleteSection(id NodeID, zoneID, sectionID string) bool {
	return s.editZone(id, zoneID, func(z *Zone) bool {
		for i := range z.Sections {
			if z.Sections[i].ID == sectionID {
				z.Sections = append(z.Sections[:i], z.Sections[i+1:]...)
				return true
			}
		}
		return false
	})
}

// ApplyStyleToAllZones copies the style and content style of the source zone
// onto every zone of the structure. Content, labels and sections are left
// untouched.
func (s *Store) ApplyStyleToAllZones(id NodeID, sourceZoneID string) bool {
	return s.editStructure(id, func(st *Structure) bool {
		src := st.Zone(sourceZoneID)
		if src == nil {
			return false
		}
		style, contentStyle := src.Style, src.ContentStyle
		for i := range st.Zones {
			st.Zones[i].Style = style
			st.Zones[i].ContentStyle = contentStyle
		}
		return true
	})
}

// FocusZone puts a board zone, and optionally one of its sections, into edit
// focus. An empty sectionID focuses the zone's default content section.
func (s *Store) FocusZone(id NodeID, zoneID, sectionID string) bool {
	n := s.scene.Nodes[id]
	if n == nil || n.board() == nil {
		return false
	}
	z := n.board().Structure.Zone(zoneID)
	if z == nil {
		return false
	}
	if sectionID == "" {
		sectionID = DefaultSectionID
	}
	if sectionID != DefaultSectionID && z.Section(sectionID) == nil {
		return false
	}
	s.UpdateInteractionState(InteractionPatch{
		ActiveBoardID:     &id,
		ActiveZoneID:      &zoneID,
		ActiveZoneSection: &sectionID,
	})
	return true
}

// ClearZoneFocus leaves zone edit focus.
func (s *Store) ClearZoneFocus() {
	var none NodeID
	empty := ""
	s.UpdateInteractionState(InteractionPatch{
		ActiveBoardID:     &none,
		ActiveZoneID:      &empty,
		ActiveZoneSection: &empty,
	})
}

// slug turns a label into an id fragment: lower case letters and digits
// joined by dashes. def is returned for labels with no usable characters.
func slug(label, def string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return def
	}
	return b.String()
}
