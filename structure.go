package barboard

import (
	"fmt"
	"slices"
)

// DefaultSectionID is the implicit section that holds a zone's own content.
// Focus falls back to it when the focused section is deleted.
const DefaultSectionID = "content"

// Style is the visual bag shared by zones and sections. Colors are hex strings
// so that structures persist as plain JSON.
type Style struct {
	Background  string    `json:"background,omitempty"`
	BorderColor string    `json:"borderColor,omitempty"`
	BorderWidth float64   `json:"borderWidth,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
	Shadow      bool      `json:"shadow,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	FontWeight  string    `json:"fontWeight,omitempty"`
	TextColor   string    `json:"textColor,omitempty"`
	Align       TextAlign `json:"align,omitempty"`
}

// StylePatch is a partial Style update. Nil fields are left untouched.
type StylePatch struct {
	Background  *string
	BorderColor *string
	BorderWidth *float64
	Radius      *float64
	Shadow      *bool
	FontSize    *float64
	FontWeight  *string
	TextColor   *string
	Align       *TextAlign
}

// Apply returns s with the patch applied.
func (p StylePatch) Apply(s Style) Style {
	if p.Background != nil {
		s.Background = *p.Background
	}
	if p.BorderColor != nil {
		s.BorderColor = *p.BorderColor
	}
	if p.BorderWidth != nil {
		s.BorderWidth = *p.BorderWidth
	}
	if p.Radius != nil {
		s.Radius = *p.Radius
	}
	if p.Shadow != nil {
		s.Shadow = *p.Shadow
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
	if p.TextColor != nil {
		s.TextColor = *p.TextColor
	}
	if p.Align != nil {
		s.Align = *p.Align
	}
	return s
}

// Section is a sub-zone with its own content and style.
type Section struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Content string `json:"content,omitempty"`
	Style   Style  `json:"style"`
}

// Zone is a titled region of a structured board. ColSpan and RowSpan place it
// on the structure's grid; zero means one.
type Zone struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Content      string    `json:"content,omitempty"`
	Style        Style     `json:"style"`
	ContentStyle Style     `json:"contentStyle"`
	ColSpan      int       `json:"colSpan,omitempty"`
	RowSpan      int       `json:"rowSpan,omitempty"`
	Sections     []Section `json:"sections,omitempty"`
}

// Section returns the section with the given id, or nil.
func (z *Zone) Section(id string) *Section {
	for i := range z.Sections {
		if z.Sections[i].ID == id {
			return &z.Sections[i]
		}
	}
	return nil
}

// Structure is the zoned layout attached to a board. TemplateID is empty for
// anonymous, one-off structures.
type Structure struct {
	TemplateID string `json:"templateId,omitempty"`
	Name       string `json:"name,omitempty"`
	Columns    int    `json:"columns"`
	Zones      []Zone `json:"zones"`
}

// Clone returns a deep copy. Clone of nil is nil.
func (s *Structure) Clone() *Structure {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Zones = make([]Zone, len(s.Zones))
	for i, z := range s.Zones {
		z.Sections = slices.Clone(z.Sections)
		cp.Zones[i] = z
	}
	return &cp
}

// Zone returns the zone with the given id, or nil.
func (s *Structure) Zone(id string) *Zone {
	if s == nil {
		return nil
	}
	for i := range s.Zones {
		if s.Zones[i].ID == id {
			return &s.Zones[i]
		}
	}
	return nil
}

// zoneIndex returns the index of zone id, or -1.
func (s *Structure) zoneIndex(id string) int {
	for i := range s.Zones {
		if s.Zones[i].ID == id {
			return i
		}
	}
	return -1
}

// columns returns the effective column count.
func (s *Structure) columns() int {
	if s.Columns < 1 {
		return 1
	}
	return s.Columns
}

// Validate checks id uniqueness: zone ids within the structure and section
// ids within each zone. Section ids may not shadow DefaultSectionID.
func (s *Structure) Validate() error {
	if s == nil {
		return nil
	}
	zones := make(map[string]bool, len(s.Zones))
	for _, z := range s.Zones {
		if z.ID == "" {
			return fmt.Errorf("barboard: zone %q has an empty id", z.Label)
		}
		if zones[z.ID] {
			return fmt.Errorf("barboard: duplicate zone id %q", z.ID)
		}
		zones[z.ID] = true
		sections := make(map[string]bool, len(z.Sections))
		for _, sec := range z.Sections {
			if sec.ID == "" || sec.ID == DefaultSectionID {
				return fmt.Errorf("barboard: zone %q has an invalid section id %q", z.ID, sec.ID)
			}
			if sections[sec.ID] {
				return fmt.Errorf("barboard: zone %q has duplicate section id %q", z.ID, sec.ID)
			}
			sections[sec.ID] = true
		}
	}
	return nil
}

// uniqueZoneID returns base, or base-2, base-3... whichever is free.
func (s *Structure) uniqueZoneID(base string) string {
	if s.Zone(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		id := fmt.Sprintf("%s-%d", base, i)
		if s.Zone(id) == nil {
			return id
		}
	}
}

// uniqueSectionID returns a section id free within z.
func (z *Zone) uniqueSectionID(base string) string {
	if base != DefaultSectionID && z.Section(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		id := fmt.Sprintf("%s-%d", base, i)
		if z.Section(id) == nil {
			return id
		}
	}
}
