package barboard

import (
	"maps"
	"slices"
)

// Template is a named, reusable structure. Built-in templates are part of the
// package and cannot be overwritten; user templates live in the Store.
type Template struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	BuiltIn   bool       `json:"builtIn,omitempty"`
	Structure *Structure `json:"structure"`
}

func (t Template) clone() Template {
	t.Structure = t.Structure.Clone()
	return t
}

var (
	headerStyle = Style{Background: "#1f2430", BorderColor: "#39414f", BorderWidth: 1, Radius: 6, FontSize: 14, FontWeight: "bold", TextColor: "#f5f5f5"}
	bodyStyle   = Style{Background: "#262b36", FontSize: 13, TextColor: "#d8dce3"}
)

func zone(id, label string, colSpan int, sections ...string) Zone {
	z := Zone{ID: id, Label: label, Style: headerStyle, ContentStyle: bodyStyle, ColSpan: colSpan}
	for _, sec := range sections {
		z.Sections = append(z.Sections, Section{
			ID:    slug(sec, "section"),
			Label: sec,
			Style: bodyStyle,
		})
	}
	return z
}

func accentZone(z Zone, background string) Zone {
	z.Style.Background = background
	return z
}

// builtinTemplates is the fixed catalog, indexed by id.
var builtinTemplates = map[string]Template{
	"kanban": {
		ID: "kanban", Name: "Kanban", BuiltIn: true,
		Structure: &Structure{TemplateID: "kanban", Name: "Kanban", Columns: 3, Zones: []Zone{
			zone("todo", "To do", 1),
			zone("doing", "In progress", 1),
			zone("done", "Done", 1),
		}},
	},
	"prep-board": {
		ID: "prep-board", Name: "Prep board", BuiltIn: true,
		Structure: &Structure{TemplateID: "prep-board", Name: "Prep board", Columns: 3, Zones: []Zone{
			zone("mise", "Mise en place", 1, "AM", "PM"),
			zone("batches", "Syrups & batches", 1, "AM", "PM"),
			zone("garnish", "Garnish", 1),
			zone("notes", "Notes", 3),
		}},
	},
	"menu-engineering": {
		ID: "menu-engineering", Name: "Menu engineering", BuiltIn: true,
		Structure: &Structure{TemplateID: "menu-engineering", Name: "Menu engineering", Columns: 2, Zones: []Zone{
			accentZone(zone("stars", "Stars", 1), "#2e4d2e"),
			accentZone(zone("plowhorses", "Plowhorses", 1), "#4d462e"),
			accentZone(zone("puzzles", "Puzzles", 1), "#2e3d4d"),
			accentZone(zone("dogs", "Dogs", 1), "#4d2e2e"),
		}},
	},
	"costing-review": {
		ID: "costing-review", Name: "Costing review", BuiltIn: true,
		Structure: &Structure{TemplateID: "costing-review", Name: "Costing review", Columns: 2, Zones: []Zone{
			zone("drivers", "Cost drivers", 1),
			zone("margin", "Margin", 1),
			zone("actions", "Actions", 2, "Owner", "Due"),
		}},
	},
	"weekly-specials": {
		ID: "weekly-specials", Name: "Weekly specials", BuiltIn: true,
		Structure: &Structure{TemplateID: "weekly-specials", Name: "Weekly specials", Columns: 3, Zones: []Zone{
			zone("cocktail", "Cocktail", 1),
			zone("food", "Food", 1),
			zone("promo", "Promo", 1),
			zone("costs", "Cost notes", 3),
		}},
	},
}

// BuiltinTemplates returns copies of the built-in templates sorted by id.
func BuiltinTemplates() []Template {
	out := make([]Template, 0, len(builtinTemplates))
	for _, id := range slices.Sorted(maps.Keys(builtinTemplates)) {
		out = append(out, builtinTemplates[id].clone())
	}
	return out
}

// Templates returns the built-in templates followed by the user-saved ones.
// The returned templates are copies.
func (s *Store) Templates() []Template {
	out := BuiltinTemplates()
	for _, t := range s.scene.Templates {
		out = append(out, t.clone())
	}
	return out
}

// Template looks up a built-in or user-saved template by id.
func (s *Store) Template(id string) (Template, bool) {
	if t, ok := builtinTemplates[id]; ok {
		return t.clone(), true
	}
	for _, t := range s.scene.Templates {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Template{}, false
}

// SaveTemplate stores a copy of st as a user template and mirrors it to the
// persistence adapter. When st.TemplateID names an existing user template, that
// template is replaced; otherwise a new id is assigned. It returns the
// template id, or "" when st is nil or invalid.
func (s *Store) SaveTemplate(st *Structure) string {
	if st == nil || st.Validate() != nil {
		return ""
	}
	cur := s.scene
	t := Template{ID: st.TemplateID, Name: st.Name, Structure: st.Clone()}
	if t.Name == "" {
		t.Name = "Untitled template"
	}
	i := slices.IndexFunc(cur.Templates, func(u Template) bool { return u.ID == t.ID })
	if t.ID == "" || i < 0 {
		t.ID = "tpl-" + string(newNodeID())
		i = -1
	}
	t.Structure.TemplateID = t.ID
	t.Structure.Name = t.Name

	next := cur.shallow()
	next.Templates = slices.Clone(cur.Templates)
	if i >= 0 {
		next.Templates[i] = t
	} else {
		next.Templates = append(next.Templates, t)
	}
	s.commit(next, Change{Op: OpTemplates})
	if s.persistence != nil {
		s.persistence.PersistTemplate(t.clone())
	}
	return t.ID
}

// LoadTemplates installs previously persisted user templates, replacing the
// current ones. Invalid or built-in entries are skipped. Nothing is mirrored
// back to persistence.
func (s *Store) LoadTemplates(ts []Template) {
	cur := s.scene
	next := cur.shallow()
	next.Templates = make([]Template, 0, len(ts))
	for _, t := range ts {
		if t.ID == "" || t.Structure == nil || t.Structure.Validate() != nil {
			continue
		}
		if _, builtin := builtinTemplates[t.ID]; builtin {
			continue
		}
		t.BuiltIn = false
		next.Templates = append(next.Templates, t.clone())
	}
	s.commit(next, Change{Op: OpTemplates})
}

// ApplyTemplate attaches a deep copy of the template's structure to a board.
// Unknown boards or templates are ignored.
func (s *Store) ApplyTemplate(nodeID NodeID, templateID string) bool {
	n := s.scene.Nodes[nodeID]
	if n == nil || n.board() == nil {
		return false
	}
	t, ok := s.Template(templateID)
	if !ok {
		return false
	}
	return s.commitStructure(nodeID, t.Structure)
}
