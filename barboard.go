package barboard

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Common colors used by the default theme and tests.
var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// RGBA converts c to a color.NRGBA suitable for image and drawing APIs.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Darken scales the color channels by (1 - amount).
func (c Color) Darken(amount float64) Color {
	k := 1 - clamp01(amount)
	return Color{c.R * k, c.G * k, c.B * k, c.A}
}

// Hex formats c as #rrggbb, or #rrggbbaa when not fully opaque.
func (c Color) Hex() string {
	n := c.RGBA()
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa. The second result is false
// for empty or malformed input.
func ParseHexColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, true
}

// colorOr parses s and falls back to def when s is empty or malformed.
func colorOr(s string, def Color) Color {
	if c, ok := ParseHexColor(s); ok {
		return c
	}
	return def
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inset shrinks the rectangle by d on every side. The result never has a
// negative size.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Normalized returns r with a non-negative width and height, flipping the
// origin when needed. Used for rectangles built from two drag points.
func (r Rect) Normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// NodeKind distinguishes rendering and interaction behavior for a Node.
type NodeKind uint8

const (
	KindText            NodeKind = iota // freeform text block
	KindShape                           // filled/stroked rectangle, rounded rect or ellipse
	KindLine                            // straight line across the node's box
	KindIcon                            // single glyph badge
	KindImage                           // image by URL (placeholder frame)
	KindBoard                           // container board, optionally structured into zones
	KindGroup                           // visual aggregate of other nodes
	KindIngredientRef                   // reference to a catalog ingredient
	KindRecipeRef                       // reference to a catalog recipe
	KindCostingSingle                   // costing summary for one recipe
	KindCostingScenario                 // aggregated costing for a set of recipes
	KindMenuItem                        // single menu entry bound to a recipe
	KindMenuDesign                      // menu layout over several recipes
)

var kindNames = [...]string{
	KindText:            "text",
	KindShape:           "shape",
	KindLine:            "line",
	KindIcon:            "icon",
	KindImage:           "image",
	KindBoard:           "board",
	KindGroup:           "group",
	KindIngredientRef:   "ingredient-ref",
	KindRecipeRef:       "recipe-ref",
	KindCostingSingle:   "costing-single",
	KindCostingScenario: "costing-scenario",
	KindMenuItem:        "menu-item",
	KindMenuDesign:      "menu-design",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseNodeKind is the inverse of NodeKind.String.
func ParseNodeKind(s string) (NodeKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return NodeKind(i), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k NodeKind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("barboard: unknown node kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *NodeKind) UnmarshalText(b []byte) error {
	v, ok := ParseNodeKind(string(b))
	if !ok {
		return fmt.Errorf("barboard: unknown node kind %q", b)
	}
	*k = v
	return nil
}

// Tool is the active canvas tool.
type Tool uint8

const (
	ToolPointer Tool = iota // select, move and resize
	ToolHand                // pan only
	ToolShape               // draw a shape
	ToolText                // place a text block
	ToolLine                // draw a line
	ToolBoard               // draw a container board
)

func (t Tool) String() string {
	switch t {
	case ToolPointer:
		return "pointer"
	case ToolHand:
		return "hand"
	case ToolShape:
		return "shape"
	case ToolText:
		return "text"
	case ToolLine:
		return "line"
	case ToolBoard:
		return "board"
	default:
		return "unknown"
	}
}

// ParseTool is the inverse of Tool.String.
func ParseTool(s string) (Tool, bool) {
	for t := ToolPointer; t <= ToolBoard; t++ {
		if t.String() == strings.ToLower(s) {
			return t, true
		}
	}
	return ToolPointer, false
}

// creates reports whether the tool creates nodes on press.
func (t Tool) creates() bool {
	return t == ToolShape || t == ToolText || t == ToolLine || t == ToolBoard
}

// Mode is the interaction policy of the canvas. Only ModeCreative allows
// rearranging content; the viewing modes keep panning, zooming and selection.
type Mode uint8

const (
	ModeCreative    Mode = iota // full editing
	ModeOperational             // service view: no rearranging
	ModeExecutive               // read-only review
)

func (m Mode) String() string {
	switch m {
	case ModeCreative:
		return "creative"
	case ModeOperational:
		return "operational"
	case ModeExecutive:
		return "executive"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "creative":
		return ModeCreative, true
	case "operational":
		return ModeOperational, true
	case "executive":
		return ModeExecutive, true
	}
	return ModeCreative, false
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// TextAlign controls horizontal text alignment.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // align text to the left edge (default)
	TextAlignCenter                  // center text horizontally
	TextAlignRight                   // align text to the right edge
)
