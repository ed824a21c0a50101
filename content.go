package barboard

import "slices"

// Content is the kind-specific payload of a Node. Implementations are the
// pointer types in this file; the set is closed by the unexported clone method.
type Content interface {
	Kind() NodeKind
	clone() Content
}

// TextContent is a freeform text block.
type TextContent struct {
	Text       string    `json:"text"`
	FontSize   float64   `json:"fontSize,omitempty"`
	FontWeight string    `json:"fontWeight,omitempty"`
	Align      TextAlign `json:"align,omitempty"`
	Color      string    `json:"color,omitempty"`
	Background string    `json:"background,omitempty"`
}

func (*TextContent) Kind() NodeKind { return KindText }
func (c *TextContent) clone() Content {
	cp := *c
	return &cp
}

// Gradient is a two-stop linear fill.
type Gradient struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Vertical bool   `json:"vertical,omitempty"`
}

// Shape names understood by the renderer.
const (
	ShapeRect      = "rect"
	ShapeRoundRect = "roundrect"
	ShapeEllipse   = "ellipse"
)

// ShapeContent is a filled and optionally stroked primitive.
type ShapeContent struct {
	Shape       string    `json:"shape"`
	Fill        string    `json:"fill,omitempty"`
	BorderColor string    `json:"borderColor,omitempty"`
	BorderWidth float64   `json:"borderWidth,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
	Gradient    *Gradient `json:"gradient,omitempty"`
	Label       string    `json:"label,omitempty"`
}

func (*ShapeContent) Kind() NodeKind { return KindShape }
func (c *ShapeContent) clone() Content {
	cp := *c
	if c.Gradient != nil {
		g := *c.Gradient
		cp.Gradient = &g
	}
	return &cp
}

// LineContent draws from the node's top-left to its bottom-right corner, or
// bottom-left to top-right when Rising is set.
type LineContent struct {
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Rising bool    `json:"rising,omitempty"`
}

func (*LineContent) Kind() NodeKind { return KindLine }
func (c *LineContent) clone() Content {
	cp := *c
	return &cp
}

// IconContent is a single glyph on a round badge.
type IconContent struct {
	Glyph string `json:"glyph"`
	Color string `json:"color,omitempty"`
	Fill  string `json:"fill,omitempty"`
}

func (*IconContent) Kind() NodeKind { return KindIcon }
func (c *IconContent) clone() Content {
	cp := *c
	return &cp
}

// ImageContent references an image by URL. Image loading belongs to the host.
type ImageContent struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

func (*ImageContent) Kind() NodeKind { return KindImage }
func (c *ImageContent) clone() Content {
	cp := *c
	return &cp
}

// BoardContent is a container board. Structure, when set, divides the board
// into zones; it is owned exclusively by this board.
type BoardContent struct {
	Title      string     `json:"title"`
	Background string     `json:"background,omitempty"`
	Accent     string     `json:"accent,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Structure  *Structure `json:"structure,omitempty"`
}

func (*BoardContent) Kind() NodeKind { return KindBoard }
func (c *BoardContent) clone() Content {
	cp := *c
	cp.Structure = c.Structure.Clone()
	return &cp
}

// GroupContent lists the nodes a group visually aggregates. Membership is
// one-directional: children carry no pointer back to their group.
type GroupContent struct {
	ChildrenIDs []NodeID `json:"childrenIds"`
	Label       string   `json:"label,omitempty"`
}

func (*GroupContent) Kind() NodeKind { return KindGroup }
func (c *GroupContent) clone() Content {
	cp := *c
	cp.ChildrenIDs = slices.Clone(c.ChildrenIDs)
	return &cp
}

// IngredientRefContent points at an ingredient in the external catalog.
type IngredientRefContent struct {
	IngredientID string `json:"ingredientId"`
}

func (*IngredientRefContent) Kind() NodeKind { return KindIngredientRef }
func (c *IngredientRefContent) clone() Content {
	cp := *c
	return &cp
}

// RecipeRefContent points at a recipe in the external catalog.
type RecipeRefContent struct {
	RecipeID string `json:"recipeId"`
}

func (*RecipeRefContent) Kind() NodeKind { return KindRecipeRef }
func (c *RecipeRefContent) clone() Content {
	cp := *c
	return &cp
}

// CostingSingleContent shows the costing of one recipe, optionally at a
// hypothetical sale price.
type CostingSingleContent struct {
	RecipeID          string  `json:"recipeId"`
	SalePriceOverride float64 `json:"salePriceOverride,omitempty"`
}

func (*CostingSingleContent) Kind() NodeKind { return KindCostingSingle }
func (c *CostingSingleContent) clone() Content {
	cp := *c
	return &cp
}

// CostingScenarioContent aggregates the costing of several recipes.
type CostingScenarioContent struct {
	Name      string   `json:"name"`
	RecipeIDs []string `json:"recipeIds"`
}

func (*CostingScenarioContent) Kind() NodeKind { return KindCostingScenario }
func (c *CostingScenarioContent) clone() Content {
	cp := *c
	cp.RecipeIDs = slices.Clone(c.RecipeIDs)
	return &cp
}

// MenuItemContent is a single menu entry. Price overrides the recipe's own
// sale price when positive.
type MenuItemContent struct {
	RecipeID    string  `json:"recipeId"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

func (*MenuItemContent) Kind() NodeKind { return KindMenuItem }
func (c *MenuItemContent) clone() Content {
	cp := *c
	return &cp
}

// MenuDesignContent lays out several recipes as a printed menu.
type MenuDesignContent struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	RecipeIDs []string `json:"recipeIds"`
	Columns   int      `json:"columns,omitempty"`
	Accent    string   `json:"accent,omitempty"`
}

func (*MenuDesignContent) Kind() NodeKind { return KindMenuDesign }
func (c *MenuDesignContent) clone() Content {
	cp := *c
	cp.RecipeIDs = slices.Clone(c.RecipeIDs)
	return &cp
}

// newContent returns an empty payload for kind, or nil for an unknown kind.
func newContent(kind NodeKind) Content {
	switch kind {
	case KindText:
		return &TextContent{}
	case KindShape:
		return &ShapeContent{}
	case KindLine:
		return &LineContent{}
	case KindIcon:
		return &IconContent{}
	case KindImage:
		return &ImageContent{}
	case KindBoard:
		return &BoardContent{}
	case KindGroup:
		return &GroupContent{}
	case KindIngredientRef:
		return &IngredientRefContent{}
	case KindRecipeRef:
		return &RecipeRefContent{}
	case KindCostingSingle:
		return &CostingSingleContent{}
	case KindCostingScenario:
		return &CostingScenarioContent{}
	case KindMenuItem:
		return &MenuItemContent{}
	case KindMenuDesign:
		return &MenuDesignContent{}
	}
	return nil
}

// cloneContent deep-copies c, tolerating nil.
func cloneContent(c Content) Content {
	if c == nil {
		return nil
	}
	return c.clone()
}
