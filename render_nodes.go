package barboard

import (
	"fmt"
	"strings"
)

// Node drawing metrics in world units.
const (
	textPadding     = 8
	defaultFontSize = 16
	cardHeaderSize  = 15
	cardBodySize    = 12
	defaultRadius   = 10
	zoneLabelSize   = 12
)

func (r *Renderer) drawNode(n *Node, data ExternalLookup) {
	b := n.Bounds()
	switch c := n.Content.(type) {
	case *TextContent:
		r.drawText(b, c)
	case *ShapeContent:
		r.drawShape(b, c)
	case *LineContent:
		r.drawLine(b, c)
	case *IconContent:
		r.drawIcon(b, c)
	case *ImageContent:
		r.drawImagePlaceholder(b, c)
	case *BoardContent:
		r.drawBoard(n, b, c)
	case *GroupContent:
		r.drawGroup(b, c)
	default:
		entry, _ := data.Lookup(n.ID)
		r.drawDomainCard(b, n.Content, entry)
	}
}

// fontFor maps a CSS-like weight to a font face.
func fontFor(size float64, weight string) FontSpec {
	if size <= 0 {
		size = defaultFontSize
	}
	bold := false
	switch strings.ToLower(weight) {
	case "bold", "bolder", "600", "700", "800", "900":
		bold = true
	}
	return FontSpec{Size: size, Bold: bold}
}

func (r *Renderer) measureWidth(f FontSpec) func(string) float64 {
	return func(s string) float64 {
		w, _ := r.surface.MeasureText(s, f)
		return w
	}
}

func (r *Renderer) lineHeight(f FontSpec) float64 {
	_, h := r.surface.MeasureText("Ag", f)
	if h <= 0 {
		h = f.Size * 1.25
	}
	return h
}

// textBlock wraps s inside area and draws as many lines as fit. It returns
// the height used.
func (r *Renderer) textBlock(area Rect, s string, f FontSpec, c Color, align TextAlign) float64 {
	if s == "" || area.Width <= 0 || area.Height <= 0 {
		return 0
	}
	lh := r.lineHeight(f)
	maxLines := int(area.Height / lh)
	if maxLines < 1 {
		return 0
	}
	measure := r.measureWidth(f)
	lines := clipLines(wrapText(s, area.Width, measure), maxLines)
	for i, line := range lines {
		x := area.X
		switch align {
		case TextAlignCenter:
			x += (area.Width - measure(line)) / 2
		case TextAlignRight:
			x += area.Width - measure(line)
		}
		r.surface.Text(line, x, area.Y+float64(i)*lh, f, c)
	}
	return float64(len(lines)) * lh
}

func (r *Renderer) drawText(b Rect, c *TextContent) {
	if bg, ok := ParseHexColor(c.Background); ok {
		r.surface.FillRect(b, 4, bg)
	}
	f := fontFor(c.FontSize, c.FontWeight)
	r.textBlock(b.Inset(textPadding), c.Text, f, colorOr(c.Color, r.Theme.Text), c.Align)
}

func (r *Renderer) drawShape(b Rect, c *ShapeContent) {
	fill := colorOr(c.Fill, r.Theme.NodeFill)
	border, hasBorder := ParseHexColor(c.BorderColor)
	if c.BorderWidth > 0 && !hasBorder {
		border, hasBorder = r.Theme.NodeBorder, true
	}
	switch c.Shape {
	case ShapeEllipse:
		r.surface.FillEllipse(b, fill)
		if hasBorder && c.BorderWidth > 0 {
			r.surface.StrokeEllipse(b, c.BorderWidth, border)
		}
	default:
		radius := c.Radius
		if c.Shape == ShapeRoundRect && radius <= 0 {
			radius = defaultRadius
		}
		if g := c.Gradient; g != nil {
			r.surface.FillGradient(b, radius, colorOr(g.From, fill), colorOr(g.To, fill), g.Vertical)
		} else {
			r.surface.FillRect(b, radius, fill)
		}
		if hasBorder && c.BorderWidth > 0 {
			r.surface.StrokeRect(b, radius, c.BorderWidth, border)
		}
	}
	if c.Label != "" {
		f := fontFor(defaultFontSize, "bold")
		lh := r.lineHeight(f)
		area := b.Inset(textPadding)
		if area.Height > lh {
			area.Y += (area.Height - lh) / 2
			area.Height = lh
		}
		r.textBlock(area, c.Label, f, r.Theme.Text, TextAlignCenter)
	}
}

func (r *Renderer) drawLine(b Rect, c *LineContent) {
	w := c.Width
	if w <= 0 {
		w = 2
	}
	from := Vec2{b.X, b.Y}
	to := Vec2{b.X + b.Width, b.Y + b.Height}
	if c.Rising {
		from = Vec2{b.X, b.Y + b.Height}
		to = Vec2{b.X + b.Width, b.Y}
	}
	r.surface.Line(from, to, w, colorOr(c.Color, r.Theme.Text))
}

func (r *Renderer) drawIcon(b Rect, c *IconContent) {
	r.surface.FillEllipse(b, colorOr(c.Fill, r.Theme.Accent))
	size := min(b.Width, b.Height) * 0.5
	f := FontSpec{Size: size, Bold: true}
	w, h := r.surface.MeasureText(c.Glyph, f)
	r.surface.Text(c.Glyph, b.X+(b.Width-w)/2, b.Y+(b.Height-h)/2, f, colorOr(c.Color, ColorWhite))
}

func (r *Renderer) drawImagePlaceholder(b Rect, c *ImageContent) {
	r.surface.FillRect(b, 4, r.Theme.Grid.WithAlpha(0.5))
	r.surface.StrokeRect(b, 4, 1, r.Theme.NodeBorder)
	r.surface.Line(Vec2{b.X, b.Y}, Vec2{b.X + b.Width, b.Y + b.Height}, 1, r.Theme.NodeBorder)
	r.surface.Line(Vec2{b.X, b.Y + b.Height}, Vec2{b.X + b.Width, b.Y}, 1, r.Theme.NodeBorder)
	if c.Caption != "" {
		f := fontFor(cardBodySize, "")
		lh := r.lineHeight(f)
		r.textBlock(Rect{X: b.X + 4, Y: b.Y + b.Height - lh - 4, Width: b.Width - 8, Height: lh}, c.Caption, f, r.Theme.Text, TextAlignCenter)
	}
}

func (r *Renderer) drawGroup(b Rect, c *GroupContent) {
	r.surface.FillRect(b, 6, r.Theme.Selection.WithAlpha(0.04))
	r.surface.StrokeRect(b, 6, 1, r.Theme.Selection.WithAlpha(0.35))
	if c.Label != "" {
		f := fontFor(cardBodySize, "bold")
		r.surface.Text(c.Label, b.X+4, b.Y-r.lineHeight(f)-2, f, r.Theme.MutedText)
	}
}

func (r *Renderer) drawBoard(n *Node, b Rect, c *BoardContent) {
	accent := colorOr(c.Accent, r.Theme.BoardHeader)
	if !n.Collapsed {
		r.surface.FillRect(Rect{X: b.X + 3, Y: b.Y + 4, Width: b.Width, Height: b.Height}, defaultRadius, ColorBlack.WithAlpha(0.08))
		r.surface.FillRect(b, defaultRadius, colorOr(c.Background, r.Theme.BoardFill))
		r.surface.StrokeRect(b, defaultRadius, 1, r.Theme.NodeBorder.WithAlpha(0.6))
	}
	header := Rect{X: b.X, Y: b.Y, Width: b.Width, Height: BoardHeaderHeight}
	r.surface.FillRect(header, defaultRadius, accent)
	f := fontFor(cardHeaderSize, "bold")
	title := c.Title
	if title == "" {
		title = "Board"
	}
	hl := r.lineHeight(f)
	r.textBlock(Rect{X: header.X + 12, Y: header.Y + (header.Height-hl)/2, Width: header.Width - 24, Height: hl}, title, f, ColorWhite, TextAlignLeft)
	if n.Collapsed {
		return
	}
	body := BoardBodyRect(b)
	if c.Structure == nil {
		r.textBlock(body, c.Notes, fontFor(14, ""), r.Theme.Text, TextAlignLeft)
		return
	}
	for i, zr := range LayoutZones(c.Structure, body) {
		r.drawZone(zr, c.Structure.Zones[i])
	}
}

func (r *Renderer) styleBox(rect Rect, st Style, defFill Color) {
	if st.Shadow {
		r.surface.FillRect(Rect{X: rect.X + 2, Y: rect.Y + 3, Width: rect.Width, Height: rect.Height}, st.Radius, ColorBlack.WithAlpha(0.10))
	}
	r.surface.FillRect(rect, st.Radius, colorOr(st.Background, defFill))
	if st.BorderWidth > 0 {
		r.surface.StrokeRect(rect, st.Radius, st.BorderWidth, colorOr(st.BorderColor, r.Theme.NodeBorder))
	}
}

// drawZone paints one laid-out zone. zr.Sections lines up with the default
// content section followed by z.Sections.
func (r *Renderer) drawZone(zr ZoneRect, z Zone) {
	r.styleBox(zr.Rect, z.Style, r.Theme.Background)
	lf := fontFor(max(z.Style.FontSize, zoneLabelSize), z.Style.FontWeight)
	if z.Style.FontWeight == "" {
		lf.Bold = true
	}
	label := Rect{X: zr.Label.X + zonePadding, Y: zr.Label.Y + 4, Width: zr.Label.Width - 2*zonePadding, Height: zr.Label.Height - 4}
	r.textBlock(label, z.Label, lf, colorOr(z.Style.TextColor, r.Theme.Text), z.Style.Align)

	for i, sr := range zr.Sections {
		if i == 0 {
			cs := z.ContentStyle
			r.textBlock(sr.Rect.Inset(2), z.Content, fontFor(cs.FontSize, cs.FontWeight), colorOr(cs.TextColor, r.Theme.Text), cs.Align)
			continue
		}
		sec := z.Sections[i-1]
		r.styleBox(sr.Rect, sec.Style, r.Theme.BoardFill)
		area := sr.Rect.Inset(4)
		hf := fontFor(cardBodySize, "bold")
		used := r.textBlock(area, sec.Label, hf, colorOr(sec.Style.TextColor, r.Theme.MutedText), sec.Style.Align)
		area.Y += used
		area.Height -= used
		r.textBlock(area, sec.Content, fontFor(sec.Style.FontSize, sec.Style.FontWeight), colorOr(sec.Style.TextColor, r.Theme.Text), sec.Style.Align)
	}
}

// cardLine is one row of a domain card.
type cardLine struct {
	text  string
	color Color
}

// drawDomainCard renders the read-only summary of a domain node.
func (r *Renderer) drawDomainCard(b Rect, c Content, e ExternalEntry) {
	title, lines, status := r.cardContent(c, e)
	r.surface.FillRect(b, 8, r.Theme.CardFill)
	r.surface.StrokeRect(b, 8, 1, r.Theme.NodeBorder.WithAlpha(0.7))
	r.surface.FillRect(Rect{X: b.X, Y: b.Y, Width: 4, Height: b.Height}, 0, status)

	area := b.Inset(textPadding)
	area.X += 2
	area.Width -= 2
	hf := fontFor(cardHeaderSize, "bold")
	used := r.textBlock(area, title, hf, r.Theme.Text, TextAlignLeft)
	area.Y += used + 4
	area.Height -= used + 4
	bf := fontFor(cardBodySize, "")
	lh := r.lineHeight(bf)
	for _, l := range lines {
		if area.Height < lh {
			break
		}
		r.textBlock(Rect{X: area.X, Y: area.Y, Width: area.Width, Height: lh}, l.text, bf, l.color, TextAlignLeft)
		area.Y += lh
		area.Height -= lh
	}
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

// cardContent builds the title, body rows and status color of a domain card.
func (r *Renderer) cardContent(c Content, e ExternalEntry) (string, []cardLine, Color) {
	t := r.Theme
	muted := func(s string, args ...any) cardLine { return cardLine{fmt.Sprintf(s, args...), t.MutedText} }
	plain := func(s string, args ...any) cardLine { return cardLine{fmt.Sprintf(s, args...), t.Text} }
	unresolved := []cardLine{muted("not found in catalog")}

	switch c := c.(type) {
	case *IngredientRefContent:
		if e.Ingredient == nil {
			return "Ingredient", unresolved, t.MutedText
		}
		ing := e.Ingredient
		return ing.Name, []cardLine{plain("%s / %s", money(ing.UnitCost), ing.Unit)}, t.Accent
	case *RecipeRefContent:
		if e.Recipe == nil {
			return "Recipe", unresolved, t.MutedText
		}
		lines := []cardLine{muted("%s", e.Recipe.Category)}
		lines = append(lines, r.costingLines(e.Costing)...)
		return e.Recipe.Name, lines, r.costingStatus(e.Costing)
	case *CostingSingleContent:
		if e.Costing == nil {
			return "Costing", unresolved, t.MutedText
		}
		return e.Costing.RecipeName, r.costingLines(e.Costing), r.costingStatus(e.Costing)
	case *CostingScenarioContent:
		name := c.Name
		if name == "" {
			name = "Scenario"
		}
		if e.Scenario == nil {
			return name, []cardLine{muted("no recipes resolved")}, t.MutedText
		}
		return name, r.scenarioLines(e.Scenario), r.scenarioStatus(e.Scenario)
	case *MenuItemContent:
		name := c.Name
		if name == "" && e.Recipe != nil {
			name = e.Recipe.Name
		}
		if name == "" {
			name = "Menu item"
		}
		var lines []cardLine
		if c.Description != "" {
			lines = append(lines, muted("%s", c.Description))
		}
		if e.Costing != nil {
			lines = append(lines, plain("%s", money(e.Costing.SalePrice)))
			lines = append(lines, muted("margin %.0f%%", e.Costing.MarginPercent))
		} else if c.Price > 0 {
			lines = append(lines, plain("%s", money(c.Price)))
		}
		return name, lines, r.costingStatus(e.Costing)
	case *MenuDesignContent:
		title := c.Title
		if title == "" {
			title = "Menu"
		}
		var lines []cardLine
		if c.Subtitle != "" {
			lines = append(lines, muted("%s", c.Subtitle))
		}
		for _, rec := range e.MenuRecipes {
			lines = append(lines, plain("%s  %s", rec.Name, money(rec.SalePrice)))
		}
		if len(e.MenuRecipes) == 0 {
			lines = append(lines, muted("no dishes"))
		}
		return title, lines, colorOr(c.Accent, t.Accent)
	}
	return "", nil, t.MutedText
}

func (r *Renderer) costingLines(d *CostingData) []cardLine {
	if d == nil {
		return nil
	}
	t := r.Theme
	lines := []cardLine{
		{fmt.Sprintf("cost %s  price %s", money(d.Cost), money(d.SalePrice)), t.Text},
		{fmt.Sprintf("margin %s (%.1f%%)", money(d.Margin), d.MarginPercent), r.costingStatus(d)},
	}
	for _, a := range d.Alerts {
		lines = append(lines, cardLine{a.Message, r.alertColor(a.Level)})
	}
	return lines
}

func (r *Renderer) scenarioLines(sd *ScenarioData) []cardLine {
	t := r.Theme
	lines := []cardLine{
		{fmt.Sprintf("%d recipes", len(sd.Recipes)), t.MutedText},
		{fmt.Sprintf("cost %s  revenue %s", money(sd.TotalCost), money(sd.TotalRevenue)), t.Text},
		{fmt.Sprintf("average margin %.1f%%", sd.AverageMargin), r.scenarioStatus(sd)},
	}
	for _, w := range sd.Warnings {
		lines = append(lines, cardLine{w, t.Warning})
	}
	return lines
}

func (r *Renderer) alertColor(l AlertLevel) Color {
	switch l {
	case AlertCritical:
		return r.Theme.Critical
	case AlertWarning:
		return r.Theme.Warning
	}
	return r.Theme.MutedText
}

// costingStatus colors a costing by its worst alert.
func (r *Renderer) costingStatus(d *CostingData) Color {
	if d == nil {
		return r.Theme.MutedText
	}
	worst := AlertInfo
	for _, a := range d.Alerts {
		worst = max(worst, a.Level)
	}
	if worst == AlertInfo {
		return r.Theme.Good
	}
	return r.alertColor(worst)
}

func (r *Renderer) scenarioStatus(sd *ScenarioData) Color {
	switch {
	case sd.AverageMargin < CriticalMarginPercent:
		return r.Theme.Critical
	case sd.LowMarginCount > 0 || sd.MissingIngredients > 0:
		return r.Theme.Warning
	}
	return r.Theme.Good
}
