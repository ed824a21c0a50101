package barboard

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	Debug   bool

	// ScreenshotDir receives PNGs for script "screenshot" steps.
	ScreenshotDir string
	// ThumbnailDir receives thumbnails requested through the store. Empty
	// disables thumbnail capture.
	ThumbnailDir string

	// Script, when set, is played against the board before real input.
	Script *Script
	// Clipboard mirrors copy and paste. Nil keeps them inside the store.
	Clipboard Clipboard
	// EventSink receives gesture events.
	EventSink EventSink
	// Theme overrides the default colors.
	Theme *Theme
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Title == "" {
		c.Title = "barboard"
	}
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 800
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	return c
}

// doubleClickInterval is the longest gap between two clicks that still
// counts as a double click.
const doubleClickInterval = 400 * time.Millisecond

// wheelLineDelta converts an ebiten wheel step to the pixel delta expected
// by InteractionManager.Wheel.
const wheelLineDelta = 100

// Run opens a window showing the board held by store and blocks until it is
// closed. bridge may be nil when no domain catalogs are loaded.
func Run(store *Store, bridge *DataBridge, cfg RunConfig) error {
	cfg = cfg.withDefaults()
	g, err := newGame(store, bridge, cfg)
	if err != nil {
		return err
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("barboard: run: %w", err)
	}
	return nil
}

// game adapts a board to ebiten.Game.
type game struct {
	store    *Store
	surface  *EbitenSurface
	renderer *Renderer
	loop     *FrameLoop
	input    *InteractionManager
	injector *Injector
	script   *Script
	shots    screenshotter
	fps      *fpsOverlay

	width, height int
	inside        bool
	lastClick     time.Time
	lastClickPos  image.Point
}

func newGame(store *Store, bridge *DataBridge, cfg RunConfig) (*game, error) {
	surf, err := NewEbitenSurface(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	r := NewRenderer()
	if cfg.Theme != nil {
		r.Theme = *cfg.Theme
	}
	if err := r.Attach(surf); err != nil {
		return nil, err
	}

	var data ExternalLookup
	if bridge != nil {
		data = bridge
	}
	loop := NewFrameLoop(store, r, data)
	loop.SetDebugMode(cfg.Debug)
	store.SetDebugMode(cfg.Debug)
	if cfg.ThumbnailDir != "" {
		loop.OnThumbnail(ThumbnailWriter(cfg.ThumbnailDir, data, DefaultThumbnailWidth, DefaultThumbnailHeight))
	}

	im := NewInteractionManager(store)
	im.SetClipboard(cfg.Clipboard)
	im.SetEventSink(cfg.EventSink)

	g := &game{
		store:    store,
		surface:  surf,
		renderer: r,
		loop:     loop,
		input:    im,
		injector: NewInjector(im),
		script:   cfg.Script,
		shots:    screenshotter{dir: cfg.ScreenshotDir},
		width:    cfg.Width,
		height:   cfg.Height,
	}
	if g.script != nil {
		g.script.OnScreenshot = g.shots.request
	}
	if cfg.ShowFPS {
		g.fps = &fpsOverlay{}
	}
	return g, nil
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	if g.script != nil {
		g.script.Step(g.injector, g.store)
	}
	if !g.injector.Process() {
		g.processInput()
	}
	dt := time.Duration(float64(time.Second) / float64(ebiten.TPS()))
	if err := g.loop.Step(dt); err != nil {
		return err
	}
	if g.fps != nil {
		g.fps.update(dt.Seconds(), g.store.Snapshot(), g.renderer.Stats())
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.surface.Image(), nil)
	if r, ok := g.input.Marquee(); ok {
		g.drawMarquee(screen, r)
	}
	if g.fps != nil {
		g.fps.draw(screen)
	}
	g.shots.flush(screen)
}

// Layout implements ebiten.Game.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		if err := g.renderer.Resize(outsideWidth, outsideHeight, 1); err == nil {
			g.width, g.height = outsideWidth, outsideHeight
		}
	}
	return g.width, g.height
}

// drawMarquee outlines the rubber band directly on the screen.
func (g *game) drawMarquee(screen *ebiten.Image, r Rect) {
	v := g.store.Snapshot().Viewport
	x0, y0 := v.WorldToScreen(r.X, r.Y)
	x1, y1 := v.WorldToScreen(r.X+r.Width, r.Y+r.Height)
	sel := g.renderer.Theme.Selection
	fill := ebiten.NewImage(max(int(math.Round(x1-x0)), 1), max(int(math.Round(y1-y0)), 1))
	defer fill.Deallocate()
	fill.Fill(sel.WithAlpha(0.12).RGBA())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x0, y0)
	screen.DrawImage(fill, op)
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

var ebitenButtons = [...]struct {
	native ebiten.MouseButton
	button MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

var ebitenKeys = map[ebiten.Key]Key{
	ebiten.KeyDelete:     KeyDelete,
	ebiten.KeyBackspace:  KeyBackspace,
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyA:          KeyA,
	ebiten.KeyC:          KeyC,
	ebiten.KeyG:          KeyG,
	ebiten.KeyV:          KeyV,
	ebiten.KeyX:          KeyX,
	ebiten.KeyArrowLeft:  KeyArrowLeft,
	ebiten.KeyArrowRight: KeyArrowRight,
	ebiten.KeyArrowUp:    KeyArrowUp,
	ebiten.KeyArrowDown:  KeyArrowDown,
}

// processInput translates this frame's ebiten input into manager calls.
func (g *game) processInput() {
	mods := readModifiers()
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)
	inside := image.Pt(mx, my).In(image.Rect(0, 0, g.width, g.height))

	pressed := false
	for _, b := range ebitenButtons {
		if inpututil.IsMouseButtonJustPressed(b.native) && inside {
			g.input.PointerDown(sx, sy, b.button, mods)
		}
		if inpututil.IsMouseButtonJustReleased(b.native) {
			g.input.PointerUp(sx, sy, mods)
			if b.button == MouseButtonLeft {
				g.detectDoubleClick(mx, my, mods)
			}
		}
		pressed = pressed || ebiten.IsMouseButtonPressed(b.native)
	}

	switch {
	case inside:
		g.input.PointerMove(sx, sy, mods)
	case g.inside && !pressed:
		g.input.PointerLeave()
	}
	g.inside = inside

	if _, wy := ebiten.Wheel(); wy != 0 && inside {
		g.input.Wheel(sx, sy, 0, -wy*wheelLineDelta, mods)
	}

	for native, key := range ebitenKeys {
		if inpututil.IsKeyJustPressed(native) {
			g.input.KeyDown(key, mods)
		}
	}
}

func (g *game) detectDoubleClick(mx, my int, mods KeyModifiers) {
	now := time.Now()
	p := image.Pt(mx, my)
	d := p.Sub(g.lastClickPos)
	if now.Sub(g.lastClick) <= doubleClickInterval && d.X*d.X+d.Y*d.Y <= DragDeadZone*DragDeadZone {
		g.input.DoubleClick(float64(mx), float64(my), mods)
		g.lastClick = time.Time{}
		return
	}
	g.lastClick = now
	g.lastClickPos = p
}
