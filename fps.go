package barboard

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay prints FPS, TPS and the scene size in the top-left corner of
// the window. The text is refreshed about every half second.
type fpsOverlay struct {
	elapsed float64
	text    string
}

func (o *fpsOverlay) update(dt float64, sc *Scene, stats RenderStats) {
	o.elapsed += dt
	if o.text != "" && o.elapsed < 0.5 {
		return
	}
	o.elapsed = 0
	o.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nnodes: %d (%d drawn)\nzoom: %.2f",
		ebiten.ActualFPS(), ebiten.ActualTPS(), len(sc.Nodes), stats.Drawn, sc.Viewport.Zoom)
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, o.text)
}
