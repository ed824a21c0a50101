package barboard

import (
	"fmt"
	"image"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// screenshotter saves the host window once per queued label at the end of a
// frame. Files go through saveImage, like thumbnails.
type screenshotter struct {
	dir   string
	queue []string
}

// request queues a labeled screenshot for the end of the current frame.
func (s *screenshotter) request(label string) {
	s.queue = append(s.queue, label)
}

// flush reads screen back once and saves it under every queued label.
func (s *screenshotter) flush(screen *ebiten.Image) {
	if len(s.queue) == 0 {
		return
	}
	// ReadPixels yields premultiplied RGBA, the layout of image.RGBA.
	img := image.NewRGBA(screen.Bounds())
	screen.ReadPixels(img.Pix)
	for _, label := range s.queue {
		if err := saveImage(s.dir, label, "shot", img); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[barboard] screenshot %q: %v\n", label, err)
		}
	}
	s.queue = s.queue[:0]
}
