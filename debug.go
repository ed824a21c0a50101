package barboard

import (
	"fmt"
	"os"
	"time"
)

// frameStats holds per-frame timing and draw metrics.
// Only reported when the frame loop is in debug mode.
type frameStats struct {
	stepTime   time.Duration
	renderTime time.Duration
	drawn      int
	culled     int
	version    uint64
}

// debugLog prints frame timing and draw counts to stderr.
func (l *FrameLoop) debugLog(stats frameStats) {
	if !l.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[barboard] step: %v | render: %v | total: %v\n",
		stats.stepTime, stats.renderTime, stats.stepTime+stats.renderTime)
	_, _ = fmt.Fprintf(os.Stderr,
		"[barboard] scene v%d | drawn: %d | culled: %d\n",
		stats.version, stats.drawn, stats.culled)
}

// debugf writes one store diagnostic line to stderr in debug mode.
func (s *Store) debugf(format string, args ...any) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[barboard] "+format+"\n", args...)
}

// debugMaxNodes is the scene size above which a warning is printed.
const debugMaxNodes = 5000

// debugCheckSceneSize warns on stderr when a scene grows past debugMaxNodes.
func debugCheckSceneSize(sc *Scene) {
	if n := len(sc.Nodes); n > debugMaxNodes {
		_, _ = fmt.Fprintf(os.Stderr, "[barboard] warning: scene has %d nodes (threshold %d)\n",
			n, debugMaxNodes)
	}
}
