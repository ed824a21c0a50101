package barboard

import (
	"time"

	"github.com/tanema/gween/ease"
)

// UpdateViewport changes the viewport. With animated set, next is staged as
// the transition target and the frame loop converges on it; otherwise it is
// applied at once. A user-driven change also cancels any running transition.
// Viewports with a non-positive zoom are ignored; zoom is clamped to
// [MinZoom, MaxZoom].
func (s *Store) UpdateViewport(next Viewport, userDriven, animated bool) {
	v, ok := next.normalized()
	if !ok {
		return
	}
	cur := s.scene
	sc := cur.shallow()
	if animated {
		s.tween = nil
		if cur.Target != nil && *cur.Target == v {
			return
		}
		sc.Target = &v
	} else {
		if cur.Viewport == v && (!userDriven || cur.Target == nil) {
			return
		}
		sc.Viewport = v
		if userDriven {
			sc.Target = nil
			s.tween = nil
		}
	}
	s.commit(sc, Change{Op: OpViewport})
}

// FlyTo starts a fixed-duration eased transition to v. It replaces any
// decay transition in progress; duration is in seconds.
func (s *Store) FlyTo(v Viewport, duration float32, easeFn ease.TweenFunc) {
	v, ok := v.normalized()
	if !ok {
		return
	}
	if duration <= 0 {
		s.UpdateViewport(v, true, false)
		return
	}
	cur := s.scene
	s.tween = newViewportTween(cur.Viewport, v, duration, easeFn)
	sc := cur.shallow()
	sc.Target = &v
	s.commit(sc, Change{Op: OpViewport})
}

// FocusNode stages an animated transition framing node id on a screen of the
// given size. It reports false for unknown ids.
func (s *Store) FocusNode(id NodeID, screenW, screenH float64) bool {
	n := s.scene.Nodes[id]
	if n == nil {
		return false
	}
	s.UpdateViewport(FrameRect(n.Bounds(), screenW, screenH, 48), false, true)
	return true
}

// StepViewport advances a pending transition by dt, clamped to
// MaxFrameDelta. Once the viewport is within snapping distance of the target
// it is set exactly to the target and the target is cleared. It reports
// whether the viewport changed.
func (s *Store) StepViewport(dt time.Duration) bool {
	cur := s.scene
	if cur.Target == nil {
		s.tween = nil
		return false
	}
	dt = min(max(dt, 0), MaxFrameDelta)
	target := *cur.Target

	var v Viewport
	done := false
	if s.tween != nil && s.tween.target == target {
		v, done = s.tween.step(dt)
	} else {
		s.tween = nil
		v = cur.Viewport.decayToward(target, dt)
		done = v.near(target)
	}
	sc := cur.shallow()
	if done {
		sc.Viewport = target
		sc.Target = nil
		s.tween = nil
	} else {
		sc.Viewport = v
	}
	if sc.Viewport == cur.Viewport && sc.Target != nil {
		return false
	}
	s.commit(sc, Change{Op: OpViewport})
	return true
}
