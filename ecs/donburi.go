// Package ecs provides ECS adapters for barboard.
package ecs

import (
	"github.com/phanxgames/barboard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GestureEventType is the Donburi event type for barboard gesture events.
// Subscribe to this in your ECS systems to receive clicks, drags, resizes,
// creations, pans, zooms and rejected edits.
var GestureEventType = events.NewEventType[barboard.GestureEvent]()

// StoreChange is published on ChangeEventType for every committed store
// mutation.
type StoreChange struct {
	Op      barboard.ChangeOp
	IDs     []barboard.NodeID
	Version uint64
}

// ChangeEventType is the Donburi event type for store mutations.
var ChangeEventType = events.NewEventType[StoreChange]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Gesture
// events are published to GestureEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) barboard.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event barboard.GestureEvent) {
	GestureEventType.Publish(s.world, event)
}

// BindStore publishes every mutation of store to ChangeEventType in world.
// Call the returned function to stop.
func BindStore(world donburi.World, store *barboard.Store) (unbind func()) {
	return store.Subscribe(func(sc *barboard.Scene, c barboard.Change) {
		ChangeEventType.Publish(world, StoreChange{Op: c.Op, IDs: c.IDs, Version: sc.Version()})
	})
}
