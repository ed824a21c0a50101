package ecs

import (
	"testing"

	"github.com/phanxgames/barboard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []barboard.GestureEvent
	GestureEventType.Subscribe(world, func(w donburi.World, e barboard.GestureEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(barboard.GestureEvent{
		Type:    barboard.GestureClick,
		NodeID:  "n1",
		ScreenX: 100,
		ScreenY: 200,
		Button:  barboard.MouseButtonLeft,
	})
	sink.EmitEvent(barboard.GestureEvent{
		Type: barboard.GestureZoom,
		Zoom: 2.0,
	})

	// Events are queued until processed.
	GestureEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != barboard.GestureClick || e0.NodeID != "n1" {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.ScreenX != 100 || e0.ScreenY != 200 {
		t.Errorf("event 0 position: (%v,%v)", e0.ScreenX, e0.ScreenY)
	}
	if e1 := received[1]; e1.Type != barboard.GestureZoom || e1.Zoom != 2.0 {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	GestureEventType.Subscribe(world, func(w donburi.World, e barboard.GestureEvent) {
		count1++
	})
	GestureEventType.Subscribe(world, func(w donburi.World, e barboard.GestureEvent) {
		count2++
	})

	sink.EmitEvent(barboard.GestureEvent{Type: barboard.GestureClick})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiSink_FromInteractionManager(t *testing.T) {
	world := donburi.NewWorld()
	store := barboard.NewStore()
	id := store.AddNode(barboard.NewShapeNode("#ffd166", 0, 0, 100, 100))
	m := barboard.NewInteractionManager(store)
	m.SetEventSink(NewDonburiSink(world))

	var clicks []barboard.NodeID
	GestureEventType.Subscribe(world, func(w donburi.World, e barboard.GestureEvent) {
		if e.Type == barboard.GestureClick {
			clicks = append(clicks, e.NodeID)
		}
	})

	m.PointerDown(50, 50, barboard.MouseButtonLeft, 0)
	m.PointerUp(50, 50, 0)
	GestureEventType.ProcessEvents(world)

	if len(clicks) != 1 || clicks[0] != id {
		t.Errorf("clicks = %v, want [%s]", clicks, id)
	}
}

func TestBindStore(t *testing.T) {
	world := donburi.NewWorld()
	store := barboard.NewStore()
	unbind := BindStore(world, store)

	var got []StoreChange
	ChangeEventType.Subscribe(world, func(w donburi.World, c StoreChange) {
		got = append(got, c)
	})

	id := store.AddNode(barboard.NewTextNode("Happy hour", 0, 0, 200, 40))
	unbind()
	store.DeleteNodes(id)
	ChangeEventType.ProcessEvents(world)

	if len(got) != 1 {
		t.Fatalf("changes = %d, want 1", len(got))
	}
	if got[0].Op != barboard.OpAddNodes || len(got[0].IDs) != 1 || got[0].IDs[0] != id {
		t.Errorf("change = %+v", got[0])
	}
	if got[0].Version == 0 {
		t.Error("version not recorded")
	}
}
