// Package ecs provides ECS adapters for barboard's gesture and change
// notifications.
//
// [NewDonburiSink] bridges gesture events (click, drag, resize, create, pan,
// zoom, rejected edits) into a [Donburi] world as typed events. [BindStore]
// does the same for store mutations. Subscribe to [GestureEventType] and
// [ChangeEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	manager.SetEventSink(sink)
//	unbind := ecs.BindStore(world, store)
//	defer unbind()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
