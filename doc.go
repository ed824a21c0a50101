// Package barboard is an infinite-canvas board engine for bar and kitchen
// operations, built on [Ebitengine].
//
// A board is a flat set of nodes (text, shapes, lines, icons, images,
// container boards with zoned structures, groups and domain cards showing
// recipe costing) on an unbounded, pannable and zoomable canvas.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	store := barboard.NewStore()
//	store.AddNode(barboard.NewTextNode("Friday service", 40, 40, 240, 48))
//	barboard.Run(store, nil, barboard.RunConfig{
//		Title: "Bar board", Width: 1280, Height: 800,
//	})
//
// # Store
//
// [Store] is the single source of truth. Every mutation replaces the current
// [Scene] snapshot and produces exactly one notification to the listeners
// registered with [Store.Subscribe]. Snapshots are immutable, so readers such
// as the renderer never see a half-applied change.
//
//	id := store.AddNode(barboard.NewShapeNode("#ffd166", 0, 0, 160, 100))
//	store.UpdateNode(id, barboard.PatchPosition(200, 120))
//	store.Select(id)
//
// Groups aggregate other nodes without owning them: a node belongs to at
// most one group, and deleting nodes removes them from their groups, drops
// groups left empty and prunes the selection in the same mutation.
//
// # Structures and templates
//
// A container board may carry a [Structure]: a grid of zones, each with a
// label, content, styling and optional sections. Structures come from the
// built-in [Template] catalog, from user-saved templates, or from saved
// [BoardResource] values. Structure edits clone, modify, validate and commit
// as one change.
//
// # External data
//
// Domain nodes reference recipes and ingredients by id. A [DataBridge]
// resolves them through a [Resolver] into an [ExternalTable] whenever the
// catalogs or a node's references change, never per frame. The renderer only
// looks entries up.
//
// # Rendering and input
//
// [Renderer] paints a snapshot onto a [Surface]: [EbitenSurface] on the GPU
// or [RasterSurface] in memory for thumbnails and PNG export. [FrameLoop]
// advances viewport transitions and renders once per tick.
// [InteractionManager] turns pointer, wheel and key events into store
// mutations, hit-testing with the same transform the renderer uses.
//
// Subpackages: persist (SQLite persistence), ecs (Donburi event adapter),
// cmd/barboard (command line tool).
//
// [Ebitengine]: https://ebitengine.org
package barboard
