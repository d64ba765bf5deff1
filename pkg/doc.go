// Package pkg provides the core libraries for Floorplace circuit placement.
//
// # Overview
//
// Floorplace places rectangular circuit modules on a bounded integer region,
// minimizing net wirelength and module overlap with guided local search. The
// pkg directory is organized into four main areas:
//
//  1. Domain logic - [geo], [circuit], [search]
//  2. Formats - [netlist] (TOML input, placement JSON output)
//  3. Rendering - [render] (SVG, Graphviz connectivity, PDF/PNG conversion)
//  4. Infrastructure - [pipeline], [cache], [store], [observability], [errors]
//
// # Architecture
//
// The typical data flow through Floorplace:
//
//	TOML netlist
//	     ↓
//	[netlist] package (parse + validate + build)
//	     ↓
//	[circuit] package (geometry, pins, nets, moves)
//	     ↓
//	[search] package (guided local search)
//	     ↓
//	[render] package (SVG/PDF/PNG/JSON/DOT output)
//
// # Quick Start
//
// Load a netlist, optimize the placement, and render it:
//
//	import (
//	    "context"
//	    "github.com/floorplace/floorplace/pkg/netlist"
//	    "github.com/floorplace/floorplace/pkg/render"
//	    "github.com/floorplace/floorplace/pkg/search"
//	)
//
//	// 1. Build the circuit
//	doc, _ := netlist.ReadFile("netlist.toml")
//	c, _ := doc.Build()
//
//	// 2. Optimize the placement
//	s, _ := search.New(c, nil)
//	result, _ := s.Run(context.Background(), search.Options{})
//
//	// 3. Render to SVG
//	svg := render.PlacementSVG(c, render.WithObjective(result.Objective))
//
// Or run the whole thing through the cached pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{Netlist: source})
//
// # Main Packages
//
// ## Domain Logic
//
// [geo] - Integer rectangle geometry: axes, directions, overlap areas, and
// per-axis gaps. Everything the optimizer measures reduces to these
// primitives.
//
// [circuit] - The placement state: a bounded region holding named modules
// with unit pins, nets connecting pins across modules, and the move set
// (reflect, translate, rotate) with collision and boundary queries.
//
// [search] - Guided local search. Descends to a local optimum over the move
// set, then escapes by penalizing high-utility overlaps and connections in
// an augmented objective.
//
// ## Formats
//
// [netlist] - TOML netlist parsing and validation, plus the placement JSON
// snapshot format. Both build back into a circuit.
//
// ## Rendering
//
// [render] - Placement drawings as SVG, net-connectivity graphs via
// Graphviz, and conversion to PDF/PNG via rsvg-convert.
//
// ## Infrastructure
//
// [pipeline] - Complete placement pipeline (load → place → render) used by
// the CLI and server. The place and render stages are cached.
//
// [cache] - Byte caches with TTLs: file-based for the CLI, Redis for server
// deployments, and a null cache for disabling caching.
//
// [store] - Persistent run store keeping netlists, placements, and objective
// traces; file-based and MongoDB backends.
//
// [observability] - Hook registry for instrumenting search, cache, and store
// events without hard dependencies on metrics backends.
//
// [errors] - Structured error codes shared by the CLI and server surfaces.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/search/...     # Specific package
//
// [geo]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/geo
// [circuit]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/circuit
// [search]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/search
// [netlist]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/netlist
// [render]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/cache
// [store]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/store
// [observability]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/observability
// [errors]: https://pkg.go.dev/github.com/floorplace/floorplace/pkg/errors
package pkg
