// Package render draws placed circuits and their connectivity.
//
// # Overview
//
// This package turns a placed circuit into visual outputs. It provides:
//
//   - Placement drawings as SVG ([PlacementSVG])
//   - Net-connectivity graphs via Graphviz ([ConnectivityDOT], [DOTToSVG])
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Placement Drawings
//
// [PlacementSVG] renders the region, module outlines, pin rectangles, and
// dashed net polylines. The caption reports feasibility and, when supplied
// with [WithObjective], the objective value.
//
//	svg := render.PlacementSVG(c, render.WithObjective(result.Objective))
//
// # Connectivity Graphs
//
// [ConnectivityDOT] emits the module connectivity as an undirected DOT
// graph; [DOTToSVG] lays it out with Graphviz.
//
//	dot := render.ConnectivityDOT(c)
//	svg, err := render.DOTToSVG(ctx, dot)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
