package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/floorplace/floorplace/pkg/circuit"
)

// ConnectivityDOT converts the circuit's module connectivity to Graphviz DOT
// format: one node per module, one undirected edge per connected pair. The
// resulting DOT string can be rendered with [DOTToSVG].
func ConnectivityDOT(c *circuit.Circuit) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.1\"];\n")
	buf.WriteString("  edge [color=gray];\n")
	buf.WriteString("\n")

	for i := 0; i < c.NumModules(); i++ {
		id := circuit.ModuleID(i)
		m := c.Module(id)
		label := fmt.Sprintf("%s\n%dx%d", c.ModuleName(id), m.Width, m.Height)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", c.ModuleName(id), label)
	}

	buf.WriteString("\n")
	for i := 0; i < c.NumModules()-1; i++ {
		for j := i + 1; j < c.NumModules(); j++ {
			a, b := circuit.ModuleID(i), circuit.ModuleID(j)
			if c.Connected(a, b) {
				fmt.Fprintf(&buf, "  %q -- %q;\n", c.ModuleName(a), c.ModuleName(b))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// DOTToSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func DOTToSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
