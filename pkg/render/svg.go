package render

import (
	"bytes"
	"fmt"

	"github.com/floorplace/floorplace/pkg/circuit"
)

// Placement drawing parameters. Cell is the pixel size of one region unit;
// margin leaves room for the caption below the drawing.
const (
	defaultCell   = 32
	captionHeight = 40
	frameMargin   = 16
)

// SVGOption adjusts placement rendering.
type SVGOption func(*svgRenderer)

// WithCellSize overrides the pixels-per-unit scale.
func WithCellSize(px int) SVGOption {
	return func(r *svgRenderer) { r.cell = px }
}

// WithObjective adds the objective value to the caption, matching the
// "f = N" suffix of the optimizer's reports.
func WithObjective(value int) SVGOption {
	return func(r *svgRenderer) {
		r.objective = value
		r.hasObjective = true
	}
}

type svgRenderer struct {
	cell         int
	objective    int
	hasObjective bool
}

// PlacementSVG draws the circuit's current placement.
// The caption reads "Feasible circuit (WxH)" or "Unfeasible circuit (WxH)",
// with ", f = N" appended when an objective is supplied.
func PlacementSVG(c *circuit.Circuit, opts ...SVGOption) []byte {
	r := &svgRenderer{cell: defaultCell}
	for _, opt := range opts {
		opt(r)
	}

	width := c.Width()*r.cell + 2*frameMargin
	height := c.Height()*r.cell + 2*frameMargin + captionHeight

	// The region's Y axis grows upward; SVG's grows downward.
	toX := func(x int) int { return frameMargin + x*r.cell }
	toY := func(y, h int) int { return frameMargin + (c.Height()-(y+h))*r.cell }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="white"/>`+"\n", width, height)

	// Region border
	fmt.Fprintf(&buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="black" stroke-width="2"/>`+"\n",
		frameMargin, frameMargin, c.Width()*r.cell, c.Height()*r.cell)

	// Pins first, so module outlines stay visible on top of them.
	for pid := 0; pid < c.NumPins(); pid++ {
		id := circuit.PinID(pid)
		m := c.Module(c.PinOwner(id))
		p := c.Pin(id)
		fmt.Fprintf(&buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="orange" fill-opacity="0.5"/>`+"\n",
			toX(m.X+p.DX), toY(m.Y+p.DY, circuit.PinHeight),
			circuit.PinWidth*r.cell, circuit.PinHeight*r.cell)
	}

	// Module outlines and labels
	for i := 0; i < c.NumModules(); i++ {
		id := circuit.ModuleID(i)
		m := c.Module(id)
		fmt.Fprintf(&buf, `  <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="black"/>`+"\n",
			toX(m.X), toY(m.Y, m.Height), m.Width*r.cell, m.Height*r.cell)
		fmt.Fprintf(&buf, `  <text x="%d" y="%d" font-size="%d" font-family="sans-serif" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			toX(m.X)+m.Width*r.cell/2, toY(m.Y, m.Height)+m.Height*r.cell/2,
			r.cell/2, escapeText(c.ModuleName(id)))
	}

	// Dashed net polylines between pin centers
	for i := 0; i < c.NumNets(); i++ {
		var points bytes.Buffer
		for j, pid := range c.Net(i).Pins() {
			m := c.Module(c.PinOwner(pid))
			p := c.Pin(pid)
			cx := toX(m.X+p.DX) + circuit.PinWidth*r.cell/2
			cy := toY(m.Y+p.DY, circuit.PinHeight) + circuit.PinHeight*r.cell/2
			if j > 0 {
				points.WriteByte(' ')
			}
			fmt.Fprintf(&points, "%d,%d", cx, cy)
		}
		fmt.Fprintf(&buf, `  <polyline points="%s" fill="none" stroke="gray" stroke-width="1" stroke-dasharray="4,3"/>`+"\n",
			points.String())
	}

	// Caption
	caption := "Unfeasible circuit"
	if c.IsFeasible() {
		caption = "Feasible circuit"
	}
	caption = fmt.Sprintf("%s (%dx%d)", caption, c.Width(), c.Height())
	if r.hasObjective {
		caption = fmt.Sprintf("%s, f = %d", caption, r.objective)
	}
	fmt.Fprintf(&buf, `  <text x="%d" y="%d" font-size="18" font-family="sans-serif" text-anchor="middle">%s</text>`+"\n",
		width/2, height-captionHeight/2, escapeText(caption))

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// escapeText escapes the XML-reserved characters in labels.
func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
