package circuit

import (
	"fmt"

	"github.com/floorplace/floorplace/pkg/geo"
)

// SetDebugChecks toggles the full invariant scan after each mutation batch.
// The optimizer calls CheckInvariants only when this is enabled, keeping the
// scan out of hot loops by default.
func (c *Circuit) SetDebugChecks(enabled bool) { c.debugChecks = enabled }

// DebugChecks reports whether the invariant scan is enabled.
func (c *Circuit) DebugChecks() bool { return c.debugChecks }

// CheckInvariants runs a full scan of the circuit's structural invariants:
// every module inside the region, every pin inside its module, no two pins
// of the same module overlapping, and a consistent module↔pin index. It
// returns the first violation found, or nil. Module overlap is deliberately
// not an invariant; infeasible placements are a normal search state.
func (c *Circuit) CheckInvariants() error {
	region := c.Region()

	for i, m := range c.modules {
		if !region.Contains(m.Rect()) {
			return fmt.Errorf("module %q at (%d,%d) size (%d,%d) outside region %dx%d",
				c.names[i], m.X, m.Y, m.Width, m.Height, c.width, c.height)
		}
	}

	for id, owned := range c.modulePins {
		m := c.modules[id]
		frame := geo.Rect{Width: m.Width, Height: m.Height}

		for i, pid := range owned {
			if c.pinOwner[pid] != ModuleID(id) {
				return fmt.Errorf("pin %d owner index mismatch: have %d, want %d",
					pid, c.pinOwner[pid], id)
			}
			p := c.pins[pid]
			if !frame.Contains(pinLocalRect(p)) {
				return fmt.Errorf("pin %d at (%d,%d) outside module %q size (%d,%d)",
					pid, p.DX, p.DY, c.names[id], m.Width, m.Height)
			}
			for j := 0; j < i; j++ {
				if geo.OverlapArea(pinLocalRect(p), pinLocalRect(c.pins[owned[j]])) > 0 {
					return fmt.Errorf("pins %d and %d of module %q overlap",
						owned[j], pid, c.names[id])
				}
			}
		}
	}

	return nil
}
