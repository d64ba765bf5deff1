package circuit

import (
	"fmt"

	"github.com/floorplace/floorplace/pkg/geo"
)

// Reflect mirrors the module's pins across the given axis of the module's
// own frame. Reflecting across X mirrors the vertical pin offsets, across Y
// the horizontal ones. The module rectangle itself is unchanged, so a
// reflection can never leave the region. Reflecting twice across the same
// axis restores the original pin offsets.
func (c *Circuit) Reflect(id ModuleID, axis geo.Axis) {
	m := c.modules[id]
	for _, pid := range c.modulePins[id] {
		p := &c.pins[pid]
		switch axis {
		case geo.AxisX:
			p.DY = m.Height - (p.DY + PinHeight)
		case geo.AxisY:
			p.DX = m.Width - (p.DX + PinWidth)
		default:
			panic(fmt.Sprintf("circuit: unrecognized axis %d", axis))
		}
	}
}

// Translate moves the module by distance in the given direction. Negative
// directions subtract, so the caller always passes a non-negative distance.
// Translation is unchecked; the search relies on collision-bounded distances
// to stay inside the region.
func (c *Circuit) Translate(id ModuleID, dir geo.Direction, distance int) {
	if dir.IsNegative() {
		distance = -distance
	}
	m := &c.modules[id]
	if dir.IsVertical() {
		m.Y += distance
	} else {
		m.X += distance
	}
}

// DistanceUntilBoundary returns how far the module can travel in the given
// direction before its leading edge reaches the region boundary. The result
// is negative when the module already sticks out past that boundary.
func (c *Circuit) DistanceUntilBoundary(id ModuleID, dir geo.Direction) int {
	m := c.modules[id]
	switch dir {
	case geo.North:
		return c.height - (m.Y + m.Height)
	case geo.East:
		return c.width - (m.X + m.Width)
	case geo.South:
		return m.Y
	case geo.West:
		return m.X
	default:
		panic(fmt.Sprintf("circuit: unrecognized direction %d", dir))
	}
}

// DistanceUntilCollision returns how far the module can travel in the given
// direction before hitting either the region boundary or another module whose
// orthogonal extent overlaps the moving module's band. Modules behind the
// moving one or already overlapping it contribute nothing; only strictly
// positive gaps ahead tighten the bound.
func (c *Circuit) DistanceUntilCollision(id ModuleID, dir geo.Direction) int {
	minDistance := c.DistanceUntilBoundary(id, dir)
	m1 := c.modules[id]

	for other := range c.modules {
		if ModuleID(other) == id {
			continue
		}
		m2 := c.modules[other]

		distance := 0
		if dir.IsVertical() {
			if m1.X < m2.X+m2.Width && m2.X < m1.X+m1.Width {
				if dir.IsPositive() {
					distance = m2.Y - (m1.Y + m1.Height)
				} else {
					distance = m1.Y - (m2.Y + m2.Height)
				}
			}
		} else {
			if m1.Y < m2.Y+m2.Height && m2.Y < m1.Y+m1.Height {
				if dir.IsPositive() {
					distance = m2.X - (m1.X + m1.Width)
				} else {
					distance = m1.X - (m2.X + m2.Width)
				}
			}
		}

		if distance > 0 {
			minDistance = min(minDistance, distance)
		}
	}

	return minDistance
}

// TranslateUntilCollision slides the module in the given direction until it
// touches the region boundary or another module. With a feasible start state
// the move keeps the module inside the region.
func (c *Circuit) TranslateUntilCollision(id ModuleID, dir geo.Direction) {
	c.Translate(id, dir, c.DistanceUntilCollision(id, dir))
}

// RotateClockwise rotates the module by the given angle in 90° steps around
// its lower-left corner, swapping width and height and remapping every pin.
// The angle must be one of 0, 90, 180 or 270; anything else is a caller bug
// and panics.
//
// If any step would push the module past the region boundary the whole
// rotation is abandoned: the module and its pins are restored to their state
// before the call and RotateClockwise returns false.
func (c *Circuit) RotateClockwise(id ModuleID, angle int) bool {
	if angle < 0 || angle > 270 || angle%90 != 0 {
		panic(fmt.Sprintf("circuit: invalid rotation angle %d", angle))
	}

	saved := c.SaveModule(id)
	m := &c.modules[id]

	for step := 0; step < angle/90; step++ {
		newWidth := m.Height
		newHeight := m.Width

		if m.X+newWidth > c.width || m.Y+newHeight > c.height {
			c.RestoreModule(saved)
			return false
		}

		oldWidth := m.Width
		m.Width = newWidth
		m.Height = newHeight

		for _, pid := range c.modulePins[id] {
			p := &c.pins[pid]
			p.DX, p.DY = p.DY, oldWidth-(p.DX+PinWidth)
		}
	}

	return true
}
