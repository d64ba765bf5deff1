// Package geo provides the axis-aligned integer geometry used by the placement core.
//
// Everything in this package is a pure function over small value types: rectangle
// overlap areas, per-axis gaps, and the Axis/Direction enums that parameterize the
// circuit transformations. Coordinates follow the usual placement convention:
// X increases to the right, Y increases upward.
package geo

// Axis identifies one of the two coordinate axes.
type Axis int

const (
	// AxisX is the horizontal axis.
	AxisX Axis = iota
	// AxisY is the vertical axis.
	AxisY
)

// String returns "X" or "Y".
func (a Axis) String() string {
	if a == AxisX {
		return "X"
	}
	return "Y"
}

// Direction is a compass direction for translations and collision queries.
// North and East are the positive directions of the Y and X axes.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// IsVertical reports whether the direction moves along the Y axis.
func (d Direction) IsVertical() bool { return d == North || d == South }

// IsHorizontal reports whether the direction moves along the X axis.
func (d Direction) IsHorizontal() bool { return d == East || d == West }

// IsPositive reports whether the direction increases the coordinate on its axis.
func (d Direction) IsPositive() bool { return d == North || d == East }

// IsNegative reports whether the direction decreases the coordinate on its axis.
func (d Direction) IsNegative() bool { return d == South || d == West }

// String returns the compass name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Rect is an axis-aligned rectangle anchored at its lower-left corner.
type Rect struct {
	X, Y          int
	Width, Height int
}

// EndX returns the exclusive right edge coordinate.
func (r Rect) EndX() int { return r.X + r.Width }

// EndY returns the exclusive top edge coordinate.
func (r Rect) EndY() int { return r.Y + r.Height }

// Area returns width times height.
func (r Rect) Area() int { return r.Width * r.Height }

// Contains reports whether inner lies fully inside r (boundary contact allowed).
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X && inner.Y >= r.Y &&
		inner.EndX() <= r.EndX() && inner.EndY() <= r.EndY()
}

// Distance holds a per-axis separation between two rectangles.
// A zero component means the rectangles overlap or touch on that axis.
type Distance struct {
	DX int
	DY int
}

// OverlapArea returns the area shared by two rectangles.
// Disjoint or merely touching rectangles yield 0. The result is symmetric
// in its arguments and never negative.
func OverlapArea(a, b Rect) int {
	base := min(a.EndX(), b.EndX()) - max(a.X, b.X)
	height := min(a.EndY(), b.EndY()) - max(a.Y, b.Y)

	base = max(base, 0)
	height = max(height, 0)

	return base * height
}

// AxisGap returns the per-axis gap between two rectangles, clamped to zero.
// A component is positive only when the rectangles are strictly separated
// along that axis; overlap and edge contact both report 0.
func AxisGap(a, b Rect) Distance {
	dx := max(a.X-b.EndX(), b.X-a.EndX())
	dy := max(a.Y-b.EndY(), b.Y-a.EndY())

	return Distance{
		DX: max(dx, 0),
		DY: max(dy, 0),
	}
}
