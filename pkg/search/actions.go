package search

import (
	"fmt"

	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/geo"
)

// ActionKind discriminates the candidate transformations the optimizer tries.
type ActionKind int

const (
	// ReflectAction mirrors a module's pins across one of its axes.
	ReflectAction ActionKind = iota
	// TranslateAction slides a module until it collides in one direction.
	TranslateAction
	// RotateAction rotates a module clockwise by a multiple of 90°.
	RotateAction
)

// Action is one candidate move on a single module. Exactly one of Axis,
// Direction or Angle is meaningful, selected by Kind.
type Action struct {
	Kind      ActionKind
	Axis      geo.Axis
	Direction geo.Direction
	Angle     int
}

// Apply performs the action on the module. Rotations that would leave the
// region are no-ops; reflections and collision-bounded slides always apply.
func (a Action) Apply(c *circuit.Circuit, id circuit.ModuleID) {
	switch a.Kind {
	case ReflectAction:
		c.Reflect(id, a.Axis)
	case TranslateAction:
		c.TranslateUntilCollision(id, a.Direction)
	case RotateAction:
		c.RotateClockwise(id, a.Angle)
	default:
		panic(fmt.Sprintf("search: unrecognized action kind %d", a.Kind))
	}
}

// String returns a short human-readable form, e.g. "reflect(X)" or "slide(east)".
func (a Action) String() string {
	switch a.Kind {
	case ReflectAction:
		return fmt.Sprintf("reflect(%s)", a.Axis)
	case TranslateAction:
		return fmt.Sprintf("slide(%s)", a.Direction)
	case RotateAction:
		return fmt.Sprintf("rotate(%d)", a.Angle)
	default:
		return "unknown"
	}
}

// Actions returns the full candidate list in its fixed evaluation order.
// The order is part of the algorithm: ties on the augmented objective are
// broken by whichever action was evaluated first, so a stable order keeps
// runs deterministic.
func Actions() []Action {
	return []Action{
		{Kind: ReflectAction, Axis: geo.AxisX},
		{Kind: ReflectAction, Axis: geo.AxisY},
		{Kind: TranslateAction, Direction: geo.North},
		{Kind: TranslateAction, Direction: geo.East},
		{Kind: TranslateAction, Direction: geo.South},
		{Kind: TranslateAction, Direction: geo.West},
		{Kind: RotateAction, Angle: 90},
		{Kind: RotateAction, Angle: 180},
		{Kind: RotateAction, Angle: 270},
	}
}
