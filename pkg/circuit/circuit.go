package circuit

import (
	"errors"
	"fmt"

	"github.com/floorplace/floorplace/pkg/geo"
)

var (
	// ErrInvalidRegion is returned by [New] when either region dimension
	// is not strictly positive.
	ErrInvalidRegion = errors.New("region dimensions must be positive")

	// ErrInvalidModuleName is returned by [Circuit.Connect] when the module
	// name is empty. All modules must have non-empty identifiers.
	ErrInvalidModuleName = errors.New("module name must not be empty")

	// ErrDuplicateModuleName is returned by [Circuit.Connect] when a module
	// with the same name is already connected. Names must be unique.
	ErrDuplicateModuleName = errors.New("duplicate module name")

	// ErrModuleOutsideRegion is returned by [Circuit.Connect] when the module
	// rectangle does not lie fully inside the placement region.
	ErrModuleOutsideRegion = errors.New("module outside region")

	// ErrPinOutsideModule is returned by [Circuit.Connect] when a pin offset
	// places the pin outside its owning module.
	ErrPinOutsideModule = errors.New("pin outside module")

	// ErrPinOverlap is returned by [Circuit.Connect] when two pins of the
	// same module overlap each other.
	ErrPinOverlap = errors.New("pins of a module must not overlap")

	// ErrUnknownPin is returned by [Circuit.DefineNet] when a pin ID does
	// not identify a connected pin.
	ErrUnknownPin = errors.New("unknown pin")

	// ErrEmptyNet is returned by [Circuit.DefineNet] when no pins are given.
	ErrEmptyNet = errors.New("net must contain at least one pin")
)

// Pin dimensions are fixed: every pin is a unit square inside its module.
const (
	PinWidth  = 1
	PinHeight = 1
)

// ModuleID is a dense index identifying a module within its Circuit.
// IDs are assigned in connection order, are stable for the lifetime of the
// circuit, and define the pairwise iteration order of all O(n²) queries.
type ModuleID int

// PinID is a dense index identifying a pin within its Circuit.
type PinID int

// Pin is a unit-size connection point anchored inside a module's local frame.
// DX and DY are the offsets of the pin's lower-left corner from the module's
// lower-left corner. Pins are never relocated independently; only the owning
// module's reflect and rotate operations remap them.
type Pin struct {
	DX int
	DY int
}

// Module is a placed rectangle. X and Y are absolute coordinates within the
// placement region; Width and Height are only ever changed by 90° rotation,
// which swaps them.
type Module struct {
	X, Y          int
	Width, Height int
}

// Area returns the module's area.
func (m Module) Area() int { return m.Width * m.Height }

// Rect returns the module's rectangle in region coordinates.
func (m Module) Rect() geo.Rect {
	return geo.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// Net is an ordered, fixed set of pins that should be drawn together.
// Nets are immutable once defined.
type Net struct {
	pins []PinID
}

// Pins returns the net's pin IDs in definition order.
// The returned slice must not be modified.
func (n Net) Pins() []PinID { return n.pins }

// Len returns the number of pins in the net.
func (n Net) Len() int { return len(n.pins) }

// pair is a canonical unordered module pair: Low < High always holds.
type pair struct {
	low, high ModuleID
}

func makePair(a, b ModuleID) pair {
	if a > b {
		a, b = b, a
	}
	return pair{low: a, high: b}
}

// Circuit is the aggregate root of the placement model. It owns all modules,
// pins, and nets, keeps the module↔pin index bidirectionally consistent, and
// exposes the geometric queries and invariant-preserving mutators the
// optimizer drives. The Circuit never initiates search; it is a passive,
// invariant-checked state container.
//
// Circuit is not safe for concurrent use. The optimizer mutates it through
// strict save/apply/revert sequences, so between trials the circuit always
// satisfies its invariants.
type Circuit struct {
	width  int
	height int

	modules []Module // arena indexed by ModuleID
	names   []string // module display names, parallel to modules
	pins    []Pin    // arena indexed by PinID

	modulePins [][]PinID  // ModuleID -> owned pins, in connection order
	pinOwner   []ModuleID // PinID -> owning module

	nets      []Net
	connected map[pair]struct{} // symmetric connected-pairs set

	byName map[string]ModuleID

	debugChecks bool
}

// New creates an empty circuit with the given placement region.
// Returns ErrInvalidRegion unless both dimensions are positive.
func New(width, height int) (*Circuit, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidRegion, width, height)
	}
	return &Circuit{
		width:     width,
		height:    height,
		connected: make(map[pair]struct{}),
		byName:    make(map[string]ModuleID),
	}, nil
}

// Width returns the region width.
func (c *Circuit) Width() int { return c.width }

// Height returns the region height.
func (c *Circuit) Height() int { return c.height }

// Region returns the placement region as a rectangle at the origin.
func (c *Circuit) Region() geo.Rect {
	return geo.Rect{Width: c.width, Height: c.height}
}

// NumModules returns the number of connected modules.
func (c *Circuit) NumModules() int { return len(c.modules) }

// NumPins returns the total number of pins across all modules.
func (c *Circuit) NumPins() int { return len(c.pins) }

// NumNets returns the number of defined nets.
func (c *Circuit) NumNets() int { return len(c.nets) }

// Module returns a copy of the module's geometric state.
// The ID must be valid; an out-of-range ID is a caller bug and panics.
func (c *Circuit) Module(id ModuleID) Module { return c.modules[id] }

// ModuleName returns the name the module was connected under.
func (c *Circuit) ModuleName(id ModuleID) string { return c.names[id] }

// ModuleByName returns the ID of the named module.
func (c *Circuit) ModuleByName(name string) (ModuleID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Pin returns a copy of the pin's local offsets.
func (c *Circuit) Pin(id PinID) Pin { return c.pins[id] }

// Pins returns the IDs of the pins owned by the module, in connection order.
// The returned slice must not be modified.
func (c *Circuit) Pins(id ModuleID) []PinID { return c.modulePins[id] }

// PinOwner returns the module owning the pin.
func (c *Circuit) PinOwner(id PinID) ModuleID { return c.pinOwner[id] }

// Net returns the i-th net in definition order.
func (c *Circuit) Net(i int) Net { return c.nets[i] }

// Connect registers a module with its pins under a unique name.
// The module must lie fully inside the region, every pin must lie fully
// inside the module, and no two of the new pins may overlap. Violations are
// construction bugs and abort the connect with an error; Connect is only
// used while building the circuit, never during search.
func (c *Circuit) Connect(name string, m Module, pins ...Pin) (ModuleID, error) {
	if name == "" {
		return 0, ErrInvalidModuleName
	}
	if _, exists := c.byName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateModuleName, name)
	}
	if m.X < 0 || m.Y < 0 || m.Width < 0 || m.Height < 0 || !c.Region().Contains(m.Rect()) {
		return 0, fmt.Errorf("%w: module %q at (%d,%d) size (%d,%d) in region %dx%d",
			ErrModuleOutsideRegion, name, m.X, m.Y, m.Width, m.Height, c.width, c.height)
	}
	for i, p := range pins {
		if p.DX < 0 || p.DY < 0 || p.DX+PinWidth > m.Width || p.DY+PinHeight > m.Height {
			return 0, fmt.Errorf("%w: pin %d of module %q at (%d,%d)",
				ErrPinOutsideModule, i, name, p.DX, p.DY)
		}
		for j := 0; j < i; j++ {
			if geo.OverlapArea(pinLocalRect(p), pinLocalRect(pins[j])) > 0 {
				return 0, fmt.Errorf("%w: pins %d and %d of module %q", ErrPinOverlap, j, i, name)
			}
		}
	}

	id := ModuleID(len(c.modules))
	c.modules = append(c.modules, m)
	c.names = append(c.names, name)
	c.byName[name] = id

	owned := make([]PinID, 0, len(pins))
	for _, p := range pins {
		pid := PinID(len(c.pins))
		c.pins = append(c.pins, p)
		c.pinOwner = append(c.pinOwner, id)
		owned = append(owned, pid)
	}
	c.modulePins = append(c.modulePins, owned)

	return id, nil
}

// DefineNet appends a net over already-connected pins and extends the
// connected-pairs set with every unordered module pair drawn from the net.
// Returns the net's index. Nets are immutable once defined.
func (c *Circuit) DefineNet(pins ...PinID) (int, error) {
	if len(pins) == 0 {
		return 0, ErrEmptyNet
	}
	for _, p := range pins {
		if int(p) < 0 || int(p) >= len(c.pins) {
			return 0, fmt.Errorf("%w: pin %d", ErrUnknownPin, p)
		}
	}

	net := Net{pins: append([]PinID(nil), pins...)}
	c.nets = append(c.nets, net)

	for i := 0; i < len(pins)-1; i++ {
		for j := i + 1; j < len(pins); j++ {
			a, b := c.pinOwner[pins[i]], c.pinOwner[pins[j]]
			c.connected[makePair(a, b)] = struct{}{}
		}
	}

	return len(c.nets) - 1, nil
}

// Connected reports whether the two modules share at least one net.
// The relation is symmetric and O(1).
func (c *Circuit) Connected(a, b ModuleID) bool {
	_, ok := c.connected[makePair(a, b)]
	return ok
}

// moduleRect returns the module's rectangle in region coordinates.
func (c *Circuit) moduleRect(id ModuleID) geo.Rect { return c.modules[id].Rect() }

// pinRect returns the pin's rectangle in region coordinates, composing the
// owning module's position with the pin's local offsets.
func (c *Circuit) pinRect(id PinID) geo.Rect {
	m := c.modules[c.pinOwner[id]]
	p := c.pins[id]
	return geo.Rect{X: m.X + p.DX, Y: m.Y + p.DY, Width: PinWidth, Height: PinHeight}
}

func pinLocalRect(p Pin) geo.Rect {
	return geo.Rect{X: p.DX, Y: p.DY, Width: PinWidth, Height: PinHeight}
}

// OverlapArea returns the overlap area between two modules' rectangles.
// Zero means the modules are disjoint or touching.
func (c *Circuit) OverlapArea(a, b ModuleID) int {
	return geo.OverlapArea(c.moduleRect(a), c.moduleRect(b))
}

// PinsOverlapArea returns the overlap area between two pins in absolute
// coordinates. Used by the intra-module pin invariant.
func (c *Circuit) PinsOverlapArea(a, b PinID) int {
	return geo.OverlapArea(c.pinRect(a), c.pinRect(b))
}

// DistancePerAxis returns the per-axis gap between two modules,
// clamped to zero under overlap or contact.
func (c *Circuit) DistancePerAxis(a, b ModuleID) geo.Distance {
	return geo.AxisGap(c.moduleRect(a), c.moduleRect(b))
}

// NetBoundingBox returns the half-perimeter of the axis-aligned box enclosing
// all pins of the i-th net, in absolute coordinates.
func (c *Circuit) NetBoundingBox(i int) int {
	net := c.nets[i]

	minX, minY := c.width, c.height
	maxX, maxY := 0, 0

	for _, pid := range net.pins {
		r := c.pinRect(pid)
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.EndX())
		maxY = max(maxY, r.EndY())
	}

	return (maxX - minX) + (maxY - minY)
}

// TotalBoundingBoxes returns the sum of net bounding-box half-perimeters,
// the wirelength proxy minimized by the optimizer.
func (c *Circuit) TotalBoundingBoxes() int {
	total := 0
	for i := range c.nets {
		total += c.NetBoundingBox(i)
	}
	return total
}

// IsFeasible reports whether no pair of modules overlaps.
// Infeasibility is a normal, representable state during search, not an error.
func (c *Circuit) IsFeasible() bool {
	for i := 0; i < len(c.modules)-1; i++ {
		for j := i + 1; j < len(c.modules); j++ {
			if c.OverlapArea(ModuleID(i), ModuleID(j)) > 0 {
				return false
			}
		}
	}
	return true
}

// AverageModuleArea returns the mean module area.
// Calling it on a circuit with no modules is a caller bug and panics;
// guard with NumModules first.
func (c *Circuit) AverageModuleArea() float64 {
	if len(c.modules) == 0 {
		panic("circuit: AverageModuleArea on empty circuit")
	}
	total := 0
	for _, m := range c.modules {
		total += m.Area()
	}
	return float64(total) / float64(len(c.modules))
}
