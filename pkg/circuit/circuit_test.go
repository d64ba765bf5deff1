package circuit

import (
	"errors"
	"testing"

	"github.com/floorplace/floorplace/pkg/geo"
)

// buildPair creates the canonical two-module test circuit: a 10x10 region
// with A at the lower-left and B in the middle, one pin each, joined by a net.
func buildPair(t *testing.T) (*Circuit, ModuleID, ModuleID) {
	t.Helper()

	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a, err := c.Connect("A", Module{X: 0, Y: 0, Width: 2, Height: 2}, Pin{DX: 0, DY: 0})
	if err != nil {
		t.Fatalf("Connect A: %v", err)
	}
	b, err := c.Connect("B", Module{X: 5, Y: 5, Width: 2, Height: 2}, Pin{DX: 1, DY: 1})
	if err != nil {
		t.Fatalf("Connect B: %v", err)
	}
	if _, err := c.DefineNet(c.Pins(a)[0], c.Pins(b)[0]); err != nil {
		t.Fatalf("DefineNet: %v", err)
	}
	return c, a, b
}

func TestNewRejectsInvalidRegion(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}, {5, -1}} {
		if _, err := New(dims[0], dims[1]); !errors.Is(err, ErrInvalidRegion) {
			t.Errorf("New(%d, %d): err = %v, want ErrInvalidRegion", dims[0], dims[1], err)
		}
	}
}

func TestConnectValidation(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Connect("A", Module{X: 0, Y: 0, Width: 2, Height: 2}); err != nil {
		t.Fatalf("Connect A: %v", err)
	}

	tests := []struct {
		name    string
		modName string
		m       Module
		pins    []Pin
		want    error
	}{
		{"empty name", "", Module{Width: 2, Height: 2}, nil, ErrInvalidModuleName},
		{"duplicate name", "A", Module{X: 4, Y: 4, Width: 2, Height: 2}, nil, ErrDuplicateModuleName},
		{"module too wide", "W", Module{X: 9, Y: 0, Width: 2, Height: 2}, nil, ErrModuleOutsideRegion},
		{"negative origin", "N", Module{X: -1, Y: 0, Width: 2, Height: 2}, nil, ErrModuleOutsideRegion},
		{"pin outside", "P", Module{X: 4, Y: 4, Width: 2, Height: 2}, []Pin{{DX: 2, DY: 0}}, ErrPinOutsideModule},
		{"pins overlap", "Q", Module{X: 4, Y: 4, Width: 2, Height: 2}, []Pin{{DX: 0, DY: 0}, {DX: 0, DY: 0}}, ErrPinOverlap},
	}

	for _, tt := range tests {
		if _, err := c.Connect(tt.modName, tt.m, tt.pins...); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	if c.NumModules() != 1 {
		t.Errorf("failed connects must not add modules: have %d", c.NumModules())
	}
}

func TestDefineNetAndConnected(t *testing.T) {
	c, a, b := buildPair(t)

	if !c.Connected(a, b) || !c.Connected(b, a) {
		t.Error("net members must be connected, symmetrically")
	}
	if c.Connected(a, a) {
		t.Error("a module is not connected to itself")
	}

	if _, err := c.DefineNet(); !errors.Is(err, ErrEmptyNet) {
		t.Errorf("empty net: err = %v, want ErrEmptyNet", err)
	}
	if _, err := c.DefineNet(PinID(99)); !errors.Is(err, ErrUnknownPin) {
		t.Errorf("unknown pin: err = %v, want ErrUnknownPin", err)
	}
}

func TestQueries(t *testing.T) {
	c, a, b := buildPair(t)

	if got := c.OverlapArea(a, b); got != 0 {
		t.Errorf("OverlapArea = %d, want 0", got)
	}
	if got := c.DistancePerAxis(a, b); got != (geo.Distance{DX: 3, DY: 3}) {
		t.Errorf("DistancePerAxis = %+v, want {3 3}", got)
	}
	// Pin A covers (0,0)-(1,1), pin B covers (6,6)-(7,7).
	if got := c.NetBoundingBox(0); got != 14 {
		t.Errorf("NetBoundingBox = %d, want 14", got)
	}
	if got := c.TotalBoundingBoxes(); got != 14 {
		t.Errorf("TotalBoundingBoxes = %d, want 14", got)
	}
	if !c.IsFeasible() {
		t.Error("disjoint modules must be feasible")
	}
	if got := c.AverageModuleArea(); got != 4 {
		t.Errorf("AverageModuleArea = %v, want 4", got)
	}

	// Slide B onto A and the placement becomes infeasible, not invalid.
	c.Translate(b, geo.West, 4)
	c.Translate(b, geo.South, 4)
	if c.IsFeasible() {
		t.Error("overlapping modules must be infeasible")
	}
	if got := c.OverlapArea(a, b); got != 1 {
		t.Errorf("OverlapArea after move = %d, want 1", got)
	}
	if err := c.CheckInvariants(); err != nil {
		t.Errorf("overlap is not an invariant violation: %v", err)
	}
}

func TestReflectIsInvolution(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := c.Connect("M", Module{X: 1, Y: 1, Width: 2, Height: 3}, Pin{DX: 0, DY: 0}, Pin{DX: 1, DY: 2})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	before := c.SaveModule(m)

	c.Reflect(m, geo.AxisX)
	if got := c.Pin(c.Pins(m)[0]); got != (Pin{DX: 0, DY: 2}) {
		t.Errorf("pin 0 after X reflection = %+v, want {0 2}", got)
	}
	c.Reflect(m, geo.AxisX)
	c.Reflect(m, geo.AxisY)
	c.Reflect(m, geo.AxisY)

	for i, pid := range c.Pins(m) {
		if c.Pin(pid) != before.pins[i] {
			t.Errorf("pin %d not restored after double reflections: %+v", i, c.Pin(pid))
		}
	}
	if err := c.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants after reflections: %v", err)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := c.Connect("M", Module{X: 0, Y: 0, Width: 3, Height: 2}, Pin{DX: 2, DY: 0})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	wantPins := []Pin{{DX: 0, DY: 0}, {DX: 0, DY: 1}, {DX: 1, DY: 2}, {DX: 2, DY: 0}}
	for i, want := range wantPins {
		if !c.RotateClockwise(m, 90) {
			t.Fatalf("rotation %d rejected", i+1)
		}
		if got := c.Pin(c.Pins(m)[0]); got != want {
			t.Errorf("after %d rotations: pin = %+v, want %+v", i+1, got, want)
		}
		if err := c.CheckInvariants(); err != nil {
			t.Errorf("after %d rotations: %v", i+1, err)
		}
	}

	if got := c.Module(m); got != (Module{X: 0, Y: 0, Width: 3, Height: 2}) {
		t.Errorf("module after four rotations = %+v", got)
	}
}

func TestRotate180EqualsTwoQuarters(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := c.Connect("M", Module{X: 1, Y: 1, Width: 3, Height: 2}, Pin{DX: 2, DY: 1})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	m2, err := c.Connect("M2", Module{X: 6, Y: 1, Width: 3, Height: 2}, Pin{DX: 2, DY: 1})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if !c.RotateClockwise(m, 180) {
		t.Fatal("180 rotation rejected")
	}
	if !c.RotateClockwise(m2, 90) || !c.RotateClockwise(m2, 90) {
		t.Fatal("quarter rotations rejected")
	}

	if c.Pin(c.Pins(m)[0]) != c.Pin(c.Pins(m2)[0]) {
		t.Errorf("180 = %+v, two quarters = %+v", c.Pin(c.Pins(m)[0]), c.Pin(c.Pins(m2)[0]))
	}
	if got := c.Module(m); got.Width != 3 || got.Height != 2 {
		t.Errorf("180 rotation must keep dimensions: %+v", got)
	}
}

func TestRotateRollsBackAtBoundary(t *testing.T) {
	c, err := New(10, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// 6x3 fits the 10x4 region, but rotated to 3x6 it would poke out the top.
	m, err := c.Connect("M", Module{X: 2, Y: 0, Width: 6, Height: 3}, Pin{DX: 4, DY: 1})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	before := c.SaveModule(m)

	// Every angle passes through the 3x6 intermediate state, so all are rejected.
	for _, angle := range []int{90, 180, 270} {
		if c.RotateClockwise(m, angle) {
			t.Errorf("rotation by %d must be rejected", angle)
		}
		if got := c.Module(m); got != before.module {
			t.Errorf("module changed by rejected %d rotation: %+v", angle, got)
		}
		if got := c.Pin(c.Pins(m)[0]); got != before.pins[0] {
			t.Errorf("pin changed by rejected %d rotation: %+v", angle, got)
		}
	}
	if err := c.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants: %v", err)
	}
}

func TestRotatePanicsOnInvalidAngle(t *testing.T) {
	c, _ := New(10, 10)
	m, err := c.Connect("M", Module{X: 0, Y: 0, Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("RotateClockwise(45) must panic")
		}
	}()
	c.RotateClockwise(m, 45)
}

func TestDistanceUntilBoundary(t *testing.T) {
	c, a, _ := buildPair(t)

	tests := []struct {
		dir  geo.Direction
		want int
	}{
		{geo.North, 8},
		{geo.East, 8},
		{geo.South, 0},
		{geo.West, 0},
	}
	for _, tt := range tests {
		if got := c.DistanceUntilBoundary(a, tt.dir); got != tt.want {
			t.Errorf("DistanceUntilBoundary(A, %s) = %d, want %d", tt.dir, got, tt.want)
		}
	}
}

func TestTranslateUntilCollision(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := c.Connect("A", Module{X: 0, Y: 0, Width: 2, Height: 2})
	b, _ := c.Connect("B", Module{X: 5, Y: 0, Width: 2, Height: 2})
	if _, err := c.Connect("C", Module{X: 0, Y: 5, Width: 10, Height: 2}); err != nil {
		t.Fatalf("Connect C: %v", err)
	}

	// B shares A's horizontal band, so A stops against B's left edge.
	if got := c.DistanceUntilCollision(a, geo.East); got != 3 {
		t.Errorf("DistanceUntilCollision(A, east) = %d, want 3", got)
	}
	// B is outside A's vertical band; only C caps the climb.
	if got := c.DistanceUntilCollision(a, geo.North); got != 3 {
		t.Errorf("DistanceUntilCollision(A, north) = %d, want 3", got)
	}

	c.TranslateUntilCollision(a, geo.East)
	if got := c.Module(a); got.X != 3 || got.Y != 0 {
		t.Errorf("A after east slide = %+v, want X=3 Y=0", got)
	}
	if c.OverlapArea(a, b) != 0 {
		t.Error("sliding until collision must not create overlap")
	}
	if !c.IsFeasible() {
		t.Error("placement must stay feasible")
	}

	// Already at the south wall: the slide is a no-op.
	c.TranslateUntilCollision(a, geo.South)
	if got := c.Module(a); got.Y != 0 {
		t.Errorf("A after south slide = %+v, want Y=0", got)
	}
}

func TestCollisionIgnoresOverlappingModules(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := c.Connect("A", Module{X: 4, Y: 4, Width: 2, Height: 2})
	if _, err := c.Connect("B", Module{X: 4, Y: 4, Width: 2, Height: 2}); err != nil {
		t.Fatalf("Connect B: %v", err)
	}

	// B overlaps A, so its gap is non-positive and only the boundary counts.
	if got := c.DistanceUntilCollision(a, geo.East); got != 4 {
		t.Errorf("DistanceUntilCollision = %d, want 4", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c, a, b := buildPair(t)

	whole := c.SaveState()
	single := c.SaveModule(b)

	c.Translate(a, geo.North, 3)
	c.TranslateUntilCollision(b, geo.West)
	c.Reflect(b, geo.AxisY)

	c.RestoreModule(single)
	if got := c.Module(b); got != (Module{X: 5, Y: 5, Width: 2, Height: 2}) {
		t.Errorf("B after RestoreModule = %+v", got)
	}
	if got := c.Module(a); got.Y != 3 {
		t.Errorf("RestoreModule must not touch other modules: A = %+v", got)
	}

	c.RestoreState(whole)
	if got := c.Module(a); got != (Module{X: 0, Y: 0, Width: 2, Height: 2}) {
		t.Errorf("A after RestoreState = %+v", got)
	}
	if got := c.Pin(c.Pins(b)[0]); got != (Pin{DX: 1, DY: 1}) {
		t.Errorf("B pin after RestoreState = %+v", got)
	}
}

func TestAverageModuleAreaPanicsWhenEmpty(t *testing.T) {
	c, _ := New(5, 5)
	defer func() {
		if recover() == nil {
			t.Error("AverageModuleArea on an empty circuit must panic")
		}
	}()
	c.AverageModuleArea()
}
