package netlist

import (
	"encoding/json"

	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/errors"
)

// Placement is the canonical serialization format for a placed circuit.
// Used for API responses, storage, caching, and re-rendering.
//
// The format is designed for round-trip fidelity: a placement builds back
// into a circuit identical to the one it was captured from.
type Placement struct {
	Region    Region         `json:"region" bson:"region"`
	Modules   []PlacedModule `json:"modules" bson:"modules"`
	Nets      []PlacedNet    `json:"nets,omitempty" bson:"nets,omitempty"`
	Objective int            `json:"objective" bson:"objective"`
	Feasible  bool           `json:"feasible" bson:"feasible"`
}

// PlacedModule is one module's final geometry.
type PlacedModule struct {
	Name   string      `json:"name" bson:"name"`
	X      int         `json:"x" bson:"x"`
	Y      int         `json:"y" bson:"y"`
	Width  int         `json:"width" bson:"width"`
	Height int         `json:"height" bson:"height"`
	Pins   []PlacedPin `json:"pins,omitempty" bson:"pins,omitempty"`
}

// PlacedPin is one pin's offsets within its module.
type PlacedPin struct {
	DX int `json:"dx" bson:"dx"`
	DY int `json:"dy" bson:"dy"`
}

// PlacedNet lists a net's pins as "module.pinIndex" references.
type PlacedNet struct {
	Pins []string `json:"pins" bson:"pins"`
}

// CapturePlacement snapshots the circuit's current placement. The objective
// is recomputed by the caller's optimizer; feasibility comes from the
// circuit itself.
func CapturePlacement(c *circuit.Circuit, objective int) *Placement {
	p := &Placement{
		Region:    Region{Width: c.Width(), Height: c.Height()},
		Objective: objective,
		Feasible:  c.IsFeasible(),
	}

	for i := 0; i < c.NumModules(); i++ {
		id := circuit.ModuleID(i)
		m := c.Module(id)

		pm := PlacedModule{
			Name: c.ModuleName(id),
			X:    m.X, Y: m.Y,
			Width: m.Width, Height: m.Height,
		}
		for _, pid := range c.Pins(id) {
			pin := c.Pin(pid)
			pm.Pins = append(pm.Pins, PlacedPin{DX: pin.DX, DY: pin.DY})
		}
		p.Modules = append(p.Modules, pm)
	}

	for i := 0; i < c.NumNets(); i++ {
		var net PlacedNet
		for _, pid := range c.Net(i).Pins() {
			net.Pins = append(net.Pins, pinRef(c, pid))
		}
		p.Nets = append(p.Nets, net)
	}

	return p
}

// Build reconstructs a circuit from the placement.
func (p *Placement) Build() (*circuit.Circuit, error) {
	doc := &Document{Region: p.Region}

	for _, pm := range p.Modules {
		def := ModuleDef{
			Name:     pm.Name,
			Position: []int{pm.X, pm.Y},
			Size:     []int{pm.Width, pm.Height},
		}
		for _, pin := range pm.Pins {
			def.Pins = append(def.Pins, []int{pin.DX, pin.DY})
		}
		doc.Modules = append(doc.Modules, def)
	}
	for _, net := range p.Nets {
		doc.Nets = append(doc.Nets, NetDef{Pins: net.Pins})
	}

	return doc.Build()
}

// ToJSON serializes the placement with indentation for readability.
func (p *Placement) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to marshal placement")
	}
	return data, nil
}

// PlacementFromJSON deserializes a placement.
func PlacementFromJSON(data []byte) (*Placement, error) {
	var p Placement
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "failed to parse placement")
	}
	return &p, nil
}
