// Package netlist reads and writes circuit definitions and placement
// snapshots.
//
// A netlist is the TOML input format describing the placement region, the
// modules with their pins, and the nets connecting pins across modules. A
// placement is the JSON output format capturing where every module ended up,
// together with the objective value. Both formats build back into a
// [circuit.Circuit], so a stored artifact can always be re-rendered or
// re-optimized.
package netlist

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/errors"
)

// Document is the TOML netlist format.
//
// Example:
//
//	region = { width = 10, height = 10 }
//
//	[[module]]
//	name = "cpu"
//	position = [0, 0]
//	size = [2, 2]
//	pins = [[0, 0]]
//
//	[[net]]
//	pins = ["cpu.0", "ram.0"]
type Document struct {
	Region  Region      `toml:"region"`
	Modules []ModuleDef `toml:"module"`
	Nets    []NetDef    `toml:"net"`
}

// Region is the placement area.
type Region struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// ModuleDef describes one module: its name, lower-left position, size, and
// pin offsets relative to the module's lower-left corner.
type ModuleDef struct {
	Name     string  `toml:"name"`
	Position []int   `toml:"position"`
	Size     []int   `toml:"size"`
	Pins     [][]int `toml:"pins,omitempty"`
}

// NetDef lists the pins of one net as "module.pinIndex" references.
type NetDef struct {
	Pins []string `toml:"pins"`
}

// Parse decodes a TOML netlist.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "failed to parse netlist")
	}
	return &doc, nil
}

// Read decodes a TOML netlist from a reader.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "failed to read netlist")
	}
	return Parse(data)
}

// ReadFile decodes a TOML netlist from a file.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "netlist %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "failed to read netlist %s", path)
	}
	return Parse(data)
}

// Encode writes the document as TOML.
func (d *Document) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode netlist")
	}
	return nil
}

// Build validates the document and constructs the circuit it describes.
// Modules are connected in document order, so module N in the file is
// ModuleID N in the circuit.
func (d *Document) Build() (*circuit.Circuit, error) {
	c, err := circuit.New(d.Region.Width, d.Region.Height)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRegion, err,
			"invalid region %dx%d", d.Region.Width, d.Region.Height)
	}

	if len(d.Modules) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCircuit, "netlist defines no modules")
	}

	for i, def := range d.Modules {
		if err := errors.ValidateModuleName(def.Name); err != nil {
			return nil, err
		}
		if len(def.Position) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidModule,
				"module %q: position must be [x, y]", def.Name)
		}
		if len(def.Size) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidModule,
				"module %q: size must be [width, height]", def.Name)
		}

		pins := make([]circuit.Pin, len(def.Pins))
		for j, p := range def.Pins {
			if len(p) != 2 {
				return nil, errors.New(errors.ErrCodeInvalidPin,
					"module %q: pin %d must be [dx, dy]", def.Name, j)
			}
			pins[j] = circuit.Pin{DX: p[0], DY: p[1]}
		}

		m := circuit.Module{
			X: def.Position[0], Y: def.Position[1],
			Width: def.Size[0], Height: def.Size[1],
		}
		if _, err := c.Connect(def.Name, m, pins...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModule, err,
				"module %d (%q) rejected", i, def.Name)
		}
	}

	for i, net := range d.Nets {
		pins := make([]circuit.PinID, len(net.Pins))
		for j, ref := range net.Pins {
			pid, err := resolvePinRef(c, ref)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidNet, err, "net %d", i)
			}
			pins[j] = pid
		}
		if _, err := c.DefineNet(pins...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidNet, err, "net %d rejected", i)
		}
	}

	return c, nil
}

// resolvePinRef resolves a "module.pinIndex" reference against the circuit.
func resolvePinRef(c *circuit.Circuit, ref string) (circuit.PinID, error) {
	name, idxStr, ok := strings.Cut(ref, ".")
	if !ok {
		return 0, fmt.Errorf("pin reference %q must be module.pinIndex", ref)
	}

	id, ok := c.ModuleByName(name)
	if !ok {
		return 0, fmt.Errorf("pin reference %q: unknown module %q", ref, name)
	}

	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return 0, fmt.Errorf("pin reference %q: bad pin index: %w", ref, err)
	}

	pins := c.Pins(id)
	if idx < 0 || idx >= len(pins) {
		return 0, fmt.Errorf("pin reference %q: module %q has %d pins", ref, name, len(pins))
	}

	return pins[idx], nil
}

// pinRef formats a pin as a "module.pinIndex" reference.
func pinRef(c *circuit.Circuit, pid circuit.PinID) string {
	owner := c.PinOwner(pid)
	for i, p := range c.Pins(owner) {
		if p == pid {
			return fmt.Sprintf("%s.%d", c.ModuleName(owner), i)
		}
	}
	panic(fmt.Sprintf("netlist: pin %d not owned by its owner", pid))
}

// FromCircuit captures a circuit back into a document, preserving module
// order and pin references. Useful for writing out a normalized netlist.
func FromCircuit(c *circuit.Circuit) *Document {
	doc := &Document{
		Region: Region{Width: c.Width(), Height: c.Height()},
	}

	for i := 0; i < c.NumModules(); i++ {
		id := circuit.ModuleID(i)
		m := c.Module(id)

		def := ModuleDef{
			Name:     c.ModuleName(id),
			Position: []int{m.X, m.Y},
			Size:     []int{m.Width, m.Height},
		}
		for _, pid := range c.Pins(id) {
			p := c.Pin(pid)
			def.Pins = append(def.Pins, []int{p.DX, p.DY})
		}
		doc.Modules = append(doc.Modules, def)
	}

	for i := 0; i < c.NumNets(); i++ {
		var net NetDef
		for _, pid := range c.Net(i).Pins() {
			net.Pins = append(net.Pins, pinRef(c, pid))
		}
		doc.Nets = append(doc.Nets, net)
	}

	return doc
}
