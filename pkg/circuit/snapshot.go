package circuit

// ModuleState captures one module's geometry and pin offsets so a trial
// transformation can be reverted without touching the rest of the placement.
type ModuleState struct {
	id     ModuleID
	module Module
	pins   []Pin
}

// ID returns the module the state belongs to.
func (s ModuleState) ID() ModuleID { return s.id }

// SaveModule snapshots the module's rectangle and pin offsets.
func (c *Circuit) SaveModule(id ModuleID) ModuleState {
	owned := c.modulePins[id]
	pins := make([]Pin, len(owned))
	for i, pid := range owned {
		pins[i] = c.pins[pid]
	}
	return ModuleState{id: id, module: c.modules[id], pins: pins}
}

// RestoreModule reverts a module to a previously saved state.
// The snapshot must come from this circuit.
func (c *Circuit) RestoreModule(s ModuleState) {
	c.modules[s.id] = s.module
	for i, pid := range c.modulePins[s.id] {
		c.pins[pid] = s.pins[i]
	}
}

// State captures the whole placement: every module rectangle and every pin
// offset. The circuit's structure (names, nets, connectivity) is immutable
// after construction and is not part of the state.
type State struct {
	modules []Module
	pins    []Pin
}

// SaveState snapshots the full placement, typically to remember the best
// solution seen so far.
func (c *Circuit) SaveState() State {
	return State{
		modules: append([]Module(nil), c.modules...),
		pins:    append([]Pin(nil), c.pins...),
	}
}

// RestoreState reverts the full placement to a previously saved state.
// The snapshot must come from this circuit.
func (c *Circuit) RestoreState(s State) {
	copy(c.modules, s.modules)
	copy(c.pins, s.pins)
}
