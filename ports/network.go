package ports

// Network is the narrow capability interface onto the external biophysical
// simulator's cell roster. The stimulation core only ever sees population
// tags, named compartments and an "attach current injection" operation, so
// it never depends on the concrete simulator's object model.
type Network interface {
	// Cells returns the full roster in gid order.
	Cells() []Cell
}

// Cell is one simulated neuron as seen by the stimulation core.
type Cell interface {
	// GID is the cell's global id within the network.
	GID() int

	// Population is the cell's population tag, e.g. "HL23PYR".
	Population() string

	// Compartment looks up a named compartment; ok is false when the cell
	// has no compartment of that name.
	Compartment(name string) (Compartment, bool)

	// Compartments lists the cell's compartments in declaration order.
	Compartments() []Compartment
}

// Compartment is a named section of a cell that accepts current injections.
type Compartment interface {
	Name() string

	// AttachCurrent schedules a constant current injection of the given
	// amplitude (nA) starting at onset (ms) for the given duration (ms),
	// and returns an opaque handle to the created stimulation event.
	AttachCurrent(amplitudeNA, onsetMs, durationMs float64) (StimHandle, error)
}

// StimHandle is an opaque reference to one attached current-injection phase.
// The underlying resource belongs to the simulator; holders keep the handle
// only for bookkeeping and collective disposal.
type StimHandle interface {
	ID() string

	// Release detaches the injection from the simulator. Safe to call once.
	Release()
}
