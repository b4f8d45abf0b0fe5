// Package simnet is an in-memory implementation of the network port. It
// stands in for the external biophysical simulator in tests and dry runs:
// it keeps a cell roster with named compartments and records every attached
// current injection instead of integrating anything.
package simnet

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"rtmslfp/ports"
)

// Network holds an ordered in-memory cell roster. Implements ports.Network.
type Network struct {
	cells []*Cell
}

func New() *Network {
	return &Network{}
}

// FromCounts synthesizes a roster with contiguous gids assigned in the given
// population order, every cell carrying the same compartment names in
// declaration order. Used by the CLI dry run.
func FromCounts(counts map[string]int, order []string, compartments []string) *Network {
	if len(order) == 0 {
		order = make([]string, 0, len(counts))
		for pop := range counts {
			order = append(order, pop)
		}
		sort.Strings(order)
	}
	n := New()
	for _, pop := range order {
		for i := 0; i < counts[pop]; i++ {
			n.AddCell(pop, compartments...)
		}
	}
	return n
}

// AddCell appends a cell with the next gid and the named compartments in
// declaration order, returning it for further setup.
func (n *Network) AddCell(population string, compartments ...string) *Cell {
	cell := &Cell{
		gid:    len(n.cells),
		pop:    population,
		byName: make(map[string]*Compartment, len(compartments)),
	}
	for _, name := range compartments {
		comp := &Compartment{name: name}
		cell.comps = append(cell.comps, comp)
		cell.byName[name] = comp
	}
	n.cells = append(n.cells, cell)
	return cell
}

func (n *Network) Cells() []ports.Cell {
	out := make([]ports.Cell, len(n.cells))
	for i, c := range n.cells {
		out[i] = c
	}
	return out
}

// Cell implements ports.Cell.
type Cell struct {
	gid    int
	pop    string
	comps  []*Compartment
	byName map[string]*Compartment
}

func (c *Cell) GID() int           { return c.gid }
func (c *Cell) Population() string { return c.pop }

func (c *Cell) Compartment(name string) (ports.Compartment, bool) {
	comp, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return comp, true
}

func (c *Cell) Compartments() []ports.Compartment {
	out := make([]ports.Compartment, len(c.comps))
	for i, comp := range c.comps {
		out[i] = comp
	}
	return out
}

// Injection is one recorded current-injection phase.
type Injection struct {
	ID          string
	AmplitudeNA float64
	OnsetMs     float64
	DurationMs  float64
}

// Compartment implements ports.Compartment and records attached injections.
type Compartment struct {
	name       string
	injections []Injection
}

func (c *Compartment) Name() string { return c.name }

func (c *Compartment) AttachCurrent(amplitudeNA, onsetMs, durationMs float64) (ports.StimHandle, error) {
	if durationMs < 0 {
		return nil, fmt.Errorf("simnet: negative injection duration %v", durationMs)
	}
	inj := Injection{
		ID:          uuid.NewString(),
		AmplitudeNA: amplitudeNA,
		OnsetMs:     onsetMs,
		DurationMs:  durationMs,
	}
	c.injections = append(c.injections, inj)
	return &handle{id: inj.ID, comp: c}, nil
}

// Injections lists the recorded injections in attachment order.
func (c *Compartment) Injections() []Injection {
	return c.injections
}

type handle struct {
	id       string
	comp     *Compartment
	released bool
}

func (h *handle) ID() string { return h.id }

func (h *handle) Release() {
	if h.released {
		return
	}
	h.released = true
	kept := h.comp.injections[:0]
	for _, inj := range h.comp.injections {
		if inj.ID != h.id {
			kept = append(kept, inj)
		}
	}
	h.comp.injections = kept
}
