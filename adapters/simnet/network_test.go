package simnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork_AddCellAssignsSequentialGIDs(t *testing.T) {
	n := New()
	n.AddCell("HL23PYR", "soma_0")
	n.AddCell("HL23PV", "soma_0")

	cells := n.Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, 0, cells[0].GID())
	assert.Equal(t, 1, cells[1].GID())
	assert.Equal(t, "HL23PV", cells[1].Population())
}

func TestNetwork_FromCounts(t *testing.T) {
	n := FromCounts(
		map[string]int{"HL23PYR": 3, "HL23SST": 2},
		[]string{"HL23PYR", "HL23SST"},
		[]string{"soma_0", "dend_0"},
	)

	cells := n.Cells()
	require.Len(t, cells, 5)
	assert.Equal(t, "HL23PYR", cells[2].Population())
	assert.Equal(t, "HL23SST", cells[3].Population())

	comps := cells[0].Compartments()
	require.Len(t, comps, 2)
	assert.Equal(t, "soma_0", comps[0].Name())
}

func TestCompartment_AttachAndRelease(t *testing.T) {
	n := New()
	cell := n.AddCell("HL23PYR", "soma_0")

	comp, ok := cell.Compartment("soma_0")
	require.True(t, ok)

	h1, err := comp.AttachCurrent(1.5, 500, 0.5)
	require.NoError(t, err)
	h2, err := comp.AttachCurrent(-1.5, 500.5, 0.5)
	require.NoError(t, err)
	assert.NotEqual(t, h1.ID(), h2.ID())

	soma := comp.(*Compartment)
	require.Len(t, soma.Injections(), 2)
	assert.Equal(t, 1.5, soma.Injections()[0].AmplitudeNA)
	assert.Equal(t, 500.5, soma.Injections()[1].OnsetMs)

	h1.Release()
	require.Len(t, soma.Injections(), 1)
	assert.Equal(t, h2.ID(), soma.Injections()[0].ID)

	// Releasing twice is a no-op.
	h1.Release()
	assert.Len(t, soma.Injections(), 1)
}

func TestCompartment_RejectsNegativeDuration(t *testing.T) {
	n := New()
	cell := n.AddCell("HL23PYR", "soma_0")
	comp, _ := cell.Compartment("soma_0")

	_, err := comp.AttachCurrent(1.0, 0, -1)
	assert.Error(t, err)
}

func TestCell_UnknownCompartment(t *testing.T) {
	n := New()
	cell := n.AddCell("HL23PYR", "soma_0")

	_, ok := cell.Compartment("apic_0")
	assert.False(t, ok)
}
