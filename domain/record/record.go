package record

import "rtmslfp/domain/stim"

// DefaultPopulationOrder is the gid assignment order of the Yao et al.
// L2/3 microcircuit. It is only consulted when the record's own config
// does not carry a population order.
var DefaultPopulationOrder = []string{"HL23PYR", "HL23SST", "HL23PV", "HL23VIP"}

// SimulationRecord is the typed, read-only view of one persisted simulator
// output document. It is created once by a record store and never mutated
// afterwards.
//
// Invariant: len(SpikeTimesMs) == len(SpikeCellIDs); the two arrays are
// aligned index for index.
type SimulationRecord struct {
	Path string // source document, for error messages

	SpikeTimesMs []float64
	SpikeCellIDs []int

	// LFP sample matrix, time-step-major and electrode-minor.
	// Nil when the simulation did not record LFP.
	LFP [][]float64

	Roster []RosterCell // per-cell roster; empty when not persisted

	Config     RunConfig
	DurationMs float64
}

// RosterCell is one entry of the per-cell roster persisted with the record.
// GID is -1 when the roster entry carries no explicit gid; the cell's
// position in the roster is then its implicit gid.
type RosterCell struct {
	GID        int
	Population string
}

// RunConfig is the subset of the persisted run configuration the analysis
// chain consumes.
type RunConfig struct {
	CellCounts  map[string]int // per-population cell counts, may be nil
	PopOrder    []string       // population order for gid-range inference
	LFPSampleMs float64        // LFP sampling interval (ms)
	TMS         *stim.Config   // nil when the run had no TMS protocol
}

// PopulationOrder returns the configured population order, falling back to
// the fixed Yao L2/3 order when the record does not carry one.
func (c RunConfig) PopulationOrder() []string {
	if len(c.PopOrder) > 0 {
		return c.PopOrder
	}
	return DefaultPopulationOrder
}

// HasLFP reports whether the record carries any LFP samples.
func (r *SimulationRecord) HasLFP() bool {
	return len(r.LFP) > 0 && len(r.LFP[0]) > 0
}

// ElectrodeCount is the number of LFP channels, zero when LFP is absent.
func (r *SimulationRecord) ElectrodeCount() int {
	if !r.HasLFP() {
		return 0
	}
	return len(r.LFP[0])
}

// LFPChannel extracts the full time series of one electrode. Returns nil for
// an out-of-range electrode or when LFP is absent.
func (r *SimulationRecord) LFPChannel(electrode int) []float64 {
	if !r.HasLFP() || electrode < 0 || electrode >= r.ElectrodeCount() {
		return nil
	}
	trace := make([]float64, len(r.LFP))
	for i, row := range r.LFP {
		if electrode < len(row) {
			trace[i] = row[electrode]
		}
	}
	return trace
}

// FiringRateSeries is a binned per-population firing rate time series.
// Both slices always have the same length and rates are non-negative.
type FiringRateSeries struct {
	BinCentersMs []float64
	RatesHz      []float64
}

// SpectrumSeries is a one-sided Welch power spectral density estimate for
// one (electrode, time window) pair. Both slices always have the same
// length; an empty series means no LFP data was available.
type SpectrumSeries struct {
	FrequenciesHz []float64
	PowerDensity  []float64 // amplitude^2 / Hz
}
