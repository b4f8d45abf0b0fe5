package analysis

import (
	"math"

	"github.com/sirupsen/logrus"

	"rtmslfp/domain/record"
)

// Analyzer computes population firing rates and LFP spectra for one loaded
// record. All methods are bounded, in-memory computations over data already
// resident; nothing blocks and nothing needs cancelling.
type Analyzer struct {
	rec  *record.SimulationRecord
	pops *Resolver
}

// New builds an analyzer (and its population resolver) for one record.
func New(rec *record.SimulationRecord) *Analyzer {
	return &Analyzer{rec: rec, pops: NewResolver(rec)}
}

// Populations exposes the analyzer's resolver, which shares its per-record
// cache with the rate computation.
func (a *Analyzer) Populations() *Resolver {
	return a.pops
}

// Record returns the underlying read-only record.
func (a *Analyzer) Record() *record.SimulationRecord {
	return a.rec
}

// FiringRateHistogram partitions [0, duration) into fixed-width bins and
// converts per-bin spike counts of one population into Hz.
//
// The bin grid is computed identically regardless of data availability:
// zero cells or zero spikes yield an all-zero series over the same grid,
// never a shorter series and never a division by zero, so series from
// different conditions always align bin for bin.
func (a *Analyzer) FiringRateHistogram(pop string, binSizeMs float64) record.FiringRateSeries {
	if binSizeMs <= 0 || a.rec.DurationMs <= 0 {
		return record.FiringRateSeries{}
	}

	nBins := int(math.Ceil(a.rec.DurationMs / binSizeMs))
	centers := make([]float64, nBins)
	rates := make([]float64, nBins)
	for i := range centers {
		centers[i] = (float64(i) + 0.5) * binSizeMs
	}
	series := record.FiringRateSeries{BinCentersMs: centers, RatesHz: rates}

	ids := a.pops.CellIDs(pop)
	if len(ids) == 0 {
		return series
	}
	member := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}

	counts := make([]int, nBins)
	for i, t := range a.rec.SpikeTimesMs {
		if t < 0 || t >= a.rec.DurationMs {
			continue
		}
		if _, ok := member[a.rec.SpikeCellIDs[i]]; !ok {
			continue
		}
		bin := int(t / binSizeMs)
		if bin >= nBins {
			bin = nBins - 1
		}
		counts[bin]++
	}

	binSeconds := binSizeMs / 1000.0
	for i, c := range counts {
		rates[i] = float64(c) / binSeconds / float64(len(ids))
	}
	return series
}

// PopulationSpikeCount counts the record's spikes belonging to a population.
func (a *Analyzer) PopulationSpikeCount(pop string) int {
	ids := a.pops.CellIDs(pop)
	if len(ids) == 0 {
		return 0
	}
	member := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}
	n := 0
	for _, id := range a.rec.SpikeCellIDs {
		if _, ok := member[id]; ok {
			n++
		}
	}
	return n
}

// MeanRateHz is the population's mean firing rate over the whole run.
func (a *Analyzer) MeanRateHz(pop string) float64 {
	cells := a.pops.CellCount(pop)
	if cells == 0 || a.rec.DurationMs <= 0 {
		return 0
	}
	spikes := a.PopulationSpikeCount(pop)
	return float64(spikes) / (a.rec.DurationMs / 1000.0) / float64(cells)
}

// Spectrum estimates the power spectral density of one LFP channel over a
// time window via Welch's method. Window bounds in ms are converted to
// sample indices by truncating integer division; boundary samples follow
// the floor-based start/end, nothing is interpolated.
//
// An absent LFP matrix or an out-of-range electrode yields an empty series
// with a warning, never an error.
func (a *Analyzer) Spectrum(electrode int, windowMs [2]float64, segmentLength int) record.SpectrumSeries {
	if !a.rec.HasLFP() {
		logrus.Warn("analysis: no LFP data, returning empty spectrum")
		return record.SpectrumSeries{}
	}
	trace := a.rec.LFPChannel(electrode)
	if trace == nil {
		logrus.WithField("electrode", electrode).Warn("analysis: electrode out of range, returning empty spectrum")
		return record.SpectrumSeries{}
	}

	dt := a.rec.Config.LFPSampleMs
	if dt <= 0 {
		dt = 0.1
	}
	fs := 1000.0 / dt

	start := int(windowMs[0] / dt)
	end := int(windowMs[1] / dt)
	if start < 0 {
		start = 0
	}
	if end > len(trace) {
		end = len(trace)
	}
	if end <= start {
		return record.SpectrumSeries{}
	}

	freqs, psd := welchPSD(trace[start:end], fs, segmentLength)
	return record.SpectrumSeries{FrequenciesHz: freqs, PowerDensity: psd}
}
