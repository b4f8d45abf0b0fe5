package app

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"rtmslfp/domain/record"
	"rtmslfp/domain/stim"
	"rtmslfp/internal/analysis"
	"rtmslfp/ports"
)

// AnalysisOptions selects what the offline analysis chain computes.
type AnalysisOptions struct {
	Electrode     int        // LFP channel for traces and spectra
	BinSizeMs     float64    // firing-rate histogram bin width
	PreWindowMs   [2]float64 // pre-stimulation comparison window
	PostWindowMs  [2]float64 // post-stimulation comparison window
	SegmentLength int        // Welch FFT segment length
}

// DefaultAnalysisOptions mirrors the standard quick-look: middle electrode of
// the five-electrode laminar array, 50 ms bins, pre [0,500) vs post
// [1500,2000) ms, 256-sample Welch segments.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Electrode:     2,
		BinSizeMs:     50,
		PreWindowMs:   [2]float64{0, 500},
		PostWindowMs:  [2]float64{1500, 2000},
		SegmentLength: 256,
	}
}

// PopulationSummary is one population's line of the textual summary.
type PopulationSummary struct {
	Population string
	Cells      int
	Spikes     int
	MeanRateHz float64
	Tier       string
}

// AnalysisReport bundles everything the report composer consumes: the
// figure inputs plus the summary statistics.
type AnalysisReport struct {
	RecordPath  string
	DurationMs  float64
	TotalSpikes int
	Populations []PopulationSummary
	TMS         *stim.Config
	Electrodes  int
	LFPSampleMs float64
	Figure      ports.ReportData
}

// AnalysisService runs the offline chain: load record, resolve populations,
// compute rates and spectra, and assemble the report inputs.
type AnalysisService struct {
	store ports.RecordStore
}

func NewAnalysisService(store ports.RecordStore) *AnalysisService {
	return &AnalysisService{store: store}
}

// Analyze loads one persisted record and computes the full diagnostic
// report. The only hard failure is an unloadable record; missing data
// degrades to empty panels.
func (s *AnalysisService) Analyze(path string, opts AnalysisOptions) (*AnalysisReport, error) {
	rec, err := s.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading record: %w", err)
	}

	az := analysis.New(rec)
	pops := az.Populations()

	report := &AnalysisReport{
		RecordPath:  path,
		DurationMs:  rec.DurationMs,
		TotalSpikes: len(rec.SpikeTimesMs),
		TMS:         rec.Config.TMS,
		Electrodes:  rec.ElectrodeCount(),
		LFPSampleMs: rec.Config.LFPSampleMs,
	}

	var pulseTimes []float64
	if rec.Config.TMS != nil {
		pulseTimes = stim.PulseOnsets(*rec.Config.TMS)
	}

	figure := ports.ReportData{
		DurationMs:   rec.DurationMs,
		PulseTimesMs: pulseTimes,
		Electrode:    opts.Electrode,
		LFPSampleMs:  rec.Config.LFPSampleMs,
	}

	for _, pop := range rec.Config.PopulationOrder() {
		ids := pops.CellIDs(pop)
		summary := PopulationSummary{
			Population: pop,
			Cells:      len(ids),
			Spikes:     az.PopulationSpikeCount(pop),
			MeanRateHz: az.MeanRateHz(pop),
			Tier:       pops.Tier(pop).String(),
		}
		report.Populations = append(report.Populations, summary)

		figure.Raster = append(figure.Raster, rasterBlock(rec, pop, ids))
		figure.Rates = append(figure.Rates, ports.PopulationRates{
			Population: pop,
			Series:     az.FiringRateHistogram(pop, opts.BinSizeMs),
		})
	}

	figure.LFPTrace = rec.LFPChannel(opts.Electrode)
	figure.Pre = windowDetail(rec, figure.LFPTrace, opts.PreWindowMs)
	figure.Post = windowDetail(rec, figure.LFPTrace, opts.PostWindowMs)
	figure.PreSpectrum = az.Spectrum(opts.Electrode, opts.PreWindowMs, opts.SegmentLength)
	figure.PostSpectrum = az.Spectrum(opts.Electrode, opts.PostWindowMs, opts.SegmentLength)

	report.Figure = figure

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"spikes": report.TotalSpikes,
		"pulses": len(pulseTimes),
	}).Info("analysis complete")
	return report, nil
}

// rasterBlock maps a population's spikes onto rows within its raster band,
// row index = position of the cell id within the population.
func rasterBlock(rec *record.SimulationRecord, pop string, ids []int) ports.RasterBlock {
	block := ports.RasterBlock{Population: pop, CellCount: len(ids)}
	if len(ids) == 0 {
		return block
	}
	row := make(map[int]int, len(ids))
	for i, id := range ids {
		row[id] = i
	}
	for i, t := range rec.SpikeTimesMs {
		if r, ok := row[rec.SpikeCellIDs[i]]; ok {
			block.Spikes = append(block.Spikes, ports.RasterPoint{TimeMs: t, Row: r})
		}
	}
	return block
}

// windowDetail slices the LFP trace to a comparison window (floor-based
// ms-to-sample conversion) and annotates it with mean and std.
func windowDetail(rec *record.SimulationRecord, trace []float64, windowMs [2]float64) ports.WindowDetail {
	detail := ports.WindowDetail{StartMs: windowMs[0], EndMs: windowMs[1]}
	if len(trace) == 0 {
		return detail
	}
	dt := rec.Config.LFPSampleMs
	if dt <= 0 {
		dt = 0.1
	}
	start := int(windowMs[0] / dt)
	end := int(windowMs[1] / dt)
	if start < 0 {
		start = 0
	}
	if end > len(trace) {
		end = len(trace)
	}
	if end <= start {
		return detail
	}
	detail.Trace = trace[start:end]
	if mean, err := stats.Mean(detail.Trace); err == nil {
		detail.MeanMV = mean
	}
	if std, err := stats.StandardDeviation(detail.Trace); err == nil {
		detail.StdMV = std
	}
	return detail
}
