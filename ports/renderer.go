package ports

import "rtmslfp/domain/record"

// FigureRenderer draws the fixed diagnostic panel layout to an image file.
// Rendering is presentation-only: everything in ReportData is precomputed by
// the analysis chain and the renderer must not derive scientific quantities
// itself.
type FigureRenderer interface {
	RenderFigure(data *ReportData, path string) error
}

// ReportData carries every input of the diagnostic figure.
type ReportData struct {
	DurationMs   float64
	PulseTimesMs []float64

	// Raster blocks in display order, one per population.
	Raster []RasterBlock

	// Per-population firing rate series, aligned with Raster order.
	Rates []PopulationRates

	// Full LFP trace of the selected electrode; nil when LFP is absent.
	Electrode   int
	LFPSampleMs float64
	LFPTrace    []float64

	// Pre/post comparison windows with their raw trace slices and stats.
	Pre  WindowDetail
	Post WindowDetail

	PreSpectrum  record.SpectrumSeries
	PostSpectrum record.SpectrumSeries
}

// RasterBlock is the spike raster of one population.
type RasterBlock struct {
	Population string
	CellCount  int
	Spikes     []RasterPoint
}

// RasterPoint is one spike: its time and the cell's row within the block.
type RasterPoint struct {
	TimeMs float64
	Row    int
}

// PopulationRates pairs a population with its binned rate series.
type PopulationRates struct {
	Population string
	Series     record.FiringRateSeries
}

// WindowDetail is the raw LFP slice of one comparison window plus its
// summary statistics.
type WindowDetail struct {
	StartMs float64
	EndMs   float64
	Trace   []float64 // nil when LFP is absent
	MeanMV  float64
	StdMV   float64
}
