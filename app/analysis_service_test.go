package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtmslfp/domain/record"
	"rtmslfp/domain/stim"
)

// stubStore serves a fixed record without touching the filesystem.
type stubStore struct {
	rec *record.SimulationRecord
	err error
}

func (s *stubStore) Load(path string) (*record.SimulationRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.rec.Path = path
	return s.rec, nil
}

func stimRecord() *record.SimulationRecord {
	lfp := make([][]float64, 20000) // 2000 ms at 0.1 ms
	for i := range lfp {
		lfp[i] = []float64{0, 0, 0.5, 0, 0}
	}
	return &record.SimulationRecord{
		SpikeTimesMs: []float64{5, 12, 12, 600},
		SpikeCellIDs: []int{0, 0, 1, 80},
		LFP:          lfp,
		Config: record.RunConfig{
			CellCounts:  map[string]int{"HL23PYR": 80, "HL23SST": 8, "HL23PV": 6, "HL23VIP": 6},
			LFPSampleMs: 0.1,
			TMS: &stim.Config{
				FieldVPerM:    40,
				FrequencyHz:   10,
				WindowStartMs: 500,
				WindowEndMs:   1500,
				PulseWidthMs:  1,
				Shape:         "Sine",
				TargetPop:     "HL23PYR",
			},
		},
		DurationMs: 2000,
	}
}

func TestAnalysisService_FullChain(t *testing.T) {
	svc := NewAnalysisService(&stubStore{rec: stimRecord()})

	report, err := svc.Analyze("run_data.json", DefaultAnalysisOptions())
	require.NoError(t, err)

	assert.Equal(t, 2000.0, report.DurationMs)
	assert.Equal(t, 4, report.TotalSpikes)
	require.Len(t, report.Populations, 4)
	assert.Equal(t, "HL23PYR", report.Populations[0].Population)
	assert.Equal(t, 80, report.Populations[0].Cells)
	assert.Equal(t, 3, report.Populations[0].Spikes)
	assert.Equal(t, 1, report.Populations[1].Spikes) // SST owns gid 80

	// Pulse markers come from the scheduler, not a local recomputation.
	require.Len(t, report.Figure.PulseTimesMs, 10)
	assert.Equal(t, 500.0, report.Figure.PulseTimesMs[0])
	assert.Equal(t, 1400.0, report.Figure.PulseTimesMs[9])

	// Rate series share one bin grid across populations.
	require.Len(t, report.Figure.Rates, 4)
	for _, pr := range report.Figure.Rates {
		assert.Len(t, pr.Series.RatesHz, 40) // ceil(2000/50)
	}

	// LFP panels carry the selected electrode's trace and stats.
	require.Len(t, report.Figure.LFPTrace, 20000)
	assert.Equal(t, 0.5, report.Figure.LFPTrace[0])
	assert.Len(t, report.Figure.Pre.Trace, 5000)
	assert.InDelta(t, 0.5, report.Figure.Pre.MeanMV, 1e-12)
	assert.InDelta(t, 0.0, report.Figure.Pre.StdMV, 1e-12)
	assert.NotEmpty(t, report.Figure.PreSpectrum.FrequenciesHz)
	assert.NotEmpty(t, report.Figure.PostSpectrum.FrequenciesHz)
}

func TestAnalysisService_RasterRows(t *testing.T) {
	svc := NewAnalysisService(&stubStore{rec: stimRecord()})

	report, err := svc.Analyze("run_data.json", DefaultAnalysisOptions())
	require.NoError(t, err)

	pyr := report.Figure.Raster[0]
	assert.Equal(t, 80, pyr.CellCount)
	require.Len(t, pyr.Spikes, 3)
	assert.Equal(t, 0, pyr.Spikes[0].Row)
	assert.Equal(t, 1, pyr.Spikes[2].Row)

	sst := report.Figure.Raster[1]
	require.Len(t, sst.Spikes, 1)
	assert.Equal(t, 0, sst.Spikes[0].Row) // gid 80 is SST's first cell
}

func TestAnalysisService_NoLFPDegradesToEmptyPanels(t *testing.T) {
	rec := stimRecord()
	rec.LFP = nil
	svc := NewAnalysisService(&stubStore{rec: rec})

	report, err := svc.Analyze("run_data.json", DefaultAnalysisOptions())
	require.NoError(t, err)

	assert.Nil(t, report.Figure.LFPTrace)
	assert.Empty(t, report.Figure.Pre.Trace)
	assert.Empty(t, report.Figure.PreSpectrum.PowerDensity)
	assert.Empty(t, report.Figure.PostSpectrum.PowerDensity)
}

func TestAnalysisService_NoTMSMeansNoPulseMarkers(t *testing.T) {
	rec := stimRecord()
	rec.Config.TMS = nil
	svc := NewAnalysisService(&stubStore{rec: rec})

	report, err := svc.Analyze("run_data.json", DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.Empty(t, report.Figure.PulseTimesMs)
}

func TestAnalysisService_LoadFailurePropagates(t *testing.T) {
	wantErr := errors.New("boom")
	svc := NewAnalysisService(&stubStore{err: wantErr})

	_, err := svc.Analyze("run_data.json", DefaultAnalysisOptions())
	assert.ErrorIs(t, err, wantErr)
}

func TestReportService_WriteSummary(t *testing.T) {
	svc := NewAnalysisService(&stubStore{rec: stimRecord()})
	report, err := svc.Analyze("run_data.json", DefaultAnalysisOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	NewReportService(nil).WriteSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Duration: 2000 ms")
	assert.Contains(t, out, "Total spikes: 4")
	assert.Contains(t, out, "HL23PYR")
	assert.Contains(t, out, "Total cells: 100")
	assert.Contains(t, out, "10 pulses")
	assert.True(t, strings.Contains(out, "LFP: 20000 samples x 5 electrodes"))
}

func TestReportService_SummaryWithoutData(t *testing.T) {
	rec := &record.SimulationRecord{DurationMs: 1000}
	svc := NewAnalysisService(&stubStore{rec: rec})
	report, err := svc.Analyze("bare.json", DefaultAnalysisOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	NewReportService(nil).WriteSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "TMS: none")
	assert.Contains(t, out, "LFP: not recorded")
	assert.Contains(t, out, "no cells")
}
