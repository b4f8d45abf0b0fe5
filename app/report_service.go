package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"rtmslfp/ports"
)

// ReportService turns an analysis report into its user-facing artifacts:
// the textual summary and the multi-panel diagnostic figure. It consumes
// precomputed quantities only and derives nothing itself.
type ReportService struct {
	renderer ports.FigureRenderer
}

func NewReportService(renderer ports.FigureRenderer) *ReportService {
	return &ReportService{renderer: renderer}
}

// WriteSummary prints the run summary in the layout of the simulation logs:
// duration, per-population rates, protocol echo and LFP shape.
func (s *ReportService) WriteSummary(w io.Writer, report *AnalysisReport) {
	fmt.Fprintf(w, "Simulation summary: %s\n", report.RecordPath)
	fmt.Fprintf(w, "  Duration: %g ms\n", report.DurationMs)
	fmt.Fprintf(w, "  Total spikes: %d\n", report.TotalSpikes)

	fmt.Fprintln(w, "  Population firing rates:")
	totalCells := 0
	for _, p := range report.Populations {
		totalCells += p.Cells
		if p.Cells > 0 {
			fmt.Fprintf(w, "    %-10s %6.2f Hz  (%d spikes, %d cells, source: %s)\n",
				p.Population, p.MeanRateHz, p.Spikes, p.Cells, p.Tier)
		} else {
			fmt.Fprintf(w, "    %-10s no cells\n", p.Population)
		}
	}
	fmt.Fprintf(w, "  Total cells: %d\n", totalCells)

	if tms := report.TMS; tms != nil && tms.Enabled() {
		fmt.Fprintf(w, "  TMS: %g V/m, %g Hz, %d pulses over [%g, %g] ms, %s %g ms pulses, target %s\n",
			tms.FieldVPerM, tms.FrequencyHz, tms.PulseCount(),
			tms.WindowStartMs, tms.WindowEndMs, tms.Shape, tms.PulseWidthMs, tms.TargetPop)
	} else {
		fmt.Fprintln(w, "  TMS: none")
	}

	if report.Electrodes > 0 {
		fmt.Fprintf(w, "  LFP: %d samples x %d electrodes, %g ms sampling\n",
			len(report.Figure.LFPTrace), report.Electrodes, report.LFPSampleMs)
		fmt.Fprintf(w, "  Electrode %d pre-window:  mean %.4f mV, std %.4f mV\n",
			report.Figure.Electrode, report.Figure.Pre.MeanMV, report.Figure.Pre.StdMV)
		fmt.Fprintf(w, "  Electrode %d post-window: mean %.4f mV, std %.4f mV\n",
			report.Figure.Electrode, report.Figure.Post.MeanMV, report.Figure.Post.StdMV)
	} else {
		fmt.Fprintln(w, "  LFP: not recorded")
	}
}

// RenderFigure writes the diagnostic figure to <prefix>.png, creating the
// output directory when needed, and returns the written path.
func (s *ReportService) RenderFigure(report *AnalysisReport, outputPrefix string) (string, error) {
	if dir := filepath.Dir(outputPrefix); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating figure directory: %w", err)
		}
	}
	path := outputPrefix + ".png"
	if err := s.renderer.RenderFigure(&report.Figure, path); err != nil {
		return "", fmt.Errorf("rendering figure: %w", err)
	}
	logrus.WithField("path", path).Info("figure written")
	return path, nil
}
