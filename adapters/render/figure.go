// Package render draws the diagnostic figure with gonum/plot. Layout
// mirrors the standard rTMS+LFP quick-look: raster, population rates and
// the full LFP trace stacked full-width, then pre-window detail, post-window
// detail and the pre/post power spectra side by side.
package render

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"rtmslfp/ports"
)

// populationColors match the conventional palette of the analysis figures.
var populationColors = map[string]color.Color{
	"HL23PYR": color.RGBA{R: 0x2E, G: 0x86, B: 0xAB, A: 0xFF},
	"HL23SST": color.RGBA{R: 0xA2, G: 0x3B, B: 0x72, A: 0xFF},
	"HL23PV":  color.RGBA{R: 0xF1, G: 0x8F, B: 0x01, A: 0xFF},
	"HL23VIP": color.RGBA{R: 0xC7, G: 0x3E, B: 0x1D, A: 0xFF},
}

var (
	pulseColor = color.RGBA{R: 0xD0, G: 0x20, B: 0x20, A: 0xB0}
	preColor   = color.RGBA{R: 0x20, G: 0x40, B: 0xC0, A: 0xFF}
	postColor  = color.RGBA{R: 0x20, G: 0x90, B: 0x30, A: 0xFF}
	preShade   = color.RGBA{R: 0x20, G: 0x40, B: 0xC0, A: 0x20}
	postShade  = color.RGBA{R: 0x20, G: 0x90, B: 0x30, A: 0x20}
)

// logFloor keeps zero-power bins drawable on the logarithmic PSD axis.
const logFloor = 1e-20

// Renderer implements ports.FigureRenderer on top of gonum/plot.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderFigure writes the six-panel diagnostic figure as a PNG.
func (r *Renderer) RenderFigure(data *ports.ReportData, path string) error {
	const (
		width  = 14 * vg.Inch
		height = 11 * vg.Inch
	)
	img := vgimg.New(width, height)
	dc := draw.New(img)

	rows := draw.Tiles{
		Rows: 4, Cols: 1,
		PadX: vg.Millimeter * 2, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 3, PadBottom: vg.Millimeter * 3,
		PadLeft: vg.Millimeter * 3, PadRight: vg.Millimeter * 3,
	}

	rasterPanel(data).Draw(rows.At(dc, 0, 0))
	ratesPanel(data).Draw(rows.At(dc, 0, 1))
	lfpPanel(data).Draw(rows.At(dc, 0, 2))

	bottom := draw.Tiles{Rows: 1, Cols: 3, PadX: vg.Millimeter * 4}
	bottomCanvas := rows.At(dc, 0, 3)
	detailPanel(data.Pre, "Pre-TMS LFP detail", preColor).Draw(bottom.At(bottomCanvas, 0, 0))
	detailPanel(data.Post, "Post-TMS LFP detail", postColor).Draw(bottom.At(bottomCanvas, 1, 0))
	spectrumPanel(data).Draw(bottom.At(bottomCanvas, 2, 0))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func rasterPanel(data *ports.ReportData) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Raster with rTMS pulses"
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Population"

	yOffset := 0.0
	var ticks []plot.Tick
	for _, block := range data.Raster {
		if block.CellCount == 0 {
			continue
		}
		pts := make(plotter.XYs, len(block.Spikes))
		for i, s := range block.Spikes {
			pts[i] = plotter.XY{X: s.TimeMs, Y: yOffset + float64(s.Row)}
		}
		if sc, err := plotter.NewScatter(pts); err == nil {
			sc.GlyphStyle = draw.GlyphStyle{
				Color:  colorFor(block.Population),
				Radius: vg.Points(0.8),
				Shape:  draw.BoxGlyph{},
			}
			p.Add(sc)
		}
		ticks = append(ticks, plot.Tick{
			Value: yOffset + float64(block.CellCount)/2,
			Label: block.Population,
		})
		yOffset += float64(block.CellCount) + 2
	}

	if yOffset == 0 {
		yOffset = 1
	}
	p.X.Min, p.X.Max = 0, data.DurationMs
	p.Y.Min, p.Y.Max = 0, yOffset
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	addPulseMarkers(p, data.PulseTimesMs, 0, yOffset)
	return p
}

func ratesPanel(data *ports.ReportData) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Population firing rates"
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Firing rate (Hz)"
	p.Legend.Top = true

	maxRate := 0.0
	for _, pr := range data.Rates {
		pts := make(plotter.XYs, len(pr.Series.BinCentersMs))
		for i := range pts {
			pts[i] = plotter.XY{X: pr.Series.BinCentersMs[i], Y: pr.Series.RatesHz[i]}
			if pr.Series.RatesHz[i] > maxRate {
				maxRate = pr.Series.RatesHz[i]
			}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			continue
		}
		line.Color = colorFor(pr.Population)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(pr.Population, line)
	}

	p.X.Min, p.X.Max = 0, data.DurationMs
	addPulseMarkers(p, data.PulseTimesMs, 0, maxRate)
	return p
}

func lfpPanel(data *ports.ReportData) *plot.Plot {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("LFP trace (electrode %d)", data.Electrode)
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "LFP (mV)"

	if len(data.LFPTrace) == 0 {
		addCenteredNote(p, "No LFP data available", data.DurationMs)
		return p
	}

	dt := data.LFPSampleMs
	pts := make(plotter.XYs, len(data.LFPTrace))
	lo, hi := data.LFPTrace[0], data.LFPTrace[0]
	for i, v := range data.LFPTrace {
		pts[i] = plotter.XY{X: float64(i) * dt, Y: v}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if line, err := plotter.NewLine(pts); err == nil {
		line.Color = color.Black
		line.Width = vg.Points(0.75)
		p.Add(line)
	}

	addWindowShade(p, data.Pre.StartMs, data.Pre.EndMs, lo, hi, preShade)
	addWindowShade(p, data.Post.StartMs, data.Post.EndMs, lo, hi, postShade)
	addPulseMarkers(p, data.PulseTimesMs, lo, hi)
	p.X.Min, p.X.Max = 0, data.DurationMs
	return p
}

func detailPanel(detail ports.WindowDetail, title string, c color.Color) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "LFP (mV)"

	if len(detail.Trace) == 0 {
		addCenteredNote(p, "No LFP", detail.EndMs)
		return p
	}

	dt := (detail.EndMs - detail.StartMs) / float64(len(detail.Trace))
	pts := make(plotter.XYs, len(detail.Trace))
	for i, v := range detail.Trace {
		pts[i] = plotter.XY{X: detail.StartMs + float64(i)*dt, Y: v}
	}
	if line, err := plotter.NewLine(pts); err == nil {
		line.Color = c
		p.Add(line)
	}

	if labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: detail.StartMs, Y: maxOf(detail.Trace)}},
		Labels: []string{fmt.Sprintf("mean %.3f mV, std %.3f mV", detail.MeanMV, detail.StdMV)},
	}); err == nil {
		p.Add(labels)
	}
	return p
}

func spectrumPanel(data *ports.ReportData) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Power spectral density"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "PSD (mV²/Hz)"
	p.Legend.Top = true

	hasData := false
	addSpectrum := func(name string, freqs, power []float64, c color.Color) {
		if len(freqs) == 0 {
			return
		}
		pts := make(plotter.XYs, 0, len(freqs))
		for i := range freqs {
			v := power[i]
			if v < logFloor {
				v = logFloor
			}
			pts = append(pts, plotter.XY{X: freqs[i], Y: v})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return
		}
		line.Color = c
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
		hasData = true
	}

	addSpectrum("Pre-TMS", data.PreSpectrum.FrequenciesHz, data.PreSpectrum.PowerDensity, preColor)
	addSpectrum("Post-TMS", data.PostSpectrum.FrequenciesHz, data.PostSpectrum.PowerDensity, postColor)

	if !hasData {
		addCenteredNote(p, "No LFP", 100)
		return p
	}

	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.X.Min, p.X.Max = 0, 100 // focus on the low-frequency bands
	return p
}

func addPulseMarkers(p *plot.Plot, pulseTimes []float64, yMin, yMax float64) {
	if yMax <= yMin {
		yMax = yMin + 1
	}
	for _, t := range pulseTimes {
		line, err := plotter.NewLine(plotter.XYs{{X: t, Y: yMin}, {X: t, Y: yMax}})
		if err != nil {
			continue
		}
		line.Color = pulseColor
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
	}
}

func addWindowShade(p *plot.Plot, startMs, endMs, lo, hi float64, c color.Color) {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: startMs, Y: lo}, {X: endMs, Y: lo}, {X: endMs, Y: hi}, {X: startMs, Y: hi},
	})
	if err != nil {
		return
	}
	poly.Color = c
	poly.LineStyle.Width = 0
	p.Add(poly)
}

func addCenteredNote(p *plot.Plot, note string, xMax float64) {
	if labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: xMax / 2, Y: 0.5}},
		Labels: []string{note},
	}); err == nil {
		p.Add(labels)
	}
	p.X.Min, p.X.Max = 0, xMax
	p.Y.Min, p.Y.Max = 0, 1
}

func colorFor(population string) color.Color {
	if c, ok := populationColors[population]; ok {
		return c
	}
	return color.Gray{Y: 0x60}
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs {
		if v > m {
			m = v
		}
	}
	return m
}
