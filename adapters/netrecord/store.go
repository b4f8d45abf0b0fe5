// Package netrecord loads the JSON output documents the external network
// simulator persists after a run: a simData section with spike arrays and an
// optional LFP matrix, a simConfig section with the run parameters, and an
// optional per-cell roster.
package netrecord

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"rtmslfp/domain/core"
	"rtmslfp/domain/record"
	"rtmslfp/domain/stim"
)

const defaultDurationMs = 2000.0

// Store reads persisted simulation records. Implements ports.RecordStore.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// document mirrors the persisted record's layout. Pointer fields distinguish
// absent sections, which are tolerated, from malformed ones, which are not.
type document struct {
	SimData   *simData   `json:"simData"`
	SimConfig *simConfig `json:"simConfig"`
	Net       *netData   `json:"net"`
}

type simData struct {
	// The simulator writes spike ids as floats; they are integral values.
	SpikeTimes []float64   `json:"spkt"`
	SpikeIDs   []float64   `json:"spkid"`
	LFP        [][]float64 `json:"LFP"`
}

type simConfig struct {
	Duration   *float64       `json:"duration"`
	CellNumber map[string]int `json:"cellNumber"`
	AllPops    []string       `json:"allpops"`
	LFPDt      *float64       `json:"LFP_dt"`
	TMSParams  *tmsParams     `json:"tms_params"`
}

type tmsParams struct {
	FieldVPerM  float64 `json:"ef_amp_V_per_m"`
	FreqHz      float64 `json:"freq_Hz"`
	StimStartMs float64 `json:"stim_start_ms"`
	StimEndMs   float64 `json:"stim_end_ms"`
	WidthMs     float64 `json:"width_ms"`
	Shape       string  `json:"pshape"`
	TargetPop   string  `json:"target_pop"`
}

type netData struct {
	Cells []netCell `json:"cells"`
}

type netCell struct {
	GID  *int `json:"gid"`
	Tags struct {
		Pop string `json:"pop"`
	} `json:"tags"`
}

// Load parses one persisted record. An unreadable or unparseable document is
// the only hard failure; missing spike or LFP sections load as empty views
// with a warning.
func (s *Store) Load(path string) (*record.SimulationRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrRecordNotFound, path)
		}
		return nil, fmt.Errorf("reading record %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, core.NewRecordFormatError(path, err)
	}

	rec := &record.SimulationRecord{Path: path}

	if err := s.loadSpikes(path, &doc, rec); err != nil {
		return nil, err
	}
	s.loadLFP(path, &doc, rec)
	s.loadConfig(path, &doc, rec)
	s.loadRoster(&doc, rec)

	logrus.WithFields(logrus.Fields{
		"path":        path,
		"spikes":      len(rec.SpikeTimesMs),
		"lfp_samples": len(rec.LFP),
		"roster":      len(rec.Roster),
		"duration_ms": rec.DurationMs,
	}).Info("record loaded")
	return rec, nil
}

func (s *Store) loadSpikes(path string, doc *document, rec *record.SimulationRecord) error {
	if doc.SimData == nil || doc.SimData.SpikeTimes == nil {
		logrus.WithField("path", path).Warn("record has no spike data")
		return nil
	}
	times := doc.SimData.SpikeTimes
	ids := doc.SimData.SpikeIDs
	if len(times) != len(ids) {
		return core.NewRecordFieldError(path, "simData.spkt/spkid",
			fmt.Sprintf("length mismatch: %d times vs %d ids", len(times), len(ids)))
	}
	rec.SpikeTimesMs = times
	rec.SpikeCellIDs = make([]int, len(ids))
	for i, id := range ids {
		rec.SpikeCellIDs[i] = int(id)
	}
	return nil
}

func (s *Store) loadLFP(path string, doc *document, rec *record.SimulationRecord) {
	if doc.SimData == nil || len(doc.SimData.LFP) == 0 {
		logrus.WithField("path", path).Warn("record has no LFP data")
		return
	}
	rec.LFP = doc.SimData.LFP
}

func (s *Store) loadConfig(path string, doc *document, rec *record.SimulationRecord) {
	cfg := doc.SimConfig
	if cfg == nil {
		logrus.WithFields(logrus.Fields{
			"path":        path,
			"duration_ms": defaultDurationMs,
		}).Warn("record has no simConfig, assuming default duration")
		rec.DurationMs = defaultDurationMs
		rec.Config.LFPSampleMs = 0.1
		return
	}

	rec.DurationMs = defaultDurationMs
	if cfg.Duration != nil {
		rec.DurationMs = *cfg.Duration
	}
	rec.Config.CellCounts = cfg.CellNumber
	rec.Config.PopOrder = cfg.AllPops
	rec.Config.LFPSampleMs = 0.1
	if cfg.LFPDt != nil {
		rec.Config.LFPSampleMs = *cfg.LFPDt
	}

	if p := cfg.TMSParams; p != nil {
		target := p.TargetPop
		if target == "" {
			target = record.DefaultPopulationOrder[0]
		}
		rec.Config.TMS = &stim.Config{
			FieldVPerM:    p.FieldVPerM,
			FrequencyHz:   p.FreqHz,
			WindowStartMs: p.StimStartMs,
			WindowEndMs:   p.StimEndMs,
			PulseWidthMs:  p.WidthMs,
			Shape:         p.Shape,
			TargetPop:     target,
		}
	}
}

func (s *Store) loadRoster(doc *document, rec *record.SimulationRecord) {
	if doc.Net == nil || len(doc.Net.Cells) == 0 {
		return
	}
	rec.Roster = make([]record.RosterCell, len(doc.Net.Cells))
	for i, cell := range doc.Net.Cells {
		gid := -1
		if cell.GID != nil {
			gid = *cell.GID
		}
		rec.Roster[i] = record.RosterCell{GID: gid, Population: cell.Tags.Pop}
	}
}
