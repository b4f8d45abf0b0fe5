// Package config reads the YAML protocol files that describe one
// stimulation experiment: the TMS parameter block, the population sizes and
// order, and the LFP electrode layout.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rtmslfp/domain/record"
	"rtmslfp/domain/stim"
)

// Protocol is the on-disk experiment description.
type Protocol struct {
	TMS tmsBlock `yaml:"tms"`

	Populations     map[string]int `yaml:"populations"`
	PopulationOrder []string       `yaml:"population_order"`

	LFP struct {
		SamplingMs float64      `yaml:"sampling_ms"`
		Electrodes [][3]float64 `yaml:"electrodes"`
	} `yaml:"lfp"`
}

// tmsBlock is the protocol file's TMS parameter section. Its zero value
// means the file carries no TMS block at all.
type tmsBlock struct {
	FieldVPerM       float64 `yaml:"field_v_per_m"`
	FrequencyHz      float64 `yaml:"frequency_hz"`
	WindowStartMs    float64 `yaml:"window_start_ms"`
	WindowEndMs      float64 `yaml:"window_end_ms"`
	PulseWidthMs     float64 `yaml:"pulse_width_ms"`
	Shape            string  `yaml:"shape"`
	TargetPopulation string  `yaml:"target_population"`
}

// Load reads and validates a protocol file.
func Load(path string) (*Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading protocol file: %w", err)
	}

	var p Protocol
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing protocol file %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid protocol %s: %w", path, err)
	}
	return &p, nil
}

func (p *Protocol) validate() error {
	if p.TMS.PulseWidthMs < 0 {
		return fmt.Errorf("tms.pulse_width_ms must be non-negative, got %g", p.TMS.PulseWidthMs)
	}
	if p.TMS.FieldVPerM < 0 {
		return fmt.Errorf("tms.field_v_per_m must be non-negative, got %g", p.TMS.FieldVPerM)
	}
	for _, pop := range p.PopulationOrder {
		if _, ok := p.Populations[pop]; !ok {
			return fmt.Errorf("population_order names %q which has no cell count", pop)
		}
	}
	return nil
}

// StimConfig converts the TMS block into the immutable protocol value the
// scheduler and applicator consume. Zero-frequency and empty-window
// protocols are legal: they schedule no pulses downstream. A protocol
// without any TMS parameters yields the zero Config, which every consumer
// treats as "no stimulation".
func (p *Protocol) StimConfig() stim.Config {
	if p.TMS == (tmsBlock{}) {
		return stim.Config{}
	}
	target := p.TMS.TargetPopulation
	if target == "" {
		target = record.DefaultPopulationOrder[0]
	}
	return stim.Config{
		FieldVPerM:    p.TMS.FieldVPerM,
		FrequencyHz:   p.TMS.FrequencyHz,
		WindowStartMs: p.TMS.WindowStartMs,
		WindowEndMs:   p.TMS.WindowEndMs,
		PulseWidthMs:  p.TMS.PulseWidthMs,
		Shape:         p.TMS.Shape,
		TargetPop:     target,
	}
}

// Order returns the configured population order, defaulting to the fixed
// Yao L2/3 order when the file does not set one.
func (p *Protocol) Order() []string {
	if len(p.PopulationOrder) > 0 {
		return p.PopulationOrder
	}
	return record.DefaultPopulationOrder
}
