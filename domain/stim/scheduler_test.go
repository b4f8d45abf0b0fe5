package stim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulePulses_QuickTestScenario(t *testing.T) {
	// 40 V/m, 10 Hz over [500, 1500) ms with 1 ms biphasic width:
	// exactly 10 pulses at 500, 600, ..., 1400 ms, each phase 0.5 ms.
	cfg := Config{
		FieldVPerM:    40,
		FrequencyHz:   10,
		WindowStartMs: 500,
		WindowEndMs:   1500,
		PulseWidthMs:  1.0,
		TargetPop:     "HL23PYR",
	}

	pulses := SchedulePulses(cfg)
	require.Len(t, pulses, 10)

	for i, p := range pulses {
		assert.Equal(t, 500.0+float64(i)*100.0, p.OnsetMs)
		assert.Equal(t, 0.5, p.PhaseDurMs)
		assert.Equal(t, 40*0.025, p.AmplitudeNA)
	}
}

func TestSchedulePulses_PulseCountTruncates(t *testing.T) {
	tests := []struct {
		name    string
		freqHz  float64
		startMs float64
		endMs   float64
		want    int
	}{
		{"exact fit", 10, 0, 1000, 10},
		{"partial final period dropped", 10, 0, 1050, 10},
		{"just under one period", 1, 0, 999, 0},
		{"one period", 1, 0, 1000, 1},
		{"high frequency", 30, 2000, 3000, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				FieldVPerM:    60,
				FrequencyHz:   tt.freqHz,
				WindowStartMs: tt.startMs,
				WindowEndMs:   tt.endMs,
				PulseWidthMs:  1.0,
				TargetPop:     "HL23PYR",
			}
			assert.Equal(t, tt.want, cfg.PulseCount())
			assert.Len(t, SchedulePulses(cfg), tt.want)
		})
	}
}

func TestSchedulePulses_Invariants(t *testing.T) {
	cfg := Config{
		FieldVPerM:    60,
		FrequencyHz:   30,
		WindowStartMs: 2000,
		WindowEndMs:   3000,
		PulseWidthMs:  1.0,
		TargetPop:     "HL23PYR",
	}
	pulses := SchedulePulses(cfg)
	require.NotEmpty(t, pulses)

	interval := cfg.PulseIntervalMs()
	for i, p := range pulses {
		// Zero net charge: the two phase amplitudes sum to exactly zero.
		assert.Zero(t, p.AmplitudeNA+p.SecondPhaseAmplitudeNA())
		// Equal phase durations, each half the pulse width.
		assert.Equal(t, cfg.PulseWidthMs/2, p.PhaseDurMs)
		// Phase 2 starts the instant phase 1 ends.
		assert.Equal(t, p.OnsetMs+p.PhaseDurMs, p.SecondPhaseOnsetMs())
		// Strictly increasing onsets with constant spacing.
		if i > 0 {
			spacing := p.OnsetMs - pulses[i-1].OnsetMs
			assert.InDelta(t, interval, spacing, 1e-9)
			assert.Greater(t, p.OnsetMs, pulses[i-1].OnsetMs)
		}
	}
}

func TestSchedulePulses_EmptyCases(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero frequency", Config{FieldVPerM: 40, FrequencyHz: 0, WindowStartMs: 0, WindowEndMs: 1000, PulseWidthMs: 1}},
		{"negative frequency", Config{FieldVPerM: 40, FrequencyHz: -5, WindowStartMs: 0, WindowEndMs: 1000, PulseWidthMs: 1}},
		{"empty window", Config{FieldVPerM: 40, FrequencyHz: 10, WindowStartMs: 1000, WindowEndMs: 1000, PulseWidthMs: 1}},
		{"inverted window", Config{FieldVPerM: 40, FrequencyHz: 10, WindowStartMs: 1500, WindowEndMs: 500, PulseWidthMs: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, SchedulePulses(tt.cfg))
			assert.Empty(t, PulseOnsets(tt.cfg))
		})
	}
}

func TestSchedulePulses_Deterministic(t *testing.T) {
	cfg := Config{
		FieldVPerM:    40,
		FrequencyHz:   10,
		WindowStartMs: 500,
		WindowEndMs:   1500,
		PulseWidthMs:  1.0,
		TargetPop:     "HL23PYR",
	}
	first := SchedulePulses(cfg)
	second := SchedulePulses(cfg)
	assert.Equal(t, first, second)
}

func TestPulseOnsets_MatchesSchedule(t *testing.T) {
	cfg := Config{
		FieldVPerM:    60,
		FrequencyHz:   30,
		WindowStartMs: 2000,
		WindowEndMs:   3000,
		PulseWidthMs:  1.0,
		TargetPop:     "HL23PYR",
	}
	pulses := SchedulePulses(cfg)
	onsets := PulseOnsets(cfg)
	require.Equal(t, len(pulses), len(onsets))
	for i := range pulses {
		assert.Equal(t, pulses[i].OnsetMs, onsets[i])
	}
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{FrequencyHz: 10}.Enabled())
}

func TestConfig_PulseIntervalMs(t *testing.T) {
	assert.Equal(t, 100.0, Config{FrequencyHz: 10}.PulseIntervalMs())
	assert.Equal(t, 0.0, Config{FrequencyHz: 0}.PulseIntervalMs())
	assert.True(t, math.Abs(Config{FrequencyHz: 30}.PulseIntervalMs()-1000.0/30.0) < 1e-12)
}
