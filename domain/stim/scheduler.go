package stim

// Pulse is one biphasic current pulse: a depolarizing phase followed
// immediately by a hyperpolarizing phase of equal magnitude and duration,
// so the net injected charge is exactly zero. The second phase is derived
// from the first rather than stored, which makes the zero-charge invariant
// structural instead of something a constructor has to remember.
type Pulse struct {
	OnsetMs     float64 // onset of the first phase (ms)
	AmplitudeNA float64 // first-phase amplitude (nA)
	PhaseDurMs  float64 // duration of each phase (ms), pulse width / 2
}

// SecondPhaseAmplitudeNA is the exact negation of the first-phase amplitude.
func (p Pulse) SecondPhaseAmplitudeNA() float64 {
	return -p.AmplitudeNA
}

// SecondPhaseOnsetMs starts the hyperpolarizing phase the instant the
// depolarizing phase ends.
func (p Pulse) SecondPhaseOnsetMs() float64 {
	return p.OnsetMs + p.PhaseDurMs
}

// SchedulePulses expands a protocol config into its ordered pulse train.
//
// This is the single home of pulse-count arithmetic: pulse markers for
// analysis and the applicator's pulse train both come from here, so the
// schedule can never diverge between setup and post-processing.
//
// The scheduler is pure: identical configs always yield identical trains.
// A non-positive frequency or an empty window yields an empty train, not an
// error.
func SchedulePulses(cfg Config) []Pulse {
	n := cfg.PulseCount()
	if n == 0 {
		return nil
	}
	amp := FieldToCurrent(cfg.FieldVPerM, cfg.TargetPop, "soma")
	interval := cfg.PulseIntervalMs()
	pulses := make([]Pulse, 0, n)
	for i := 0; i < n; i++ {
		pulses = append(pulses, Pulse{
			OnsetMs:     cfg.WindowStartMs + float64(i)*interval,
			AmplitudeNA: amp,
			PhaseDurMs:  cfg.PulseWidthMs / 2.0,
		})
	}
	return pulses
}

// PulseOnsets returns only the onset times of the scheduled train, for
// overlaying pulse markers on analysis figures.
func PulseOnsets(cfg Config) []float64 {
	pulses := SchedulePulses(cfg)
	if len(pulses) == 0 {
		return nil
	}
	onsets := make([]float64, len(pulses))
	for i, p := range pulses {
		onsets[i] = p.OnsetMs
	}
	return onsets
}
