package stim

// Config describes one rTMS protocol: an applied electric field converted to
// biphasic current pulses delivered to every cell of the target population
// inside the stimulation window.
//
// Config is an immutable value. Derived quantities (pulse count, inter-pulse
// interval) are computed on demand and never stored, so they cannot desync
// from the parameters they derive from.
type Config struct {
	FieldVPerM    float64 // applied electric field strength (V/m)
	FrequencyHz   float64 // pulse repetition frequency (Hz)
	WindowStartMs float64 // stimulation window start (ms)
	WindowEndMs   float64 // stimulation window end (ms)
	PulseWidthMs  float64 // total biphasic pulse width (ms)
	Shape         string  // pulse shape tag, e.g. "Sine"
	TargetPop     string  // population the pulse train is attached to
}

// Enabled reports whether the config carries any stimulation parameters.
// A zero Config means "no TMS" and every consumer treats it as a no-op.
func (c Config) Enabled() bool {
	return c != Config{}
}

// PulseIntervalMs is the spacing between consecutive pulse onsets.
func (c Config) PulseIntervalMs() float64 {
	if c.FrequencyHz <= 0 {
		return 0
	}
	return 1000.0 / c.FrequencyHz
}

// PulseCount is the number of complete pulse periods that fit in the
// stimulation window. Truncation is deliberate: a partially-completed final
// period is dropped, never rounded up.
func (c Config) PulseCount() int {
	if c.FrequencyHz <= 0 || c.WindowEndMs <= c.WindowStartMs {
		return 0
	}
	return int((c.WindowEndMs - c.WindowStartMs) * c.FrequencyHz / 1000.0)
}
