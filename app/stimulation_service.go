package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"rtmslfp/domain/stim"
	"rtmslfp/ports"
)

// StimulationService attaches a scheduled rTMS pulse train to every cell of
// the target population through the network port. It is the sole writer of
// network state during Apply and must not run concurrently against the same
// network.
type StimulationService struct{}

func NewStimulationService() *StimulationService {
	return &StimulationService{}
}

// Apply expands the protocol into its pulse train and creates two current
// injections per (cell, pulse): the depolarizing phase at the pulse onset
// and the hyperpolarizing phase immediately after it.
//
// Every created handle is returned so the caller can dispose of the whole
// train at once. A config without stimulation parameters or a target
// population with no matching cells yields an empty result, not an error.
func (s *StimulationService) Apply(network ports.Network, cfg stim.Config) ([]ports.StimHandle, error) {
	if !cfg.Enabled() {
		logrus.Info("tms: no stimulation parameters, skipping")
		return nil, nil
	}

	pulses := stim.SchedulePulses(cfg)
	if len(pulses) == 0 {
		logrus.WithFields(logrus.Fields{
			"freq_hz":   cfg.FrequencyHz,
			"window_ms": fmt.Sprintf("[%g, %g]", cfg.WindowStartMs, cfg.WindowEndMs),
		}).Info("tms: protocol yields no pulses, skipping")
		return nil, nil
	}

	logrus.WithFields(logrus.Fields{
		"field_v_per_m": cfg.FieldVPerM,
		"amplitude_na":  pulses[0].AmplitudeNA,
		"freq_hz":       cfg.FrequencyHz,
		"pulses":        len(pulses),
		"width_ms":      cfg.PulseWidthMs,
		"window_ms":     fmt.Sprintf("[%g, %g]", cfg.WindowStartMs, cfg.WindowEndMs),
		"target":        cfg.TargetPop,
	}).Info("tms: applying protocol")

	var handles []ports.StimHandle
	cellCount := 0
	for _, cell := range network.Cells() {
		if cell.Population() != cfg.TargetPop {
			continue
		}
		comp := stimCompartment(cell)
		if comp == nil {
			logrus.WithField("gid", cell.GID()).Warn("tms: cell has no compartments, skipping")
			continue
		}
		for _, p := range pulses {
			h1, err := comp.AttachCurrent(p.AmplitudeNA, p.OnsetMs, p.PhaseDurMs)
			if err != nil {
				return handles, fmt.Errorf("attaching phase 1 to gid %d: %w", cell.GID(), err)
			}
			h2, err := comp.AttachCurrent(p.SecondPhaseAmplitudeNA(), p.SecondPhaseOnsetMs(), p.PhaseDurMs)
			if err != nil {
				return handles, fmt.Errorf("attaching phase 2 to gid %d: %w", cell.GID(), err)
			}
			handles = append(handles, h1, h2)
		}
		cellCount++
	}

	logrus.WithFields(logrus.Fields{
		"cells":   cellCount,
		"handles": len(handles),
	}).Info("tms: protocol attached")
	return handles, nil
}

// stimCompartment resolves the compartment a pulse train attaches to, in the
// fixed preference order soma_0, then soma, then the first declared
// compartment. The fallback is deliberate and silent apart from a log line:
// a cell without a canonically named soma is stimulated, not skipped.
func stimCompartment(cell ports.Cell) ports.Compartment {
	if comp, ok := cell.Compartment("soma_0"); ok {
		return comp
	}
	if comp, ok := cell.Compartment("soma"); ok {
		return comp
	}
	comps := cell.Compartments()
	if len(comps) == 0 {
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"gid":         cell.GID(),
		"compartment": comps[0].Name(),
	}).Warn("tms: cell has no soma compartment, using first declared")
	return comps[0]
}
