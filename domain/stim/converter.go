package stim

import (
	"github.com/sirupsen/logrus"
)

// Conversion factors from electric field strength (V/m) to injected current
// amplitude (nA), keyed by cell type then compartment. Values approximate
// the effective polarization of each compartment class in the Yao et al.
// L2/3 morphologies.
var conversionFactors = map[string]map[string]float64{
	"HL23PYR": {"soma": 0.025, "apical": 0.05, "basal": 0.03},
	"HL23PV":  {"soma": 0.015},
	"HL23SST": {"soma": 0.015},
	"HL23VIP": {"soma": 0.015},
}

// Per-cell-type defaults used when the requested compartment has no entry.
var cellTypeDefaults = map[string]float64{
	"HL23PYR": 0.025,
	"HL23PV":  0.015,
	"HL23SST": 0.015,
	"HL23VIP": 0.015,
}

// globalConversionFactor covers cell types the table does not know about.
const globalConversionFactor = 0.02

// FieldToCurrent converts an applied electric field magnitude (V/m) into an
// equivalent injected current amplitude (nA) for the given cell type and
// compartment.
//
// Lookup degrades through three tiers: exact (cellType, compartment) entry,
// then the cell-type default, then the global default. Absent keys never
// fail - new cell types must not crash stimulation setup - but every
// degraded lookup is logged.
func FieldToCurrent(fieldVPerM float64, cellType, compartment string) float64 {
	if comps, ok := conversionFactors[cellType]; ok {
		if factor, ok := comps[compartment]; ok {
			return fieldVPerM * factor
		}
		factor := cellTypeDefaults[cellType]
		logrus.WithFields(logrus.Fields{
			"cell_type":   cellType,
			"compartment": compartment,
			"factor":      factor,
		}).Warn("tms: unknown compartment, using cell-type default conversion factor")
		return fieldVPerM * factor
	}
	logrus.WithFields(logrus.Fields{
		"cell_type":   cellType,
		"compartment": compartment,
		"factor":      globalConversionFactor,
	}).Warn("tms: unknown cell type, using global default conversion factor")
	return fieldVPerM * globalConversionFactor
}

// ConversionTable exposes a copy of the exact-tier lookup table, mainly so
// callers can enumerate the known (cellType, compartment) pairs.
func ConversionTable() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(conversionFactors))
	for ct, comps := range conversionFactors {
		m := make(map[string]float64, len(comps))
		for c, f := range comps {
			m[c] = f
		}
		out[ct] = m
	}
	return out
}
