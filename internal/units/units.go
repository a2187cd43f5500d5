package units

import "fmt"

// AngstromToBohr converts angstrom to the atomic unit of length.
// Value taken from CODATA 2018 (1 bohr = 0.529177210903 angstrom).
const AngstromToBohr = 1.0 / 0.529177210903

// BohrToAngstrom is the inverse conversion.
const BohrToAngstrom = 0.529177210903

var factors = map[string]float64{
	"angstrom->atomic_unit_of_length":  AngstromToBohr,
	"atomic_unit_of_length->angstrom":  BohrToAngstrom,
	"angstrom->angstrom":               1.0,
	"nanometer->angstrom":              10.0,
	"angstrom->nanometer":              0.1,
	"nanometer->atomic_unit_of_length": 10.0 * AngstromToBohr,
}

// Factor returns the multiplicative conversion factor between two named
// length units. Unknown unit pairs are an error, never a silent 1.0.
func Factor(from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	f, ok := factors[from+"->"+to]
	if !ok {
		return 0, fmt.Errorf("units: no conversion factor from %q to %q", from, to)
	}
	return f, nil
}
