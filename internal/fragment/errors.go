package fragment

import "errors"

var (
	// ErrModeConflict indicates both molecule and residue aggregation were
	// requested at once.
	ErrModeConflict = errors.New("fragment: molecule and residue aggregation cannot be combined")

	// ErrProbeRange indicates a probe atom id outside the engine's atom
	// range.
	ErrProbeRange = errors.New("fragment: probe atom out of range")
)
