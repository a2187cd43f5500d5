// Package field holds per-frame field tensors, the fragment reduction, and
// the accumulated result tables.
package field

import "fmt"

// Kind names one of the two field quantities the engine reports.
type Kind string

const (
	DField Kind = "dfield"
	UField Kind = "ufield"
)

// Tensor is one frame's pairwise field data, flat in (probe, site, axis)
// order as received from the engine. Frame-scoped: built from the raw receive
// buffer, consumed by Reduce, then discarded.
type Tensor struct {
	nprobes int
	nsites  int
	data    []float64
}

// NewTensor validates the raw buffer length against the registered probe
// count and site count. A mismatch means the protocol stream is misaligned
// and nothing further can be trusted.
func NewTensor(nprobes, nsites int, data []float64) (*Tensor, error) {
	if want := 3 * nprobes * nsites; len(data) != want {
		return nil, fmt.Errorf("field: tensor buffer has %d values, want %d (%d probes x %d sites x 3)",
			len(data), want, nprobes, nsites)
	}
	return &Tensor{nprobes: nprobes, nsites: nsites, data: data}, nil
}

// At returns the 3-vector for a probe and a 0-based site, as a slice into the
// underlying buffer.
func (t *Tensor) At(probe, site int) []float64 {
	i := 3 * (probe*t.nsites + site)
	return t.data[i : i+3]
}

// Nprobes returns the probe dimension.
func (t *Tensor) Nprobes() int { return t.nprobes }

// Nsites returns the site dimension.
func (t *Tensor) Nsites() int { return t.nsites }
