package field

import (
	"gonum.org/v1/gonum/floats"

	"efprobe/internal/fragment"
	"efprobe/internal/traj"
)

// Row is the aggregated result for one probe in one frame: the probe's atom
// id and coordinate, plus one summed 3-vector per fragment in fragment order.
// Rows are immutable once produced.
type Row struct {
	Frame  int
	Probe  int
	Coord  [3]float64
	Values [][3]float64
}

// Reduce sums each fragment's member-site contributions for every probe.
//
// For probe i and fragment f with member sites S, the aggregated vector is
// the element-wise sum of tensor[i, s-1, :] over s in S: a plain reduction,
// no weighting or normalization. Empty fragments contribute the zero vector.
// Pure function: same tensor and fragments always give identical rows.
func Reduce(t *Tensor, frags []fragment.Fragment, probes []int, frame *traj.Frame, frameIndex int) []Row {
	rows := make([]Row, len(probes))
	for i, atom := range probes {
		row := Row{
			Frame:  frameIndex,
			Probe:  atom,
			Coord:  frame.At(atom),
			Values: make([][3]float64, len(frags)),
		}
		for fi, frag := range frags {
			var sum [3]float64
			for _, site := range frag.Sites {
				// Sites are 1-based on the wire, the tensor is
				// 0-based: the second off-by-one seam.
				floats.Add(sum[:], t.At(i, site-1))
			}
			row.Values[fi] = sum
		}
		rows[i] = row
	}
	return rows
}
