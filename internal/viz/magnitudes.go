package viz

import (
	"gonum.org/v1/gonum/floats"

	"efprobe/internal/field"
)

// RowMagnitude is the Euclidean norm of the total field at a probe: the sum
// of all fragment contributions in the row.
func RowMagnitude(row field.Row) float64 {
	var total [3]float64
	for _, v := range row.Values {
		floats.Add(total[:], v[:])
	}
	return floats.Norm(total[:], 2)
}

// Magnitudes extracts the per-frame total field magnitude series for one
// probe atom from a stored table.
func Magnitudes(t *field.Table, probe int) []float64 {
	series := make([]float64, 0, t.Frames())
	for _, row := range t.Rows {
		if row.Probe == probe {
			series = append(series, RowMagnitude(row))
		}
	}
	return series
}
