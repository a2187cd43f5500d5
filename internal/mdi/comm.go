package mdi

const (
	// CommandLength is the fixed on-wire size of a command token.
	CommandLength = 12

	// NameLength is the fixed on-wire size of an engine name reply.
	NameLength = 255
)

// Comm is a bidirectional channel to exactly one engine. All calls are
// blocking round-trip halves with no timeout: the engine is assumed
// co-scheduled and responsive, and command order is the only sequencing.
//
// Implementations are not safe for concurrent use; the driver is a single
// logical thread of control.
type Comm interface {
	// SendCommand transmits a command token, padded to CommandLength bytes.
	SendCommand(cmd string) error

	// SendInts transmits len(v) int32 values.
	SendInts(v []int) error

	// SendFloats transmits len(v) float64 values.
	SendFloats(v []float64) error

	// RecvInts receives exactly n int32 values.
	RecvInts(n int) ([]int, error)

	// RecvFloats receives exactly n float64 values.
	RecvFloats(n int) ([]float64, error)

	// RecvString receives an n-byte buffer and strips NUL padding.
	RecvString(n int) (string, error)

	Close() error
}
