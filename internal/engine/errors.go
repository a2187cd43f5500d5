package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEngine indicates an engine announced an unrecognized name.
	ErrUnknownEngine = errors.New("engine: unrecognized engine name")

	// ErrDuplicateEngine indicates a second engine with the expected name.
	ErrDuplicateEngine = errors.New("engine: accepted a second engine with the same name")

	// ErrProbesRegistered indicates a repeated probe registration. The
	// engine sizes its reply buffers from the first registration, so a
	// second one would desynchronize every later field receive.
	ErrProbesRegistered = errors.New("engine: probes already registered")

	// ErrProbesNotRegistered indicates a field query before registration.
	ErrProbesNotRegistered = errors.New("engine: probes not registered")
)

// ProtocolError reports a reply that does not match the size the command
// implies. Partial or misaligned field data cannot be safely interpreted, so
// this is always run-fatal.
type ProtocolError struct {
	Command string
	Want    int
	Got     int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("engine: %s reply has %d values, want %d", e.Command, e.Got, e.Want)
}
