// Package mdi implements the communicator half of the MDI command/response
// protocol used to talk to a remote simulation engine.
//
// The protocol is strictly synchronous: the driver sends a fixed-size command
// token, optionally followed by a typed payload, and the engine replies with a
// typed payload of a size both sides already agree on. There is no framing
// beyond the fixed element sizes:
//
//   - commands are padded to [CommandLength] bytes
//   - integers are int32, little-endian
//   - doubles are IEEE-754 float64, little-endian
//   - names are NUL-padded to [NameLength] bytes
//
// A [Comm] is created once per run, either by accepting an engine connection
// ([Accept]) or by dialing one ([Connect], used by the engine side and by
// tests). There is no ambient global communicator state; everything hangs off
// the [Options] passed at construction.
package mdi
