package engine

import "efprobe/internal/mdi"

// EngineName is the only engine this driver knows how to analyze.
const EngineName = "NO_EWALD"

// Identify queries the name of every accepted communicator and returns a
// client for the one recognized engine. An unknown name or a second engine
// announcing the expected name is fatal: it happens before any analysis
// command, so nothing needs unwinding.
func Identify(comms []mdi.Comm) (*Client, error) {
	var found *Client
	for _, comm := range comms {
		c := NewClient(comm)
		name, err := c.Name()
		if err != nil {
			return nil, err
		}
		if name != EngineName {
			return nil, ErrUnknownEngine
		}
		if found != nil {
			return nil, ErrDuplicateEngine
		}
		found = c
	}
	if found == nil {
		return nil, ErrUnknownEngine
	}
	return found, nil
}
