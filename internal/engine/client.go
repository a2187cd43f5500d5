package engine

import (
	"fmt"

	"efprobe/internal/mdi"
)

// Client is the typed command layer over a communicator. Every method is one
// synchronous send/receive round trip; the engine is a sequential state
// machine keyed to command order, so calls must not be reordered or
// interleaved.
type Client struct {
	comm       mdi.Comm
	name       string
	nprobes    int
	registered bool
}

func NewClient(comm mdi.Comm) *Client {
	return &Client{comm: comm}
}

// Name asks the engine to announce itself.
func (c *Client) Name() (string, error) {
	if c.name != "" {
		return c.name, nil
	}
	if err := c.comm.SendCommand(CmdName); err != nil {
		return "", err
	}
	name, err := c.comm.RecvString(mdi.NameLength)
	if err != nil {
		return "", err
	}
	c.name = name
	return name, nil
}

func (c *Client) recvOneInt(cmd string) (int, error) {
	if err := c.comm.SendCommand(cmd); err != nil {
		return 0, err
	}
	v, err := c.comm.RecvInts(1)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, &ProtocolError{Command: cmd, Want: 1, Got: len(v)}
	}
	return v[0], nil
}

func (c *Client) recvIntArray(cmd string, n int) ([]int, error) {
	if err := c.comm.SendCommand(cmd); err != nil {
		return nil, err
	}
	v, err := c.comm.RecvInts(n)
	if err != nil {
		return nil, err
	}
	if len(v) != n {
		return nil, &ProtocolError{Command: cmd, Want: n, Got: len(v)}
	}
	return v, nil
}

// Natoms returns the engine's atom count.
func (c *Client) Natoms() (int, error) { return c.recvOneInt(CmdNatoms) }

// Npoles returns the engine's multipole site count. Sites may outnumber or
// be numbered differently from atoms.
func (c *Client) Npoles() (int, error) { return c.recvOneInt(CmdNpoles) }

// Ipoles returns the per-atom multipole site index, 1-based as reported on
// the wire. Callers index atoms 0-based; the off-by-one stays at this seam.
func (c *Client) Ipoles(natoms int) ([]int, error) {
	return c.recvIntArray(CmdIpoles, natoms)
}

// Molecules returns the per-atom molecule membership id.
func (c *Client) Molecules(natoms int) ([]int, error) {
	return c.recvIntArray(CmdMolecules, natoms)
}

// Residues returns the per-atom residue membership id.
func (c *Client) Residues(natoms int) ([]int, error) {
	return c.recvIntArray(CmdResidues, natoms)
}

// RegisterProbes transmits the probe count and then the 1-based probe site
// indices, in that order. The engine sizes its field reply buffers from this,
// so registration happens exactly once, before the first frame.
func (c *Client) RegisterProbes(sites []int) error {
	if c.registered {
		return ErrProbesRegistered
	}
	if err := c.comm.SendCommand(CmdNprobes); err != nil {
		return err
	}
	if err := c.comm.SendInts([]int{len(sites)}); err != nil {
		return err
	}
	if err := c.comm.SendCommand(CmdProbes); err != nil {
		return err
	}
	if err := c.comm.SendInts(sites); err != nil {
		return err
	}
	c.nprobes = len(sites)
	c.registered = true
	return nil
}

// SendCoords pushes one frame's coordinate array (3 values per atom, already
// in the engine's native length unit).
func (c *Client) SendCoords(coords []float64, natoms int) error {
	if len(coords) != 3*natoms {
		return fmt.Errorf("engine: coordinate array has %d values, want %d", len(coords), 3*natoms)
	}
	if err := c.comm.SendCommand(CmdCoords); err != nil {
		return err
	}
	return c.comm.SendFloats(coords)
}

func (c *Client) recvField(cmd string, npoles int) ([]float64, error) {
	if !c.registered {
		return nil, ErrProbesNotRegistered
	}
	want := 3 * npoles * c.nprobes
	if err := c.comm.SendCommand(cmd); err != nil {
		return nil, err
	}
	v, err := c.comm.RecvFloats(want)
	if err != nil {
		return nil, err
	}
	if len(v) != want {
		return nil, &ProtocolError{Command: cmd, Want: want, Got: len(v)}
	}
	return v, nil
}

// DField fetches the pairwise direct-field tensor for the registered probes,
// flat (probe, site, axis) order.
func (c *Client) DField(npoles int) ([]float64, error) {
	return c.recvField(CmdDField, npoles)
}

// UField fetches the pairwise induced-field tensor. Must be requested after
// DField within a frame; the engine replies in command order.
func (c *Client) UField(npoles int) ([]float64, error) {
	return c.recvField(CmdUField, npoles)
}

// Exit sends the terminal command. Exactly once per run.
func (c *Client) Exit() error {
	return c.comm.SendCommand(CmdExit)
}
