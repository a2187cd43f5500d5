package driver

import (
	"context"
	"errors"
	"fmt"

	"efprobe/internal/engine"
	"efprobe/internal/field"
	"efprobe/internal/fragment"
	"efprobe/internal/traj"
)

// ErrAtomCountMismatch indicates the trajectory and the engine disagree on
// the atom count. Detected before any coordinates are sent, so no per-frame
// round trips are wasted.
var ErrAtomCountMismatch = errors.New("driver: snapshot and engine atom counts differ")

// Observer is notified after each frame's reduction. The live view hangs off
// this; observers must not block for long, the frame loop waits on them.
type Observer interface {
	OnFrame(frame int, dfield, ufield []field.Row)
}

// Result is everything one run produced.
type Result struct {
	EngineName string
	Natoms     int
	Npoles     int
	Mode       fragment.Mode
	Probes     []int
	ProbeSites []int
	Fragments  []fragment.Fragment
	Frames     int
	DField     *field.Table
	UField     *field.Table
}

// Driver owns the per-run state. Fragments and probe indices are computed
// once during Run and read-only afterwards.
type Driver struct {
	client    *engine.Client
	frames    *traj.Reader
	mode      fragment.Mode
	probes    []int
	observers []Observer
}

func New(client *engine.Client, frames *traj.Reader, mode fragment.Mode, probes []int) *Driver {
	return &Driver{
		client: client,
		frames: frames,
		mode:   mode,
		probes: probes,
	}
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Run executes the whole analysis. Tables accumulate rows for every frame in
// the trajectory; the terminal EXIT is sent only after a fully successful
// stream.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	name, err := d.client.Name()
	if err != nil {
		return nil, err
	}

	natoms, err := d.client.Natoms()
	if err != nil {
		return nil, err
	}
	if d.frames.Natoms() != natoms {
		return nil, fmt.Errorf("%w: engine %d, snapshot %d", ErrAtomCountMismatch, natoms, d.frames.Natoms())
	}

	npoles, err := d.client.Npoles()
	if err != nil {
		return nil, err
	}
	ipoles, err := d.client.Ipoles(natoms)
	if err != nil {
		return nil, err
	}
	molecules, err := d.client.Molecules(natoms)
	if err != nil {
		return nil, err
	}
	residues, err := d.client.Residues(natoms)
	if err != nil {
		return nil, err
	}

	frags, err := fragment.Build(d.mode, natoms, ipoles, molecules, residues)
	if err != nil {
		return nil, err
	}
	sites, err := fragment.ResolveProbes(d.probes, ipoles)
	if err != nil {
		return nil, err
	}
	if err := d.client.RegisterProbes(sites); err != nil {
		return nil, err
	}

	res := &Result{
		EngineName: name,
		Natoms:     natoms,
		Npoles:     npoles,
		Mode:       d.mode,
		Probes:     d.probes,
		ProbeSites: sites,
		Fragments:  frags,
		DField:     field.NewTable(field.DField, frags),
		UField:     field.NewTable(field.UField, frags),
	}

	for frameIndex := 0; ; frameIndex++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		frame, err := d.frames.Next()
		if errors.Is(err, traj.ErrEndOfTrajectory) {
			break
		}
		if err != nil {
			return nil, err
		}

		if err := d.client.SendCoords(frame.Coords, natoms); err != nil {
			return nil, err
		}
		draw, err := d.client.DField(npoles)
		if err != nil {
			return nil, err
		}
		uraw, err := d.client.UField(npoles)
		if err != nil {
			return nil, err
		}
		dtensor, err := field.NewTensor(len(sites), npoles, draw)
		if err != nil {
			return nil, err
		}
		utensor, err := field.NewTensor(len(sites), npoles, uraw)
		if err != nil {
			return nil, err
		}

		drows := field.Reduce(dtensor, frags, d.probes, frame, frameIndex)
		urows := field.Reduce(utensor, frags, d.probes, frame, frameIndex)
		res.DField.Append(drows)
		res.UField.Append(urows)
		res.Frames++

		for _, o := range d.observers {
			o.OnFrame(frameIndex, drows, urows)
		}
	}

	if err := d.client.Exit(); err != nil {
		return nil, err
	}
	return res, nil
}
