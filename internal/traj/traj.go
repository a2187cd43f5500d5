// Package traj streams coordinate frames from a text snapshot file.
//
// The format is the Tinker-style archive: every frame starts with a header
// line whose first token is the atom count, optionally followed by a periodic
// box line (recognized by its six fields), then one line per atom whose 3rd
// to 5th whitespace-delimited fields are x, y and z in angstrom. Coordinates
// are converted to the engine's native unit (bohr) as they are read.
//
// Files compressed with zstd (.zst) or gzip (.gz) are decompressed
// transparently, keyed on the file extension.
package traj

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"efprobe/internal/units"
)

// ErrEndOfTrajectory marks a clean end of the snapshot file between frames.
var ErrEndOfTrajectory = errors.New("traj: end of trajectory")

// Frame is one snapshot: a flat 3N coordinate array in bohr. Frames are
// ephemeral; each one is consumed by the driver before the next is read.
type Frame struct {
	Coords []float64
}

// At returns the coordinate triple of a 1-based atom id.
func (f *Frame) At(atom int) [3]float64 {
	i := 3 * (atom - 1)
	return [3]float64{f.Coords[i], f.Coords[i+1], f.Coords[i+2]}
}

// Reader yields successive frames from one snapshot file.
type Reader struct {
	natoms  int
	box     bool
	scale   float64
	scanner *bufio.Scanner
	closers []io.Closer
	pending []string // header already consumed during format detection
	first   bool
}

// Open opens a snapshot file, decompressing by extension.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("traj: open %s: %w", path, err)
	}
	var src io.Reader = f
	closers := []io.Closer{f}
	switch {
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("traj: open %s: %w", path, err)
		}
		src = zr
		closers = append([]io.Closer{zstdCloser{zr}}, closers...)
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("traj: open %s: %w", path, err)
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	}
	r, err := NewReader(src)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}
	r.closers = closers
	return r, nil
}

// zstd's Decoder.Close returns nothing; adapt it to io.Closer.
type zstdCloser struct{ dec *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.dec.Close()
	return nil
}

// NewReader parses the snapshot header from an already-open stream. The first
// line's first token is the atom count; a six-field second line marks a
// periodic box and therefore a two-line per-frame header.
func NewReader(src io.Reader) (*Reader, error) {
	scale, err := units.Factor("angstrom", "atomic_unit_of_length")
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("traj: empty snapshot file")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return nil, fmt.Errorf("traj: blank first line")
	}
	natoms, err := strconv.Atoi(fields[0])
	if err != nil || natoms <= 0 {
		return nil, fmt.Errorf("traj: bad atom count %q", fields[0])
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("traj: snapshot ends after header")
	}
	second := sc.Text()
	r := &Reader{natoms: natoms, scale: scale, scanner: sc, first: true}
	if len(strings.Fields(second)) == 6 {
		r.box = true
	} else {
		// No box: the second line is already the first atom line.
		r.pending = []string{second}
	}
	return r, nil
}

// Natoms returns the per-frame atom count declared by the file.
func (r *Reader) Natoms() int { return r.natoms }

// HasBox reports whether the file carries periodic box headers.
func (r *Reader) HasBox() bool { return r.box }

func (r *Reader) nextLine() (string, bool) {
	if len(r.pending) > 0 {
		line := r.pending[0]
		r.pending = r.pending[1:]
		return line, true
	}
	if !r.scanner.Scan() {
		return "", false
	}
	return r.scanner.Text(), true
}

// Next reads one frame. It returns ErrEndOfTrajectory once the file is
// exhausted at a frame boundary; running out mid-frame is a format error.
func (r *Reader) Next() (*Frame, error) {
	if !r.first {
		// Skip the next frame's header: the repeated atom-count line,
		// plus the box line when present.
		skip := 1
		if r.box {
			skip = 2
		}
		for i := 0; i < skip; i++ {
			if _, ok := r.nextLine(); !ok {
				if i == 0 {
					return nil, ErrEndOfTrajectory
				}
				return nil, fmt.Errorf("traj: truncated frame header")
			}
		}
	}
	r.first = false

	coords := make([]float64, 0, 3*r.natoms)
	for atom := 0; atom < r.natoms; atom++ {
		line, ok := r.nextLine()
		if !ok {
			if atom == 0 {
				return nil, ErrEndOfTrajectory
			}
			return nil, fmt.Errorf("traj: frame truncated at atom %d of %d", atom+1, r.natoms)
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("traj: atom line has %d fields, want at least 5: %q", len(fields), line)
		}
		for axis := 0; axis < 3; axis++ {
			v, err := strconv.ParseFloat(fields[2+axis], 64)
			if err != nil {
				return nil, fmt.Errorf("traj: bad coordinate %q: %w", fields[2+axis], err)
			}
			coords = append(coords, v*r.scale)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("traj: read: %w", err)
	}
	return &Frame{Coords: coords}, nil
}

func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
