package fragment

import (
	"fmt"
	"sort"
)

// Mode selects how sites are aggregated into fragments.
type Mode int

const (
	ModeAtom Mode = iota
	ModeMolecule
	ModeResidue
)

func (m Mode) String() string {
	switch m {
	case ModeMolecule:
		return "molecule"
	case ModeResidue:
		return "residue"
	default:
		return "atom"
	}
}

// ParseMode maps the two aggregation flags onto the closed variant. Both
// flags set is a configuration conflict and is rejected here, before any
// engine I/O happens.
func ParseMode(byMolecule, byResidue bool) (Mode, error) {
	if byMolecule && byResidue {
		return ModeAtom, ErrModeConflict
	}
	if byMolecule {
		return ModeMolecule, nil
	}
	if byResidue {
		return ModeResidue, nil
	}
	return ModeAtom, nil
}

// Fragment is one aggregation group: a label like "molecule 3" and the sorted
// 1-based site indices of its member atoms. Built once, read-only afterwards.
type Fragment struct {
	ID    int
	Label string
	Sites []int
}

// Build groups the engine's sites into fragments.
//
// ipoles, molecules and residues are per-atom arrays as reported by the
// engine: ipoles[i] is the 1-based site index of atom i+1, molecules[i] and
// residues[i] its membership ids. Membership ids need not be contiguous or
// sorted; unique ids are sorted so fragment order is reproducible. In atom
// mode there is one singleton fragment per atom, in atom order.
func Build(mode Mode, natoms int, ipoles, molecules, residues []int) ([]Fragment, error) {
	if len(ipoles) != natoms {
		return nil, fmt.Errorf("fragment: ipoles has %d entries, want %d", len(ipoles), natoms)
	}

	var membership []int
	switch mode {
	case ModeAtom:
		frags := make([]Fragment, natoms)
		for i := 0; i < natoms; i++ {
			frags[i] = Fragment{
				ID:    i + 1,
				Label: fmt.Sprintf("%s %d", mode, i+1),
				Sites: []int{ipoles[i]},
			}
		}
		return frags, nil
	case ModeMolecule:
		membership = molecules
	case ModeResidue:
		membership = residues
	}
	if len(membership) != natoms {
		return nil, fmt.Errorf("fragment: %s membership has %d entries, want %d", mode, len(membership), natoms)
	}

	groups := make(map[int][]int)
	for i := 0; i < natoms; i++ {
		id := membership[i]
		groups[id] = append(groups[id], ipoles[i])
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	frags := make([]Fragment, 0, len(ids))
	for _, id := range ids {
		sites := groups[id]
		sort.Ints(sites)
		frags = append(frags, Fragment{
			ID:    id,
			Label: fmt.Sprintf("%s %d", mode, id),
			Sites: sites,
		})
	}
	return frags, nil
}

// ResolveProbes maps user-supplied 1-based probe atom ids to their site
// indices, preserving order. The subtraction here is one of the two 1-based
// wire vs 0-based memory seams.
func ResolveProbes(probes []int, ipoles []int) ([]int, error) {
	sites := make([]int, len(probes))
	for i, atom := range probes {
		if atom < 1 || atom > len(ipoles) {
			return nil, fmt.Errorf("%w: atom %d (valid range 1..%d)", ErrProbeRange, atom, len(ipoles))
		}
		sites[i] = ipoles[atom-1]
	}
	return sites, nil
}
