package fragment

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name  string
		bymol bool
		byres bool
		want  Mode
	}{
		{"default atom", false, false, ModeAtom},
		{"molecule", true, false, ModeMolecule},
		{"residue", false, true, ModeResidue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseMode(tt.bymol, tt.byres)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if mode != tt.want {
				t.Errorf("expected %v, got %v", tt.want, mode)
			}
		})
	}
}

func TestParseModeConflict(t *testing.T) {
	if _, err := ParseMode(true, true); !errors.Is(err, ErrModeConflict) {
		t.Errorf("expected ErrModeConflict, got %v", err)
	}
}

func TestBuildAtomMode(t *testing.T) {
	ipoles := []int{5, 1, 3}
	frags, err := Build(ModeAtom, 3, ipoles, nil, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	// Fragment i holds exactly atom i's site index, in atom order.
	for i, f := range frags {
		if f.ID != i+1 {
			t.Errorf("fragment %d: expected id %d, got %d", i, i+1, f.ID)
		}
		if len(f.Sites) != 1 || f.Sites[0] != ipoles[i] {
			t.Errorf("fragment %d: expected sites [%d], got %v", i, ipoles[i], f.Sites)
		}
	}
	if frags[0].Label != "atom 1" {
		t.Errorf("expected label \"atom 1\", got %q", frags[0].Label)
	}
}

func TestBuildMoleculeMode(t *testing.T) {
	// Membership ids are neither contiguous nor sorted on input.
	ipoles := []int{1, 2, 3, 4, 5}
	molecules := []int{7, 2, 7, 2, 9}

	frags, err := Build(ModeMolecule, 5, ipoles, molecules, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}

	// Unique ids sorted for reproducible output ordering.
	wantIDs := []int{2, 7, 9}
	wantSites := [][]int{{2, 4}, {1, 3}, {5}}
	for i, f := range frags {
		if f.ID != wantIDs[i] {
			t.Errorf("fragment %d: expected id %d, got %d", i, wantIDs[i], f.ID)
		}
		if len(f.Sites) != len(wantSites[i]) {
			t.Fatalf("fragment %d: expected sites %v, got %v", i, wantSites[i], f.Sites)
		}
		for j, s := range wantSites[i] {
			if f.Sites[j] != s {
				t.Errorf("fragment %d: expected sites %v, got %v", i, wantSites[i], f.Sites)
			}
		}
	}
	if frags[0].Label != "molecule 2" {
		t.Errorf("expected label \"molecule 2\", got %q", frags[0].Label)
	}
}

func TestBuildPartition(t *testing.T) {
	// Every site lands in exactly one fragment.
	natoms := 6
	ipoles := []int{6, 5, 4, 3, 2, 1}
	residues := []int{1, 1, 2, 2, 3, 3}

	frags, err := Build(ModeResidue, natoms, ipoles, nil, residues)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	seen := make(map[int]int)
	for _, f := range frags {
		for _, s := range f.Sites {
			seen[s]++
		}
	}
	if len(seen) != natoms {
		t.Errorf("expected %d distinct sites, got %d", natoms, len(seen))
	}
	for s, n := range seen {
		if n != 1 {
			t.Errorf("site %d appears in %d fragments, want 1", s, n)
		}
	}
}

func TestBuildLengthMismatch(t *testing.T) {
	if _, err := Build(ModeAtom, 4, []int{1, 2}, nil, nil); err == nil {
		t.Error("expected error for short ipoles, got nil")
	}
	if _, err := Build(ModeMolecule, 2, []int{1, 2}, []int{1}, nil); err == nil {
		t.Error("expected error for short membership, got nil")
	}
}

func TestResolveProbes(t *testing.T) {
	ipoles := []int{10, 20, 30, 40}

	sites, err := ResolveProbes([]int{4, 1, 3}, ipoles)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// Order preserving, same length, 1-based lookup.
	want := []int{40, 10, 30}
	if len(sites) != len(want) {
		t.Fatalf("expected %d sites, got %d", len(want), len(sites))
	}
	for i := range want {
		if sites[i] != want[i] {
			t.Errorf("site %d: expected %d, got %d", i, want[i], sites[i])
		}
	}
}

func TestResolveProbesOutOfRange(t *testing.T) {
	ipoles := []int{10, 20}

	tests := []struct {
		name  string
		probe int
	}{
		{"zero", 0},
		{"negative", -3},
		{"past end", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveProbes([]int{tt.probe}, ipoles)
			if !errors.Is(err, ErrProbeRange) {
				t.Errorf("expected ErrProbeRange, got %v", err)
			}
		})
	}
}
