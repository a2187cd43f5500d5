package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"efprobe/internal/engine"
	"efprobe/internal/field"
	"efprobe/internal/fragment"
	"efprobe/internal/traj"
)

const snapshot = `4 dimer
1 O 0.0 0.0 0.0
2 H 1.0 0.0 0.0
3 O 0.0 1.0 0.0
4 H 1.0 1.0 0.0
`

// fakeComm scripts engine replies keyed by the requesting command and records
// every send so tests can assert on protocol order.
type fakeComm struct {
	commands     []string
	last         string
	intReplies   map[string][]int
	floatReplies map[string][]float64
	name         string
	sentInts     [][]int
	sentFloats   [][]float64
}

func newFakeComm() *fakeComm {
	return &fakeComm{
		intReplies:   make(map[string][]int),
		floatReplies: make(map[string][]float64),
		name:         "NO_EWALD",
	}
}

func (f *fakeComm) SendCommand(cmd string) error {
	f.commands = append(f.commands, cmd)
	f.last = cmd
	return nil
}

func (f *fakeComm) SendInts(v []int) error {
	f.sentInts = append(f.sentInts, append([]int(nil), v...))
	return nil
}

func (f *fakeComm) SendFloats(v []float64) error {
	f.sentFloats = append(f.sentFloats, append([]float64(nil), v...))
	return nil
}

func (f *fakeComm) RecvInts(n int) ([]int, error) {
	v, ok := f.intReplies[f.last]
	if !ok {
		return nil, errors.New("no scripted int reply for " + f.last)
	}
	return v, nil
}

func (f *fakeComm) RecvFloats(n int) ([]float64, error) {
	v, ok := f.floatReplies[f.last]
	if !ok {
		return nil, errors.New("no scripted float reply for " + f.last)
	}
	return v, nil
}

func (f *fakeComm) RecvString(n int) (string, error) { return f.name, nil }

func (f *fakeComm) Close() error { return nil }

// scriptEngine wires a 4-atom, 6-site engine with zero field tensors for
// 2 probes.
func scriptEngine() *fakeComm {
	f := newFakeComm()
	f.intReplies[engine.CmdNatoms] = []int{4}
	f.intReplies[engine.CmdNpoles] = []int{6}
	f.intReplies[engine.CmdIpoles] = []int{1, 2, 4, 5}
	f.intReplies[engine.CmdMolecules] = []int{1, 1, 2, 2}
	f.intReplies[engine.CmdResidues] = []int{1, 1, 1, 2}
	f.floatReplies[engine.CmdDField] = make([]float64, 36)
	f.floatReplies[engine.CmdUField] = make([]float64, 36)
	return f
}

func snapshotReader(t *testing.T) *traj.Reader {
	t.Helper()
	r, err := traj.NewReader(strings.NewReader(snapshot))
	if err != nil {
		t.Fatalf("snapshot reader failed: %v", err)
	}
	return r
}

type recordingObserver struct {
	frames []int
}

func (o *recordingObserver) OnFrame(frame int, dfield, ufield []field.Row) {
	o.frames = append(o.frames, frame)
}

func TestRunAtomMode(t *testing.T) {
	f := scriptEngine()
	drv := New(engine.NewClient(f), snapshotReader(t), fragment.ModeAtom, []int{1, 3})

	obs := &recordingObserver{}
	drv.AddObserver(obs)

	res, err := drv.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.EngineName != "NO_EWALD" {
		t.Errorf("expected engine NO_EWALD, got %q", res.EngineName)
	}
	if res.Natoms != 4 || res.Npoles != 6 {
		t.Errorf("unexpected sizes: natoms=%d npoles=%d", res.Natoms, res.Npoles)
	}
	if res.Frames != 1 {
		t.Errorf("expected 1 frame, got %d", res.Frames)
	}

	// Probe atoms 1 and 3 map to sites 1 and 4 through the ipole table.
	if len(res.ProbeSites) != 2 || res.ProbeSites[0] != 1 || res.ProbeSites[1] != 4 {
		t.Errorf("unexpected probe sites: %v", res.ProbeSites)
	}

	// Atom mode: one fragment column per atom.
	if len(res.Fragments) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(res.Fragments))
	}
	if len(res.DField.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.DField.Rows))
	}
	for _, row := range res.DField.Rows {
		for _, v := range row.Values {
			if v != [3]float64{} {
				t.Errorf("zero tensor must reduce to zero vectors, got %v", v)
			}
		}
	}
	if len(res.UField.Rows) != 2 {
		t.Errorf("expected 2 ufield rows, got %d", len(res.UField.Rows))
	}

	wantCommands := []string{
		engine.CmdName,
		engine.CmdNatoms,
		engine.CmdNpoles,
		engine.CmdIpoles,
		engine.CmdMolecules,
		engine.CmdResidues,
		engine.CmdNprobes,
		engine.CmdProbes,
		engine.CmdCoords,
		engine.CmdDField,
		engine.CmdUField,
		engine.CmdExit,
	}
	if len(f.commands) != len(wantCommands) {
		t.Fatalf("expected %d commands, got %v", len(wantCommands), f.commands)
	}
	for i, cmd := range wantCommands {
		if f.commands[i] != cmd {
			t.Errorf("command %d: expected %s, got %s", i, cmd, f.commands[i])
		}
	}

	if len(obs.frames) != 1 || obs.frames[0] != 0 {
		t.Errorf("observer should see frame 0 once, got %v", obs.frames)
	}
}

func TestRunMoleculeMode(t *testing.T) {
	f := scriptEngine()
	// One probe: the field replies shrink to 3*npoles floats.
	f.floatReplies[engine.CmdDField] = make([]float64, 18)
	f.floatReplies[engine.CmdUField] = make([]float64, 18)
	drv := New(engine.NewClient(f), snapshotReader(t), fragment.ModeMolecule, []int{2})

	res, err := drv.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Fragments) != 2 {
		t.Fatalf("expected 2 molecule fragments, got %d", len(res.Fragments))
	}
	if res.Fragments[0].Label != "molecule 1" {
		t.Errorf("expected label \"molecule 1\", got %q", res.Fragments[0].Label)
	}
	if len(res.DField.Rows) != 1 || len(res.DField.Rows[0].Values) != 2 {
		t.Errorf("expected 1 row with 2 fragment columns")
	}
}

func TestRunAtomCountMismatch(t *testing.T) {
	f := scriptEngine()
	f.intReplies[engine.CmdNatoms] = []int{12}

	drv := New(engine.NewClient(f), snapshotReader(t), fragment.ModeAtom, []int{1})
	if _, err := drv.Run(context.Background()); !errors.Is(err, ErrAtomCountMismatch) {
		t.Fatalf("expected ErrAtomCountMismatch, got %v", err)
	}

	// The mismatch is detected before any coordinates go out.
	for _, cmd := range f.commands {
		if cmd == engine.CmdCoords {
			t.Error("no >COORDS command may be sent after a count mismatch")
		}
	}
	if len(f.sentFloats) != 0 {
		t.Errorf("no float payloads expected, got %d", len(f.sentFloats))
	}
}

func TestRunProbeOutOfRange(t *testing.T) {
	f := scriptEngine()
	drv := New(engine.NewClient(f), snapshotReader(t), fragment.ModeAtom, []int{9})

	if _, err := drv.Run(context.Background()); !errors.Is(err, fragment.ErrProbeRange) {
		t.Fatalf("expected ErrProbeRange, got %v", err)
	}
	// Probes never reach the engine.
	for _, cmd := range f.commands {
		if cmd == engine.CmdNprobes || cmd == engine.CmdProbes {
			t.Errorf("probe registration must not happen, got %v", f.commands)
		}
	}
}

func TestRunModeConflictBeforeContact(t *testing.T) {
	// Mode parsing fails before a driver, or a communicator, exists; the
	// engine sees nothing.
	f := newFakeComm()
	if _, err := fragment.ParseMode(true, true); !errors.Is(err, fragment.ErrModeConflict) {
		t.Fatal("expected mode conflict")
	}
	if len(f.commands) != 0 {
		t.Errorf("no commands should be sent, got %v", f.commands)
	}
}

func TestRunCanceledContext(t *testing.T) {
	f := scriptEngine()
	drv := New(engine.NewClient(f), snapshotReader(t), fragment.ModeAtom, []int{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := drv.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// EXIT is reserved for successful runs.
	for _, cmd := range f.commands {
		if cmd == engine.CmdExit {
			t.Error("EXIT must not be sent on a canceled run")
		}
	}
}
