package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"efprobe/internal/driver"
	"efprobe/internal/field"
)

// Store keeps one directory per run: metadata.json plus dfield.csv and
// ufield.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Engine    string    `json:"engine"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  string    `json:"snapshot"`
	Natoms    int       `json:"natoms"`
	Npoles    int       `json:"npoles"`
	Mode      string    `json:"mode"`
	Probes    []int     `json:"probes"`
	Frames    int       `json:"frames"`
}

// Save writes one completed run and returns its id.
func (s *Store) Save(snapshot string, res *driver.Result) (string, error) {
	runID := fmt.Sprintf("run_%s", uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Engine:    res.EngineName,
		Timestamp: time.Now(),
		Snapshot:  snapshot,
		Natoms:    res.Natoms,
		Npoles:    res.Npoles,
		Mode:      res.Mode.String(),
		Probes:    res.Probes,
		Frames:    res.Frames,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeTable(runDir, res.DField); err != nil {
		return "", err
	}
	if err := s.writeTable(runDir, res.UField); err != nil {
		return "", err
	}
	return runID, nil
}

// writeTable writes one field table. Each fragment column holds the summed
// 3-vector as three space-separated values in a single cell, so the header
// stays one fragment label per column.
func (s *Store) writeTable(runDir string, t *field.Table) error {
	f, err := os.Create(filepath.Join(runDir, string(t.Kind)+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"frame", "probe_atom", "probe_coord"}
	header = append(header, t.Fragments...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range t.Rows {
		rec := []string{
			strconv.Itoa(row.Frame),
			strconv.Itoa(row.Probe),
			formatVec(row.Coord),
		}
		for _, v := range row.Values {
			rec = append(rec, formatVec(v))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatVec(v [3]float64) string {
	return fmt.Sprintf("%.10g %.10g %.10g", v[0], v[1], v[2])
}

func parseVec(s string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return v, fmt.Errorf("storage: vector cell has %d values, want 3", len(fields))
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads a stored field table back.
func (s *Store) LoadTable(runID string, kind field.Kind) (*field.Table, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, string(kind)+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: %s table for %s is empty", kind, runID)
	}

	t := &field.Table{Kind: kind, Fragments: records[0][3:]}
	for _, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("storage: row has %d cells, want %d", len(rec), len(records[0]))
		}
		frame, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, err
		}
		probe, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, err
		}
		coord, err := parseVec(rec[2])
		if err != nil {
			return nil, err
		}
		row := field.Row{Frame: frame, Probe: probe, Coord: coord}
		for _, cell := range rec[3:] {
			v, err := parseVec(cell)
			if err != nil {
				return nil, err
			}
			row.Values = append(row.Values, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
