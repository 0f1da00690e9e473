package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/san-kum/gillespie/internal/config"
	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/sampling"
	"github.com/san-kum/gillespie/internal/ssa"
)

var ErrRunNotFound = errors.New("storage: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	sampler    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	seed       INTEGER NOT NULL,
	samples    INTEGER NOT NULL,
	runs       INTEGER NOT NULL,
	retries    INTEGER NOT NULL,
	p_value    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Store keeps one directory per run (metadata.json, events.csv) and a SQLite
// index of all runs for listing.
type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	dbPath := filepath.Join(s.baseDir, "index.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize index: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type EventMeta struct {
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	Expected float64 `json:"expected"`
	Count    int     `json:"count"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Sampler   string             `json:"sampler"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Samples   int                `json:"samples"`
	Runs      int                `json:"runs"`
	Retries   int                `json:"retries"`
	Elapsed   float64            `json:"elapsed"`
	Total     float64            `json:"total_propensity"`
	PValue    float64            `json:"p_value"`
	Events    []EventMeta        `json:"events,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Summarize builds run metadata from a config and a (possibly merged) result.
func Summarize(cfg *config.Config, result *sampling.Result) RunMetadata {
	props := cfg.Propensities()
	probs := metrics.Probabilities(props)
	names := cfg.EventNames()

	meta := RunMetadata{
		Name:    cfg.Name,
		Sampler: cfg.Sampler,
		Seed:    cfg.Seed,
		Samples: cfg.Samples,
		Runs:    cfg.Runs,
		Retries: result.Retries,
		Elapsed: result.Elapsed,
		Events:  make([]EventMeta, len(props)),
		Metrics: result.Metrics,
	}
	for k, p := range props {
		meta.Total += p
		meta.Events[k] = EventMeta{Name: names[k], Rate: p, Expected: probs[k]}
		if k < len(result.Counts) {
			meta.Events[k].Count = result.Counts[k]
		}
	}
	meta.PValue = metrics.ChiSquarePValue(metrics.ChiSquareStatistic(result.Counts, probs))
	if meta.Metrics == nil {
		meta.Metrics = make(map[string]float64)
	}
	return meta
}

func (s *Store) Save(cfg *config.Config, result *sampling.Result) (string, error) {
	if s.db == nil {
		return "", errors.New("storage: store not initialized")
	}

	meta := Summarize(cfg, result)
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", runName(cfg.Name), meta.Timestamp.UnixNano())

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := s.writeRun(runDir, meta, result.Events); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return meta.ID, nil
}

func (s *Store) writeRun(runDir string, meta RunMetadata, events []ssa.Event) error {
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return err
	}
	if err := writeEvents(filepath.Join(runDir, "events.csv"), meta.Events, events); err != nil {
		return err
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO runs (id, name, sampler, created_at, seed, samples, runs, retries, p_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Sampler, meta.Timestamp.UnixNano(),
		meta.Seed, meta.Samples, meta.Runs, meta.Retries, meta.PValue)
	if err != nil {
		return fmt.Errorf("failed to index run: %w", err)
	}
	return nil
}

// runName keeps letters, digits, '-' and '_' of a table name so the run ID
// is always a single directory under the store.
func runName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if strings.Trim(clean, "_") == "" {
		return "run"
	}
	return clean
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEvents(path string, names []EventMeta, events []ssa.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"key", "name", "dt", "time"}); err != nil {
		return err
	}

	t := 0.0
	for _, ev := range events {
		t += ev.Dt
		name := ""
		if ev.Key < len(names) {
			name = names[ev.Key].Name
		}
		row := []string{
			strconv.Itoa(ev.Key),
			name,
			strconv.FormatFloat(ev.Dt, 'g', -1, 64),
			strconv.FormatFloat(t, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns indexed runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	if s.db == nil {
		return []RunMetadata{}, nil
	}

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, name, sampler, created_at, seed, samples, runs, retries, p_value
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var meta RunMetadata
		var created int64
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Sampler, &created,
			&meta.Seed, &meta.Samples, &meta.Runs, &meta.Retries, &meta.PValue); err != nil {
			return nil, err
		}
		meta.Timestamp = time.Unix(0, created)
		runs = append(runs, meta)
	}

	return runs, rows.Err()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEvents reads the event log of a run together with the cumulative
// simulated time of each event.
func (s *Store) LoadEvents(runID string) ([]ssa.Event, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "events.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []ssa.Event{}, []float64{}, nil
	}

	events := make([]ssa.Event, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		key, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		dt, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			continue
		}
		events = append(events, ssa.Event{Key: key, Dt: dt})
		times = append(times, t)
	}

	return events, times, nil
}
