package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/particles/internal/physics"
)

const (
	particlesFile = "particles.psobj"
	metadataFile  = "metadata.json"
)

// Store keeps snapshots as <base>/<id>/particles.psobj plus metadata.json.
type Store struct {
	baseDir string
	logger  *log.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// SetLogger enables [STORE] lines for saves.
func (s *Store) SetLogger(l *log.Logger) { s.logger = l }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Metadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Strategy  string             `json:"strategy"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	TimeStep  float64            `json:"time_step"`
	Elapsed   float64            `json:"elapsed"`
	Ticks     uint64             `json:"ticks"`
	Count     int                `json:"count"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a snapshot and returns its id. ID, Count and Timestamp in
// meta are filled in.
func (s *Store) Save(meta Metadata, ps []physics.Particle) (string, error) {
	now := time.Now()
	name := meta.Scenario
	if name == "" {
		name = "snapshot"
	}
	meta.Timestamp = now
	meta.Count = len(ps)

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	// ids are unique even for saves within the same millisecond
	meta.ID = fmt.Sprintf("%s_%d", name, now.UnixMilli())
	dir := filepath.Join(s.baseDir, meta.ID)
	for i := 2; ; i++ {
		err := os.Mkdir(dir, 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		meta.ID = fmt.Sprintf("%s_%d_%d", name, now.UnixMilli(), i)
		dir = filepath.Join(s.baseDir, meta.ID)
	}
	if err := WriteFile(filepath.Join(dir, particlesFile), ps); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.Printf("[STORE] saved %s (%d particles)", meta.ID, meta.Count)
	}
	return meta.ID, nil
}

// List returns every readable snapshot, oldest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	runs := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadParticles(id string) ([]*physics.Particle, error) {
	ps, err := ReadFile(filepath.Join(s.baseDir, id, particlesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ps, err
}

// Export is the JSON form of a snapshot.
type Export struct {
	Metadata
	Particles []physics.Particle `json:"particles"`
}

// ExportJSON writes snapshot id as indented JSON.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	ps, err := s.LoadParticles(id)
	if err != nil {
		return err
	}

	data := Export{Metadata: *meta, Particles: make([]physics.Particle, len(ps))}
	for i, p := range ps {
		data.Particles[i] = *p
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
