// Package storage persists the tracker state as JSON documents on disk:
// the configured stations, the per-station price history and the subscriber
// records. The host is ephemeral, so the files are deliberately simple flat
// documents that a backup job can copy as-is.
//
// Loading is fail-soft: a missing or malformed file yields empty state with a
// warning instead of an error, and individual malformed records are dropped
// at the load boundary.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/schedule"
)

const (
	stationsFile    = "stations.json"
	historyFile     = "history.json"
	subscribersFile = "subscribers.json"
)

// Store is the persistence contract the orchestrator depends on.
type Store interface {
	LoadStations() ([]model.Station, error)
	LoadHistory() (map[string][]model.Reading, error)
	SaveHistory(map[string][]model.Reading) error
	LoadSubscribers() (map[int64]*model.Subscriber, error)
	SaveSubscribers(map[int64]*model.Subscriber) error
}

// FileStore reads and writes the three JSON documents under one directory.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewFileStore creates the data directory if needed and returns a store.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("storage: data directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// Dir returns the data directory, used by the backup job.
func (s *FileStore) Dir() string { return s.dir }

// Files lists the document file names under Dir.
func (s *FileStore) Files() []string {
	return []string{stationsFile, historyFile, subscribersFile}
}

// LoadStations reads the configured stations. Records without a URL are
// dropped; opening-hour slots that fail validation (malformed, or closing
// before opening) are cleared so that the schedule gate stays fail-open.
func (s *FileStore) LoadStations() ([]model.Station, error) {
	var raw []model.Station
	if !s.readJSON(stationsFile, &raw) {
		return nil, nil
	}

	stations := raw[:0]
	for _, st := range raw {
		if st.URL == "" {
			s.logger.Warn().Str("name", st.Name).Msg("dropping station without url")
			continue
		}
		if st.OpeningHours != nil {
			s.validateHours(st)
		}
		stations = append(stations, st)
	}
	return stations, nil
}

func (s *FileStore) validateHours(st model.Station) {
	hours := st.OpeningHours
	slots := []struct {
		name  string
		value *string
	}{
		{"monFri", &hours.MonFri},
		{"sat", &hours.Sat},
		{"sun", &hours.Sun},
	}
	for _, slot := range slots {
		if err := schedule.ValidateSlot(*slot.value); err != nil {
			s.logger.Warn().Err(err).
				Str("station", st.Name).
				Str("slot", slot.name).
				Msg("clearing invalid opening-hours slot")
			*slot.value = ""
		}
	}
}

// LoadHistory reads the persisted price history. Readings without a
// timestamp are dropped and out-of-bound prices are cleared.
func (s *FileStore) LoadHistory() (map[string][]model.Reading, error) {
	var raw map[string][]model.Reading
	if !s.readJSON(historyFile, &raw) {
		return map[string][]model.Reading{}, nil
	}

	for station, readings := range raw {
		kept := readings[:0]
		for _, r := range readings {
			if r.Timestamp.IsZero() {
				continue
			}
			for _, fuel := range model.FuelTypes {
				if p := r.Prices.Get(fuel); p != nil && !model.SanePrice(*p) {
					r.Prices.Clear(fuel)
				}
			}
			kept = append(kept, r)
		}
		raw[station] = kept
	}
	return raw, nil
}

// SaveHistory writes the full history document.
func (s *FileStore) SaveHistory(data map[string][]model.Reading) error {
	return s.writeJSON(historyFile, data)
}

// LoadSubscribers reads the subscriber records, normalising each (defaults
// for unknown fuel selections and the like).
func (s *FileStore) LoadSubscribers() (map[int64]*model.Subscriber, error) {
	var raw map[int64]*model.Subscriber
	if !s.readJSON(subscribersFile, &raw) {
		return map[int64]*model.Subscriber{}, nil
	}

	for id, sub := range raw {
		if sub == nil {
			delete(raw, id)
			continue
		}
		sub.Normalize()
	}
	return raw, nil
}

// SaveSubscribers writes the full subscriber document.
func (s *FileStore) SaveSubscribers(data map[int64]*model.Subscriber) error {
	return s.writeJSON(subscribersFile, data)
}

// readJSON reports false when the file is missing or malformed; the caller
// falls back to empty state.
func (s *FileStore) readJSON(name string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("file", name).Msg("state file unreadable, using defaults")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("state file malformed, using defaults")
		return false
	}
	return true
}

// writeJSON writes atomically via a temp file and rename, so a crash mid-save
// never corrupts the previous state.
func (s *FileStore) writeJSON(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
