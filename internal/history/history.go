// Package history keeps the rolling per-station time series of price
// readings. Sequences are newest-first; every mutation preserves that
// ordering, and pruning enforces the retention window after each append.
package history

import (
	"sync"
	"time"

	"fuel-price-tracker/internal/model"
)

// RetentionWindow is the maximum age of a stored reading.
const RetentionWindow = 14 * 24 * time.Hour

// AnalyticsWindow is the lookback used by pattern analysis, independent of
// the retention window.
const AnalyticsWindow = 7 * 24 * time.Hour

// Store holds the in-memory history, keyed by station URL.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]model.Reading
}

// NewStore returns an empty history store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]model.Reading)}
}

// Load replaces the store contents with previously persisted data. Each
// sequence is re-sorted defensively so the newest-first invariant holds even
// when the stored file was edited by hand.
func (s *Store) Load(data map[string][]model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]model.Reading, len(data))
	for station, readings := range data {
		seq := make([]model.Reading, len(readings))
		copy(seq, readings)
		sortNewestFirst(seq)
		s.entries[station] = seq
	}
}

// Snapshot returns a deep copy of the store contents for persistence.
func (s *Store) Snapshot() map[string][]model.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.Reading, len(s.entries))
	for station, readings := range s.entries {
		seq := make([]model.Reading, len(readings))
		copy(seq, readings)
		out[station] = seq
	}
	return out
}

// Latest returns the newest reading for a station, or ok=false when none.
func (s *Store) Latest(stationURL string) (model.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.entries[stationURL]
	if len(seq) == 0 {
		return model.Reading{}, false
	}
	return seq[0], true
}

// Append inserts a reading at the head of the station's sequence.
func (s *Store) Append(stationURL string, reading model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[stationURL] = append([]model.Reading{reading}, s.entries[stationURL]...)
}

// Prune removes every reading older than the retention duration relative to
// asOf.
func (s *Store) Prune(stationURL string, retain time.Duration, asOf time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := asOf.Add(-retain)
	seq := s.entries[stationURL]
	kept := seq[:0]
	for _, r := range seq {
		if r.Timestamp.After(cutoff) {
			kept = append(kept, r)
		}
	}
	s.entries[stationURL] = kept
}

// Windowed returns the readings within the trailing window relative to asOf,
// newest-first. The result is a copy; the caller may not mutate the store
// through it.
func (s *Store) Windowed(stationURL string, window time.Duration, asOf time.Time) []model.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := asOf.Add(-window)
	var out []model.Reading
	for _, r := range s.entries[stationURL] {
		if r.Timestamp.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of retained readings for a station.
func (s *Store) Count(stationURL string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[stationURL])
}

// Stats summarises the store for status surfaces.
type Stats struct {
	TotalReadings int
	Oldest        time.Time
	Newest        time.Time
}

// Stats aggregates counts and the covered time range across all stations.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, seq := range s.entries {
		st.TotalReadings += len(seq)
		if len(seq) == 0 {
			continue
		}
		newest := seq[0].Timestamp
		oldest := seq[len(seq)-1].Timestamp
		if st.Newest.IsZero() || newest.After(st.Newest) {
			st.Newest = newest
		}
		if st.Oldest.IsZero() || oldest.Before(st.Oldest) {
			st.Oldest = oldest
		}
	}
	return st
}

func sortNewestFirst(seq []model.Reading) {
	// Insertion sort: persisted sequences are already ordered in the common
	// case, making this effectively linear.
	for i := 1; i < len(seq); i++ {
		for j := i; j > 0 && seq[j].Timestamp.After(seq[j-1].Timestamp); j-- {
			seq[j], seq[j-1] = seq[j-1], seq[j]
		}
	}
}
