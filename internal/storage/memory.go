package storage

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"trainbot/internal/workout"
)

// Memory is an in-memory store implementation for tests and development.
// All operations, including id reservation, run under one lock, so the
// reserve-then-insert sequence is atomic like the Postgres statement.
type Memory struct {
	mu      sync.Mutex
	records map[int]workout.Record
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[int]workout.Record)}
}

// Create reserves a free identifier and stores the record.
func (s *Memory) Create(_ context.Context, rec *workout.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= workout.MaxID {
		return 0, workout.ErrIDSpaceExhausted
	}
	id := rand.IntN(workout.MaxID) + 1
	for {
		if _, used := s.records[id]; !used {
			break
		}
		id = rand.IntN(workout.MaxID) + 1
	}
	rec.ID = id
	s.records[id] = *rec
	return id, nil
}

// ListRecent returns at most n most-recent records, ordered ascending by
// timestamp.
func (s *Memory) ListRecent(_ context.Context, n int) ([]workout.Record, error) {
	if n <= 0 {
		n = workout.MaxID
	}
	s.mu.Lock()
	all := make([]workout.Record, 0, len(s.records))
	for _, rec := range s.records {
		all = append(all, rec)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// IDs returns the set of identifiers currently in use.
func (s *Memory) IDs(_ context.Context) (map[int]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[int]struct{}, len(s.records))
	for id := range s.records {
		set[id] = struct{}{}
	}
	return set, nil
}

// Delete removes the record with the given id if present.
func (s *Memory) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
