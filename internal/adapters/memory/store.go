package memory

import (
	"cmp"
	"context"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/ports"
	"slices"
	"sync"
	"time"
)

// Store is an in-memory implementation of every persistence port. It backs
// offline CLI runs and tests.
type Store struct {
	mu     sync.RWMutex
	cities []domain.City
	rates  map[string]*domain.RateMatrix
	lanes  map[string]domain.Lane
	audits []domain.AuditRecord

	// Optional failure injection for UpdateLaneStatus / InsertAuditRecord.
	UpdateErr func(laneID string, status domain.LaneStatus) error
	AuditErr  func(rec domain.AuditRecord) error
}

var (
	_ ports.CityRepository = (*Store)(nil)
	_ ports.RateRepository = (*Store)(nil)
	_ ports.LaneStore      = (*Store)(nil)
	_ ports.LaneSource     = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		rates: make(map[string]*domain.RateMatrix),
		lanes: make(map[string]domain.Lane),
	}
}

// AddCities appends reference cities.
func (s *Store) AddCities(cities ...domain.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = append(s.cities, cities...)
}

// PutRateMatrix replaces the latest matrix for its equipment and level.
func (s *Store) PutRateMatrix(m *domain.RateMatrix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[m.Equipment+"|"+m.Level] = m
}

// PutLane inserts or replaces a lane.
func (s *Store) PutLane(l domain.Lane) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lanes[l.ID] = l
}

// Lane returns a stored lane.
func (s *Store) Lane(id string) (domain.Lane, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lanes[id]
	return l, ok
}

// Audits returns a copy of the inserted audit records.
func (s *Store) Audits() []domain.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.audits)
}

func (s *Store) FindCityByNameState(_ context.Context, city, state string) (domain.City, error) {
	key := domain.CityKey(city, state)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cities {
		if c.Key() == key {
			return c, nil
		}
	}
	return domain.City{}, ports.ErrNotFound
}

// FindCitiesNear returns cities within radius ordered nearest first; equal
// distances keep insertion order.
func (s *Store) FindCitiesNear(_ context.Context, coord domain.Coordinates, radiusMiles float64) ([]domain.City, error) {
	type hit struct {
		city domain.City
		dist float64
	}

	s.mu.RLock()
	hits := make([]hit, 0, len(s.cities))
	for _, c := range s.cities {
		if d := coord.MilesTo(c.Coords); d <= radiusMiles {
			hits = append(hits, hit{city: c, dist: d})
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(a.dist, b.dist) })

	out := make([]domain.City, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.city)
	}
	return out, nil
}

func (s *Store) LatestRateMatrix(_ context.Context, equipment, level string) (*domain.RateMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.rates[equipment+"|"+level]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return m, nil
}

func (s *Store) UpdateLaneStatus(_ context.Context, laneID string, status domain.LaneStatus, referenceID string, postedAt *time.Time) error {
	if s.UpdateErr != nil {
		if err := s.UpdateErr(laneID, status); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lanes[laneID]
	if !ok {
		return fmt.Errorf("update lane %s: %w", laneID, ports.ErrNotFound)
	}
	l.Status = status
	l.ReferenceID = referenceID
	l.PostedAt = postedAt
	s.lanes[laneID] = l
	return nil
}

func (s *Store) InsertAuditRecord(_ context.Context, rec domain.AuditRecord) error {
	if s.AuditErr != nil {
		if err := s.AuditErr(rec); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, rec)
	return nil
}

func (s *Store) ListLanesByStatus(_ context.Context, status domain.LaneStatus) ([]domain.Lane, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lane, 0, len(s.lanes))
	for _, l := range s.lanes {
		if l.Status == status {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b domain.Lane) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
