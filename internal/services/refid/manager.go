// Package refid issues batch-unique reference ids of the form RR#####.
package refid

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const (
	Prefix = "RR"
	// Number of distinct 5-digit suffixes.
	space = 100000
	// Seed used when a lane id carries no digits.
	defaultSeed = 10000
)

// Manager hands out reference ids for one generation batch.
//
// Generate is idempotent per lane id and is the only place batch state is
// written; the check for an existing id, the probe for a free suffix and the
// reservation happen under one lock.
type Manager struct {
	mu     sync.Mutex
	byLane map[string]string
	used   map[int]string
	// Random source for the exhausted-space fallback.
	randIntN func(n int) int
}

func NewManager() *Manager {
	return &Manager{
		byLane:   make(map[string]string),
		used:     make(map[int]string),
		randIntN: rand.IntN,
	}
}

// Generate returns the reference id for laneID, reserving a new one on the
// first call within the batch.
func (m *Manager) Generate(laneID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byLane[laneID]; ok {
		return id
	}

	seed := Seed(laneID)
	suffix := -1
	for k := 0; k <= space; k++ {
		candidate := (seed + k) % space
		if _, taken := m.used[candidate]; !taken {
			suffix = candidate
			break
		}
	}
	if suffix < 0 {
		// Every suffix is taken; uniqueness can no longer be honored.
		suffix = m.randIntN(space)
	}

	id := Format(suffix)
	m.used[suffix] = laneID
	m.byLane[laneID] = id
	return id
}

// Lookup returns the id already issued for laneID, if any.
func (m *Manager) Lookup(laneID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLane[laneID]
	return id, ok
}

// Release returns the id issued for laneID to the pool.
func (m *Manager) Release(laneID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byLane[laneID]
	if !ok {
		return
	}
	delete(m.byLane, laneID)

	suffix, err := strconv.Atoi(strings.TrimPrefix(id, Prefix))
	if err == nil && m.used[suffix] == laneID {
		delete(m.used, suffix)
	}
}

// Reset clears all batch state.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.byLane)
	clear(m.used)
}

// Snapshot returns every issued id in ascending order.
func (m *Manager) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.byLane))
	for _, id := range m.byLane {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Seed derives the deterministic 5-digit seed for a lane id: the lane id's
// digits read as a decimal number, modulo 100000. Ids without digits map to
// 10000.
func Seed(laneID string) int {
	seed, digits := 0, 0
	for _, r := range laneID {
		if r < '0' || r > '9' {
			continue
		}
		seed = (seed*10 + int(r-'0')) % space
		digits++
	}
	if digits == 0 {
		return defaultSeed
	}
	return seed
}

// Format renders a suffix as a reference id.
func Format(suffix int) string {
	return fmt.Sprintf("%s%05d", Prefix, suffix%space)
}
