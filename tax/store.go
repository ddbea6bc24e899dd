package tax

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRegimeNotFound is returned when a regime ID is unknown
var ErrRegimeNotFound = errors.New("regime not found")

// RegimeStore provides read access to the configured regimes
type RegimeStore interface {
	// Get a regime by ID
	Get(id string) (*Regime, error)

	// List all regimes in display order
	List() ([]*Regime, error)
}

// InMemoryRegimeStore implements RegimeStore using an in-memory map.
// Thread-safe with RWMutex; insertion order is the display order.
type InMemoryRegimeStore struct {
	regimes map[string]*Regime
	order   []string
	mu      sync.RWMutex
}

// NewInMemoryRegimeStore creates a store holding the given regimes.
// Each regime is validated; duplicates are rejected.
func NewInMemoryRegimeStore(regimes ...*Regime) (*InMemoryRegimeStore, error) {
	s := &InMemoryRegimeStore{
		regimes: make(map[string]*Regime, len(regimes)),
	}

	for _, r := range regimes {
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add validates and appends a regime
func (s *InMemoryRegimeStore) Add(r *Regime) error {
	if err := ValidateRegime(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.regimes[r.ID]; exists {
		return fmt.Errorf("regime with ID %s already exists", r.ID)
	}

	s.regimes[r.ID] = r
	s.order = append(s.order, r.ID)
	return nil
}

// Get retrieves a regime by ID
func (s *InMemoryRegimeStore) Get(id string) (*Regime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.regimes[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRegimeNotFound, id)
	}
	return r, nil
}

// List returns all regimes in insertion order
func (s *InMemoryRegimeStore) List() ([]*Regime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	regimes := make([]*Regime, 0, len(s.order))
	for _, id := range s.order {
		regimes = append(regimes, s.regimes[id])
	}
	return regimes, nil
}
