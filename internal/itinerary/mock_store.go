package itinerary

import (
	"context"
	"sort"
	"sync"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

// MockStore is a hand-written, in-memory implementation of Store used in
// unit tests. No mock-generation library needed.
type MockStore struct {
	mu      sync.RWMutex
	lists   map[int64]bool
	entries map[int64]domain.ItineraryEntry
	nextID  int64

	// Optional error overrides, set in tests to simulate failure paths.
	ListErr   error
	CreateErr error
	// BeforeCreate runs (without the mock's lock) at the start of every
	// CreateEntry call.
	BeforeCreate func()
}

// NewMockStore creates a store in which listIDs already exist.
func NewMockStore(listIDs ...int64) *MockStore {
	m := &MockStore{
		lists:   make(map[int64]bool),
		entries: make(map[int64]domain.ItineraryEntry),
	}
	for _, id := range listIDs {
		m.lists[id] = true
	}
	return m
}

// Entries returns every stored entry ordered by itinerary id.
func (m *MockStore) Entries() []domain.ItineraryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ItineraryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItineraryID < out[j].ItineraryID })
	return out
}

func (m *MockStore) ListEntries(_ context.Context, listID int64, day domain.Day) ([]domain.ItineraryEntry, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.lists[listID] {
		return nil, domain.ErrNotFound
	}
	out := []domain.ItineraryEntry{}
	for _, e := range m.entries {
		if e.ListID == listID && (day == "" || e.Day == day) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Times != out[j].Times {
			return out[i].Times < out[j].Times
		}
		return out[i].ItineraryID < out[j].ItineraryID
	})
	return out, nil
}

func (m *MockStore) CreateEntry(_ context.Context, listID, businessID int64, day domain.Day, times string) (domain.ItineraryEntry, error) {
	if m.BeforeCreate != nil {
		m.BeforeCreate()
	}
	if m.CreateErr != nil {
		return domain.ItineraryEntry{}, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.lists[listID] {
		return domain.ItineraryEntry{}, domain.ErrNotFound
	}
	m.nextID++
	e := domain.ItineraryEntry{
		ItineraryID: m.nextID,
		ListID:      listID,
		BusinessID:  businessID,
		Day:         day,
		Times:       times,
	}
	m.entries[e.ItineraryID] = e
	return e, nil
}

func (m *MockStore) UpdateTimes(_ context.Context, listID, itineraryID int64, times string) (domain.ItineraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[itineraryID]
	if !ok || e.ListID != listID {
		return domain.ItineraryEntry{}, domain.ErrNotFound
	}
	e.Times = times
	m.entries[itineraryID] = e
	return e, nil
}

func (m *MockStore) DeleteEntry(_ context.Context, listID, businessID int64) (*domain.ItineraryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.ListID == listID && e.BusinessID == businessID {
			delete(m.entries, id)
			clone := e
			return &clone, nil
		}
	}
	return nil, nil
}

var _ Store = (*MockStore)(nil)
