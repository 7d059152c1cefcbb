package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

// MockCatalog is a hand-written, in-memory implementation of Catalog used in
// unit tests. No mock-generation library needed.
type MockCatalog struct {
	mu    sync.RWMutex
	items map[int64]domain.CandidateItem

	listCalls int

	// Optional overrides, set in tests to simulate failure paths.
	ListErr       error
	NextErr       error
	GetErr        map[int64]error
	GetDelay      map[int64]time.Duration
	IgnoreExclude bool
	// BeforeList runs (without the mock's lock) at the start of every
	// ListItems call; tests use it to interleave operations with a refill.
	BeforeList func()
}

func NewMockCatalog(items ...domain.CandidateItem) *MockCatalog {
	m := &MockCatalog{
		items:    make(map[int64]domain.CandidateItem),
		GetErr:   make(map[int64]error),
		GetDelay: make(map[int64]time.Duration),
	}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

// Add makes more businesses available, e.g. between refills.
func (m *MockCatalog) Add(items ...domain.CandidateItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.items[it.ID] = it
	}
}

// ListCalls reports how many times ListItems was invoked.
func (m *MockCatalog) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

func (m *MockCatalog) ListItems(ctx context.Context, address string, limit int, exclude []int64) ([]domain.CandidateItem, error) {
	if m.BeforeList != nil {
		m.BeforeList()
	}
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	excluded := make(map[int64]bool, len(exclude))
	if !m.IgnoreExclude {
		for _, id := range exclude {
			excluded[id] = true
		}
	}

	var out []domain.CandidateItem
	for _, it := range m.sorted() {
		if len(out) >= limit {
			break
		}
		if it.Address != address || excluded[it.ID] {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *MockCatalog) GetItem(ctx context.Context, id int64) (domain.CandidateItem, error) {
	m.mu.RLock()
	delay := m.GetDelay[id]
	err := m.GetErr[id]
	it, ok := m.items[id]
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.CandidateItem{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.CandidateItem{}, err
	}
	if !ok {
		return domain.CandidateItem{}, domain.ErrNotFound
	}
	return it, nil
}

func (m *MockCatalog) NextUnseen(_ context.Context, location string, _ int64, exclude []int64) (domain.CandidateItem, error) {
	if m.NextErr != nil {
		return domain.CandidateItem{}, m.NextErr
	}
	excluded := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	for _, it := range m.sorted() {
		if it.Address == location && !excluded[it.ID] {
			return it, nil
		}
	}
	return domain.CandidateItem{}, domain.ErrNotFound
}

func (m *MockCatalog) sorted() []domain.CandidateItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CandidateItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ Catalog = (*MockCatalog)(nil)
