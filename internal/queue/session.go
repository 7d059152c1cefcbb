package queue

import (
	"sort"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// session is the single active queue. All access goes through Engine.mu.
//
// Invariants:
//   - items holds no duplicate ids
//   - every id ever placed in items stays in seen until the session ends
type session struct {
	address string
	items   []domain.CandidateItem
	seen    map[int64]struct{}

	// owner is the identity that started the session; background top-ups
	// call the catalog on its behalf.
	owner reqctx.RequestContext
}

func newSession(address string, owner reqctx.RequestContext) *session {
	return &session{
		address: address,
		seen:    make(map[int64]struct{}),
		owner:   owner,
	}
}

func (s *session) indexOf(id int64) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *session) wasSeen(id int64) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *session) removeAt(i int) domain.CandidateItem {
	it := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return it
}

// pushFront restores an item whose commit failed. It is already in seen.
func (s *session) pushFront(it domain.CandidateItem) {
	if s.indexOf(it.ID) >= 0 {
		return
	}
	s.items = append([]domain.CandidateItem{it}, s.items...)
}

// merge appends unseen candidates to the tail until target is reached and
// returns how many were appended. Seen is re-checked here because commits
// and skips may have run while the catalog call was in flight.
func (s *session) merge(fetched []domain.CandidateItem, target int) int {
	appended := 0
	for _, it := range fetched {
		if len(s.items) >= target {
			break
		}
		if s.wasSeen(it.ID) {
			continue
		}
		s.items = append(s.items, it)
		s.seen[it.ID] = struct{}{}
		appended++
	}
	return appended
}

// seenIDs returns the exclusion set in ascending order.
func (s *session) seenIDs() []int64 {
	ids := make([]int64, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *session) snapshot(target int) domain.QueueSnapshot {
	items := make([]domain.CandidateItem, len(s.items))
	copy(items, s.items)
	return domain.QueueSnapshot{
		Active:     true,
		Address:    s.address,
		Items:      items,
		TargetSize: target,
		Seen:       len(s.seen),
	}
}
