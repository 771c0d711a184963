// Package store holds the signed-in owner's items in memory. It is the single
// source every view is derived from and is written only by the item service.
package store

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/mymind/internal/client/models"
)

// Store is an ordered, id-keyed set of items belonging to one owner.
// Order is newest first: a loaded snapshot keeps the remote order and
// new records are prepended.
type Store struct {
	mu    sync.RWMutex
	owner string
	order []string
	items map[string]models.Item
}

func New() *Store {
	return &Store{items: make(map[string]models.Item)}
}

// Load replaces the whole set. Records of any other owner are dropped.
func (s *Store) Load(owner string, records []models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = owner
	s.order = make([]string, 0, len(records))
	s.items = make(map[string]models.Item, len(records))
	for _, r := range records {
		if r.Owner != owner {
			continue
		}
		if _, dup := s.items[r.ID]; dup {
			continue
		}
		s.order = append(s.order, r.ID)
		s.items[r.ID] = r.Clone()
	}
}

// Reset forgets the owner and every record.
func (s *Store) Reset() {
	s.Load("", nil)
}

// Owner returns the owner the store was loaded for.
func (s *Store) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Put inserts a whole record at the front or overwrites it in place.
// It reports false when the record belongs to another owner.
func (s *Store) Put(item models.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Owner != s.owner {
		return false
	}
	if _, ok := s.items[item.ID]; !ok {
		s.order = slices.Insert(s.order, 0, item.ID)
	}
	s.items[item.ID] = item.Clone()
	return true
}

// Apply merges patch into the record with the given id and returns the
// result. Last write wins.
func (s *Store) Apply(id string, patch models.Patch) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[id]
	if !ok {
		return models.Item{}, false
	}
	next := patch.ApplyTo(cur)
	s.items[id] = next
	return next.Clone(), true
}

// Rekey moves a record to a new id, keeping its position.
func (s *Store) Rekey(oldID, newID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[oldID]
	if !ok {
		return false
	}
	if _, taken := s.items[newID]; taken && newID != oldID {
		return false
	}
	delete(s.items, oldID)
	item.ID = newID
	s.items[newID] = item
	if i := slices.Index(s.order, oldID); i >= 0 {
		s.order[i] = newID
	}
	return true
}

// Remove deletes one record.
func (s *Store) Remove(id string) bool {
	return s.RemoveMany([]string{id}) == 1
}

// RemoveMany deletes every listed record and returns how many existed.
func (s *Store) RemoveMany(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			drop[id] = struct{}{}
			delete(s.items, id)
		}
	}
	if len(drop) == 0 {
		return 0
	}
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		_, gone := drop[id]
		return gone
	})
	return len(drop)
}

// Get returns a copy of one record.
func (s *Store) Get(id string) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, false
	}
	return item.Clone(), true
}

// Snapshot returns a copy of every record in store order. Callers own it.
func (s *Store) Snapshot() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
