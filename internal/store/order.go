package store

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/efreitasn/stockexchange/internal/domain"
)

// OrderFilter narrows a user's order history. The zero value matches
// every order.
type OrderFilter struct {
	Status     *domain.OrderStatus
	Side       domain.Side // "" matches both sides
	Instrument string      // "" matches every instrument
	OpenOnly   bool        // PENDING or PROCESSING, i.e. still in a pool
}

// Match reports whether o passes every criterion of f. Order state must
// not be changing concurrently.
func (f OrderFilter) Match(o *domain.Order) bool {
	switch {
	case f.Status != nil && o.Status != *f.Status:
		return false
	case f.Side != "" && o.Side != f.Side:
		return false
	case f.Instrument != "" && o.Instrument != f.Instrument:
		return false
	case f.OpenOnly && !o.IsOpen():
		return false
	}
	return true
}

// historyItem positions an order in its owner's history. seq breaks ties
// between orders created at the same instant.
type historyItem struct {
	createdAt time.Time
	seq       uint64
	order     *domain.Order
}

// newestFirst orders a user's history by CreatedAt descending, latest
// stored first among equal timestamps.
func newestFirst(a, b historyItem) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.seq > b.seq
}

// OrderStore keeps every order ever accepted, by ID and as a per-user
// history sorted newest first. Orders are never removed: completed ones
// remain as the audit trail.
type OrderStore struct {
	mu      sync.RWMutex
	seq     uint64
	orders  map[string]*domain.Order
	history map[string]*btree.BTreeG[historyItem] // user_id → history
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:  make(map[string]*domain.Order),
		history: make(map[string]*btree.BTreeG[historyItem]),
	}
}

// Create records an order under its ID and in its owner's history.
// Storing the same order ID twice is a no-op.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.orders[o.ID]; dup {
		return
	}
	s.orders[o.ID] = o

	tree, ok := s.history[o.User.ID]
	if !ok {
		tree = btree.NewG[historyItem](16, newestFirst)
		s.history[o.User.ID] = tree
	}
	s.seq++
	tree.ReplaceOrInsert(historyItem{createdAt: o.CreatedAt, seq: s.seq, order: o})
}

// Get retrieves an order by ID. It returns domain.ErrOrderNotFound if the
// order does not exist.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// Len returns the number of orders ever stored.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// List returns one page (1-based) of a user's orders matching f, newest
// first, along with the number of matches across all pages.
func (s *OrderStore) List(userID string, f OrderFilter, page, limit int) ([]*domain.Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Order{}
	tree, ok := s.history[userID]
	if !ok {
		return out, 0
	}

	skip := (page - 1) * limit
	total := 0
	tree.Ascend(func(item historyItem) bool {
		if !f.Match(item.order) {
			return true
		}
		if total >= skip && len(out) < limit {
			out = append(out, item.order)
		}
		total++
		return true
	})
	return out, total
}

// Count returns how many of a user's orders match f.
func (s *OrderStore) Count(userID string, f OrderFilter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.history[userID]
	if !ok {
		return 0
	}
	n := 0
	tree.Ascend(func(item historyItem) bool {
		if f.Match(item.order) {
			n++
		}
		return true
	})
	return n
}
