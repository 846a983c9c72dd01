package store

import (
	"sync"

	"github.com/efreitasn/stockexchange/internal/domain"
)

// LedgerStore is a thread-safe, append-only, in-memory record of every
// executed trade, indexed by instrument and by participating order.
type LedgerStore struct {
	mu           sync.RWMutex
	entries      []*domain.LedgerEntry            // chronological
	byInstrument map[string][]*domain.LedgerEntry // instrument → entries
	byOrder      map[string][]*domain.LedgerEntry // order_id → entries
}

// NewLedgerStore creates an empty LedgerStore.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		byInstrument: make(map[string][]*domain.LedgerEntry),
		byOrder:      make(map[string][]*domain.LedgerEntry),
	}
}

// Append records an entry under its instrument and both of its orders.
func (s *LedgerStore) Append(e *domain.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	s.byInstrument[e.Instrument] = append(s.byInstrument[e.Instrument], e)
	s.byOrder[e.BuyerOrder.ID] = append(s.byOrder[e.BuyerOrder.ID], e)
	s.byOrder[e.SellerOrder.ID] = append(s.byOrder[e.SellerOrder.ID], e)
}

// All returns every entry in chronological order.
func (s *LedgerStore) All() []*domain.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEntries(s.entries)
}

// ByInstrument returns the entries for an instrument in chronological
// order, or an empty slice if it never traded.
func (s *LedgerStore) ByInstrument(instrument string) []*domain.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEntries(s.byInstrument[instrument])
}

// ByOrder returns the entries an order participated in, on either side.
func (s *LedgerStore) ByOrder(orderID string) []*domain.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEntries(s.byOrder[orderID])
}

// Len returns the number of recorded trades.
func (s *LedgerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// copyEntries returns a copy so callers cannot mutate the internal slice.
func copyEntries(entries []*domain.LedgerEntry) []*domain.LedgerEntry {
	result := make([]*domain.LedgerEntry, len(entries))
	copy(result, entries)
	return result
}
