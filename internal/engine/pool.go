package engine

import (
	"sort"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockexchange/internal/domain"
)

// PoolEntry is a single open order held by a pool. Seq is the arrival
// sequence assigned by the matcher and breaks price ties.
type PoolEntry struct {
	Price decimal.Decimal
	Seq   uint64
	Order *domain.Order
}

// sellLess orders sells by price ascending, then arrival. Min() returns
// the cheapest, oldest sell.
func sellLess(a, b PoolEntry) bool {
	if !a.Price.Equal(b.Price) {
		return a.Price.LessThan(b.Price)
	}
	return a.Seq < b.Seq
}

// buyLess orders buys by price descending, then arrival. Min() returns
// the highest, oldest buy.
func buyLess(a, b PoolEntry) bool {
	if !a.Price.Equal(b.Price) {
		return a.Price.GreaterThan(b.Price)
	}
	return a.Seq < b.Seq
}

func arrivalLess(a, b PoolEntry) bool {
	return a.Seq < b.Seq
}

// Pool holds the open orders of one side, keyed by order ID, with a
// B-tree per instrument ordered according to the matcher's priority.
type Pool struct {
	less  btree.LessFunc[PoolEntry]
	books map[string]*btree.BTreeG[PoolEntry] // instrument → entries
	index map[string]PoolEntry                // order_id → entry
}

// NewPool creates an empty pool for side.
func NewPool(side domain.Side, priority Priority) *Pool {
	less := arrivalLess
	if priority == PriorityPriceTime {
		if side == domain.SideSell {
			less = sellLess
		} else {
			less = buyLess
		}
	}
	return &Pool{
		less:  less,
		books: make(map[string]*btree.BTreeG[PoolEntry]),
		index: make(map[string]PoolEntry),
	}
}

// Insert adds order to the pool under arrival sequence seq.
func (p *Pool) Insert(order *domain.Order, seq uint64) {
	const degree = 32
	tree, ok := p.books[order.Instrument]
	if !ok {
		tree = btree.NewG[PoolEntry](degree, p.less)
		p.books[order.Instrument] = tree
	}
	entry := PoolEntry{Price: order.Price, Seq: seq, Order: order}
	tree.ReplaceOrInsert(entry)
	p.index[order.ID] = entry
}

// Remove deletes an order by ID. It returns false if the order was not
// in the pool.
func (p *Pool) Remove(orderID string) bool {
	entry, ok := p.index[orderID]
	if !ok {
		return false
	}
	delete(p.index, orderID)

	instrument := entry.Order.Instrument
	tree := p.books[instrument]
	tree.Delete(entry)
	if tree.Len() == 0 {
		delete(p.books, instrument)
	}
	return true
}

// Contains reports whether the order is in the pool.
func (p *Pool) Contains(orderID string) bool {
	_, ok := p.index[orderID]
	return ok
}

// Len returns the number of orders in the pool across all instruments.
func (p *Pool) Len() int {
	return len(p.index)
}

// Best returns the highest-priority order for an instrument.
func (p *Pool) Best(instrument string) (*domain.Order, bool) {
	tree, ok := p.books[instrument]
	if !ok {
		return nil, false
	}
	entry, ok := tree.Min()
	if !ok {
		return nil, false
	}
	return entry.Order, true
}

// Orders returns a snapshot of an instrument's orders in priority order.
// The snapshot stays valid while the pool is mutated.
func (p *Pool) Orders(instrument string) []*domain.Order {
	tree, ok := p.books[instrument]
	if !ok {
		return nil
	}
	orders := make([]*domain.Order, 0, tree.Len())
	tree.Ascend(func(entry PoolEntry) bool {
		orders = append(orders, entry.Order)
		return true
	})
	return orders
}

// Instruments returns the instruments with at least one open order,
// in lexical order.
func (p *Pool) Instruments() []string {
	names := make([]string, 0, len(p.books))
	for name := range p.books {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
