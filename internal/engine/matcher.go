package engine

import (
	"sync"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/store"
)

// TradeListener is notified of every executed trade. Listeners run while
// the matcher lock is held and must not call back into the Matcher.
type TradeListener func(entry *domain.LedgerEntry)

// Matcher owns the sell and buy pools and settles trades between them.
// Submission and settlement are separate steps; PlaceOrder composes them.
// All methods are safe for concurrent use.
type Matcher struct {
	mu          sync.Mutex
	sells       *Pool
	buys        *Pool
	seq         uint64
	pending     deque.Deque[string] // instruments submitted to since the last settle
	queued      map[string]bool
	orderStore  *store.OrderStore
	ledgerStore *store.LedgerStore
	instruments *domain.InstrumentRegistry
	priority    Priority
	policy      BalancePolicy
	logger      *zap.Logger
	listeners   []TradeListener
}

// NewMatcher creates a Matcher with empty pools.
func NewMatcher(
	orderStore *store.OrderStore,
	ledgerStore *store.LedgerStore,
	instruments *domain.InstrumentRegistry,
	opts Options,
) *Matcher {
	opts = opts.withDefaults()
	return &Matcher{
		sells:       NewPool(domain.SideSell, opts.Priority),
		buys:        NewPool(domain.SideBuy, opts.Priority),
		queued:      make(map[string]bool),
		orderStore:  orderStore,
		ledgerStore: ledgerStore,
		instruments: instruments,
		priority:    opts.Priority,
		policy:      opts.BalancePolicy,
		logger:      opts.Logger,
	}
}

// OnTrade registers a listener for executed trades.
func (m *Matcher) OnTrade(fn TradeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// TradableQuantity returns how many units could execute between seller
// and buyer, or 0 if they are incompatible. It has no side effects.
func TradableQuantity(seller, buyer *domain.Order) int64 {
	if !seller.IsOpen() ||
		seller.Instrument != buyer.Instrument ||
		buyer.PendingQuantity <= 0 ||
		buyer.Price.LessThan(seller.Price) {
		return 0
	}
	return min(seller.PendingQuantity, buyer.PendingQuantity)
}

// Submit inserts a freshly created order into the pool for its side
// without matching it. The order's instrument must be allowed by the
// registry, and under the strict balance policy a BUY reserves its full
// notional from the buyer's account. A rejected order leaves no trace.
func (m *Matcher) Submit(order *domain.Order) error {
	if order.Status != domain.OrderStatusPending || order.PendingQuantity != order.Quantity {
		return &domain.ValidationError{Message: "only new orders can be submitted"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sells.Contains(order.ID) || m.buys.Contains(order.ID) {
		return &domain.ValidationError{Message: "order already submitted"}
	}
	if !m.instruments.Allows(order.Instrument) {
		m.logger.Debug("order rejected",
			zap.String("order_id", order.ID),
			zap.String("instrument", order.Instrument),
			zap.Error(domain.ErrUnknownInstrument),
		)
		return domain.ErrUnknownInstrument
	}
	if m.policy == BalanceStrict && order.Side == domain.SideBuy {
		if err := order.User.Account.Reserve(order.Notional()); err != nil {
			m.logger.Debug("order rejected",
				zap.String("order_id", order.ID),
				zap.Stringer("required", order.Notional()),
				zap.Stringer("available", order.User.Account.Available()),
				zap.Error(err),
			)
			return err
		}
	}

	// Only accepted orders register their instrument.
	if err := m.instruments.Admit(order.Instrument); err != nil {
		if m.policy == BalanceStrict && order.Side == domain.SideBuy {
			order.User.Account.Release(order.Notional())
		}
		return err
	}

	m.seq++
	m.pool(order.Side).Insert(order, m.seq)
	m.orderStore.Create(order)
	if !m.queued[order.Instrument] {
		m.queued[order.Instrument] = true
		m.pending.PushBack(order.Instrument)
	}
	return nil
}

// Settle runs a matching pass over every instrument that received an
// order since the previous settle and returns the trades it executed.
func (m *Matcher) Settle() []*domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*domain.LedgerEntry
	for m.pending.Len() > 0 {
		instrument := m.pending.PopFront()
		delete(m.queued, instrument)
		entries = append(entries, m.match(instrument)...)
	}
	return entries
}

// RunMatchingPass matches every instrument with open sell orders,
// regardless of what was submitted since the last settle.
func (m *Matcher) RunMatchingPass() []*domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*domain.LedgerEntry
	for _, instrument := range m.sells.Instruments() {
		entries = append(entries, m.match(instrument)...)
	}
	m.pending.Clear()
	clear(m.queued)
	return entries
}

// PlaceOrder submits order and settles before returning, so the caller
// observes a fully matched state.
func (m *Matcher) PlaceOrder(order *domain.Order) ([]*domain.LedgerEntry, error) {
	if err := m.Submit(order); err != nil {
		return nil, err
	}
	return m.Settle(), nil
}

// IsResting reports whether the order is still in its side's pool.
func (m *Matcher) IsResting(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sells.Contains(orderID) || m.buys.Contains(orderID)
}

// OpenOrders returns the open orders on one side of an instrument in the
// order a matching pass considers them.
func (m *Matcher) OpenOrders(side domain.Side, instrument string) []*domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool(side).Orders(instrument)
}

// Snapshot copies order under the matcher lock, so the copy reflects a
// settled state even while other goroutines trade.
func (m *Matcher) Snapshot(order *domain.Order) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return order.Snapshot()
}

// Order returns a snapshot of a stored order, or domain.ErrOrderNotFound.
func (m *Matcher) Order(orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.orderStore.Get(orderID)
	if err != nil {
		return nil, err
	}
	return o.Snapshot(), nil
}

// UserOrders returns snapshots of one page of a user's orders matching f,
// newest first, and the total number of matches.
func (m *Matcher) UserOrders(userID string, f store.OrderFilter, page, limit int) ([]*domain.Order, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, total := m.orderStore.List(userID, f, page, limit)
	for i, o := range orders {
		orders[i] = o.Snapshot()
	}
	return orders, total
}

// AccountState is a view of one account taken between trades.
type AccountState struct {
	Balance    decimal.Decimal
	Reserved   decimal.Decimal
	OpenOrders int
}

// AccountState reads u's balance, reservation and resting order count
// under the matcher lock, so no trade is half applied in the result.
func (m *Matcher) AccountState(u *domain.User) AccountState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return AccountState{
		Balance:    u.Account.Balance(),
		Reserved:   u.Account.Reserved(),
		OpenOrders: m.orderStore.Count(u.ID, store.OrderFilter{OpenOnly: true}),
	}
}

func (m *Matcher) pool(side domain.Side) *Pool {
	if side == domain.SideSell {
		return m.sells
	}
	return m.buys
}

// match settles one instrument. The caller must hold m.mu.
func (m *Matcher) match(instrument string) []*domain.LedgerEntry {
	if m.priority == PriorityArrival {
		return m.rescan(instrument)
	}
	return m.crossBest(instrument)
}

// crossBest repeatedly trades the best sell against the best buy until
// the book no longer crosses.
func (m *Matcher) crossBest(instrument string) []*domain.LedgerEntry {
	var entries []*domain.LedgerEntry
	for {
		seller, ok := m.sells.Best(instrument)
		if !ok {
			break
		}
		buyer, ok := m.buys.Best(instrument)
		if !ok {
			break
		}
		qty := TradableQuantity(seller, buyer)
		if qty == 0 {
			break
		}
		entry, err := m.executeTrade(seller, buyer, qty)
		if err != nil {
			m.logger.Error("trade aborted", zap.String("instrument", instrument), zap.Error(err))
			break
		}
		entries = append(entries, entry)

		if buyer.PendingQuantity == 0 {
			m.buys.Remove(buyer.ID)
		}
		if seller.PendingQuantity == 0 {
			m.sells.Remove(seller.ID)
		}
	}
	return entries
}

// rescan visits every seller against every buyer in arrival order. A
// buyer leaves its pool as soon as it fills; a seller leaves after its
// pass over the buyers.
func (m *Matcher) rescan(instrument string) []*domain.LedgerEntry {
	var entries []*domain.LedgerEntry
	for _, seller := range m.sells.Orders(instrument) {
		for _, buyer := range m.buys.Orders(instrument) {
			qty := TradableQuantity(seller, buyer)
			if qty == 0 {
				continue
			}
			entry, err := m.executeTrade(seller, buyer, qty)
			if err != nil {
				m.logger.Error("trade aborted", zap.String("instrument", instrument), zap.Error(err))
				continue
			}
			entries = append(entries, entry)
			if buyer.PendingQuantity == 0 {
				m.buys.Remove(buyer.ID)
			}
		}
		if seller.PendingQuantity == 0 {
			m.sells.Remove(seller.ID)
		}
	}
	return entries
}

// executeTrade fills qty on both orders, moves qty × seller price from the
// buyer to the seller, records the ledger entry and emits the trade
// record. Both fills are checked before anything is mutated.
func (m *Matcher) executeTrade(seller, buyer *domain.Order, qty int64) (*domain.LedgerEntry, error) {
	if qty <= 0 || qty > seller.PendingQuantity || qty > buyer.PendingQuantity {
		return nil, domain.ErrInvalidFill
	}

	if err := buyer.ApplyFill(qty); err != nil {
		return nil, err
	}
	if err := seller.ApplyFill(qty); err != nil {
		return nil, err
	}

	amount := domain.Amount(qty, seller.Price)
	sellerAccount := seller.User.Account
	buyerAccount := buyer.User.Account
	sellerAccount.Deposit(amount)
	buyerAccount.Withdraw(amount)
	if m.policy == BalanceStrict {
		buyerAccount.Release(domain.Amount(qty, buyer.Price))
	}

	entry := domain.NewLedgerEntry(seller, buyer, qty)
	m.ledgerStore.Append(entry)

	m.logger.Info("trade executed",
		zap.Stringer("seller_balance", sellerAccount.Balance()),
		zap.Stringer("buyer_balance", buyerAccount.Balance()),
		zap.Object("ledger", ledgerRecord{entry}),
	)
	for _, fn := range m.listeners {
		fn(entry)
	}
	return entry, nil
}
