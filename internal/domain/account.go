package domain

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrAccountDetached is returned when an account has no exchange to route
// orders to.
var ErrAccountDetached = errors.New("account_detached")

// OrderPlacer is the two-phase engine interface an Account routes its
// orders through: Submit inserts without matching, Settle runs matching
// for everything submitted so far.
type OrderPlacer interface {
	Submit(order *Order) error
	Settle() []*LedgerEntry
}

// Account holds the cash balance of a single user and the audit trail of
// every order that user has placed.
type Account struct {
	mu       sync.Mutex
	user     *User
	balance  decimal.Decimal
	reserved decimal.Decimal // cash locked by open BUY orders (strict policy only)
	orderIDs []string        // insertion order of orders
	orders   map[string]*Order
	placer   OrderPlacer
}

func newAccount(user *User, balance decimal.Decimal, placer OrderPlacer) *Account {
	return &Account{
		user:    user,
		balance: balance,
		orders:  make(map[string]*Order),
		placer:  placer,
	}
}

// User returns the account owner.
func (a *Account) User() *User {
	return a.user
}

// Balance returns the current cash balance. It may be negative under the
// permissive balance policy.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Reserved returns the cash currently locked by open BUY orders.
func (a *Account) Reserved() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reserved
}

// Available returns the balance not locked by reservations.
func (a *Account) Available() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance.Sub(a.reserved)
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
}

// Withdraw subtracts amount from the balance without any bounds check.
func (a *Account) Withdraw(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Sub(amount)
}

// Reserve locks amount if the available balance covers it. It returns
// ErrInsufficientBalance otherwise and reserves nothing.
func (a *Account) Reserve(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance.Sub(a.reserved).LessThan(amount) {
		return ErrInsufficientBalance
	}
	a.reserved = a.reserved.Add(amount)
	return nil
}

// Release unlocks a previously reserved amount.
func (a *Account) Release(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reserved = a.reserved.Sub(amount)
}

// CreateOrder builds an order owned by this account's user, submits it to
// the exchange and settles before returning, so the caller observes every
// trade the order caused.
func (a *Account) CreateOrder(side Side, instrument string, quantity int64, price decimal.Decimal) (*Order, error) {
	order, err := a.SubmitOrder(side, instrument, quantity, price)
	if err != nil {
		return nil, err
	}
	a.placer.Settle()
	return order, nil
}

// SubmitOrder is the first half of CreateOrder: the order is validated,
// inserted into the exchange and recorded on the account, but no matching
// runs until the exchange is settled.
func (a *Account) SubmitOrder(side Side, instrument string, quantity int64, price decimal.Decimal) (*Order, error) {
	if a.placer == nil {
		return nil, ErrAccountDetached
	}
	order, err := NewOrder(a.user, side, instrument, quantity, price)
	if err != nil {
		return nil, err
	}
	if err := a.placer.Submit(order); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.orders[order.ID] = order
	a.orderIDs = append(a.orderIDs, order.ID)
	a.mu.Unlock()
	return order, nil
}

// Orders returns every order placed through this account, oldest first.
// The orders are live: their fill state changes under the exchange's lock,
// so concurrent readers should go through the exchange's snapshots.
func (a *Account) Orders() []*Order {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := make([]*Order, 0, len(a.orderIDs))
	for _, id := range a.orderIDs {
		result = append(result, a.orders[id])
	}
	return result
}

// Order looks up one of the account's orders by ID.
func (a *Account) Order(id string) (*Order, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.orders[id]
	return o, ok
}
