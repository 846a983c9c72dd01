package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side indicates whether an order buys or sells an instrument.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// rank orders statuses along the lifecycle so transitions can only move forward.
func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusPending:
		return 0
	case OrderStatusProcessing:
		return 1
	case OrderStatusCompleted:
		return 2
	}
	return -1
}

// Order is a resting limit intent to buy or sell Quantity units of an
// instrument. PendingQuantity tracks the unfilled remainder; Status and
// the timestamps are advanced only through ApplyFill.
type Order struct {
	ID              string
	User            *User
	Side            Side
	Instrument      string
	Quantity        int64
	Price           decimal.Decimal
	PendingQuantity int64
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time // nil until the order is completed
}

// NewOrder validates the parameters and returns a PENDING order with a
// freshly generated ID and creation timestamp.
func NewOrder(user *User, side Side, instrument string, quantity int64, price decimal.Decimal) (*Order, error) {
	if user == nil {
		return nil, &ValidationError{Message: "order requires an owning user"}
	}
	if !side.Valid() {
		return nil, &ValidationError{Message: "side must be 'BUY' or 'SELL'"}
	}
	if instrument == "" {
		return nil, &ValidationError{Message: "instrument must not be empty"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Message: "quantity must be a positive integer"}
	}
	if price.IsNegative() {
		return nil, &ValidationError{Message: "price must be >= 0"}
	}

	now := time.Now()
	return &Order{
		ID:              uuid.New().String(),
		User:            user,
		Side:            side,
		Instrument:      instrument,
		Quantity:        quantity,
		Price:           price,
		PendingQuantity: quantity,
		Status:          OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ApplyFill records a fill of traded units. It returns ErrInvalidFill and
// leaves the order untouched unless 0 < traded <= PendingQuantity.
func (o *Order) ApplyFill(traded int64) error {
	if traded <= 0 || traded > o.PendingQuantity {
		return ErrInvalidFill
	}

	now := time.Now()
	o.PendingQuantity -= traded
	o.UpdatedAt = now
	if o.PendingQuantity == 0 {
		o.Status = OrderStatusCompleted
		o.CompletedAt = &now
	} else {
		o.Status = OrderStatusProcessing
	}
	return nil
}

// Snapshot returns a copy of o that later fills do not affect. The owning
// User is shared.
func (o *Order) Snapshot() *Order {
	c := *o
	if o.CompletedAt != nil {
		at := *o.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// FilledQuantity returns how many units have been executed so far.
func (o *Order) FilledQuantity() int64 {
	return o.Quantity - o.PendingQuantity
}

// IsOpen reports whether the order can still trade.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// Notional returns the order's full value at its limit price.
func (o *Order) Notional() decimal.Decimal {
	return Amount(o.Quantity, o.Price)
}

// CanTransition reports whether moving from s to next respects the
// one-directional PENDING -> PROCESSING -> COMPLETED lifecycle.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return next.rank() >= s.rank() && next.rank() >= 0
}
