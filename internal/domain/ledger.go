package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the immutable record of one executed trade. Price is
// always the seller's limit price.
type LedgerEntry struct {
	ID          string
	BuyerOrder  *Order
	SellerOrder *Order
	Instrument  string
	Quantity    int64
	Price       decimal.Decimal
	ExecutedAt  time.Time
}

// NewLedgerEntry records a trade of quantity units between seller and buyer.
func NewLedgerEntry(seller, buyer *Order, quantity int64) *LedgerEntry {
	return &LedgerEntry{
		ID:          uuid.New().String(),
		BuyerOrder:  buyer,
		SellerOrder: seller,
		Instrument:  seller.Instrument,
		Quantity:    quantity,
		Price:       seller.Price,
		ExecutedAt:  time.Now(),
	}
}

// Amount is the cash that moved from buyer to seller.
func (e *LedgerEntry) Amount() decimal.Decimal {
	return Amount(e.Quantity, e.Price)
}
