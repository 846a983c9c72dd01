package engine

import (
	"go.uber.org/zap/zapcore"

	"github.com/efreitasn/stockexchange/internal/domain"
)

// ledgerRecord renders a ledger entry as a structured log object.
type ledgerRecord struct {
	*domain.LedgerEntry
}

func (r ledgerRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", r.ID)
	enc.AddString("instrument", r.Instrument)
	enc.AddInt64("quantity", r.Quantity)
	enc.AddString("price", r.Price.String())
	enc.AddString("amount", r.Amount().String())
	enc.AddString("seller_order_id", r.SellerOrder.ID)
	enc.AddString("seller", r.SellerOrder.User.Name)
	enc.AddString("buyer_order_id", r.BuyerOrder.ID)
	enc.AddString("buyer", r.BuyerOrder.User.Name)
	enc.AddTime("executed_at", r.ExecutedAt)
	return nil
}
