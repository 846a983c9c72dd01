package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/store"
)

// PriceResponse reports the reference price of an instrument.
type PriceResponse struct {
	Instrument     string
	CurrentPrice   *decimal.Decimal // nil when no trades ever
	Window         string           // e.g. "5m"
	TradesInWindow int
	LastTradeAt    *time.Time       // nil when no trades ever
}

// LedgerService answers queries over executed trades.
type LedgerService struct {
	ledgerStore *store.LedgerStore
	orderStore  *store.OrderStore
	instruments *domain.InstrumentRegistry
	priceWindow time.Duration
}

// NewLedgerService creates a new LedgerService with the given dependencies.
func NewLedgerService(
	ledgerStore *store.LedgerStore,
	orderStore *store.OrderStore,
	instruments *domain.InstrumentRegistry,
	priceWindow time.Duration,
) *LedgerService {
	return &LedgerService{
		ledgerStore: ledgerStore,
		orderStore:  orderStore,
		instruments: instruments,
		priceWindow: priceWindow,
	}
}

// Trades returns every trade on an instrument in execution order.
func (s *LedgerService) Trades(instrument string) ([]*domain.LedgerEntry, error) {
	if !s.instruments.Exists(instrument) {
		return nil, domain.ErrUnknownInstrument
	}
	return s.ledgerStore.ByInstrument(instrument), nil
}

// TradesForOrder returns every trade the order took part in, on either side.
func (s *LedgerService) TradesForOrder(orderID string) ([]*domain.LedgerEntry, error) {
	if _, err := s.orderStore.Get(orderID); err != nil {
		return nil, err
	}
	return s.ledgerStore.ByOrder(orderID), nil
}

// GetPrice returns the current reference price for an instrument, computed
// as VWAP over the configured window. Falls back to the last trade's price
// if no trades exist in the window, and to a nil price if the instrument
// has never traded.
func (s *LedgerService) GetPrice(instrument string) (*PriceResponse, error) {
	if !s.instruments.Exists(instrument) {
		return nil, domain.ErrUnknownInstrument
	}

	trades := s.ledgerStore.ByInstrument(instrument)
	windowStart := time.Now().Add(-s.priceWindow)

	resp := &PriceResponse{
		Instrument: instrument,
		Window:     formatDuration(s.priceWindow),
	}
	if len(trades) == 0 {
		return resp, nil
	}

	last := trades[len(trades)-1]
	resp.LastTradeAt = &last.ExecutedAt

	// Trades are appended in execution order, so walk back from the tail
	// until one falls outside the window.
	sumAmount := decimal.Zero
	var sumQty int64
	for i := len(trades) - 1; i >= 0; i-- {
		t := trades[i]
		if t.ExecutedAt.Before(windowStart) {
			break
		}
		sumAmount = sumAmount.Add(t.Amount())
		sumQty += t.Quantity
		resp.TradesInWindow++
	}

	price := last.Price
	if sumQty > 0 {
		price = sumAmount.Div(decimal.NewFromInt(sumQty))
	}
	resp.CurrentPrice = &price
	return resp, nil
}

// formatDuration renders whole minutes as "5m" and anything else with
// time.Duration's own formatting.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	minutes := int(d.Minutes())
	if d == time.Duration(minutes)*time.Minute && minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return d.String()
}
