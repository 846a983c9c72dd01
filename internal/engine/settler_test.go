package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockexchange/internal/domain"
)

func submit(t *testing.T, u *domain.User, side domain.Side, qty, price int64) *domain.Order {
	t.Helper()
	o, err := u.Account.SubmitOrder(side, "FYND", qty, decimal.NewFromInt(price))
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	return o
}

func TestSettler_Tick(t *testing.T) {
	m, _, ledger := newTestMatcher(Options{})
	buyer := newUser(m, "ABC", 1000)
	seller := newUser(m, "PQR", 0)
	s := NewSettler(time.Hour, m, nil)

	sell := submit(t, seller, domain.SideSell, 5, 10)
	buy := submit(t, buyer, domain.SideBuy, 5, 10)

	if got := s.tick(); len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	if sell.Status != domain.OrderStatusCompleted || buy.Status != domain.OrderStatusCompleted {
		t.Errorf("statuses = %s/%s, want COMPLETED", sell.Status, buy.Status)
	}
	if ledger.Len() != 1 {
		t.Errorf("ledger len = %d, want 1", ledger.Len())
	}

	if got := s.tick(); len(got) != 0 {
		t.Errorf("second tick executed %d trades, want 0", len(got))
	}
	if passes, trades := s.Stats(); passes != 2 || trades != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", passes, trades)
	}
}

func TestSettler_StartSettlesOnTicker(t *testing.T) {
	m, _, ledger := newTestMatcher(Options{})
	buyer := newUser(m, "ABC", 1000)
	seller := newUser(m, "PQR", 0)
	s := NewSettler(5*time.Millisecond, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := s.Start(ctx)

	submit(t, seller, domain.SideSell, 3, 10)
	submit(t, buyer, domain.SideBuy, 3, 10)

	deadline := time.Now().Add(2 * time.Second)
	for ledger.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ledger.Len() != 1 {
		t.Fatalf("expected the ticker to settle 1 trade, got %d", ledger.Len())
	}

	cancel()
	<-done
}

func TestSettler_FinalSettleOnCancel(t *testing.T) {
	m, _, ledger := newTestMatcher(Options{})
	buyer := newUser(m, "ABC", 1000)
	seller := newUser(m, "PQR", 0)
	s := NewSettler(time.Hour, m, nil)

	submit(t, seller, domain.SideSell, 2, 10)
	submit(t, buyer, domain.SideBuy, 2, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("settler did not stop after cancel")
	}
	if ledger.Len() != 1 {
		t.Errorf("expected final settlement to trade, ledger len = %d", ledger.Len())
	}
}
