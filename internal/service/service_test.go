package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/engine"
	"github.com/efreitasn/stockexchange/internal/store"
)

// testEnv bundles all dependencies needed for service tests.
type testEnv struct {
	userStore   *store.UserStore
	orderStore  *store.OrderStore
	ledgerStore *store.LedgerStore
	instruments *domain.InstrumentRegistry
	matcher     *engine.Matcher
	users       *UserService
	orders      *OrderService
	ledger      *LedgerService
}

func newTestEnv(opts engine.Options, instruments ...string) *testEnv {
	us := store.NewUserStore()
	os := store.NewOrderStore()
	ls := store.NewLedgerStore()
	reg := domain.NewInstrumentRegistry(instruments...)
	m := engine.NewMatcher(os, ls, reg, opts)
	return &testEnv{
		userStore:   us,
		orderStore:  os,
		ledgerStore: ls,
		instruments: reg,
		matcher:     m,
		users:       NewUserService(us, m),
		orders:      NewOrderService(m, us),
		ledger:      NewLedgerService(ls, os, reg, 5*time.Minute),
	}
}

func (env *testEnv) createUser(t *testing.T, name string, balance int64) *domain.User {
	t.Helper()
	u, err := env.users.CreateUser(name, decimal.NewFromInt(balance))
	require.NoError(t, err)
	return u
}

func (env *testEnv) createOrder(t *testing.T, u *domain.User, side domain.Side, qty int64, price string) *domain.Order {
	t.Helper()
	o, err := env.orders.CreateOrder(CreateOrderRequest{
		UserID:     u.ID,
		Side:       side,
		Instrument: "FYND",
		Quantity:   qty,
		Price:      price,
	})
	require.NoError(t, err)
	return o
}

func (env *testEnv) getOrder(t *testing.T, id string) *domain.Order {
	t.Helper()
	o, err := env.orders.GetOrder(id)
	require.NoError(t, err)
	return o
}

func requireDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(decimal.NewFromInt(want)), "got %s, want %d", got, want)
}
