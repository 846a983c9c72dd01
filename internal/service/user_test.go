package service

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/engine"
)

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(engine.Options{})

	u, err := env.users.CreateUser("ABC", decimal.NewFromInt(20000))
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ABC", u.Name)
	requireDecimal(t, 20000, u.Account.Balance())

	got, err := env.users.GetUser(u.ID)
	require.NoError(t, err)
	assert.Same(t, u, got)
}

func TestUserService_CreateUser_SameNameDistinctIDs(t *testing.T) {
	env := newTestEnv(engine.Options{})

	a := env.createUser(t, "ABC", 1)
	b := env.createUser(t, "ABC", 1)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, env.users.ListUsers(), 2)
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		balance int64
	}{
		{"empty name", "", 100},
		{"name too long", strings.Repeat("a", 65), 100},
		{"invalid characters", "abc$", 100},
		{"negative balance", "ABC", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(engine.Options{})

			_, err := env.users.CreateUser(tt.user, decimal.NewFromInt(tt.balance))

			var ve *domain.ValidationError
			assert.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Empty(t, env.users.ListUsers())
		})
	}
}

func TestUserService_GetBalance(t *testing.T) {
	env := newTestEnv(engine.Options{BalancePolicy: engine.BalanceStrict})
	u := env.createUser(t, "ABC", 1000)

	env.createOrder(t, u, domain.SideBuy, 3, "100")

	bal, err := env.users.GetBalance(u.ID)
	require.NoError(t, err)

	assert.Equal(t, u.ID, bal.UserID)
	assert.Equal(t, "ABC", bal.Name)
	requireDecimal(t, 1000, bal.Balance)
	requireDecimal(t, 300, bal.Reserved)
	requireDecimal(t, 700, bal.Available)
	assert.Equal(t, 1, bal.OpenOrders)
	assert.False(t, bal.AsOf.IsZero())
}

func TestUserService_GetBalance_NotFound(t *testing.T) {
	env := newTestEnv(engine.Options{})

	_, err := env.users.GetBalance("missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_GetBalance_DuringFills(t *testing.T) {
	env := newTestEnv(engine.Options{})
	buyer := env.createUser(t, "ABC", 100000)
	seller := env.createUser(t, "PQR", 0)

	const n = 50
	for i := 0; i < n; i++ {
		env.createOrder(t, buyer, domain.SideBuy, 1, "10")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, err := env.orders.CreateOrder(CreateOrderRequest{
				UserID: seller.ID, Side: domain.SideSell, Instrument: "FYND", Quantity: 1, Price: "10",
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			bal, err := env.users.GetBalance(buyer.ID)
			if !assert.NoError(t, err) {
				return
			}
			// Every unit filled costs 10, so cash and open orders move together.
			filled := n - bal.OpenOrders
			want := decimal.NewFromInt(100000 - 10*int64(filled))
			assert.Truef(t, bal.Balance.Equal(want), "balance %s with %d open orders", bal.Balance, bal.OpenOrders)

			orders, _, err := env.orders.ListOrders(buyer.ID, nil, 1, 5)
			assert.NoError(t, err)
			for _, o := range orders {
				_ = o.IsOpen()
			}
		}
	}()
	wg.Wait()

	bal, err := env.users.GetBalance(buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, bal.OpenOrders)
	requireDecimal(t, 100000-10*n, bal.Balance)
}
