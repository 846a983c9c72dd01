package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a participant on the exchange. Only the balance of its Account
// changes after creation.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Account   *Account
}

// NewUser creates a user with a fresh ID and an account holding
// initialBalance whose orders are routed to placer.
func NewUser(name string, initialBalance decimal.Decimal, placer OrderPlacer) *User {
	u := &User{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	u.Account = newAccount(u, initialBalance, placer)
	return u
}
