package service

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/engine"
	"github.com/efreitasn/stockexchange/internal/store"
)

var userNameRegex = regexp.MustCompile(`^[a-zA-Z0-9 _-]{1,64}$`)

// BalanceResponse is a point-in-time view of a user's account.
type BalanceResponse struct {
	UserID     string
	Name       string
	Balance    decimal.Decimal
	Reserved   decimal.Decimal
	Available  decimal.Decimal
	OpenOrders int
	AsOf       time.Time
}

// UserService handles user registration and balance queries.
type UserService struct {
	store   *store.UserStore
	matcher *engine.Matcher
}

// NewUserService creates a UserService whose users route orders to matcher.
func NewUserService(store *store.UserStore, matcher *engine.Matcher) *UserService {
	return &UserService{
		store:   store,
		matcher: matcher,
	}
}

// CreateUser registers a new user with an account holding initialBalance.
// A negative opening balance is rejected.
func (s *UserService) CreateUser(name string, initialBalance decimal.Decimal) (*domain.User, error) {
	if !userNameRegex.MatchString(name) {
		return nil, &domain.ValidationError{
			Message: "name must match ^[a-zA-Z0-9 _-]{1,64}$",
		}
	}
	if initialBalance.IsNegative() {
		return nil, &domain.ValidationError{
			Message: "initial balance must be >= 0",
		}
	}

	u := domain.NewUser(name, initialBalance, s.matcher)
	if err := s.store.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(userID string) (*domain.User, error) {
	return s.store.Get(userID)
}

// ListUsers returns every user in registration order.
func (s *UserService) ListUsers() []*domain.User {
	return s.store.List()
}

// GetBalance reports the balance, reservation and open order count of a
// user as of the last completed trade.
func (s *UserService) GetBalance(userID string) (*BalanceResponse, error) {
	u, err := s.store.Get(userID)
	if err != nil {
		return nil, err
	}

	state := s.matcher.AccountState(u)
	return &BalanceResponse{
		UserID:     u.ID,
		Name:       u.Name,
		Balance:    state.Balance,
		Reserved:   state.Reserved,
		Available:  state.Balance.Sub(state.Reserved),
		OpenOrders: state.OpenOrders,
		AsOf:       time.Now(),
	}, nil
}
