package service

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/engine"
	"github.com/efreitasn/stockexchange/internal/store"
)

var instrumentRegex = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:    true,
	domain.OrderStatusProcessing: true,
	domain.OrderStatusCompleted:  true,
}

// CreateOrderRequest represents the input for order creation. Price is a
// decimal string such as "200" or "148.50".
type CreateOrderRequest struct {
	UserID     string
	Side       domain.Side
	Instrument string
	Quantity   int64
	Price      string
}

// OrderService handles order creation, settlement, retrieval and listing.
type OrderService struct {
	matcher   *engine.Matcher
	userStore *store.UserStore
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(matcher *engine.Matcher, userStore *store.UserStore) *OrderService {
	return &OrderService{
		matcher:   matcher,
		userStore: userStore,
	}
}

// CreateOrder validates the request, places the order through the user's
// account and settles before returning. The result is a snapshot; use
// GetOrder to observe later fills.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*domain.Order, error) {
	u, params, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	o, err := u.Account.CreateOrder(params.side, params.instrument, params.quantity, params.price)
	if err != nil {
		return nil, err
	}
	return s.matcher.Snapshot(o), nil
}

// SubmitOrder is CreateOrder without settlement: the order rests in its
// pool until Settle runs.
func (s *OrderService) SubmitOrder(req CreateOrderRequest) (*domain.Order, error) {
	u, params, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	o, err := u.Account.SubmitOrder(params.side, params.instrument, params.quantity, params.price)
	if err != nil {
		return nil, err
	}
	return s.matcher.Snapshot(o), nil
}

// Settle matches every instrument submitted to since the last settlement
// and returns the trades executed.
func (s *OrderService) Settle() []*domain.LedgerEntry {
	return s.matcher.Settle()
}

// GetOrder returns a snapshot of the order with the given ID.
func (s *OrderService) GetOrder(orderID string) (*domain.Order, error) {
	return s.matcher.Order(orderID)
}

// ListOrders returns snapshots of a paginated list of a user's orders,
// newest first, with optional status filtering.
func (s *OrderService) ListOrders(userID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if !s.userStore.Exists(userID) {
		return nil, 0, domain.ErrUserNotFound
	}

	if status != nil && !ValidOrderStatuses[*status] {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: PENDING, PROCESSING, COMPLETED", *status),
		}
	}

	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	orders, total := s.matcher.UserOrders(userID, store.OrderFilter{Status: status}, page, limit)
	return orders, total, nil
}

type orderParams struct {
	side       domain.Side
	instrument string
	quantity   int64
	price      decimal.Decimal
}

func (s *OrderService) prepare(req CreateOrderRequest) (*domain.User, orderParams, error) {
	if !req.Side.Valid() {
		return nil, orderParams{}, &domain.ValidationError{
			Message: "side must be 'BUY' or 'SELL'",
		}
	}
	if !instrumentRegex.MatchString(req.Instrument) {
		return nil, orderParams{}, &domain.ValidationError{
			Message: "instrument must match ^[A-Z0-9]{1,12}$",
		}
	}
	if req.Quantity <= 0 {
		return nil, orderParams{}, &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}
	price, err := domain.ParseAmount(req.Price)
	if err != nil {
		return nil, orderParams{}, &domain.ValidationError{
			Message: "price must be a decimal number",
		}
	}
	if price.IsNegative() {
		return nil, orderParams{}, &domain.ValidationError{
			Message: "price must be >= 0",
		}
	}

	u, err := s.userStore.Get(req.UserID)
	if err != nil {
		return nil, orderParams{}, err
	}

	return u, orderParams{
		side:       req.Side,
		instrument: req.Instrument,
		quantity:   req.Quantity,
		price:      price,
	}, nil
}
