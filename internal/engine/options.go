package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Priority selects the order in which a matching pass considers orders.
type Priority string

const (
	// PriorityPriceTime crosses the best sell against the best buy per
	// instrument, ties broken by arrival.
	PriorityPriceTime Priority = "price_time"
	// PriorityArrival rescans every seller against every buyer in arrival
	// order, regardless of price.
	PriorityArrival Priority = "arrival"
)

// ParsePriority converts a configuration value into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityPriceTime, PriorityArrival:
		return p, nil
	}
	return "", fmt.Errorf("unknown matching priority %q, must be one of: price_time, arrival", s)
}

// BalancePolicy decides whether buyers may spend more cash than they hold.
type BalancePolicy string

const (
	// BalancePermissive never checks balances; buyers may go negative.
	BalancePermissive BalancePolicy = "permissive"
	// BalanceStrict reserves quantity × price on every BUY at submission
	// and rejects it with domain.ErrInsufficientBalance if the buyer's
	// available balance does not cover it.
	BalanceStrict BalancePolicy = "strict"
)

// ParseBalancePolicy converts a configuration value into a BalancePolicy.
func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch p := BalancePolicy(s); p {
	case BalancePermissive, BalanceStrict:
		return p, nil
	}
	return "", fmt.Errorf("unknown balance policy %q, must be one of: permissive, strict", s)
}

// Options configures a Matcher. The zero value uses price-time priority,
// the permissive balance policy and a no-op logger.
type Options struct {
	Priority      Priority
	BalancePolicy BalancePolicy
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Priority == "" {
		o.Priority = PriorityPriceTime
	}
	if o.BalancePolicy == "" {
		o.BalancePolicy = BalancePermissive
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
