package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/efreitasn/stockexchange/internal/config"
	"github.com/efreitasn/stockexchange/internal/domain"
	"github.com/efreitasn/stockexchange/internal/engine"
	"github.com/efreitasn/stockexchange/internal/logging"
	"github.com/efreitasn/stockexchange/internal/service"
	"github.com/efreitasn/stockexchange/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (overrides $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ex, err := newExchange(cfg, logger)
	if err != nil {
		logger.Error("failed to build exchange", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var settled <-chan struct{}
	if ex.settler != nil {
		settled = ex.settler.Start(ctx)
	}

	err = ex.replay()
	cancel()
	if settled != nil {
		<-settled
	}
	if err != nil {
		logger.Error("scenario failed", zap.Error(err))
		os.Exit(1)
	}
}

// exchange is the fully wired set of services the driver works through.
type exchange struct {
	users  *service.UserService
	orders *service.OrderService
	ledger *service.LedgerService
	logger *zap.Logger

	// settler is nil unless periodic settlement is configured.
	settler *engine.Settler
}

func newExchange(cfg *config.Config, logger *zap.Logger) (*exchange, error) {
	priority, err := engine.ParsePriority(cfg.MatchingPriority)
	if err != nil {
		return nil, err
	}
	policy, err := engine.ParseBalancePolicy(cfg.BalancePolicy)
	if err != nil {
		return nil, err
	}

	userStore := store.NewUserStore()
	orderStore := store.NewOrderStore()
	ledgerStore := store.NewLedgerStore()
	instruments := domain.NewInstrumentRegistry(cfg.Instruments...)

	matcher := engine.NewMatcher(orderStore, ledgerStore, instruments, engine.Options{
		Priority:      priority,
		BalancePolicy: policy,
		Logger:        logger,
	})

	logger.Info("exchange ready",
		zap.String("matching_priority", string(priority)),
		zap.String("balance_policy", string(policy)),
		zap.Strings("instruments", instruments.List()),
		zap.Duration("settle_interval", cfg.SettleInterval),
	)

	ex := &exchange{
		users:  service.NewUserService(userStore, matcher),
		orders: service.NewOrderService(matcher, userStore),
		ledger: service.NewLedgerService(ledgerStore, orderStore, instruments, cfg.PriceWindow),
		logger: logger,
	}
	if cfg.SettleInterval > 0 {
		ex.settler = engine.NewSettler(cfg.SettleInterval, matcher, logger)
	}
	return ex, nil
}

type scenarioOrder struct {
	user     string
	side     domain.Side
	quantity int64
	price    string
}

const scenarioInstrument = "FYND"

var (
	scenarioUsers = []struct {
		name    string
		balance int64
	}{
		{"ABC", 20000},
		{"PQR", 3000},
		{"XYZ", 2000},
	}

	scenarioOrders = []scenarioOrder{
		{"XYZ", domain.SideSell, 5, "300"},
		{"ABC", domain.SideBuy, 100, "200"},
		{"PQR", domain.SideSell, 90, "100"},
		{"XYZ", domain.SideSell, 10, "200"},
	}
)

// replay creates the scenario users, places each order in turn and logs
// the resulting balances and reference price.
func (ex *exchange) replay() error {
	ids := make(map[string]string, len(scenarioUsers))
	for _, su := range scenarioUsers {
		u, err := ex.users.CreateUser(su.name, decimal.NewFromInt(su.balance))
		if err != nil {
			return fmt.Errorf("create user %s: %w", su.name, err)
		}
		ids[su.name] = u.ID
	}

	for _, so := range scenarioOrders {
		o, err := ex.orders.CreateOrder(service.CreateOrderRequest{
			UserID:     ids[so.user],
			Side:       so.side,
			Instrument: scenarioInstrument,
			Quantity:   so.quantity,
			Price:      so.price,
		})
		if err != nil {
			return fmt.Errorf("place %s order for %s: %w", so.side, so.user, err)
		}
		ex.logger.Info("order placed",
			zap.String("order_id", o.ID),
			zap.String("user", so.user),
			zap.String("side", string(o.Side)),
			zap.Int64("quantity", o.Quantity),
			zap.Stringer("price", o.Price),
			zap.String("status", string(o.Status)),
			zap.Int64("pending_quantity", o.PendingQuantity),
		)
	}

	for _, su := range scenarioUsers {
		bal, err := ex.users.GetBalance(ids[su.name])
		if err != nil {
			return fmt.Errorf("balance for %s: %w", su.name, err)
		}
		ex.logger.Info("final balance",
			zap.String("user", bal.Name),
			zap.Stringer("balance", bal.Balance),
			zap.Stringer("reserved", bal.Reserved),
			zap.Int("open_orders", bal.OpenOrders),
		)
	}

	price, err := ex.ledger.GetPrice(scenarioInstrument)
	if err != nil {
		return fmt.Errorf("price for %s: %w", scenarioInstrument, err)
	}
	fields := []zap.Field{
		zap.String("instrument", price.Instrument),
		zap.String("window", price.Window),
		zap.Int("trades_in_window", price.TradesInWindow),
	}
	if price.CurrentPrice != nil {
		fields = append(fields, zap.Stringer("price", price.CurrentPrice))
	}
	ex.logger.Info("reference price", fields...)
	return nil
}
