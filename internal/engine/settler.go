package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/efreitasn/stockexchange/internal/domain"
)

// Settler runs batch settlement for orders accepted through the
// submit-only path. Each tick drains whatever has been submitted since the
// previous settlement.
type Settler struct {
	interval time.Duration
	matcher  *Matcher
	logger   *zap.Logger

	mu     sync.Mutex
	passes int
	trades int
}

// NewSettler creates a Settler that settles m every interval.
func NewSettler(interval time.Duration, m *Matcher, logger *zap.Logger) *Settler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Settler{
		interval: interval,
		matcher:  m,
		logger:   logger,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval and settles the matcher. It stops when ctx is cancelled, after
// one final settlement so nothing submitted before cancellation is left
// unmatched. The returned channel is closed once the goroutine exits.
func (s *Settler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.tick()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
	return done
}

func (s *Settler) tick() []*domain.LedgerEntry {
	entries := s.matcher.Settle()

	s.mu.Lock()
	s.passes++
	s.trades += len(entries)
	s.mu.Unlock()

	if len(entries) > 0 {
		s.logger.Debug("batch settled", zap.Int("trades", len(entries)))
	}
	return entries
}

// Stats returns the number of settlement passes run and trades they
// executed.
func (s *Settler) Stats() (passes, trades int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes, s.trades
}
