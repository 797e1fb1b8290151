package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/observability"
	"github.com/yanryp/servicedesk-sub004/internal/repository"
)

const overdueSweepLimit = 1000

// OverdueLister lists tickets matching a filter.
type OverdueLister interface {
	ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error)
}

// OverdueMonitor periodically counts tickets past their SLA and publishes
// the count as a gauge. Overdue state itself is never stored.
type OverdueMonitor struct {
	tickets  OverdueLister
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// NewOverdueMonitor builds a monitor sweeping every interval.
func NewOverdueMonitor(tickets OverdueLister, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *OverdueMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &OverdueMonitor{tickets: tickets, metrics: metrics, logger: logger, interval: interval, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (m *OverdueMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.Sweep(ctx); err != nil && ctx.Err() == nil {
			m.logger.Warn("overdue sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep counts overdue tickets at the current time.
func (m *OverdueMonitor) Sweep(ctx context.Context) (int, error) {
	now := m.now()
	tickets, err := m.tickets.ListWithFilter(ctx, repository.TicketFilter{OverdueAt: &now, Limit: overdueSweepLimit})
	if err != nil {
		return 0, err
	}
	m.metrics.SetOverdueTickets(len(tickets))
	if len(tickets) > 0 {
		m.logger.Debug("overdue tickets", zap.Int("count", len(tickets)))
	}
	return len(tickets), nil
}
