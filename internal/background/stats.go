package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/userdesk/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UserCounter provides the aggregate counts published as gauges
type UserCounter interface {
	CountTotal(ctx context.Context) (int64, error)
	CountByAuthority(ctx context.Context, authority string) (int64, error)
}

// StatsCollector periodically refreshes user population gauges
type StatsCollector struct {
	counter  UserCounter
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	usersTotal prometheus.Gauge
	adminUsers prometheus.Gauge
}

// NewStatsCollector registers the user gauges on reg
func NewStatsCollector(counter UserCounter, reg prometheus.Registerer, logger *slog.Logger, interval time.Duration) *StatsCollector {
	factory := promauto.With(reg)

	return &StatsCollector{
		counter:  counter,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		usersTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "userdesk_users_total",
			Help: "Number of registered users",
		}),
		adminUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "userdesk_admin_users",
			Help: "Number of users holding ROLE_ADMIN",
		}),
	}
}

// Start refreshes the gauges immediately and then on every tick until
// Stop is called or ctx is cancelled. It blocks.
func (sc *StatsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	sc.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			sc.refresh(ctx)
		case <-sc.stopCh:
			sc.logger.Info("stats collector stopped")
			return
		case <-ctx.Done():
			sc.logger.Info("stats collector context cancelled")
			return
		}
	}
}

// refresh leaves a gauge at its previous value when its query fails
func (sc *StatsCollector) refresh(ctx context.Context) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := sc.counter.CountTotal(queryCtx)
	if err != nil {
		sc.logger.Error("failed to count users", slog.Any("error", err))
	} else {
		sc.usersTotal.Set(float64(total))
	}

	admins, err := sc.counter.CountByAuthority(queryCtx, models.RoleAdmin)
	if err != nil {
		sc.logger.Error("failed to count admins", slog.Any("error", err))
	} else {
		sc.adminUsers.Set(float64(admins))
	}

	sc.logger.Debug("user stats refreshed", slog.Int64("users", total), slog.Int64("admins", admins))
}

// Stop signals the collector to stop. It is safe to call more than once.
func (sc *StatsCollector) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
}
