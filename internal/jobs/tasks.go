package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	tripApp "github.com/mateusmacedo/van-bff/internal/trip/application"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

const (
	BlacklistCleanupJob = "blacklist-cleanup"
	DailyTripsJob       = "daily-trips"
)

type Dependencies struct {
	MaxBackoff time.Duration
	Logger     pkgApp.AppLogger
	Metrics    *metrics.Metrics
}

// NewBlacklistCleanup remove periodicamente os tokens revogados já expirados.
func NewBlacklistCleanup(interval time.Duration, sweep func(ctx context.Context) error, deps Dependencies) *PeriodicTask {
	return &PeriodicTask{
		Name:       BlacklistCleanupJob,
		Interval:   interval,
		MaxBackoff: deps.MaxBackoff,
		Run:        sweep,
		Logger:     deps.Logger,
		Metrics:    deps.Metrics,
	}
}

// NewDailyTrips garante o par ida/volta de hoje até hoje+daysAhead.
func NewDailyTrips(interval time.Duration, daysAhead int, bus tripApp.CommandBus, clk clock.Clock, deps Dependencies) *PeriodicTask {
	return &PeriodicTask{
		Name:       DailyTripsJob,
		Interval:   interval,
		MaxBackoff: deps.MaxBackoff,
		Logger:     deps.Logger,
		Metrics:    deps.Metrics,
		Run: func(ctx context.Context) error {
			today := clk.Now()
			var errs []error
			for i := 0; i <= daysAhead; i++ {
				command := tripApp.NewCreateDailyTripsCommand(tripApp.CreateDailyTripsData{Date: today.AddDate(0, 0, i)})
				if err := bus.Dispatch(ctx, command); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
}
