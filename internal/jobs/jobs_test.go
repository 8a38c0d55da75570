package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	"github.com/mateusmacedo/van-bff/internal/testsupport"
	tripApp "github.com/mateusmacedo/van-bff/internal/trip/application"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
	pkgInfra "github.com/mateusmacedo/van-bff/pkg/infrastructure"
)

func TestPeriodicTaskRunsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	m := metrics.New()
	task := &PeriodicTask{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Logger:   pkgApp.NopLogger{},
		Metrics:  m,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- task.Serve(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("a tarefa não parou após o cancelamento")
	}
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.JobRuns.WithLabelValues("tick", "success")), float64(3))
}

func TestPeriodicTaskBacksOffWhileFailing(t *testing.T) {
	task := &PeriodicTask{Name: "flaky", Interval: 10 * time.Millisecond, MaxBackoff: 80 * time.Millisecond}
	retry := task.newBackoff()

	first := retry.NextBackOff()
	var last time.Duration
	for i := 0; i < 10; i++ {
		last = retry.NextBackOff()
	}
	assert.Greater(t, last, first)
	assert.LessOrEqual(t, last, 80*time.Millisecond+80*time.Millisecond/2)

	retry.Reset()
	assert.LessOrEqual(t, retry.NextBackOff(), 15*time.Millisecond)
}

func TestPeriodicTaskRecordsFailures(t *testing.T) {
	var runs atomic.Int32
	m := metrics.New()
	task := &PeriodicTask{
		Name:       "broken",
		Interval:   time.Millisecond,
		MaxBackoff: 2 * time.Millisecond,
		Logger:     pkgApp.NopLogger{},
		Metrics:    m,
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("boom")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = task.Serve(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.JobRuns.WithLabelValues("broken", "failure")), float64(2))
}

func TestSupervisorServesTasks(t *testing.T) {
	var swept atomic.Int32
	supervisor := NewSupervisor("jobs", pkgApp.NopLogger{})
	supervisor.Add(NewBlacklistCleanup(5*time.Millisecond, func(context.Context) error {
		swept.Add(1)
		return nil
	}, Dependencies{Logger: pkgApp.NopLogger{}}))

	ctx, cancel := context.WithCancel(context.Background())
	errs := supervisor.ServeBackground(ctx)

	require.Eventually(t, func() bool { return swept.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-errs
}

func TestDailyTripsCreatesUpcomingDays(t *testing.T) {
	db := testsupport.NewDB(t)
	loc := testsupport.Location(t)
	logger := pkgApp.NopLogger{}
	clk := clock.NewMockClock(time.Date(2026, 5, 10, 23, 30, 0, 0, loc))

	bus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[tripApp.CreateDailyTripsData], tripApp.CreateDailyTripsData](logger)
	service := tripApp.NewService(tripApp.Dependencies{
		DB:       db,
		Trips:    infrastructure.NewTripRepository(db, logger),
		Stops:    infrastructure.NewStopRepository(db, logger),
		Users:    infrastructure.NewUserRepository(db, logger),
		EventBus: pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Notification], domain.Notification](logger),
		Clock:    clk,
		Location: loc,
		Metrics:  metrics.New(),
		Logger:   logger,
	})
	bus.RegisterHandler(tripApp.CreateDailyTripsCommandName, tripApp.NewCreateDailyTripsHandler(service, logger))

	task := NewDailyTrips(time.Hour, 2, bus, clk, Dependencies{Logger: logger})
	require.NoError(t, task.Run(context.Background()))
	require.NoError(t, task.Run(context.Background()))

	assert.Equal(t, int64(6), testsupport.CountRows(t, db, &domain.Trip{}, ""))
	for _, day := range []string{"2026-05-10", "2026-05-11", "2026-05-12"} {
		date, err := domain.ParseDay(day, loc)
		require.NoError(t, err)
		trips, err := service.FindByDate(context.Background(), date)
		require.NoError(t, err)
		assert.Len(t, trips, 2, day)
	}
}
