package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	"github.com/mateusmacedo/van-bff/internal/testsupport"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
	pkgInfra "github.com/mateusmacedo/van-bff/pkg/infrastructure"
)

type fixture struct {
	service *Service
	db      *gorm.DB
	loc     *time.Location
	day     time.Time
	events  chan domain.Notification
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testsupport.NewDB(t)
	loc := testsupport.Location(t)
	logger := pkgApp.NopLogger{}
	day := time.Date(2026, 5, 12, 0, 0, 0, 0, loc)

	events := make(chan domain.Notification, 10)
	bus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Notification], domain.Notification](logger)
	bus.RegisterHandler(domain.EventStopsBooked, pkgApp.EventHandlerFunc[pkgDomain.Event[domain.Notification], domain.Notification](
		func(_ context.Context, event pkgDomain.Event[domain.Notification]) error {
			events <- event.Payload()
			return nil
		}))

	service := NewService(Dependencies{
		DB:        db,
		Users:     infrastructure.NewUserRepository(db, logger),
		Addresses: infrastructure.NewAddressRepository(db, logger),
		Trips:     infrastructure.NewTripRepository(db, logger),
		Stops:     infrastructure.NewStopRepository(db, logger),
		EventBus:  bus,
		Clock:     clock.NewMockClock(day.Add(-24 * time.Hour)),
		Location:  loc,
		Metrics:   metrics.New(),
		Logger:    logger,
	})
	return fixture{service: service, db: db, loc: loc, day: day, events: events}
}

func TestUpsertStopKeepsOneRowPerUserAndTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	work := testsupport.CreateAddress(t, f.db, user.UserID, "trabalho")
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)

	first, err := f.service.UpsertStop(ctx, nil, &domain.Stop{UserID: user.UserID, AddressID: home.AddressID, TripID: trip.TripID, StopDate: f.day})
	require.NoError(t, err)

	second, err := f.service.UpsertStop(ctx, nil, &domain.Stop{UserID: user.UserID, AddressID: work.AddressID, TripID: trip.TripID, StopDate: f.day})
	require.NoError(t, err)

	assert.Equal(t, first.StopID, second.StopID)
	assert.Equal(t, int64(1), testsupport.CountRows(t, f.db, &domain.Stop{}, "user_id = ? AND trip_id = ?", user.UserID, trip.TripID))

	var stored domain.Stop
	require.NoError(t, f.db.First(&stored, "stop_id = ?", first.StopID).Error)
	assert.Equal(t, work.AddressID, stored.AddressID)
}

func TestValidateStopRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	other := testsupport.CreateUser(t, f.db, "bia@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	foreign := testsupport.CreateAddress(t, f.db, other.UserID, "casa")
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)

	tests := []struct {
		name string
		stop domain.Stop
		want *apperr.Error
	}{
		{
			name: "válida",
			stop: domain.Stop{UserID: user.UserID, AddressID: home.AddressID, TripID: trip.TripID, StopDate: f.day.Add(7 * time.Hour)},
		},
		{
			name: "usuário inexistente",
			stop: domain.Stop{UserID: 999, AddressID: home.AddressID, TripID: trip.TripID, StopDate: f.day},
			want: apperr.ErrUserNotFound(),
		},
		{
			name: "endereço inexistente",
			stop: domain.Stop{UserID: user.UserID, AddressID: 999, TripID: trip.TripID, StopDate: f.day},
			want: apperr.ErrAddressNotFound(),
		},
		{
			name: "viagem inexistente",
			stop: domain.Stop{UserID: user.UserID, AddressID: home.AddressID, TripID: 999, StopDate: f.day},
			want: apperr.ErrTripNotFound(),
		},
		{
			name: "endereço de outro usuário",
			stop: domain.Stop{UserID: user.UserID, AddressID: foreign.AddressID, TripID: trip.TripID, StopDate: f.day},
			want: apperr.ErrAddressNotOwned(),
		},
		{
			name: "mesmo horário em outro dia",
			stop: domain.Stop{UserID: user.UserID, AddressID: home.AddressID, TripID: trip.TripID, StopDate: trip.TripDate.Add(24 * time.Hour)},
			want: apperr.ErrStopDateMismatch(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop := tt.stop
			err := f.service.ValidateStopRelations(ctx, nil, &stop)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAddStopRejectsTheStopAfterCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)

	for i := 0; i < domain.MaxStopsPerTrip; i++ {
		user := testsupport.CreateUser(t, f.db, fmt.Sprintf("p%d@example.com", i))
		address := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
		_, err := f.service.AddStop(ctx, BookStopData{UserID: user.UserID, AddressID: address.AddressID, TripID: trip.TripID, Date: f.day})
		require.NoError(t, err)
	}

	late := testsupport.CreateUser(t, f.db, "late@example.com")
	address := testsupport.CreateAddress(t, f.db, late.UserID, "casa")
	_, err := f.service.AddStop(ctx, BookStopData{UserID: late.UserID, AddressID: address.AddressID, TripID: trip.TripID, Date: f.day})
	assert.True(t, errors.Is(err, apperr.ErrTripFull(domain.MaxStopsPerTrip)))
	assert.Equal(t, apperr.KindUnprocessable, apperr.KindOf(err))
	assert.Equal(t, int64(domain.MaxStopsPerTrip), testsupport.CountRows(t, f.db, &domain.Stop{}, "trip_id = ?", trip.TripID))
}

func TestAddStopOnFullTripUpdatesOwnStop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)

	var last *domain.User
	for i := 0; i < domain.MaxStopsPerTrip; i++ {
		last = testsupport.CreateUser(t, f.db, fmt.Sprintf("p%d@example.com", i))
		address := testsupport.CreateAddress(t, f.db, last.UserID, "casa")
		testsupport.CreateStop(t, f.db, last.UserID, address.AddressID, trip)
	}

	work := testsupport.CreateAddress(t, f.db, last.UserID, "trabalho")
	saved, err := f.service.AddStop(ctx, BookStopData{UserID: last.UserID, AddressID: work.AddressID, TripID: trip.TripID, Date: f.day})
	require.NoError(t, err)
	assert.Equal(t, work.AddressID, saved.AddressID)
	assert.Equal(t, int64(domain.MaxStopsPerTrip), testsupport.CountRows(t, f.db, &domain.Stop{}, "trip_id = ?", trip.TripID))
}

func TestAddStopPublishesBooking(t *testing.T) {
	f := newFixture(t)
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionVolta, f.loc)

	_, err := f.service.AddStop(context.Background(), BookStopData{UserID: user.UserID, AddressID: home.AddressID, TripID: trip.TripID, Date: f.day})
	require.NoError(t, err)

	require.Len(t, f.events, 1)
	event := <-f.events
	assert.Equal(t, user.UserID, event.UserID)
	assert.Equal(t, BookingSingle, event.Attributes["kind"])
	assert.Equal(t, "2026-05-12", event.Attributes["date"])
}

type roundTripScenario struct {
	user        *domain.User
	home, work  *domain.Address
	ida, volta  *domain.Trip
	staleIDs    []uint
	staleTripID []uint
}

// newRoundTripScenario monta quatro viagens no dia: o primeiro par é o
// escolhido pela reserva e o segundo guarda as paradas antigas do usuário.
func newRoundTripScenario(t *testing.T, f fixture) roundTripScenario {
	t.Helper()
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	work := testsupport.CreateAddress(t, f.db, user.UserID, "trabalho")

	ida := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)
	volta := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionVolta, f.loc)
	staleIda := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)
	staleVolta := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionVolta, f.loc)

	a := testsupport.CreateStop(t, f.db, user.UserID, home.AddressID, staleIda)
	b := testsupport.CreateStop(t, f.db, user.UserID, work.AddressID, staleVolta)

	return roundTripScenario{
		user:        user,
		home:        home,
		work:        work,
		ida:         ida,
		volta:       volta,
		staleIDs:    []uint{a.StopID, b.StopID},
		staleTripID: []uint{staleIda.TripID, staleVolta.TripID},
	}
}

func TestAddRoundTripStopReplacesStaleStops(t *testing.T) {
	f := newFixture(t)
	s := newRoundTripScenario(t, f)

	stops, err := f.service.AddRoundTripStop(context.Background(), s.user.UserID, f.day, s.home.AddressID, s.work.AddressID)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, s.ida.TripID, stops[0].TripID)
	assert.Equal(t, s.home.AddressID, stops[0].AddressID)
	assert.Equal(t, s.volta.TripID, stops[1].TripID)
	assert.Equal(t, s.work.AddressID, stops[1].AddressID)

	assert.Equal(t, int64(2), testsupport.CountRows(t, f.db, &domain.Stop{}, "user_id = ?", s.user.UserID))
	assert.Zero(t, testsupport.CountRows(t, f.db, &domain.Stop{}, "stop_id IN ?", s.staleIDs))

	require.Len(t, f.events, 1)
	assert.Equal(t, BookingRoundTrip, (<-f.events).Attributes["kind"])
}

func TestAddRoundTripStopRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	s := newRoundTripScenario(t, f)

	// a inserção das novas paradas falha depois que as antigas já foram apagadas
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("fail_stop_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "stop" {
			_ = tx.AddError(errors.New("insert failed"))
		}
	}))

	_, err := f.service.AddRoundTripStop(context.Background(), s.user.UserID, f.day, s.home.AddressID, s.work.AddressID)
	require.Error(t, err)

	assert.Equal(t, int64(2), testsupport.CountRows(t, f.db, &domain.Stop{}, "stop_id IN ?", s.staleIDs))
	assert.Equal(t, int64(2), testsupport.CountRows(t, f.db, &domain.Stop{}, "trip_id IN ?", s.staleTripID))
	assert.Empty(t, f.events)
}

func TestAddRoundTripStopRequiresBothTrips(t *testing.T) {
	f := newFixture(t)
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)

	_, err := f.service.AddRoundTripStop(context.Background(), user.UserID, f.day, home.AddressID, home.AddressID)
	assert.True(t, errors.Is(err, apperr.ErrTripsNotScheduled()))
}

func TestAddRoundTripStopKeepsOtherDays(t *testing.T) {
	f := newFixture(t)
	s := newRoundTripScenario(t, f)
	tomorrow := testsupport.CreateTrip(t, f.db, f.day.AddDate(0, 0, 1), domain.DirectionIda, f.loc)
	kept := testsupport.CreateStop(t, f.db, s.user.UserID, s.home.AddressID, tomorrow)

	_, err := f.service.AddRoundTripStop(context.Background(), s.user.UserID, f.day, s.home.AddressID, s.work.AddressID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), testsupport.CountRows(t, f.db, &domain.Stop{}, "stop_id = ?", kept.StopID))
}

func TestFindUserStopsAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	intruder := testsupport.CreateUser(t, f.db, "eve@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)
	stop := testsupport.CreateStop(t, f.db, user.UserID, home.AddressID, trip)

	stops, err := f.service.FindUserStops(ctx, user.UserID, f.day.Add(10*time.Hour))
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, stop.StopID, stops[0].StopID)

	err = f.service.Delete(ctx, stop.StopID, intruder.UserID, false)
	assert.True(t, errors.Is(err, apperr.ErrStopNotFound()))

	require.NoError(t, f.service.Delete(ctx, stop.StopID, intruder.UserID, true))
	assert.Zero(t, testsupport.CountRows(t, f.db, &domain.Stop{}, ""))
}

func TestAddStopWorksWithoutMetrics(t *testing.T) {
	f := newFixture(t)
	f.service.Metrics = nil
	user := testsupport.CreateUser(t, f.db, "ana@example.com")
	home := testsupport.CreateAddress(t, f.db, user.UserID, "casa")
	trip := testsupport.CreateTrip(t, f.db, f.day, domain.DirectionIda, f.loc)

	_, err := f.service.AddStop(context.Background(), BookStopData{UserID: user.UserID, AddressID: home.AddressID, TripID: trip.TripID, Date: f.day})
	require.NoError(t, err)
}
