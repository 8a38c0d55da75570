package application

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type Dependencies struct {
	DB       *gorm.DB
	Trips    domain.TripRepository
	Stops    domain.StopRepository
	Users    domain.UserRepository
	EventBus domain.EventBus
	Clock    clock.Clock
	Location *time.Location
	Metrics  *metrics.Metrics
	Logger   pkgApp.AppLogger
}

type Service struct {
	Dependencies
}

func NewService(deps Dependencies) *Service {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Service{Dependencies: deps}
}

// UpdateInput altera motorista e/ou data. ClearDriver remove o motorista.
type UpdateInput struct {
	DriverID    *uint
	ClearDriver bool
	Date        *time.Time
}

func (s *Service) ensureNotPast(day time.Time) error {
	today, _ := domain.DayWindow(s.Clock.Now(), s.Location)
	if day.Before(today) {
		return apperr.ErrPastDate()
	}
	return nil
}

// CreateDailyTrips garante uma ida e uma volta para o dia de date. Só as
// direções que faltam são inseridas; chamar de novo devolve o mesmo par.
func (s *Service) CreateDailyTrips(ctx context.Context, tx *gorm.DB, date time.Time) ([]domain.Trip, error) {
	start, end := domain.DayWindow(date, s.Location)
	if err := s.ensureNotPast(start); err != nil {
		return nil, err
	}

	var trips, created []domain.Trip
	err := infrastructure.RunInTx(ctx, s.DB, tx, func(tx *gorm.DB) error {
		existing, err := s.Trips.FindBetween(ctx, tx, start, end)
		if err != nil {
			return err
		}

		have := make(map[string]bool, len(existing))
		for _, trip := range existing {
			have[trip.Direction] = true
		}
		missing := make([]domain.Trip, 0, len(domain.Directions))
		for _, direction := range domain.Directions {
			if !have[direction] {
				missing = append(missing, domain.Trip{TripDate: start.UTC(), Direction: direction})
			}
		}
		if err := s.Trips.CreateBatch(ctx, tx, missing); err != nil {
			return err
		}

		trips = append(existing, missing...)
		created = missing
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByDirection(trips)
	day := domain.DayKey(start, s.Location)
	if len(created) > 0 {
		s.Metrics.AddTripsCreated(len(created))
		pkgApp.LogInfo(ctx, s.Logger, "daily trips created", map[string]interface{}{
			"date":    day,
			"created": len(created),
		})
		if err := s.EventBus.Publish(ctx, NewDailyTripsCreatedEvent(day, created)); err != nil {
			pkgApp.LogError(ctx, s.Logger, "error publishing event", err, map[string]interface{}{
				"event_name": domain.EventDailyTripsCreated,
			})
		}
	}
	return trips, nil
}

// FindByDate lista as viagens do dia com a ocupação de cada uma.
func (s *Service) FindByDate(ctx context.Context, date time.Time) ([]domain.TripSummary, error) {
	start, end := domain.DayWindow(date, s.Location)
	trips, err := s.Trips.FindBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, trips)
}

func (s *Service) summarize(ctx context.Context, trips []domain.Trip) ([]domain.TripSummary, error) {
	ids := make([]uint, 0, len(trips))
	for _, trip := range trips {
		ids = append(ids, trip.TripID)
	}
	counts, err := s.Trips.CountStops(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	sortByDirection(trips)
	summaries := make([]domain.TripSummary, 0, len(trips))
	for _, trip := range trips {
		summaries = append(summaries, domain.NewTripSummary(trip, counts[trip.TripID]))
	}
	return summaries, nil
}

// Get devolve a viagem com as paradas e os endereços de embarque.
func (s *Service) Get(ctx context.Context, tripID uint) (*domain.TripSummary, error) {
	trip, err := s.Trips.Get(ctx, nil, tripID)
	if err != nil {
		return nil, err
	}
	stops, err := s.Stops.FindByTrip(ctx, nil, tripID)
	if err != nil {
		return nil, err
	}
	trip.Stops = stops
	summary := domain.NewTripSummary(*trip, int64(len(stops)))
	return &summary, nil
}

func (s *Service) TripStops(ctx context.Context, tripID uint) ([]domain.Stop, error) {
	if _, err := s.Trips.Get(ctx, nil, tripID); err != nil {
		return nil, err
	}
	return s.Stops.FindByTrip(ctx, nil, tripID)
}

// Update altera apenas as colunas informadas. A data só muda enquanto a viagem
// não tem paradas, que precisam continuar no mesmo dia.
func (s *Service) Update(ctx context.Context, tripID uint, in UpdateInput) (*domain.Trip, error) {
	var updated *domain.Trip
	err := infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		trip, err := s.Trips.Get(ctx, tx, tripID)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		switch {
		case in.ClearDriver:
			fields["driver_id"] = nil
		case in.DriverID != nil:
			driver, err := s.Users.Get(ctx, tx, *in.DriverID)
			if err != nil {
				return err
			}
			if driver.UserType != domain.UserTypeDriver {
				return apperr.Validation("O usuário informado não é motorista")
			}
			fields["driver_id"] = *in.DriverID
		}

		if in.Date != nil {
			start, _ := domain.DayWindow(*in.Date, s.Location)
			if err := s.ensureNotPast(start); err != nil {
				return err
			}
			if !start.Equal(trip.TripDate) {
				count, err := s.Stops.CountByTrip(ctx, tx, tripID, 0)
				if err != nil {
					return err
				}
				if count > 0 {
					return apperr.ErrTripHasStops()
				}
				fields["trip_date"] = start.UTC()
			}
		}

		if err := s.Trips.UpdateFields(ctx, tx, tripID, fields); err != nil {
			return err
		}
		updated, err = s.Trips.Get(ctx, tx, tripID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete só remove viagens sem paradas.
func (s *Service) Delete(ctx context.Context, tripID uint) error {
	return infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		if _, err := s.Trips.Get(ctx, tx, tripID); err != nil {
			return err
		}
		count, err := s.Stops.CountByTrip(ctx, tx, tripID, 0)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.ErrTripHasStops()
		}
		return s.Trips.Delete(ctx, tx, tripID)
	})
}

// sortByDirection deixa a ida antes da volta dentro de cada dia.
func sortByDirection(trips []domain.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		if !trips[i].TripDate.Equal(trips[j].TripDate) {
			return trips[i].TripDate.Before(trips[j].TripDate)
		}
		return trips[i].Direction == domain.DirectionIda && trips[j].Direction != domain.DirectionIda
	})
}
