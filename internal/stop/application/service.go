package application

import (
	"context"
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
	DB        *gorm.DB
	Users     domain.UserRepository
	Addresses domain.AddressRepository
	Trips     domain.TripRepository
	Stops     domain.StopRepository
	EventBus  domain.EventBus
	Clock     clock.Clock
	Location  *time.Location
	Metrics   *metrics.Metrics
	Logger    pkgApp.AppLogger
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

// ValidateStopRelations confere, nesta ordem: usuário, endereço e viagem
// existem; o endereço é do usuário; parada e viagem caem no mesmo dia; a
// viagem ainda tem vaga. A parada que o próprio usuário já tem na viagem não
// ocupa vaga extra, pois será sobrescrita.
func (s *Service) ValidateStopRelations(ctx context.Context, tx *gorm.DB, stop *domain.Stop) error {
	if _, err := s.Users.Get(ctx, tx, stop.UserID); err != nil {
		return err
	}
	address, err := s.Addresses.Get(ctx, tx, stop.AddressID)
	if err != nil {
		return err
	}
	trip, err := s.Trips.Get(ctx, tx, stop.TripID)
	if err != nil {
		return err
	}
	if address.UserID != stop.UserID {
		return apperr.ErrAddressNotOwned()
	}
	if !domain.SameDay(stop.StopDate, trip.TripDate, s.Location) {
		return apperr.ErrStopDateMismatch()
	}

	occupied, err := s.Stops.CountByTrip(ctx, tx, stop.TripID, stop.UserID)
	if err != nil {
		return err
	}
	if occupied >= domain.MaxStopsPerTrip {
		return apperr.ErrTripFull(domain.MaxStopsPerTrip)
	}
	return nil
}

// UpsertStop atualiza a parada do usuário na viagem, preservando o stop_id, ou
// cria uma nova. A última escrita vence.
func (s *Service) UpsertStop(ctx context.Context, tx *gorm.DB, stop *domain.Stop) (*domain.Stop, error) {
	stop.StopDate = stop.StopDate.UTC()

	existing, err := s.Stops.FindByUserAndTrip(ctx, tx, stop.UserID, stop.TripID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := s.Stops.Create(ctx, tx, stop); err != nil {
			return nil, err
		}
		return stop, nil
	}

	existing.AddressID = stop.AddressID
	existing.StopDate = stop.StopDate
	if err := s.Stops.Update(ctx, tx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// AddStop valida e grava uma parada avulsa em uma transação.
func (s *Service) AddStop(ctx context.Context, data BookStopData) (*domain.Stop, error) {
	var saved *domain.Stop
	err := infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		stop := &domain.Stop{
			UserID:    data.UserID,
			AddressID: data.AddressID,
			TripID:    data.TripID,
			StopDate:  data.Date,
		}
		if err := s.ValidateStopRelations(ctx, tx, stop); err != nil {
			return err
		}
		upserted, err := s.UpsertStop(ctx, tx, stop)
		saved = upserted
		return err
	})
	if err != nil {
		return nil, err
	}

	s.booked(ctx, BookingSingle, data.Date, []domain.Stop{*saved})
	return saved, nil
}

// AddRoundTripStop reserva a ida e a volta do dia. As outras paradas do usuário
// nesse dia são descartadas; qualquer falha desfaz tudo.
func (s *Service) AddRoundTripStop(ctx context.Context, userID uint, date time.Time, idaAddressID, voltaAddressID uint) ([]domain.Stop, error) {
	start, end := domain.DayWindow(date, s.Location)

	var saved []domain.Stop
	err := infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		ida, volta, err := s.resolvePair(ctx, tx, start, end)
		if err != nil {
			return err
		}

		legs := []*domain.Stop{
			{UserID: userID, AddressID: idaAddressID, TripID: ida.TripID, StopDate: date},
			{UserID: userID, AddressID: voltaAddressID, TripID: volta.TripID, StopDate: date},
		}
		// as duas pernas são validadas em sequência, na mesma transação
		for _, leg := range legs {
			if err := s.ValidateStopRelations(ctx, tx, leg); err != nil {
				return err
			}
		}

		removed, err := s.Stops.DeleteByUserBetweenExcept(ctx, tx, userID, start, end, []uint{ida.TripID, volta.TripID})
		if err != nil {
			return err
		}
		if removed > 0 {
			pkgApp.LogDebug(ctx, s.Logger, "stale stops removed", map[string]interface{}{
				"user_id": userID,
				"removed": removed,
			})
		}

		saved = make([]domain.Stop, 0, len(legs))
		for _, leg := range legs {
			upserted, err := s.UpsertStop(ctx, tx, leg)
			if err != nil {
				return err
			}
			saved = append(saved, *upserted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.booked(ctx, BookingRoundTrip, date, saved)
	return saved, nil
}

// resolvePair escolhe a primeira ida e a primeira volta do dia.
func (s *Service) resolvePair(ctx context.Context, tx *gorm.DB, start, end time.Time) (*domain.Trip, *domain.Trip, error) {
	trips, err := s.Trips.FindBetween(ctx, tx, start, end)
	if err != nil {
		return nil, nil, err
	}

	var ida, volta *domain.Trip
	for i := range trips {
		switch trips[i].Direction {
		case domain.DirectionIda:
			if ida == nil {
				ida = &trips[i]
			}
		case domain.DirectionVolta:
			if volta == nil {
				volta = &trips[i]
			}
		}
	}
	if ida == nil || volta == nil {
		return nil, nil, apperr.ErrTripsNotScheduled()
	}
	return ida, volta, nil
}

// FindUserStops lista as paradas do usuário no dia de date.
func (s *Service) FindUserStops(ctx context.Context, userID uint, date time.Time) ([]domain.Stop, error) {
	start, end := domain.DayWindow(date, s.Location)
	return s.Stops.FindByUserBetween(ctx, nil, userID, start, end)
}

// Delete remove uma parada do próprio usuário; administradores removem qualquer uma.
func (s *Service) Delete(ctx context.Context, stopID, actorID uint, isAdmin bool) error {
	return infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		stop, err := s.Stops.Get(ctx, tx, stopID)
		if err != nil {
			return err
		}
		if !isAdmin && stop.UserID != actorID {
			return apperr.ErrStopNotFound()
		}
		return s.Stops.Delete(ctx, tx, stopID)
	})
}

func (s *Service) booked(ctx context.Context, kind string, date time.Time, stops []domain.Stop) {
	s.Metrics.AddStopsBooked(kind, len(stops))

	day := domain.DayKey(date, s.Location)
	pkgApp.LogInfo(ctx, s.Logger, "stops booked", map[string]interface{}{
		"kind":  kind,
		"date":  day,
		"stops": len(stops),
	})
	if err := s.EventBus.Publish(ctx, NewStopsBookedEvent(kind, day, stops)); err != nil {
		pkgApp.LogError(ctx, s.Logger, "error publishing event", err, map[string]interface{}{
			"event_name": domain.EventStopsBooked,
		})
	}
}
