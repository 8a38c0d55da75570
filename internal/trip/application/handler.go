package application

import (
	"context"

	"github.com/mateusmacedo/van-bff/internal/domain"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
)

type createDailyTripsHandler struct {
	service *Service
	logger  pkgApp.AppLogger
}

func (h *createDailyTripsHandler) Handle(ctx context.Context, command pkgDomain.Command[CreateDailyTripsData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	trips, err := h.service.CreateDailyTrips(ctx, nil, data.Date)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao criar viagens do dia", err, map[string]interface{}{
			"date": domain.DayKey(data.Date, h.service.Location),
		})
		return err
	}

	h.logger.Debug(ctx, "Viagens do dia garantidas", map[string]interface{}{"trips": len(trips)})
	return nil
}

func NewCreateDailyTripsHandler(service *Service, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[CreateDailyTripsData], CreateDailyTripsData] {
	return &createDailyTripsHandler{service: service, logger: logger}
}

type findTripsByDateHandler struct {
	service *Service
	logger  pkgApp.AppLogger
}

func (h *findTripsByDateHandler) Handle(ctx context.Context, query pkgDomain.Query[FindTripsByDateData]) ([]domain.TripSummary, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return nil, ctx.Err()
	}

	data := query.Payload()
	trips, err := h.service.FindByDate(ctx, data.Date)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao buscar viagens", err, map[string]interface{}{
			"date": domain.DayKey(data.Date, h.service.Location),
		})
		return nil, err
	}
	return trips, nil
}

func NewFindTripsByDateHandler(service *Service, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindTripsByDateData], FindTripsByDateData, []domain.TripSummary] {
	return &findTripsByDateHandler{service: service, logger: logger}
}
