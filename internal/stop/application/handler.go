package application

import (
	"context"

	"github.com/mateusmacedo/van-bff/internal/domain"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
)

type bookStopHandler struct {
	service *Service
	logger  pkgApp.AppLogger
}

func (h *bookStopHandler) Handle(ctx context.Context, command pkgDomain.Command[BookStopData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	if _, err := h.service.AddStop(ctx, data); err != nil {
		pkgApp.LogInfo(ctx, h.logger, "Reserva de parada recusada", map[string]interface{}{
			"user_id": data.UserID,
			"trip_id": data.TripID,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func NewBookStopHandler(service *Service, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[BookStopData], BookStopData] {
	return &bookStopHandler{service: service, logger: logger}
}

type bookRoundTripHandler struct {
	service *Service
	logger  pkgApp.AppLogger
}

func (h *bookRoundTripHandler) Handle(ctx context.Context, command pkgDomain.Command[BookRoundTripData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	if _, err := h.service.AddRoundTripStop(ctx, data.UserID, data.Date, data.IdaAddressID, data.VoltaAddressID); err != nil {
		pkgApp.LogInfo(ctx, h.logger, "Reserva de ida e volta recusada", map[string]interface{}{
			"user_id": data.UserID,
			"date":    domain.DayKey(data.Date, h.service.Location),
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func NewBookRoundTripHandler(service *Service, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[BookRoundTripData], BookRoundTripData] {
	return &bookRoundTripHandler{service: service, logger: logger}
}

type findUserStopsHandler struct {
	service *Service
	logger  pkgApp.AppLogger
}

func (h *findUserStopsHandler) Handle(ctx context.Context, query pkgDomain.Query[FindUserStopsData]) ([]domain.Stop, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return nil, ctx.Err()
	}

	data := query.Payload()
	stops, err := h.service.FindUserStops(ctx, data.UserID, data.Date)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao buscar paradas", err, map[string]interface{}{"user_id": data.UserID})
		return nil, err
	}
	return stops, nil
}

func NewFindUserStopsHandler(service *Service, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindUserStopsData], FindUserStopsData, []domain.Stop] {
	return &findUserStopsHandler{service: service, logger: logger}
}
