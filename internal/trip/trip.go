package trip

import (
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/trip/application"
	"github.com/mateusmacedo/van-bff/internal/trip/infrastructure"
)

type TripSlice struct {
	httpHandler *infrastructure.TripHTTPHandler
}

// NewTripSlice registra o comando de criação diária e a consulta por data nos
// barramentos e monta as rotas /api/trips.
func NewTripSlice(
	commandBus application.CommandBus,
	queryBus application.QueryBus,
	deps application.Dependencies,
	verifier guard.Verifier,
) *TripSlice {
	service := application.NewService(deps)

	commandBus.RegisterHandler(application.CreateDailyTripsCommandName, application.NewCreateDailyTripsHandler(service, deps.Logger))
	queryBus.RegisterHandler(application.FindTripsByDateQueryName, application.NewFindTripsByDateHandler(service, deps.Logger))

	return &TripSlice{
		httpHandler: infrastructure.NewTripHTTPHandler(commandBus, queryBus, service, verifier, deps.Logger),
	}
}

func (s *TripSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
