package stop

import (
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/stop/application"
	"github.com/mateusmacedo/van-bff/internal/stop/infrastructure"
)

type StopSlice struct {
	httpHandler *infrastructure.StopHTTPHandler
}

// NewStopSlice registra os comandos de reserva e a consulta de paradas do
// usuário nos barramentos e monta as rotas /api/stops.
func NewStopSlice(
	bookStop application.BookStopBus,
	bookRoundTrip application.BookRoundTripBus,
	queryBus application.QueryBus,
	deps application.Dependencies,
	verifier guard.Verifier,
) *StopSlice {
	service := application.NewService(deps)

	bookStop.RegisterHandler(application.BookStopCommandName, application.NewBookStopHandler(service, deps.Logger))
	bookRoundTrip.RegisterHandler(application.BookRoundTripCommandName, application.NewBookRoundTripHandler(service, deps.Logger))
	queryBus.RegisterHandler(application.FindUserStopsQueryName, application.NewFindUserStopsHandler(service, deps.Logger))

	return &StopSlice{
		httpHandler: infrastructure.NewStopHTTPHandler(bookStop, bookRoundTrip, queryBus, service, verifier, deps.Logger),
	}
}

func (s *StopSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
