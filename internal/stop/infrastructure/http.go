package infrastructure

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/stop/application"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type bookStopRequest struct {
	UserID    uint   `json:"user_id"`
	AddressID uint   `json:"address_id" validate:"required,gt=0"`
	TripID    uint   `json:"trip_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

type bookRoundTripRequest struct {
	UserID         uint   `json:"user_id"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	IdaAddressID   uint   `json:"ida_address_id" validate:"required,gt=0"`
	VoltaAddressID uint   `json:"volta_address_id" validate:"required,gt=0"`
}

type StopHTTPHandler struct {
	bookStop      application.BookStopBus
	bookRoundTrip application.BookRoundTripBus
	queryBus      application.QueryBus
	service       *application.Service
	verifier      guard.Verifier
	logger        pkgApp.AppLogger
}

func NewStopHTTPHandler(
	bookStop application.BookStopBus,
	bookRoundTrip application.BookRoundTripBus,
	queryBus application.QueryBus,
	service *application.Service,
	verifier guard.Verifier,
	logger pkgApp.AppLogger,
) *StopHTTPHandler {
	return &StopHTTPHandler{
		bookStop:      bookStop,
		bookRoundTrip: bookRoundTrip,
		queryBus:      queryBus,
		service:       service,
		verifier:      verifier,
		logger:        logger,
	}
}

// subject resolve para quem a reserva é feita: só administradores agem em
// nome de outro usuário.
func subject(r *http.Request, requested uint) (uint, error) {
	principal, _ := guard.PrincipalFrom(r.Context())
	if requested == 0 || requested == principal.UserID {
		return principal.UserID, nil
	}
	if !principal.IsAdmin() {
		return 0, apperr.ErrForbidden()
	}
	return requested, nil
}

func (h *StopHTTPHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	var req bookStopRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	userID, err := subject(r, req.UserID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	date, err := domain.ParseDay(req.Date, h.service.Location)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, apperr.Validation(err.Error()))
		return
	}

	command := application.NewBookStopCommand(application.BookStopData{
		UserID:    userID,
		AddressID: req.AddressID,
		TripID:    req.TripID,
		Date:      date,
	})
	if err := h.bookStop.Dispatch(r.Context(), command); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	h.respondStops(w, r, http.StatusCreated, userID, date)
}

func (h *StopHTTPHandler) HandleBookRoundTrip(w http.ResponseWriter, r *http.Request) {
	var req bookRoundTripRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	userID, err := subject(r, req.UserID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	date, err := domain.ParseDay(req.Date, h.service.Location)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, apperr.Validation(err.Error()))
		return
	}

	command := application.NewBookRoundTripCommand(application.BookRoundTripData{
		UserID:         userID,
		Date:           date,
		IdaAddressID:   req.IdaAddressID,
		VoltaAddressID: req.VoltaAddressID,
	})
	if err := h.bookRoundTrip.Dispatch(r.Context(), command); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	h.respondStops(w, r, http.StatusCreated, userID, date)
}

func (h *StopHTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	date := h.service.Clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseDay(raw, h.service.Location)
		if err != nil {
			httpapi.Error(r.Context(), w, h.logger, apperr.Validation(err.Error()))
			return
		}
		date = parsed
	}

	var requested uint
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := httpapi.ParseID(raw, "user_id")
		if err != nil {
			httpapi.Error(r.Context(), w, h.logger, err)
			return
		}
		requested = id
	}
	userID, err := subject(r, requested)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	h.respondStops(w, r, http.StatusOK, userID, date)
}

func (h *StopHTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	stopID, err := httpapi.URLParamID(r, "stopID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	principal, _ := guard.PrincipalFrom(r.Context())
	if err := h.service.Delete(r.Context(), stopID, principal.UserID, principal.IsAdmin()); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, httpapi.Message{Message: "Parada removida"})
}

func (h *StopHTTPHandler) respondStops(w http.ResponseWriter, r *http.Request, status int, userID uint, date time.Time) {
	query := application.NewFindUserStopsQuery(application.FindUserStopsData{UserID: userID, Date: date})
	stops, err := h.queryBus.Dispatch(r.Context(), query)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, status, stops)
}

func (h *StopHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/stops", func(r chi.Router) {
		r.Use(guard.Authenticate(h.verifier, h.logger))
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleBook)
		r.Post("/round-trip", h.HandleBookRoundTrip)
		r.Delete("/{stopID}", h.HandleDelete)
	})
}
