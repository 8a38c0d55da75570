package infrastructure

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/trip/application"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type createDailyRequest struct {
	Date string `json:"date" validate:"required"`
}

type updateTripRequest struct {
	DriverID    *uint  `json:"driver_id" validate:"omitempty,gt=0"`
	ClearDriver bool   `json:"clear_driver"`
	TripDate    string `json:"trip_date"`
}

type TripHTTPHandler struct {
	commandBus application.CommandBus
	queryBus   application.QueryBus
	service    *application.Service
	verifier   guard.Verifier
	logger     pkgApp.AppLogger
}

func NewTripHTTPHandler(
	commandBus application.CommandBus,
	queryBus application.QueryBus,
	service *application.Service,
	verifier guard.Verifier,
	logger pkgApp.AppLogger,
) *TripHTTPHandler {
	return &TripHTTPHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		service:    service,
		verifier:   verifier,
		logger:     logger,
	}
}

// HandleCreateDaily despacha o comando e responde com o par do dia consultado em seguida.
func (h *TripHTTPHandler) HandleCreateDaily(w http.ResponseWriter, r *http.Request) {
	var req createDailyRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	date, err := domain.ParseDay(req.Date, h.service.Location)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, apperr.Validation(err.Error()))
		return
	}

	command := application.NewCreateDailyTripsCommand(application.CreateDailyTripsData{Date: date})
	if err := h.commandBus.Dispatch(r.Context(), command); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	trips, err := h.queryBus.Dispatch(r.Context(), application.NewFindTripsByDateQuery(application.FindTripsByDateData{Date: date}))
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, trips)
}

func (h *TripHTTPHandler) HandleFindByDate(w http.ResponseWriter, r *http.Request) {
	date := h.service.Clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseDay(raw, h.service.Location)
		if err != nil {
			httpapi.Error(r.Context(), w, h.logger, apperr.Validation(err.Error()))
			return
		}
		date = parsed
	}

	trips, err := h.queryBus.Dispatch(r.Context(), application.NewFindTripsByDateQuery(application.FindTripsByDateData{Date: date}))
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, trips)
}

func (h *TripHTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tripID, err := httpapi.URLParamID(r, "tripID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	trip, err := h.service.Get(r.Context(), tripID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, trip)
}

func (h *TripHTTPHandler) HandleStops(w http.ResponseWriter, r *http.Request) {
	tripID, err := httpapi.URLParamID(r, "tripID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	stops, err := h.service.TripStops(r.Context(), tripID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, stops)
}

func (h *TripHTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tripID, err := httpapi.URLParamID(r, "tripID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	var req updateTripRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	input := application.UpdateInput{DriverID: req.DriverID, ClearDriver: req.ClearDriver}
	if req.TripDate != "" {
		date, err := domain.ParseDay(req.TripDate, h.service.Location)
		if err != nil {
			httpapi.Error(r.Context(), w, h.logger, apperr.Validation(err.Error()))
			return
		}
		input.Date = &date
	}

	trip, err := h.service.Update(r.Context(), tripID, input)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, trip)
}

func (h *TripHTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tripID, err := httpapi.URLParamID(r, "tripID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), tripID); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, httpapi.Message{Message: "Viagem removida"})
}

func (h *TripHTTPHandler) RegisterRoutes(router chi.Router) {
	staff := guard.RequireUserType(h.logger, domain.UserTypeAdmin, domain.UserTypeDriver)
	adminOnly := guard.RequireUserType(h.logger, domain.UserTypeAdmin)

	router.Route("/api/trips", func(r chi.Router) {
		r.Use(guard.Authenticate(h.verifier, h.logger))
		r.Get("/", h.HandleFindByDate)
		r.With(staff).Post("/daily", h.HandleCreateDaily)
		r.Get("/{tripID}", h.HandleGet)
		r.With(staff).Get("/{tripID}/stops", h.HandleStops)
		r.With(adminOnly).Put("/{tripID}", h.HandleUpdate)
		r.With(adminOnly).Delete("/{tripID}", h.HandleDelete)
	})
}
