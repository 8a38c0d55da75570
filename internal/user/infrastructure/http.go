package infrastructure

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/user/application"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type UserHTTPHandler struct {
	service  *application.Service
	verifier guard.Verifier
	logger   pkgApp.AppLogger
}

func NewUserHTTPHandler(service *application.Service, verifier guard.Verifier, logger pkgApp.AppLogger) *UserHTTPHandler {
	return &UserHTTPHandler{service: service, verifier: verifier, logger: logger}
}

func (h *UserHTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), r.URL.Query().Get("user_type"))
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, users)
}

func (h *UserHTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.URLParamID(r, "userID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, user)
}

func (h *UserHTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.URLParamID(r, "userID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	principal, _ := guard.PrincipalFrom(r.Context())
	if err := h.service.Delete(r.Context(), userID, principal.UserID); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, httpapi.Message{Message: "Usuário removido"})
}

func (h *UserHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/users", func(r chi.Router) {
		r.Use(guard.Authenticate(h.verifier, h.logger))
		r.Use(guard.RequireUserType(h.logger, domain.UserTypeAdmin, domain.UserTypeDriver))
		r.Get("/", h.HandleList)
		r.Get("/{userID}", h.HandleGet)
		r.With(guard.RequireUserType(h.logger, domain.UserTypeAdmin)).Delete("/{userID}", h.HandleDelete)
	})
}
