package infrastructure

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/application"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type registerRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email,max=160"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	CPF       string `json:"cpf" validate:"omitempty,max=14"`
	Birthdate string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	UserType  string `json:"user_type" validate:"omitempty,oneof=passenger driver"`
}

type registerResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type AuthHTTPHandler struct {
	service   *application.Service
	logger    pkgApp.AppLogger
	rateLimit int
}

func NewAuthHTTPHandler(service *application.Service, logger pkgApp.AppLogger, rateLimit int) *AuthHTTPHandler {
	return &AuthHTTPHandler{service: service, logger: logger, rateLimit: rateLimit}
}

func (h *AuthHTTPHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	var birthdate *time.Time
	if req.Birthdate != "" {
		parsed, err := time.Parse(domain.DateLayout, req.Birthdate)
		if err != nil {
			httpapi.Error(r.Context(), w, h.logger, apperr.Validation("Data de nascimento inválida"))
			return
		}
		birthdate = &parsed
	}

	user, err := h.service.Register(r.Context(), application.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CPF:       req.CPF,
		Birthdate: birthdate,
		Phone:     req.Phone,
		UserType:  req.UserType,
	})
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, registerResponse{ID: user.UserID, Email: user.Email})
}

func (h *AuthHTTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

func (h *AuthHTTPHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFrom(r.Context())
	if err := h.service.Logout(r.Context(), principal.Token, principal.ExpiresAt); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, httpapi.Message{Message: "Logout realizado com sucesso"})
}

func (h *AuthHTTPHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, httpapi.Message{
		Message: "Se o e-mail estiver cadastrado, um código de acesso será enviado",
	})
}

func (h *AuthHTTPHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	principal, _ := guard.PrincipalFrom(r.Context())
	token, err := h.service.ResetPassword(r.Context(), principal.UserID, principal.Token, principal.ExpiresAt, req.Password)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHTTPHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFrom(r.Context())
	user, err := h.service.Me(r.Context(), principal.UserID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, user)
}

func (h *AuthHTTPHandler) RegisterRoutes(router chi.Router) {
	authenticated := guard.Authenticate(h.service, h.logger)

	router.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.rateLimit > 0 {
				r.Use(httpapi.RateLimit(h.rateLimit, time.Minute))
			}
			r.Post("/register", h.HandleRegister)
			r.Post("/login", h.HandleLogin)
			r.Post("/forgot-password", h.HandleForgotPassword)
		})
		r.With(authenticated).Post("/logout", h.HandleLogout)
		r.With(authenticated).Get("/me", h.HandleMe)
		r.With(guard.Authenticate(h.service, h.logger, guard.AllowPasswordReset())).Post("/reset-password", h.HandleResetPassword)
	})
}
