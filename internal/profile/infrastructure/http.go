package infrastructure

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/profile/application"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type addressRequest struct {
	ID           uint   `json:"id"`
	Type         string `json:"type" validate:"omitempty,max=30"`
	Street       string `json:"street" validate:"omitempty,max=160"`
	Number       string `json:"number" validate:"omitempty,max=20"`
	Complement   string `json:"complement" validate:"omitempty,max=80"`
	Neighborhood string `json:"neighborhood" validate:"omitempty,max=80"`
	City         string `json:"city" validate:"omitempty,max=80"`
	State        string `json:"state" validate:"omitempty,len=2"`
	ZipCode      string `json:"zip_code" validate:"omitempty,max=9"`
}

func (a addressRequest) input() application.AddressInput {
	return application.AddressInput{
		AddressID:    a.ID,
		Type:         a.Type,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
	}
}

type newAddressRequest struct {
	Type         string `json:"type" validate:"required,max=30"`
	Street       string `json:"street" validate:"required,max=160"`
	Number       string `json:"number" validate:"omitempty,max=20"`
	Complement   string `json:"complement" validate:"omitempty,max=80"`
	Neighborhood string `json:"neighborhood" validate:"omitempty,max=80"`
	City         string `json:"city" validate:"required,max=80"`
	State        string `json:"state" validate:"omitempty,len=2"`
	ZipCode      string `json:"zip_code" validate:"omitempty,max=9"`
}

type updateProfileRequest struct {
	Name      string          `json:"name" validate:"omitempty,max=120"`
	Email     string          `json:"email" validate:"omitempty,email,max=160"`
	CPF       string          `json:"cpf" validate:"omitempty,max=14"`
	Phone     string          `json:"phone" validate:"omitempty,max=20"`
	Birthdate string          `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Address   *addressRequest `json:"address"`
}

type ProfileHTTPHandler struct {
	service  *application.Service
	verifier guard.Verifier
	logger   pkgApp.AppLogger
}

func NewProfileHTTPHandler(service *application.Service, verifier guard.Verifier, logger pkgApp.AppLogger) *ProfileHTTPHandler {
	return &ProfileHTTPHandler{service: service, verifier: verifier, logger: logger}
}

func (h *ProfileHTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFrom(r.Context())
	user, err := h.service.Get(r.Context(), principal.UserID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, user)
}

func (h *ProfileHTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	if req.Address != nil {
		if err := httpapi.Validate(req.Address); err != nil {
			httpapi.Error(r.Context(), w, h.logger, err)
			return
		}
	}

	input := application.UpdateInput{
		Name:  req.Name,
		Email: req.Email,
		CPF:   req.CPF,
		Phone: req.Phone,
	}
	if req.Birthdate != "" {
		birthdate, err := time.Parse(domain.DateLayout, req.Birthdate)
		if err != nil {
			httpapi.Error(r.Context(), w, h.logger, apperr.Validation("Data de nascimento inválida"))
			return
		}
		input.Birthdate = &birthdate
	}
	if req.Address != nil {
		address := req.Address.input()
		input.Address = &address
	}

	principal, _ := guard.PrincipalFrom(r.Context())
	user, err := h.service.Update(r.Context(), principal.UserID, input)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, user)
}

func (h *ProfileHTTPHandler) HandleListAddresses(w http.ResponseWriter, r *http.Request) {
	principal, _ := guard.PrincipalFrom(r.Context())
	addresses, err := h.service.ListAddresses(r.Context(), principal.UserID)
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, addresses)
}

func (h *ProfileHTTPHandler) HandleAddAddress(w http.ResponseWriter, r *http.Request) {
	var req newAddressRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	principal, _ := guard.PrincipalFrom(r.Context())
	address, err := h.service.AddAddress(r.Context(), principal.UserID, application.AddressInput{
		Type:         req.Type,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
	})
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, address)
}

func (h *ProfileHTTPHandler) HandleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	addressID, err := httpapi.URLParamID(r, "addressID")
	if err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}

	principal, _ := guard.PrincipalFrom(r.Context())
	if err := h.service.DeleteAddress(r.Context(), principal.UserID, addressID); err != nil {
		httpapi.Error(r.Context(), w, h.logger, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, httpapi.Message{Message: "Endereço removido"})
}

func (h *ProfileHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/profile", func(r chi.Router) {
		r.Use(guard.Authenticate(h.verifier, h.logger))
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
		r.Get("/addresses", h.HandleListAddresses)
		r.Post("/addresses", h.HandleAddAddress)
		r.Delete("/addresses/{addressID}", h.HandleDeleteAddress)
	})
}
