package auth

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/van-bff/internal/auth/application"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/auth/infrastructure"
)

type AuthSlice struct {
	service     *application.Service
	httpHandler *infrastructure.AuthHTTPHandler
}

// NewAuthSlice monta o serviço de autenticação e as rotas /api/auth.
func NewAuthSlice(deps application.Dependencies, authRateLimit int) *AuthSlice {
	service := application.NewService(deps)
	return &AuthSlice{
		service:     service,
		httpHandler: infrastructure.NewAuthHTTPHandler(service, deps.Logger, authRateLimit),
	}
}

// Verifier é usado pelos outros slices para proteger as suas rotas.
func (s *AuthSlice) Verifier() guard.Verifier {
	return s.service
}

// SweepExpired é a tarefa periódica de limpeza da blacklist.
func (s *AuthSlice) SweepExpired(ctx context.Context) error {
	_, err := s.service.SweepExpired(ctx)
	return err
}

func (s *AuthSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
