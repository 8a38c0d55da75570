package profile

import (
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/profile/application"
	"github.com/mateusmacedo/van-bff/internal/profile/infrastructure"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type ProfileSlice struct {
	httpHandler *infrastructure.ProfileHTTPHandler
}

func NewProfileSlice(
	db *gorm.DB,
	users domain.UserRepository,
	addresses domain.AddressRepository,
	stops domain.StopRepository,
	verifier guard.Verifier,
	logger pkgApp.AppLogger,
) *ProfileSlice {
	service := application.NewService(db, users, addresses, stops, logger)
	return &ProfileSlice{
		httpHandler: infrastructure.NewProfileHTTPHandler(service, verifier, logger),
	}
}

func (s *ProfileSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
