package user

import (
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/user/application"
	"github.com/mateusmacedo/van-bff/internal/user/infrastructure"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type UserSlice struct {
	httpHandler *infrastructure.UserHTTPHandler
}

func NewUserSlice(
	db *gorm.DB,
	users domain.UserRepository,
	addresses domain.AddressRepository,
	eventBus domain.EventBus,
	verifier guard.Verifier,
	logger pkgApp.AppLogger,
) *UserSlice {
	service := application.NewService(db, users, addresses, eventBus, logger)
	return &UserSlice{
		httpHandler: infrastructure.NewUserHTTPHandler(service, verifier, logger),
	}
}

func (s *UserSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
