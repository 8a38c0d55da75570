package application

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type Service struct {
	db        *gorm.DB
	users     domain.UserRepository
	addresses domain.AddressRepository
	eventBus  domain.EventBus
	logger    pkgApp.AppLogger
}

func NewService(db *gorm.DB, users domain.UserRepository, addresses domain.AddressRepository, eventBus domain.EventBus, logger pkgApp.AppLogger) *Service {
	return &Service{db: db, users: users, addresses: addresses, eventBus: eventBus, logger: logger}
}

// List filtra por tipo quando userType não é vazio.
func (s *Service) List(ctx context.Context, userType string) ([]domain.User, error) {
	switch userType {
	case "", domain.UserTypePassenger, domain.UserTypeDriver, domain.UserTypeAdmin:
	default:
		return nil, apperr.Validation("Tipo de usuário inválido")
	}
	return s.users.List(ctx, nil, userType)
}

func (s *Service) Get(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.Get(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addresses.FindByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	user.Addresses = addresses
	return user, nil
}

// Delete apaga paradas, endereços e o usuário em uma única transação.
func (s *Service) Delete(ctx context.Context, userID, actorID uint) error {
	if userID == actorID {
		return apperr.Validation("Não é possível remover o próprio usuário")
	}

	var removed *domain.User
	err := infrastructure.RunInTx(ctx, s.db, nil, func(tx *gorm.DB) error {
		user, err := s.users.Get(ctx, tx, userID)
		if err != nil {
			return err
		}
		removed = user
		return s.users.DeleteCascade(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, s.logger, "user deleted", map[string]interface{}{
		"user_id":  userID,
		"actor_id": actorID,
	})
	event := domain.NewNotificationEvent(domain.EventUserDeleted, domain.Notification{
		UserID:     removed.UserID,
		Email:      removed.Email,
		Message:    "Conta removida",
		Attributes: map[string]string{"actor_id": strconv.FormatUint(uint64(actorID), 10)},
	})
	if err := s.eventBus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, s.logger, "error publishing event", err, map[string]interface{}{
			"event_name": domain.EventUserDeleted,
		})
	}
	return nil
}
