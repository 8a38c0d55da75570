package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type gormUserRepository struct {
	*gormRepository[domain.User]
}

func NewUserRepository(db *gorm.DB, logger application.AppLogger) domain.UserRepository {
	return &gormUserRepository{
		gormRepository: newGormRepository[domain.User](db, logger, "user", "user_id", func() error {
			return apperr.ErrUserNotFound()
		}),
	}
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	found, err := optional(&user, r.conn(ctx, tx).Where("email = ?", email).First(&user).Error)
	if err != nil {
		return nil, r.fail(ctx, "find", err, nil)
	}
	return found, nil
}

// List devolve os usuários ordenados por id; userType vazio não filtra.
func (r *gormUserRepository) List(ctx context.Context, tx *gorm.DB, userType string) ([]domain.User, error) {
	query := r.conn(ctx, tx).Order("user_id")
	if userType != "" {
		query = query.Where("user_type = ?", userType)
	}
	var users []domain.User
	if err := query.Find(&users).Error; err != nil {
		return nil, r.fail(ctx, "list", err, map[string]interface{}{"user_type": userType})
	}
	return users, nil
}

func (r *gormUserRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.conn(ctx, tx).Model(&domain.User{}).Where("user_id = ?", id).Updates(fields)
	if result.Error != nil {
		return r.fail(ctx, "update", result.Error, map[string]interface{}{"id": id})
	}
	if result.RowsAffected == 0 {
		return apperr.ErrUserNotFound()
	}
	return nil
}

func (r *gormUserRepository) DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) error {
	if tx == nil {
		return errors.New("user cascade delete requires a transaction")
	}

	ownAddresses := r.conn(ctx, tx).Model(&domain.Address{}).Select("address_id").Where("user_id = ?", id)
	if err := r.conn(ctx, tx).
		Where("user_id = ? OR address_id IN (?)", id, ownAddresses).
		Delete(&domain.Stop{}).Error; err != nil {
		return r.fail(ctx, "delete stops of", err, map[string]interface{}{"id": id})
	}
	if err := r.conn(ctx, tx).Where("user_id = ?", id).Delete(&domain.Address{}).Error; err != nil {
		return r.fail(ctx, "delete addresses of", err, map[string]interface{}{"id": id})
	}
	return r.Delete(ctx, tx, id)
}
