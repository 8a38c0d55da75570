package infrastructure

import (
	"context"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type gormAddressRepository struct {
	*gormRepository[domain.Address]
}

func NewAddressRepository(db *gorm.DB, logger application.AppLogger) domain.AddressRepository {
	return &gormAddressRepository{
		gormRepository: newGormRepository[domain.Address](db, logger, "address", "address_id", func() error {
			return apperr.ErrAddressNotFound()
		}),
	}
}

func (r *gormAddressRepository) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]domain.Address, error) {
	return r.FindBy(ctx, tx, "user_id", userID)
}

func (r *gormAddressRepository) FindByUserAndType(ctx context.Context, tx *gorm.DB, userID uint, addressType string) (*domain.Address, error) {
	var address domain.Address
	err := r.conn(ctx, tx).
		Where("user_id = ? AND type = ?", userID, addressType).
		Order("address_id").
		First(&address).Error
	found, err := optional(&address, err)
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"user_id": userID, "type": addressType})
	}
	return found, nil
}
