package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type gormTokenBlacklistRepository struct {
	*gormRepository[domain.TokenBlacklist]
}

func NewTokenBlacklistRepository(db *gorm.DB, logger application.AppLogger) domain.TokenBlacklistRepository {
	return &gormTokenBlacklistRepository{
		gormRepository: newGormRepository[domain.TokenBlacklist](db, logger, "token_blacklist", "id", func() error {
			return errors.New("token not blacklisted")
		}),
	}
}

func (r *gormTokenBlacklistRepository) Exists(ctx context.Context, tx *gorm.DB, token string) (bool, error) {
	var total int64
	err := r.conn(ctx, tx).Model(&domain.TokenBlacklist{}).Where("token = ?", token).Count(&total).Error
	if err != nil {
		return false, r.fail(ctx, "check", err, nil)
	}
	return total > 0, nil
}

func (r *gormTokenBlacklistRepository) Revoke(ctx context.Context, tx *gorm.DB, entry *domain.TokenBlacklist) error {
	entry.ExpiresAt = entry.ExpiresAt.UTC()
	err := r.conn(ctx, tx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(entry).Error
	if err != nil {
		return r.fail(ctx, "revoke", err, nil)
	}
	return nil
}

func (r *gormTokenBlacklistRepository) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	result := r.conn(ctx, tx).Where("expires_at <= ?", now.UTC()).Delete(&domain.TokenBlacklist{})
	if result.Error != nil {
		return 0, r.fail(ctx, "sweep", result.Error, nil)
	}
	return result.RowsAffected, nil
}
