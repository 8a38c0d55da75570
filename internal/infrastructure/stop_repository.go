package infrastructure

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type gormStopRepository struct {
	*gormRepository[domain.Stop]
}

func NewStopRepository(db *gorm.DB, logger application.AppLogger) domain.StopRepository {
	return &gormStopRepository{
		gormRepository: newGormRepository[domain.Stop](db, logger, "stop", "stop_id", func() error {
			return apperr.ErrStopNotFound()
		}),
	}
}

func (r *gormStopRepository) FindByUserAndTrip(ctx context.Context, tx *gorm.DB, userID, tripID uint) (*domain.Stop, error) {
	var stop domain.Stop
	err := r.conn(ctx, tx).
		Where("user_id = ? AND trip_id = ?", userID, tripID).
		Order("stop_id").
		First(&stop).Error
	found, err := optional(&stop, err)
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"user_id": userID, "trip_id": tripID})
	}
	return found, nil
}

func (r *gormStopRepository) FindByTrip(ctx context.Context, tx *gorm.DB, tripID uint) ([]domain.Stop, error) {
	var stops []domain.Stop
	err := r.conn(ctx, tx).
		Preload("Address").
		Where("trip_id = ?", tripID).
		Order("stop_id").
		Find(&stops).Error
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"trip_id": tripID})
	}
	return stops, nil
}

func (r *gormStopRepository) FindByUserBetween(ctx context.Context, tx *gorm.DB, userID uint, start, end time.Time) ([]domain.Stop, error) {
	var stops []domain.Stop
	err := r.conn(ctx, tx).
		Preload("Address").
		Where("user_id = ? AND stop_date >= ? AND stop_date < ?", userID, start.UTC(), end.UTC()).
		Order("stop_date, stop_id").
		Find(&stops).Error
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"user_id": userID})
	}
	return stops, nil
}

func (r *gormStopRepository) CountByTrip(ctx context.Context, tx *gorm.DB, tripID, excludeUserID uint) (int64, error) {
	query := r.conn(ctx, tx).Model(&domain.Stop{}).Where("trip_id = ?", tripID)
	if excludeUserID != 0 {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, r.fail(ctx, "count", err, map[string]interface{}{"trip_id": tripID})
	}
	return total, nil
}

func (r *gormStopRepository) DeleteByUserBetweenExcept(ctx context.Context, tx *gorm.DB, userID uint, start, end time.Time, keepTripIDs []uint) (int64, error) {
	query := r.conn(ctx, tx).
		Where("user_id = ? AND stop_date >= ? AND stop_date < ?", userID, start.UTC(), end.UTC())
	if len(keepTripIDs) > 0 {
		query = query.Where("trip_id NOT IN ?", keepTripIDs)
	}
	result := query.Delete(&domain.Stop{})
	if result.Error != nil {
		return 0, r.fail(ctx, "delete", result.Error, map[string]interface{}{"user_id": userID})
	}
	return result.RowsAffected, nil
}

func (r *gormStopRepository) DeleteByAddress(ctx context.Context, tx *gorm.DB, addressID uint) error {
	if err := r.conn(ctx, tx).Where("address_id = ?", addressID).Delete(&domain.Stop{}).Error; err != nil {
		return r.fail(ctx, "delete", err, map[string]interface{}{"address_id": addressID})
	}
	return nil
}
