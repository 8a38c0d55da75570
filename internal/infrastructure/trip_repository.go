package infrastructure

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type gormTripRepository struct {
	*gormRepository[domain.Trip]
}

func NewTripRepository(db *gorm.DB, logger application.AppLogger) domain.TripRepository {
	return &gormTripRepository{
		gormRepository: newGormRepository[domain.Trip](db, logger, "trip", "trip_id", func() error {
			return apperr.ErrTripNotFound()
		}),
	}
}

// As datas são comparadas em UTC, o mesmo fuso em que são gravadas.
func (r *gormTripRepository) FindBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]domain.Trip, error) {
	var trips []domain.Trip
	err := r.conn(ctx, tx).
		Where("trip_date >= ? AND trip_date < ?", start.UTC(), end.UTC()).
		Order("trip_date, trip_id").
		Find(&trips).Error
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"start": start, "end": end})
	}
	return trips, nil
}

func (r *gormTripRepository) CreateBatch(ctx context.Context, tx *gorm.DB, trips []domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}
	if err := r.conn(ctx, tx).Create(&trips).Error; err != nil {
		return r.fail(ctx, "create", err, map[string]interface{}{"count": len(trips)})
	}
	return nil
}

func (r *gormTripRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.conn(ctx, tx).Model(&domain.Trip{}).Where("trip_id = ?", id).Updates(fields)
	if result.Error != nil {
		return r.fail(ctx, "update", result.Error, map[string]interface{}{"id": id})
	}
	if result.RowsAffected == 0 {
		return apperr.ErrTripNotFound()
	}
	return nil
}

func (r *gormTripRepository) CountStops(ctx context.Context, tx *gorm.DB, tripIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(tripIDs))
	if len(tripIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TripID uint
		Total  int64
	}
	err := r.conn(ctx, tx).Model(&domain.Stop{}).
		Select("trip_id, count(*) AS total").
		Where("trip_id IN ?", tripIDs).
		Group("trip_id").
		Scan(&rows).Error
	if err != nil {
		return nil, r.fail(ctx, "count stops of", err, nil)
	}
	for _, row := range rows {
		counts[row.TripID] = row.Total
	}
	return counts, nil
}
