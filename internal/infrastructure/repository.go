package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/van-bff/pkg/application"
)

// gormRepository implementa domain.Repository[T] para qualquer entidade com
// chave primária numérica. Os repositórios específicos o embutem.
type gormRepository[T any] struct {
	db         *gorm.DB
	logger     application.AppLogger
	entity     string
	primaryKey string
	notFound   func() error
}

func newGormRepository[T any](db *gorm.DB, logger application.AppLogger, entity, primaryKey string, notFound func() error) *gormRepository[T] {
	return &gormRepository[T]{
		db:         db,
		logger:     logger,
		entity:     entity,
		primaryKey: primaryKey,
		notFound:   notFound,
	}
}

// conn devolve a transação em curso ou a conexão padrão, já com o contexto.
func (r *gormRepository[T]) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *gormRepository[T]) byID(id uint) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: r.primaryKey}, Value: id}
}

func (r *gormRepository[T]) fail(ctx context.Context, op string, err error, fields map[string]interface{}) error {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["entity"] = r.entity
	application.LogError(ctx, r.logger, "failed to "+op+" "+r.entity, err, fields)
	return fmt.Errorf("%s %s: %w", op, r.entity, err)
}

func (r *gormRepository[T]) Get(ctx context.Context, tx *gorm.DB, id uint) (*T, error) {
	var entity T
	err := r.conn(ctx, tx).Where(r.byID(id)).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.notFound()
	}
	if err != nil {
		return nil, r.fail(ctx, "get", err, map[string]interface{}{"id": id})
	}
	return &entity, nil
}

func (r *gormRepository[T]) Create(ctx context.Context, tx *gorm.DB, entity *T) error {
	if err := r.conn(ctx, tx).Create(entity).Error; err != nil {
		return r.fail(ctx, "create", err, nil)
	}
	r.logger.Debug(ctx, r.entity+" created", nil)
	return nil
}

// Update grava todas as colunas da entidade; associações carregadas são ignoradas.
func (r *gormRepository[T]) Update(ctx context.Context, tx *gorm.DB, entity *T) error {
	if err := r.conn(ctx, tx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return r.fail(ctx, "update", err, nil)
	}
	r.logger.Debug(ctx, r.entity+" updated", nil)
	return nil
}

func (r *gormRepository[T]) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := r.conn(ctx, tx).Where(r.byID(id)).Delete(new(T))
	if result.Error != nil {
		return r.fail(ctx, "delete", result.Error, map[string]interface{}{"id": id})
	}
	if result.RowsAffected == 0 {
		return r.notFound()
	}
	r.logger.Debug(ctx, r.entity+" deleted", map[string]interface{}{"id": id})
	return nil
}

// FindBy filtra por igualdade em uma coluna. field vem do código, nunca do cliente.
func (r *gormRepository[T]) FindBy(ctx context.Context, tx *gorm.DB, field string, value interface{}) ([]T, error) {
	var entities []T
	err := r.conn(ctx, tx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Order(r.primaryKey).
		Find(&entities).Error
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"field": field})
	}
	return entities, nil
}

func (r *gormRepository[T]) FindOneBy(ctx context.Context, tx *gorm.DB, field string, value interface{}) (*T, error) {
	var entity T
	err := r.conn(ctx, tx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.notFound()
	}
	if err != nil {
		return nil, r.fail(ctx, "find", err, map[string]interface{}{"field": field})
	}
	return &entity, nil
}

// optional converte "não encontrado" em (nil, nil) para os finders opcionais.
func optional[T any](entity *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}
