package infrastructure

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/van-bff/internal/config"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

// OpenDatabase conecta no postgres e, se configurado, roda as migrações.
func OpenDatabase(cfg config.DatabaseConfig, logger application.AppLogger) (*gorm.DB, error) {
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info(context.Background(), "database migrated", nil)
	}
	return db, nil
}

// Migrate cria ou atualiza as cinco tabelas do serviço.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Address{},
		&domain.Trip{},
		&domain.Stop{},
		&domain.TokenBlacklist{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// RunInTx executa fn dentro de tx quando já existe uma transação; caso contrário
// abre uma nova em db, com commit se fn devolver nil e rollback em erro ou panic.
func RunInTx(ctx context.Context, db *gorm.DB, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}
