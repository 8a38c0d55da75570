package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository é o acesso genérico a uma entidade. tx é o handle da transação em
// curso; nil usa a conexão padrão do repositório.
type Repository[T any] interface {
	Get(ctx context.Context, tx *gorm.DB, id uint) (*T, error)
	Create(ctx context.Context, tx *gorm.DB, entity *T) error
	Update(ctx context.Context, tx *gorm.DB, entity *T) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	FindBy(ctx context.Context, tx *gorm.DB, field string, value interface{}) ([]T, error)
	FindOneBy(ctx context.Context, tx *gorm.DB, field string, value interface{}) (*T, error)
}

// Os finders "ByX" de registro único devolvem (nil, nil) quando nada é encontrado.

type UserRepository interface {
	Repository[User]
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	List(ctx context.Context, tx *gorm.DB, userType string) ([]User, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	// DeleteCascade remove paradas, endereços e o usuário. Deve rodar em transação.
	DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) error
}

type AddressRepository interface {
	Repository[Address]
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]Address, error)
	FindByUserAndType(ctx context.Context, tx *gorm.DB, userID uint, addressType string) (*Address, error)
}

type TripRepository interface {
	Repository[Trip]
	// FindBetween devolve as viagens com trip_date em [start, end).
	FindBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]Trip, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, trips []Trip) error
	// CountStops devolve a quantidade de paradas por trip_id.
	CountStops(ctx context.Context, tx *gorm.DB, tripIDs []uint) (map[uint]int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
}

type StopRepository interface {
	Repository[Stop]
	FindByUserAndTrip(ctx context.Context, tx *gorm.DB, userID, tripID uint) (*Stop, error)
	FindByTrip(ctx context.Context, tx *gorm.DB, tripID uint) ([]Stop, error)
	FindByUserBetween(ctx context.Context, tx *gorm.DB, userID uint, start, end time.Time) ([]Stop, error)
	// CountByTrip conta as paradas da viagem, ignorando as do usuário excludeUserID (0 = nenhum).
	CountByTrip(ctx context.Context, tx *gorm.DB, tripID, excludeUserID uint) (int64, error)
	// DeleteByUserBetweenExcept apaga as paradas do usuário no intervalo cujas
	// viagens não estão em keepTripIDs. Devolve quantas linhas saíram.
	DeleteByUserBetweenExcept(ctx context.Context, tx *gorm.DB, userID uint, start, end time.Time, keepTripIDs []uint) (int64, error)
	DeleteByAddress(ctx context.Context, tx *gorm.DB, addressID uint) error
}

type TokenBlacklistRepository interface {
	Exists(ctx context.Context, tx *gorm.DB, token string) (bool, error)
	// Revoke grava o token; repetir o mesmo token não é erro.
	Revoke(ctx context.Context, tx *gorm.DB, entry *TokenBlacklist) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}
