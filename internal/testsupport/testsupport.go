// Package testsupport monta um banco sqlite em memória com o schema do serviço
// e oferece fixtures para os testes dos slices.
package testsupport

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
)

// NewDB abre um banco isolado por teste. Uma única conexão evita os bloqueios
// de tabela do cache compartilhado do sqlite.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infrastructure.Migrate(db))
	return db
}

func Location(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

// CreateUser grava um passageiro com o e-mail informado.
func CreateUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:     "Passageiro " + email,
		Email:    email,
		Password: "hash",
		UserType: domain.UserTypePassenger,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateAddress(t *testing.T, db *gorm.DB, userID uint, addressType string) *domain.Address {
	t.Helper()
	address := &domain.Address{
		UserID: userID,
		Type:   addressType,
		Street: "Rua das Flores",
		Number: "100",
		City:   "Campinas",
		State:  "SP",
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

// CreateTrip grava uma viagem no início do dia de day, em UTC.
func CreateTrip(t *testing.T, db *gorm.DB, day time.Time, direction string, loc *time.Location) *domain.Trip {
	t.Helper()
	start, _ := domain.DayWindow(day, loc)
	trip := &domain.Trip{TripDate: start.UTC(), Direction: direction}
	require.NoError(t, db.Create(trip).Error)
	return trip
}

func CreateStop(t *testing.T, db *gorm.DB, userID, addressID uint, trip *domain.Trip) *domain.Stop {
	t.Helper()
	stop := &domain.Stop{
		UserID:    userID,
		AddressID: addressID,
		TripID:    trip.TripID,
		StopDate:  trip.TripDate,
	}
	require.NoError(t, db.Create(stop).Error)
	return stop
}

func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var total int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&total).Error)
	return total
}
