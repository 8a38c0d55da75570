package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/testsupport"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testsupport.NewDB(t)
	logger := pkgApp.NopLogger{}
	return NewService(
		db,
		infrastructure.NewUserRepository(db, logger),
		infrastructure.NewAddressRepository(db, logger),
		infrastructure.NewStopRepository(db, logger),
		logger,
	), db
}

func TestUpdateMergesOnlyInformedFields(t *testing.T) {
	service, db := newService(t)
	user := testsupport.CreateUser(t, db, "ana@example.com")
	birthdate := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)

	updated, err := service.Update(context.Background(), user.UserID, UpdateInput{
		Phone:     "19999990000",
		Birthdate: &birthdate,
	})
	require.NoError(t, err)

	assert.Equal(t, user.Name, updated.Name)
	assert.Equal(t, "19999990000", updated.Phone)
	require.NotNil(t, updated.Birthdate)
	assert.Equal(t, "1990-04-01", updated.Birthdate.Format(domain.DateLayout))
}

func TestUpdateUpsertsAddressByType(t *testing.T) {
	service, db := newService(t)
	user := testsupport.CreateUser(t, db, "ana@example.com")
	ctx := context.Background()

	created, err := service.Update(ctx, user.UserID, UpdateInput{
		Address: &AddressInput{Type: "casa", Street: "Rua A", City: "Campinas", State: "sp"},
	})
	require.NoError(t, err)
	require.Len(t, created.Addresses, 1)
	assert.Equal(t, "SP", created.Addresses[0].State)

	updated, err := service.Update(ctx, user.UserID, UpdateInput{
		Address: &AddressInput{Type: "casa", Street: "Rua B"},
	})
	require.NoError(t, err)
	require.Len(t, updated.Addresses, 1)
	assert.Equal(t, created.Addresses[0].AddressID, updated.Addresses[0].AddressID)
	assert.Equal(t, "Rua B", updated.Addresses[0].Street)
	assert.Equal(t, "Campinas", updated.Addresses[0].City)

	second, err := service.Update(ctx, user.UserID, UpdateInput{
		Address: &AddressInput{Type: "trabalho", Street: "Av. Central", City: "Campinas"},
	})
	require.NoError(t, err)
	assert.Len(t, second.Addresses, 2)
}

func TestUpdateRejectsForeignAddressAndRollsBack(t *testing.T) {
	service, db := newService(t)
	ana := testsupport.CreateUser(t, db, "ana@example.com")
	bia := testsupport.CreateUser(t, db, "bia@example.com")
	biaHome := testsupport.CreateAddress(t, db, bia.UserID, "casa")

	_, err := service.Update(context.Background(), ana.UserID, UpdateInput{
		Name:    "Ana Maria",
		Address: &AddressInput{AddressID: biaHome.AddressID, Street: "Invadida"},
	})
	assert.True(t, errors.Is(err, apperr.ErrAddressNotOwned()))

	reloaded, err := service.Get(context.Background(), ana.UserID)
	require.NoError(t, err)
	assert.Equal(t, ana.Name, reloaded.Name, "a mudança de nome volta junto com a transação")
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	service, db := newService(t)
	ana := testsupport.CreateUser(t, db, "ana@example.com")
	testsupport.CreateUser(t, db, "bia@example.com")

	_, err := service.Update(context.Background(), ana.UserID, UpdateInput{Email: "BIA@example.com"})
	assert.True(t, errors.Is(err, apperr.ErrEmailTaken()))
}

func TestDeleteAddressCascadesStops(t *testing.T) {
	service, db := newService(t)
	loc := testsupport.Location(t)
	ana := testsupport.CreateUser(t, db, "ana@example.com")
	bia := testsupport.CreateUser(t, db, "bia@example.com")
	home := testsupport.CreateAddress(t, db, ana.UserID, "casa")
	trip := testsupport.CreateTrip(t, db, time.Date(2026, 5, 10, 0, 0, 0, 0, loc), domain.DirectionIda, loc)
	testsupport.CreateStop(t, db, ana.UserID, home.AddressID, trip)

	err := service.DeleteAddress(context.Background(), bia.UserID, home.AddressID)
	assert.True(t, errors.Is(err, apperr.ErrAddressNotFound()))

	require.NoError(t, service.DeleteAddress(context.Background(), ana.UserID, home.AddressID))
	assert.Zero(t, testsupport.CountRows(t, db, &domain.Stop{}, ""))
	assert.Zero(t, testsupport.CountRows(t, db, &domain.Address{}, ""))
}

func TestAddAddressRequiresExistingUser(t *testing.T) {
	service, _ := newService(t)
	_, err := service.AddAddress(context.Background(), 99, AddressInput{Type: "casa", Street: "Rua", City: "Campinas"})
	assert.True(t, errors.Is(err, apperr.ErrUserNotFound()))
}
