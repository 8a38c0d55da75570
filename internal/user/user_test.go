package user

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	"github.com/mateusmacedo/van-bff/internal/testsupport"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
	pkgInfra "github.com/mateusmacedo/van-bff/pkg/infrastructure"
)

type tokens map[string]guard.Principal

func (s tokens) Verify(_ context.Context, raw string) (guard.Principal, error) {
	if p, ok := s[raw]; ok {
		return p, nil
	}
	return guard.Principal{}, apperr.ErrTokenInvalid(nil)
}

type env struct {
	server  http.Handler
	db      *gorm.DB
	admin   *domain.User
	driver  *domain.User
	rider   *domain.User
	deleted chan domain.Notification
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testsupport.NewDB(t)
	logger := pkgApp.NopLogger{}

	admin := testsupport.CreateUser(t, db, "admin@example.com")
	driver := testsupport.CreateUser(t, db, "driver@example.com")
	rider := testsupport.CreateUser(t, db, "rider@example.com")
	require.NoError(t, db.Model(admin).Update("user_type", domain.UserTypeAdmin).Error)
	require.NoError(t, db.Model(driver).Update("user_type", domain.UserTypeDriver).Error)

	deleted := make(chan domain.Notification, 1)
	bus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Notification], domain.Notification](logger)
	bus.RegisterHandler(domain.EventUserDeleted, pkgApp.EventHandlerFunc[pkgDomain.Event[domain.Notification], domain.Notification](
		func(_ context.Context, event pkgDomain.Event[domain.Notification]) error {
			deleted <- event.Payload()
			return nil
		}))

	principals := tokens{
		"admin":  {UserID: admin.UserID, UserType: domain.UserTypeAdmin},
		"driver": {UserID: driver.UserID, UserType: domain.UserTypeDriver},
		"rider":  {UserID: rider.UserID, UserType: domain.UserTypePassenger},
	}

	slice := NewUserSlice(db,
		infrastructure.NewUserRepository(db, logger),
		infrastructure.NewAddressRepository(db, logger),
		bus, principals, logger)

	router := httpapi.NewRouter(httpapi.RouterConfig{}, logger, metrics.New(), nil)
	slice.RegisterRoutes(router)
	return env{server: router, db: db, admin: admin, driver: driver, rider: rider, deleted: deleted}
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusForbidden, do(e.server, http.MethodGet, "/api/users", "rider").Code)

	rec := do(e.server, http.MethodGet, "/api/users?user_type=passenger", "driver")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, e.rider.UserID, body.Data[0].UserID)
	assert.NotContains(t, rec.Body.String(), "password")

	assert.Equal(t, http.StatusBadRequest, do(e.server, http.MethodGet, "/api/users?user_type=pilot", "admin").Code)
}

func TestGetUserIncludesAddresses(t *testing.T) {
	e := newEnv(t)
	testsupport.CreateAddress(t, e.db, e.rider.UserID, "casa")

	rec := do(e.server, http.MethodGet, fmt.Sprintf("/api/users/%d", e.rider.UserID), "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data domain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data.Addresses, 1)

	assert.Equal(t, http.StatusNotFound, do(e.server, http.MethodGet, "/api/users/999", "admin").Code)
}

func TestDeleteUserCascades(t *testing.T) {
	e := newEnv(t)
	loc := testsupport.Location(t)
	home := testsupport.CreateAddress(t, e.db, e.rider.UserID, "casa")
	trip := testsupport.CreateTrip(t, e.db, time.Date(2026, 5, 12, 0, 0, 0, 0, loc), domain.DirectionIda, loc)
	testsupport.CreateStop(t, e.db, e.rider.UserID, home.AddressID, trip)
	path := fmt.Sprintf("/api/users/%d", e.rider.UserID)

	assert.Equal(t, http.StatusForbidden, do(e.server, http.MethodDelete, path, "driver").Code)
	assert.Equal(t, http.StatusBadRequest, do(e.server, http.MethodDelete, fmt.Sprintf("/api/users/%d", e.admin.UserID), "admin").Code)

	rec := do(e.server, http.MethodDelete, path, "admin")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Zero(t, testsupport.CountRows(t, e.db, &domain.User{}, "user_id = ?", e.rider.UserID))
	assert.Zero(t, testsupport.CountRows(t, e.db, &domain.Address{}, "user_id = ?", e.rider.UserID))
	assert.Zero(t, testsupport.CountRows(t, e.db, &domain.Stop{}, ""))
	assert.Equal(t, int64(1), testsupport.CountRows(t, e.db, &domain.Trip{}, ""))

	require.Len(t, e.deleted, 1)
	assert.Equal(t, "rider@example.com", (<-e.deleted).Email)

	assert.Equal(t, http.StatusNotFound, do(e.server, http.MethodDelete, path, "admin").Code)
}
