package trip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	"github.com/mateusmacedo/van-bff/internal/testsupport"
	"github.com/mateusmacedo/van-bff/internal/trip/application"
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

var principals = tokens{
	"admin":     {UserID: 1, UserType: domain.UserTypeAdmin},
	"passenger": {UserID: 2, UserType: domain.UserTypePassenger},
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db := testsupport.NewDB(t)
	loc := testsupport.Location(t)
	logger := pkgApp.NopLogger{}
	m := metrics.New()

	commandBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.CreateDailyTripsData], application.CreateDailyTripsData](logger)
	queryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindTripsByDateData], application.FindTripsByDateData, []domain.TripSummary](logger)

	slice := NewTripSlice(commandBus, queryBus, application.Dependencies{
		DB:       db,
		Trips:    infrastructure.NewTripRepository(db, logger),
		Stops:    infrastructure.NewStopRepository(db, logger),
		Users:    infrastructure.NewUserRepository(db, logger),
		EventBus: pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Notification], domain.Notification](logger),
		Clock:    clock.NewMockClock(time.Date(2026, 5, 10, 9, 0, 0, 0, loc)),
		Location: loc,
		Metrics:  m,
		Logger:   logger,
	}, principals)

	router := httpapi.NewRouter(httpapi.RouterConfig{}, logger, m, nil)
	slice.RegisterRoutes(router)
	return router
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateDailyTripsEndpoint(t *testing.T) {
	server := newServer(t)

	rec := do(server, http.MethodPost, "/api/trips/daily", "passenger", `{"date":"2026-05-11"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(server, http.MethodPost, "/api/trips/daily", "admin", `{"date":"2026-05-11"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data []domain.TripSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, domain.DirectionIda, body.Data[0].Direction)
	assert.Equal(t, int64(domain.MaxStopsPerTrip), body.Data[0].Available)

	rec = do(server, http.MethodGet, "/api/trips?date=2026-05-11", "passenger", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)

	rec = do(server, http.MethodPost, "/api/trips/daily", "admin", `{"date":"2026-05-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(apperr.CodePastDate))
}

func TestTripEndpointsValidateInput(t *testing.T) {
	server := newServer(t)

	assert.Equal(t, http.StatusBadRequest, do(server, http.MethodGet, "/api/trips?date=ontem", "passenger", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(server, http.MethodGet, "/api/trips/abc", "passenger", "").Code)
	assert.Equal(t, http.StatusNotFound, do(server, http.MethodGet, "/api/trips/42", "passenger", "").Code)
	assert.Equal(t, http.StatusForbidden, do(server, http.MethodDelete, "/api/trips/42", "passenger", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(server, http.MethodGet, "/api/trips", "desconhecido", "").Code)
}
