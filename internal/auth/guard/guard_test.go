package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type stubVerifier map[string]Principal

func (s stubVerifier) Verify(_ context.Context, raw string) (Principal, error) {
	p, ok := s[raw]
	if !ok {
		return Principal{}, apperr.ErrTokenRevoked()
	}
	return p, nil
}

var verifier = stubVerifier{
	"passenger": {UserID: 1, UserType: domain.UserTypePassenger},
	"admin":     {UserID: 2, UserType: domain.UserTypeAdmin},
	"reset":     {UserID: 3, UserType: domain.UserTypePassenger, ResetPassword: true},
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	logger := application.NopLogger{}
	protected := Authenticate(verifier, logger)(okHandler())
	resetRoute := Authenticate(verifier, logger, AllowPasswordReset())(okHandler())

	assert.Equal(t, http.StatusUnauthorized, serve(protected, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(protected, "revogado").Code)
	assert.Equal(t, http.StatusOK, serve(protected, "passenger").Code)
	assert.Equal(t, http.StatusForbidden, serve(protected, "reset").Code)
	assert.Equal(t, http.StatusOK, serve(resetRoute, "reset").Code)
}

func TestRequireUserType(t *testing.T) {
	logger := application.NopLogger{}
	adminOnly := Authenticate(verifier, logger)(RequireUserType(logger, domain.UserTypeAdmin)(okHandler()))

	assert.Equal(t, http.StatusForbidden, serve(adminOnly, "passenger").Code)
	assert.Equal(t, http.StatusOK, serve(adminOnly, "admin").Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))
}
