package application

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC))
	issuer := NewTokenIssuer("segredo", time.Hour, clk)

	raw, expiresAt, err := issuer.Issue(&domain.User{UserID: 7, UserType: domain.UserTypeDriver, ResetPassword: true})
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, domain.UserTypeDriver, claims.UserType)
	assert.True(t, claims.ResetPassword)

	clk.Advance(time.Hour + time.Second)
	_, err = issuer.Parse(raw)
	assert.True(t, errors.Is(err, apperr.ErrTokenExpired()))
}

func TestTokenIssuerRejectsForeignSignatures(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC))
	issuer := NewTokenIssuer("segredo", time.Hour, clk)
	other := NewTokenIssuer("outro", time.Hour, clk)

	raw, _, err := other.Issue(&domain.User{UserID: 1})
	require.NoError(t, err)
	_, err = issuer.Parse(raw)
	assert.True(t, errors.Is(err, apperr.ErrTokenInvalid(nil)))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(none)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
