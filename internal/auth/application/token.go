package application

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
)

// Claims é o conteúdo do JWT: {user_id, user_type, reset_password, exp}.
type Claims struct {
	UserID        uint   `json:"user_id"`
	UserType      string `json:"user_type"`
	ResetPassword bool   `json:"reset_password"`
	jwt.RegisteredClaims
}

// TokenIssuer emite e valida tokens HS256.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (i *TokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		UserID:        user.UserID,
		UserType:      user.UserType,
		ResetPassword: user.ResetPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, apperr.Internal(err)
	}
	return signed, expiresAt, nil
}

func (i *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperr.ErrTokenExpired()
	}
	if err != nil {
		return nil, apperr.ErrTokenInvalid(err)
	}
	if claims.UserID == 0 {
		return nil, apperr.ErrTokenInvalid(errors.New("missing user_id"))
	}
	return claims, nil
}
