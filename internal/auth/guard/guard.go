// Package guard autentica as requisições HTTP pelo bearer token e expõe o
// usuário autenticado (Principal) para os handlers dos slices.
package guard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type Principal struct {
	UserID        uint
	UserType      string
	ResetPassword bool
	Token         string
	ExpiresAt     time.Time
}

func (p Principal) IsAdmin() bool {
	return p.UserType == domain.UserTypeAdmin
}

// Verifier valida assinatura, expiração e blacklist de um token bruto.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Principal, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type options struct {
	allowPasswordReset bool
}

type Option func(*options)

// AllowPasswordReset libera tokens com reset_password=true. Só a rota de
// redefinição de senha usa.
func AllowPasswordReset() Option {
	return func(o *options) { o.allowPasswordReset = true }
}

// Authenticate exige um bearer token válido e fora da blacklist.
func Authenticate(verifier Verifier, logger application.AppLogger, opts ...Option) func(http.Handler) http.Handler {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				httpapi.Error(r.Context(), w, logger, apperr.ErrTokenMissing())
				return
			}

			principal, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				httpapi.Error(r.Context(), w, logger, err)
				return
			}
			if principal.ResetPassword && !cfg.allowPasswordReset {
				httpapi.Error(r.Context(), w, logger, apperr.ErrResetRequired())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireUserType restringe a rota aos tipos de usuário informados. Deve vir
// depois de Authenticate.
func RequireUserType(logger application.AppLogger, userTypes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				httpapi.Error(r.Context(), w, logger, apperr.ErrTokenMissing())
				return
			}
			for _, t := range userTypes {
				if principal.UserType == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpapi.Error(r.Context(), w, logger, apperr.ErrForbidden())
		})
	}
}

func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
