package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/auth/guard"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	CPF       string
	Birthdate *time.Time
	Phone     string
	UserType  string
}

// ResetCodeSender entrega o código temporário direto ao usuário. O código
// nunca entra no payload dos eventos, que podem ficar gravados no broker.
type ResetCodeSender interface {
	SendResetCode(ctx context.Context, email, code string) error
}

var errNoResetCodeSender = errors.New("reset code sender not configured")

type Dependencies struct {
	DB          *gorm.DB
	Users       domain.UserRepository
	Blacklist   domain.TokenBlacklistRepository
	Tokens      *TokenIssuer
	EventBus    domain.EventBus
	Clock       clock.Clock
	Metrics     *metrics.Metrics
	Logger      pkgApp.AppLogger
	BcryptCost  int
	AdminEmails []string
	ResetCodes  ResetCodeSender
}

// Service cobre cadastro, login, logout via blacklist e a recuperação de senha
// por código temporário.
type Service struct {
	Dependencies
	resetCode func() (string, error)
}

func NewService(deps Dependencies) *Service {
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{Dependencies: deps, resetCode: sixDigitCode}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	existing, err := s.Users.FindByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrEmailTaken()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  string(hash),
		CPF:       in.CPF,
		Birthdate: in.Birthdate,
		Phone:     in.Phone,
		UserType:  s.userTypeFor(email, in.UserType),
	}
	if err := s.Users.Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrEmailTaken()
		}
		return nil, err
	}

	pkgApp.LogInfo(ctx, s.Logger, "user registered", map[string]interface{}{
		"user_id":   user.UserID,
		"user_type": user.UserType,
	})
	s.publish(ctx, domain.EventUserRegistered, domain.Notification{
		UserID:  user.UserID,
		Email:   user.Email,
		Message: "Cadastro realizado com sucesso",
	})
	return user, nil
}

func (s *Service) userTypeFor(email, requested string) string {
	for _, admin := range s.AdminEmails {
		if normalizeEmail(admin) == email {
			return domain.UserTypeAdmin
		}
	}
	if requested == domain.UserTypeDriver {
		return domain.UserTypeDriver
	}
	return domain.UserTypePassenger
}

// Login confere a senha e devolve um token que carrega o estado de reset_password.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.Users.FindByEmail(ctx, nil, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperr.ErrInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperr.ErrInvalidCredentials()
	}

	token, _, err := s.Tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	pkgApp.LogInfo(ctx, s.Logger, "user logged in", map[string]interface{}{
		"user_id":        user.UserID,
		"reset_password": user.ResetPassword,
	})
	return token, user, nil
}

func (s *Service) Me(ctx context.Context, userID uint) (*domain.User, error) {
	return s.Users.Get(ctx, nil, userID)
}

// Logout grava o token na blacklist até a sua expiração.
func (s *Service) Logout(ctx context.Context, rawToken string, expiresAt time.Time) error {
	return s.revoke(ctx, nil, rawToken, expiresAt)
}

func (s *Service) revoke(ctx context.Context, tx *gorm.DB, rawToken string, expiresAt time.Time) error {
	if rawToken == "" {
		return apperr.ErrTokenMissing()
	}
	if !expiresAt.After(s.Clock.Now()) {
		return apperr.Validation("A expiração do token deve estar no futuro")
	}
	if err := s.Blacklist.Revoke(ctx, tx, &domain.TokenBlacklist{Token: rawToken, ExpiresAt: expiresAt}); err != nil {
		return err
	}
	s.Metrics.IncTokensRevoked()
	return nil
}

func (s *Service) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	return s.Blacklist.Exists(ctx, nil, rawToken)
}

// Verify implementa guard.Verifier: assinatura, expiração e blacklist.
func (s *Service) Verify(ctx context.Context, rawToken string) (guard.Principal, error) {
	claims, err := s.Tokens.Parse(rawToken)
	if err != nil {
		return guard.Principal{}, err
	}
	revoked, err := s.IsRevoked(ctx, rawToken)
	if err != nil {
		return guard.Principal{}, err
	}
	if revoked {
		return guard.Principal{}, apperr.ErrTokenRevoked()
	}
	return guard.Principal{
		UserID:        claims.UserID,
		UserType:      claims.UserType,
		ResetPassword: claims.ResetPassword,
		Token:         rawToken,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}

// ForgotPassword troca a senha por um código de 6 dígitos, marca
// reset_password e envia o código. Se o envio falhar nada é gravado.
// E-mails desconhecidos não geram erro.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Users.FindByEmail(ctx, nil, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		s.Logger.Debug(ctx, "password reset requested for unknown email", nil)
		return nil
	}

	code, err := s.resetCode()
	if err != nil {
		return apperr.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.BcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}

	if s.ResetCodes == nil {
		return apperr.Internal(errNoResetCodeSender)
	}

	err = infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		if err := s.Users.UpdateFields(ctx, tx, user.UserID, map[string]interface{}{
			"password":       string(hash),
			"reset_password": true,
		}); err != nil {
			return err
		}
		if err := s.ResetCodes.SendResetCode(ctx, user.Email, code); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, s.Logger, "password reset requested", map[string]interface{}{"user_id": user.UserID})
	s.publish(ctx, domain.EventPasswordResetRequested, domain.Notification{
		UserID:  user.UserID,
		Email:   user.Email,
		Message: "Código de redefinição enviado",
	})
	return nil
}

// ResetPassword grava a nova senha, limpa reset_password, revoga o token em uso
// e devolve um novo token, tudo na mesma transação.
func (s *Service) ResetPassword(ctx context.Context, userID uint, rawToken string, expiresAt time.Time, newPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.BcryptCost)
	if err != nil {
		return "", apperr.Internal(err)
	}

	var user *domain.User
	err = infrastructure.RunInTx(ctx, s.DB, nil, func(tx *gorm.DB) error {
		if err := s.Users.UpdateFields(ctx, tx, userID, map[string]interface{}{
			"password":       string(hash),
			"reset_password": false,
		}); err != nil {
			return err
		}
		if err := s.revoke(ctx, tx, rawToken, expiresAt); err != nil {
			return err
		}
		updated, err := s.Users.Get(ctx, tx, userID)
		user = updated
		return err
	})
	if err != nil {
		return "", err
	}

	token, _, err := s.Tokens.Issue(user)
	if err != nil {
		return "", err
	}
	pkgApp.LogInfo(ctx, s.Logger, "password reset completed", map[string]interface{}{"user_id": userID})
	return token, nil
}

// SweepExpired remove da blacklist os tokens já expirados.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.Blacklist.DeleteExpired(ctx, nil, s.Clock.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.Metrics.AddBlacklistSwept(removed)
		s.Logger.Debug(ctx, "expired tokens swept", map[string]interface{}{"removed": removed})
	}
	return removed, nil
}

// publish não desfaz a operação quando o barramento falha; o erro só é logado.
func (s *Service) publish(ctx context.Context, name string, data domain.Notification) {
	if err := s.EventBus.Publish(ctx, domain.NewNotificationEvent(name, data)); err != nil {
		pkgApp.LogError(ctx, s.Logger, "error publishing event", err, map[string]interface{}{"event_name": name})
	}
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
