package notification

import (
	"context"
	"errors"

	"github.com/mateusmacedo/van-bff/internal/domain"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
)

const resetSubject = "Código de redefinição de senha"

var errMissingCode = errors.New("reset code without recipient or code")

type handlerFunc = pkgApp.EventHandlerFunc[pkgDomain.Event[domain.Notification], domain.Notification]

// Register liga o manipulador de auditoria a todos os eventos de domínio.
func Register(bus domain.EventBus, logger pkgApp.AppLogger) {
	audit := NewAuditHandler(logger)
	for _, name := range domain.EventNames {
		bus.RegisterHandler(name, audit)
	}
}

// NewAuditHandler registra uma linha por evento, sem dados sensíveis.
func NewAuditHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[domain.Notification], domain.Notification] {
	return handlerFunc(func(ctx context.Context, event pkgDomain.Event[domain.Notification]) error {
		payload := event.Payload()
		fields := map[string]interface{}{
			"event_name": event.EventName(),
			"message":    payload.Message,
		}
		if payload.UserID != 0 {
			fields["user_id"] = payload.UserID
		}
		if payload.Email != "" {
			fields["email"] = MaskEmail(payload.Email)
		}
		for key, value := range payload.Attributes {
			if key == "code" {
				continue
			}
			fields[key] = value
		}
		pkgApp.LogInfo(ctx, logger, "domain event", fields)
		return nil
	})
}

// ResetCodeMailer envia o código temporário gerado em ForgotPassword
// diretamente pelo Mailer, fora do barramento de eventos.
type ResetCodeMailer struct {
	mailer Mailer
	logger pkgApp.AppLogger
}

func NewResetCodeMailer(mailer Mailer, logger pkgApp.AppLogger) *ResetCodeMailer {
	return &ResetCodeMailer{mailer: mailer, logger: logger}
}

func (m *ResetCodeMailer) SendResetCode(ctx context.Context, email, code string) error {
	if code == "" || email == "" {
		pkgApp.LogError(ctx, m.logger, "error sending reset code", errMissingCode, map[string]interface{}{
			"email": MaskEmail(email),
		})
		return errMissingCode
	}

	body := "Seu código temporário é " + code + ". Use-o para entrar e defina uma nova senha."
	if err := m.mailer.Send(ctx, email, resetSubject, body); err != nil {
		pkgApp.LogError(ctx, m.logger, "error sending reset code", err, map[string]interface{}{
			"email": MaskEmail(email),
		})
		return err
	}
	return nil
}
