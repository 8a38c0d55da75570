package notification

import (
	"context"
	"strings"

	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

// Mailer entrega mensagens transacionais.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer só registra o envio; o corpo nunca vai para o log.
type LogMailer struct {
	From   string
	Logger pkgApp.AppLogger
}

func NewLogMailer(from string, logger pkgApp.AppLogger) *LogMailer {
	return &LogMailer{From: from, Logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	pkgApp.LogInfo(ctx, m.Logger, "mail dispatched", map[string]interface{}{
		"from":    m.From,
		"to":      MaskEmail(to),
		"subject": subject,
	})
	return nil
}

// MaskEmail mantém a primeira letra do usuário e o domínio: a***@example.com.
func MaskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
