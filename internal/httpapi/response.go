// Package httpapi reúne o que os handlers HTTP dos slices compartilham:
// envelope de resposta, decodificação validada, middlewares e o roteador base.
package httpapi

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Message é o corpo de respostas que só confirmam a operação.
type Message struct {
	Message string `json:"message"`
}

// JSON escreve {success: true, data}.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, envelope{Success: true, Data: data})
}

// Error escreve {success: false, code, message}. Erros internos são logados e
// devolvidos com mensagem genérica.
func Error(ctx context.Context, w http.ResponseWriter, logger application.AppLogger, err error) {
	appErr := apperr.As(err)
	status := StatusFor(appErr.Kind)

	if appErr.Kind == apperr.KindInternal {
		application.LogError(ctx, logger, "internal error", err, nil)
	} else {
		logger.Debug(ctx, "request failed", map[string]interface{}{
			"code":   string(appErr.Code),
			"status": status,
		})
	}

	write(w, status, envelope{
		Success: false,
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}

// StatusFor traduz o tipo do erro em status HTTP.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
