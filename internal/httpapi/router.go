package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/mateusmacedo/van-bff/internal/apperr"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	"github.com/mateusmacedo/van-bff/pkg/application"
)

type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter monta o chi.Mux com a pilha de middlewares comum, /health e /metrics.
// Cada slice registra as suas rotas por cima.
func NewRouter(cfg RouterConfig, logger application.AppLogger, m *metrics.Metrics, health HealthCheck) *chi.Mux {
	router := chi.NewRouter()

	router.Use(RequestID)
	router.Use(middleware.RealIP)
	router.Use(Recover(logger))
	router.Use(AccessLog(logger))
	router.Use(Instrument(m))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(r.Context(), w, logger, apperr.New(apperr.KindNotFound, "ROUTE_NOT_FOUND", "Rota não encontrada"))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Método não permitido")
	})

	router.Get("/health", healthHandler(logger, health))
	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	return router
}

// RateLimit limita por IP as rotas sensíveis (login, cadastro, recuperação de senha).
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusTooManyRequests, "RATE_LIMITED", "Muitas requisições, tente novamente em instantes")
		}),
	)
}

// HealthCheck verifica as dependências do serviço; nil significa saudável.
type HealthCheck func(ctx context.Context) error

func healthHandler(logger application.AppLogger, check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				application.LogError(r.Context(), logger, "health check failed", err, nil)
				writeStatus(w, http.StatusServiceUnavailable, "UNHEALTHY", "Serviço indisponível")
				return
			}
		}
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeStatus(w http.ResponseWriter, status int, code, message string) {
	write(w, status, envelope{Success: false, Code: code, Message: message})
}
