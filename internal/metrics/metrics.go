// Package metrics concentra os coletores prometheus do serviço em um registro
// próprio, exposto em /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	TripsCreated   prometheus.Counter
	StopsBooked    *prometheus.CounterVec
	TokensRevoked  prometheus.Counter
	BlacklistSwept prometheus.Counter
	JobRuns        *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "van_http_requests_total",
			Help: "Total de requisições HTTP por rota e status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "van_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		TripsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "van_trips_created_total",
			Help: "Viagens criadas pela rotina diária ou sob demanda",
		}),
		StopsBooked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "van_stops_booked_total",
			Help: "Paradas gravadas, por tipo de reserva",
		}, []string{"kind"}),
		TokensRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "van_tokens_revoked_total",
			Help: "Tokens incluídos na blacklist",
		}),
		BlacklistSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "van_blacklist_swept_total",
			Help: "Tokens expirados removidos da blacklist",
		}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "van_job_runs_total",
			Help: "Execuções das tarefas periódicas por resultado",
		}, []string{"job", "result"}),
	}
}

// Os registradores abaixo aceitam receptor nil: um serviço montado sem
// métricas simplesmente não conta nada.

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) AddTripsCreated(n int) {
	if m == nil {
		return
	}
	m.TripsCreated.Add(float64(n))
}

func (m *Metrics) AddStopsBooked(kind string, n int) {
	if m == nil {
		return
	}
	m.StopsBooked.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) IncTokensRevoked() {
	if m == nil {
		return
	}
	m.TokensRevoked.Inc()
}

func (m *Metrics) AddBlacklistSwept(n int64) {
	if m == nil {
		return
	}
	m.BlacklistSwept.Add(float64(n))
}

func (m *Metrics) IncJobRun(job, result string) {
	if m == nil {
		return
	}
	m.JobRuns.WithLabelValues(job, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
