package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gorm.io/gorm"

	"github.com/mateusmacedo/van-bff/internal/auth"
	authApp "github.com/mateusmacedo/van-bff/internal/auth/application"
	"github.com/mateusmacedo/van-bff/internal/clock"
	"github.com/mateusmacedo/van-bff/internal/config"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/httpapi"
	"github.com/mateusmacedo/van-bff/internal/infrastructure"
	"github.com/mateusmacedo/van-bff/internal/jobs"
	"github.com/mateusmacedo/van-bff/internal/metrics"
	"github.com/mateusmacedo/van-bff/internal/notification"
	"github.com/mateusmacedo/van-bff/internal/profile"
	"github.com/mateusmacedo/van-bff/internal/stop"
	stopApp "github.com/mateusmacedo/van-bff/internal/stop/application"
	"github.com/mateusmacedo/van-bff/internal/trip"
	tripApp "github.com/mateusmacedo/van-bff/internal/trip/application"
	"github.com/mateusmacedo/van-bff/internal/user"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
	pkgInfra "github.com/mateusmacedo/van-bff/pkg/infrastructure"
	watermillAdapter "github.com/mateusmacedo/van-bff/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/van-bff/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appLogger, err := zapAdapter.NewZapAppLogger(cfg.App.Name, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer zapAdapter.Sync(appLogger)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	db, err := infrastructure.OpenDatabase(cfg.Database, appLogger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "Erro ao conectar no banco", err, nil)
		return err
	}

	eventBus, closeEvents, err := newEventBus(cfg.Events, appLogger)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "Erro ao iniciar o transporte de eventos", err, map[string]interface{}{
			"transport": cfg.Events.Transport,
		})
		return err
	}
	defer closeEvents()

	m := metrics.New()
	clk := clock.RealClock{}
	loc := cfg.Location()

	users := infrastructure.NewUserRepository(db, appLogger)
	addresses := infrastructure.NewAddressRepository(db, appLogger)
	trips := infrastructure.NewTripRepository(db, appLogger)
	stops := infrastructure.NewStopRepository(db, appLogger)
	blacklist := infrastructure.NewTokenBlacklistRepository(db, appLogger)

	notification.Register(eventBus, appLogger)
	mailer := notification.NewLogMailer(cfg.Mail.From, appLogger)

	authSlice := auth.NewAuthSlice(authApp.Dependencies{
		DB:          db,
		Users:       users,
		Blacklist:   blacklist,
		Tokens:      authApp.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk),
		EventBus:    eventBus,
		Clock:       clk,
		Metrics:     m,
		Logger:      appLogger,
		BcryptCost:  cfg.Auth.BcryptCost,
		AdminEmails: cfg.Auth.AdminEmails,
		ResetCodes:  notification.NewResetCodeMailer(mailer, appLogger),
	}, cfg.Server.AuthRateLimit)
	verifier := authSlice.Verifier()

	tripCommands := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[tripApp.CreateDailyTripsData], tripApp.CreateDailyTripsData](appLogger)
	tripQueries := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[tripApp.FindTripsByDateData], tripApp.FindTripsByDateData, []domain.TripSummary](appLogger)
	tripSlice := trip.NewTripSlice(tripCommands, tripQueries, tripApp.Dependencies{
		DB:       db,
		Trips:    trips,
		Stops:    stops,
		Users:    users,
		EventBus: eventBus,
		Clock:    clk,
		Location: loc,
		Metrics:  m,
		Logger:   appLogger,
	}, verifier)

	stopSlice := stop.NewStopSlice(
		pkgInfra.NewSimpleCommandBus[pkgDomain.Command[stopApp.BookStopData], stopApp.BookStopData](appLogger),
		pkgInfra.NewSimpleCommandBus[pkgDomain.Command[stopApp.BookRoundTripData], stopApp.BookRoundTripData](appLogger),
		pkgInfra.NewSimpleQueryBus[pkgDomain.Query[stopApp.FindUserStopsData], stopApp.FindUserStopsData, []domain.Stop](appLogger),
		stopApp.Dependencies{
			DB:        db,
			Users:     users,
			Addresses: addresses,
			Trips:     trips,
			Stops:     stops,
			EventBus:  eventBus,
			Clock:     clk,
			Location:  loc,
			Metrics:   m,
			Logger:    appLogger,
		}, verifier)

	profileSlice := profile.NewProfileSlice(db, users, addresses, stops, verifier, appLogger)
	userSlice := user.NewUserSlice(db, users, addresses, eventBus, verifier, appLogger)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, appLogger, m, pingDatabase(db))
	authSlice.RegisterRoutes(router)
	profileSlice.RegisterRoutes(router)
	tripSlice.RegisterRoutes(router)
	stopSlice.RegisterRoutes(router)
	userSlice.RegisterRoutes(router)

	jobDeps := jobs.Dependencies{MaxBackoff: cfg.Schedule.MaxBackoff, Logger: appLogger, Metrics: m}
	supervisor := jobs.NewSupervisor(cfg.App.Name+"-jobs", appLogger)
	supervisor.Add(jobs.NewBlacklistCleanup(cfg.Schedule.BlacklistCleanupInterval, authSlice.SweepExpired, jobDeps))
	supervisor.Add(jobs.NewDailyTrips(cfg.Schedule.DailyTripsInterval, cfg.Schedule.DailyTripsDaysAhead, tripCommands, clk, jobDeps))
	jobsDone := supervisor.ServeBackground(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		pkgApp.LogInfo(ctx, appLogger, "Server starting", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		pkgApp.LogInfo(context.Background(), appLogger, "Sinal capturado", nil)
	case err := <-serverErr:
		if err != nil {
			pkgApp.LogError(context.Background(), appLogger, "Erro ao iniciar o servidor", err, nil)
			stopSignals()
		}
	}

	appLogger.Info(context.Background(), "Encerrando servidor...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Erro ao encerrar servidor", err, nil)
	}

	stopSignals()
	<-jobsDone

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info(context.Background(), "Servidor encerrado", nil)
	return nil
}

// newEventBus escolhe o barramento conforme EVENT_TRANSPORT: "memory" entrega
// em processo; os demais passam pelo watermill.
func newEventBus(cfg config.EventsConfig, logger pkgApp.AppLogger) (domain.EventBus, func(), error) {
	if strings.EqualFold(cfg.Transport, "memory") {
		bus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Notification], domain.Notification](logger)
		return bus, func() {}, nil
	}

	transport, err := watermillAdapter.NewTransport(watermillAdapter.TransportConfig{
		Kind:          cfg.Transport,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		KafkaBrokers:  cfg.KafkaBrokers,
		ConsumerGroup: cfg.ConsumerGroup,
		Consumer:      cfg.ConsumerGroup + "-" + pkgInfra.NewUUIDGenerator()(),
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))
	if err != nil {
		return nil, nil, err
	}

	bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[domain.Notification], domain.Notification](
		transport.Publisher, transport.Subscriber, logger)
	return bus, func() {
		bus.Close()
		if err := transport.Close(); err != nil {
			pkgApp.LogError(context.Background(), logger, "Erro ao fechar o transporte de eventos", err, nil)
		}
	}, nil
}

func pingDatabase(db *gorm.DB) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
