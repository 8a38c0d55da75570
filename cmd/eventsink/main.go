package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mateusmacedo/van-bff/internal/config"
	"github.com/mateusmacedo/van-bff/internal/domain"
	"github.com/mateusmacedo/van-bff/internal/notification"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
	pkgInfra "github.com/mateusmacedo/van-bff/pkg/infrastructure"
	watermillAdapter "github.com/mateusmacedo/van-bff/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/van-bff/pkg/infrastructure/zaplogger/adapter"
)

// eventsink acompanha os eventos de domínio publicados no redis ou no kafka e
// registra cada um no log.
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

	appLogger, err := zapAdapter.NewZapAppLogger(cfg.App.Name+"-eventsink", cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer zapAdapter.Sync(appLogger)

	switch strings.ToLower(cfg.Events.Transport) {
	case watermillAdapter.TransportRedis, watermillAdapter.TransportKafka:
	default:
		return fmt.Errorf("eventsink requires EVENT_TRANSPORT redis or kafka, got %q", cfg.Events.Transport)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	newID := pkgInfra.NewUUIDGenerator()
	group := cfg.Events.ConsumerGroup + "-eventsink"
	transport, err := watermillAdapter.NewTransport(watermillAdapter.TransportConfig{
		Kind:          cfg.Events.Transport,
		RedisAddr:     cfg.Events.RedisAddr,
		RedisPassword: cfg.Events.RedisPassword,
		RedisDB:       cfg.Events.RedisDB,
		KafkaBrokers:  cfg.Events.KafkaBrokers,
		ConsumerGroup: group,
		Consumer:      group + "-" + newID(),
	}, watermillAdapter.NewWatermillLoggerAdapter(appLogger))
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "Erro ao criar o transporte", err, nil)
		return err
	}
	defer func() {
		if err := transport.Close(); err != nil {
			pkgApp.LogError(context.Background(), appLogger, "Erro ao fechar o transporte", err, nil)
		}
	}()

	bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[domain.Notification], domain.Notification](
		transport.Publisher, transport.Subscriber, appLogger)
	defer bus.Close()

	audit := notification.NewAuditHandler(appLogger)
	for _, name := range domain.EventNames {
		bus.RegisterHandler(name, audit)
	}

	pkgApp.LogInfo(ctx, appLogger, "eventsink listening", map[string]interface{}{
		"transport": cfg.Events.Transport,
		"topics":    strings.Join(domain.EventNames, ","),
	})
	<-ctx.Done()
	appLogger.Info(context.Background(), "eventsink encerrado", nil)
	return nil
}
