package jobs

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

// NewSupervisor cria a árvore das tarefas em segundo plano com os eventos do
// suture encaminhados ao AppLogger.
func NewSupervisor(name string, logger pkgApp.AppLogger) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook:        eventHook(logger),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
}

func eventHook(logger pkgApp.AppLogger) suture.EventHook {
	return func(event suture.Event) {
		ctx := context.Background()
		fields := event.Map()

		switch event.Type() {
		case suture.EventTypeResume:
			pkgApp.LogInfo(ctx, logger, event.String(), fields)
		default:
			logger.Error(ctx, event.String(), fields)
		}
	}
}
