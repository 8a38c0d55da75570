package jobs

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mateusmacedo/van-bff/internal/metrics"
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
)

// PeriodicTask executa Run a cada Interval. Enquanto as execuções falham o
// intervalo cresce exponencialmente até MaxBackoff; um sucesso volta ao normal.
type PeriodicTask struct {
	Name       string
	Interval   time.Duration
	MaxBackoff time.Duration
	Run        func(ctx context.Context) error
	Logger     pkgApp.AppLogger
	Metrics    *metrics.Metrics
}

func (p *PeriodicTask) String() string {
	return p.Name
}

// Serve implementa suture.Service. A primeira execução é imediata.
func (p *PeriodicTask) Serve(ctx context.Context) error {
	retry := p.newBackoff()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		wait := p.Interval
		if err := p.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait = retry.NextBackOff()
			pkgApp.LogError(ctx, p.Logger, "job run failed", err, map[string]interface{}{
				"job":         p.Name,
				"next_run_in": wait.String(),
			})
		} else {
			retry.Reset()
		}
		timer.Reset(wait)
	}
}

func (p *PeriodicTask) runOnce(ctx context.Context) error {
	started := time.Now()
	err := p.Run(ctx)

	result := "success"
	if err != nil {
		result = "failure"
	}
	p.Metrics.IncJobRun(p.Name, result)
	pkgApp.LogDebug(ctx, p.Logger, "job run finished", map[string]interface{}{
		"job":      p.Name,
		"result":   result,
		"duration": time.Since(started).String(),
	})
	return err
}

func (p *PeriodicTask) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Interval
	b.MaxInterval = p.MaxBackoff
	if b.MaxInterval < p.Interval {
		b.MaxInterval = p.Interval
	}
	// sem limite total: a tarefa tenta até o contexto ser cancelado
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
