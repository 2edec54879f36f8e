// El worker de notificaciones consume la cola durable alert_jobs y entrega
// las alertas de stock bajo fuera del ciclo de la venta. Puede correr en
// varias réplicas: cada worker reclama su lote con un cambio de estado
// (UPDATE ... RETURNING) y el consumidor deduplica por día.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcastellanos/puntoventa-api/internal/infrastructure/alerts"
	"github.com/jcastellanos/puntoventa-api/internal/infrastructure/postgres"
	"github.com/jcastellanos/puntoventa-api/pkg/config"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Int("poll_seconds", cfg.Alerts.PollSeconds).
		Msg("iniciando worker de notificaciones")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	alertRepo := postgres.NewAlertRepository(pool)
	notifier := alerts.NewLogNotifier(log)
	dispatcher := alerts.NewDispatcher(alertRepo, notifier, log, time.Duration(cfg.Alerts.PollSeconds)*time.Second)

	if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
