package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	appinventory "github.com/jcastellanos/puntoventa-api/internal/application/inventory"
	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
	infraalerts "github.com/jcastellanos/puntoventa-api/internal/infrastructure/alerts"
	infrapdf "github.com/jcastellanos/puntoventa-api/internal/infrastructure/pdf"
	"github.com/jcastellanos/puntoventa-api/internal/infrastructure/postgres"
	"github.com/jcastellanos/puntoventa-api/internal/infrastructure/redisstore"
	httpRouter "github.com/jcastellanos/puntoventa-api/internal/interfaces/http"
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
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	saleRepo := postgres.NewSaleRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	taxRepo := postgres.NewTaxRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Idempotencia de replays: opcional; sin Redis la API funciona, pero un
	// replay duplicado crearía una segunda venta.
	var idemStore appsales.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		idemStore = redisstore.NewIdempotencyStore(rdb, 0)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: deduplicación de replays desactivada")
	}

	emitter := infraalerts.NewEmitter(alertRepo, log)

	createSaleUC := appsales.NewCreateSaleUseCase(txRunner, saleRepo, productRepo, taxRepo, idemStore, emitter, log)
	cancelSaleUC := appsales.NewCancelSaleUseCase(txRunner, log)
	queryUC := appsales.NewSaleQueryUseCase(saleRepo, analyticsRepo)
	receiptUC := appsales.NewReceiptPDFUseCase(saleRepo, productRepo, infrapdf.NewMarotoReceiptGenerator())
	restockUC := appinventory.NewRestockUseCase(txRunner, productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Creator:   createSaleUC,
		Canceller: cancelSaleUC,
		Reader:    queryUC,
		Receipts:  receiptUC,
		Restocker: restockUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
