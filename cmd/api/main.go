package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/inventory/handlers"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	infrakafka "github.com/jhoicas/stock-engine/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-engine/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-engine/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-engine/internal/interfaces/http"
	"github.com/jhoicas/stock-engine/pkg/config"
	"github.com/jhoicas/stock-engine/pkg/logger"
	"github.com/jhoicas/stock-engine/pkg/telemetry"
)

// storage adaptadores de persistencia según STORAGE_DRIVER.
type storage struct {
	txRunner     appinv.TxRunner
	stock        repository.StockItemRepository
	movements    repository.MovementRepository
	reservations repository.ReservationRepository
	lots         repository.LotRepository
	locations    repository.LocationHierarchy
	settings     repository.LocationSettingsRepository
	capacity     repository.CapacityGateway
	catalog      repository.CatalogGateway
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas OTLP")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Eventos de movimiento: Kafka si hay brokers, si no se descartan
	var publisher appinv.EventPublisher = appinv.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaPublisher := infrakafka.NewMovementPublisher(
			infrakafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.MovementsTopic),
			cfg.Kafka.MovementsTopic,
		)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.MovementsTopic).Msg("publicación de eventos habilitada")
	}

	// Tipos custom: préstamos y consignación
	registry := inventory.NewHandlerRegistry(
		handlers.NewLoanHandler(),
		handlers.NewConsignmentHandler(),
	)
	validator := inventory.NewValidator(store.lots, store.capacity, registry)

	applicator := appinv.NewMovementApplicator(appinv.ApplicatorDeps{
		TxRunner:  store.txRunner,
		Settings:  store.settings,
		Catalog:   store.catalog,
		Validator: validator,
		Handlers:  registry,
		Publisher: publisher,
		Logger:    log.Component("applicator"),
	})
	reservationUC := appinv.NewReservationUseCase(
		applicator, store.txRunner, store.stock, store.reservations, log.Component("reservations"),
	)
	queryUC := appinv.NewStockQueryUseCase(store.stock, store.movements, store.locations, store.catalog)
	reportUC := appinv.NewReportUseCase(queryUC, infrapdf.NewMarotoPDFGenerator())

	sweeper := appinv.NewExpirySweeper(
		reservationUC, cfg.Reservation.SweepInterval, cfg.Reservation.SweepBatch, log.Component("expiry-sweeper"),
	)
	go sweeper.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Engine API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Applicator:   applicator,
		Query:        queryUC,
		Reports:      reportUC,
		Reservations: reservationUC,
		JWTSecret:    cfg.JWT.Secret,
		Logger:       log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage construye los adaptadores del driver configurado.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StorageDriver == "memory" {
		store := memory.NewStore()
		if cfg.App.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.App.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := store.Apply(seed, time.Now()); err != nil {
				return nil, err
			}
			log.Info().Str("file", cfg.App.SeedFile).
				Int("locations", len(seed.Locations)).
				Int("catalog", len(seed.Catalog)).
				Msg("seed en memoria cargado")
		}
		return &storage{
			txRunner:     store,
			stock:        store.StockItems(),
			movements:    store.Movements(),
			reservations: store.Reservations(),
			lots:         store.Lots(),
			locations:    store,
			settings:     store,
			capacity:     store,
			catalog:      store,
			close:        func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	locationRepo := postgres.NewLocationRepository(pool)
	return &storage{
		txRunner:     postgres.NewTxRunner(pool),
		stock:        postgres.NewStockItemRepository(pool),
		movements:    postgres.NewMovementRepository(pool),
		reservations: postgres.NewReservationRepository(pool),
		lots:         postgres.NewLotRepository(pool),
		locations:    locationRepo,
		settings:     locationRepo,
		capacity:     locationRepo,
		catalog:      postgres.NewCatalogRepository(pool),
		close:        pool.Close,
	}, nil
}
