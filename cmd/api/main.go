package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/catalog"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/posting"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// storage es lo que ofrecen ambos adaptadores: transacciones y lecturas directas.
type storage interface {
	repository.UnitOfWork
	Repos() repository.Repos
}

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	var store storage
	switch cfg.App.StorageDriver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store = memory.New()
	default:
		if cfg.App.MigrateOnStart {
			version, dirty, err := postgres.Migrate(cfg.DB.ConnectionString(), "up")
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("esquema actualizado")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		store = postgres.NewUnitOfWork(pool)
	}

	accounts := posting.Accounts{
		Cash:        cfg.Posting.Cash,
		Receivables: cfg.Posting.Receivables,
		Inventory:   cfg.Posting.Inventory,
		Payables:    cfg.Posting.Payables,
		VATPayable:  cfg.Posting.VATPayable,
		Revenue:     cfg.Posting.Revenue,
		COGS:        cfg.Posting.COGS,
		Shrinkage:   cfg.Posting.Shrinkage,
		Adjustments: cfg.Posting.Adjustments,
	}
	if err := accounts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("cuentas de contabilización")
	}

	zl := log.Zerolog()
	reads := store.Repos()
	costing := inventory.NewCostingEngine(store, reads, zl)
	journal := accounting.NewJournalEngine(store, reads, zl)
	tree := accounting.NewAccountTree(store, reads, zl)
	coordinator := posting.NewCoordinator(store, costing, journal, accounts, zl)
	productUC := catalog.NewProductUseCase(reads.Products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Backoffice API",
		}))
	} else if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: falta la especificación")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		Costing:     costing,
		AccountTree: tree,
		Journal:     journal,
		Coordinator: coordinator,
		JWTSecret:   cfg.JWT.Secret,
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
