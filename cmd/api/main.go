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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/cache"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/catalogo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
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

	if err := postgres.MigrateTx(ctx, postgres.NewTxRunner(pool)); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	// Redis es opcional: sin REDIS_ADDR cada lectura va directo a PostgreSQL.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer redisClient.Close()
	} else {
		log.Warn().Msg("REDIS_ADDR vacío; caché deshabilitado")
	}
	categoryCache := cache.New(redisClient, cfg.Cache.TTL, "categories")
	fieldCache := cache.New(redisClient, cfg.Cache.TTL, "fields")

	categoryRepo := postgres.NewCategoryRepository(pool)
	fieldRepo := postgres.NewFieldRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)

	categoryUC := usecase.NewCategoryUseCase(categoryRepo, productRepo, categoryCache, log)
	fieldUC := usecase.NewFieldUseCase(fieldRepo, fieldCache, log)
	productUC := usecase.NewProductUseCase(productRepo, stockRepo, categoryUC, fieldUC, log)
	stockUC := usecase.NewStockUseCase(stockRepo, productRepo, vendorRepo, warehouseRepo, fieldUC, infrapdf.NewLabelSheetGenerator(), log)
	vendorUC := usecase.NewVendorUseCase(vendorRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)

	m := metrics.New()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.RequestLogger(log))
	app.Use(m.Middleware())

	// Swagger UI en http://localhost:<port>/docs cuando hay SWAGGER_FILE.
	if cfg.Swagger.FilePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Swagger.FilePath,
			Path:     "docs",
			Title:    "Catálogo API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC:  categoryUC,
		FieldUC:     fieldUC,
		ProductUC:   productUC,
		StockUC:     stockUC,
		VendorUC:    vendorUC,
		WarehouseUC: warehouseUC,
		Metrics:     m,
		Health: func(c *fiber.Ctx) error {
			if err := pool.Ping(c.UserContext()); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Ping(c.UserContext()).Err()
			}
			return nil
		},
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
