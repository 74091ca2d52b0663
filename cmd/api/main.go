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

	"github.com/backbar-app/backbar-api/internal/application/auth"
	"github.com/backbar-app/backbar-api/internal/application/cache"
	"github.com/backbar-app/backbar-api/internal/application/notify"
	"github.com/backbar-app/backbar-api/internal/application/search"
	"github.com/backbar-app/backbar-api/internal/application/usecase"
	"github.com/backbar-app/backbar-api/internal/infrastructure/postgres"
	httpRouter "github.com/backbar-app/backbar-api/internal/interfaces/http"
	"github.com/backbar-app/backbar-api/pkg/config"
	"github.com/backbar-app/backbar-api/pkg/logger"
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

	userRepo := postgres.NewUserRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)

	itemsCache := cache.NewStore(itemRepo.ListByOwner, log)
	pipeline := search.NewPipeline(cfg.Search.Threshold)
	events := notify.New(64)

	itemUC := usecase.NewItemUseCase(itemRepo, itemsCache, pipeline, events, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Consumidor de notificaciones de creación de items.
	go func() {
		for ev := range events.C() {
			log.Info().
				Str("event", string(ev.Type)).
				Str("item_id", ev.Item.ID).
				Str("name", ev.Item.Name).
				Msg("item creado")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Backbar API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:    itemUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
		OnLogout:  itemsCache.Evict,
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

	events.Close()
	log.Info().Msg("aplicación detenida")
}
