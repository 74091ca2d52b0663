package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/backbar-app/backbar-api/internal/application/auth"
	"github.com/backbar-app/backbar-api/internal/application/usecase"
)

// RouterDeps dependencias para el registro de rutas.
type RouterDeps struct {
	ItemUC    *usecase.ItemUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
	// OnLogout descarta el estado de sesión (caché) del owner al cerrar sesión.
	OnLogout func(ownerID string)
}

// Router registra todas las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC, deps.OnLogout)
	itemHandler := NewItemHandler(deps.ItemUC)

	api := app.Group("/api")

	// Rutas públicas
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas
	protected := AuthMiddleware(deps.JWTSecret)
	authGroup.Post("/logout", protected, authHandler.Logout)

	items := api.Group("/items", protected)
	items.Get("/", itemHandler.List)
	items.Post("/", itemHandler.Create)
	items.Put("/:id", itemHandler.Edit)
	items.Delete("/:id", itemHandler.Delete)
	items.Post("/:id/increase", itemHandler.IncreaseStock)
	items.Post("/:id/decrease", itemHandler.DecreaseStock)
}
