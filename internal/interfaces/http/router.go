package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/application/auth"
	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/jhoicas/sweetshop-api/internal/application/usecase"
	"github.com/jhoicas/sweetshop-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC  *auth.AuthUseCase
	SweetUC *usecase.SweetUseCase
	StockUC *inventory.StockUseCase
	Tokens  TokenVerifier
	Logger  *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})

	requireAuth := AuthMiddleware(deps.Tokens, deps.AuthUC, log)
	requireAdmin := RequireAdmin(log)

	// Auth
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Sweets (todas requieren Bearer Token; escritura sólo admin salvo la compra)
	sweets := api.Group("/sweets", requireAuth)
	sweetHandler := NewSweetHandler(deps.SweetUC, deps.StockUC, log)
	sweets.Get("/", sweetHandler.List)
	sweets.Get("/search", sweetHandler.Search)
	sweets.Get("/:id", sweetHandler.GetByID)
	sweets.Post("/", requireAdmin, sweetHandler.Create)
	sweets.Put("/:id", requireAdmin, sweetHandler.Update)
	sweets.Delete("/:id", requireAdmin, sweetHandler.Delete)
	sweets.Post("/:id/purchase", sweetHandler.Purchase)
	sweets.Post("/:id/restock", requireAdmin, sweetHandler.Restock)
}
