package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/auth"
	"github.com/GiancarloGO/master-color-api/internal/application/catalog"
	"github.com/GiancarloGO/master-color-api/internal/application/inventory"
	"github.com/GiancarloGO/master-color-api/internal/application/orders"
	"github.com/GiancarloGO/master-color-api/internal/application/payment"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/kv"
	"github.com/GiancarloGO/master-color-api/pkg/config"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CatalogUC  *catalog.CatalogUseCase
	MovementUC *inventory.MovementUseCase
	OrderUC    *orders.OrderUseCase
	PaymentUC  *payment.UseCase
	Store      kv.Store
	Config     *config.Config
	Log        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Salud (público)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Webhooks de la pasarela (público, con filtros propios)
	webhookHandler := NewWebhookHandler(deps.PaymentUC, deps.Store, deps.Config.App, deps.Config.Webhook, deps.Log)
	api.Post("/webhooks/mercadopago", webhookHandler.Receive)

	// Catálogo (público)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	products := api.Group("/products")
	products.Get("/", catalogHandler.List)
	products.Get("/:id", catalogHandler.GetByID)
	products.Get("/:id/stock", catalogHandler.GetStock)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Config.JWT.Secret))

	// Pedidos (cliente autenticado u operador)
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Get("/:id/tracking", orderHandler.Tracking)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Patch("/:id/status", RequireRole("admin"), orderHandler.UpdateStatus)

	// Pagos (cliente dueño del pedido)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	ordersGroup.Post("/:id/payments", paymentHandler.CreatePreference)
	protected.Get("/payment-status/:orderId", paymentHandler.Status)

	// Movimientos de inventario (back office)
	movements := protected.Group("/inventory/movements", RequireRole("admin"))
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Update)
	movements.Post("/:id/cancel", movementHandler.Cancel)
	movements.Delete("/:id", movementHandler.Delete)
}
