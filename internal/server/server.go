// Package server wires handlers and middleware into the Fiber app.
package server

import (
	"time"

	"tobaku-pos/internal/handler"
	"tobaku-pos/internal/middleware"
	"tobaku-pos/internal/model"
	"tobaku-pos/internal/service"
	"tobaku-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Deps struct {
	Auth     service.AuthService
	Users    service.UserService
	Catalog  service.CatalogService
	Stock    service.StockService
	Checkout service.CheckoutService
	Reports  service.ReportService
	Hub      *ws.Hub // nil disables /ws

	Location     *time.Location
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RequestLog   bool
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Tobaku POS v1.0",
		ReadTimeout:  d.ReadTimeout,
		WriteTimeout: d.WriteTimeout,
	})

	// Middleware
	if d.RequestLog {
		app.Use(logger.New()) // Logging request
	}
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	invHandler := handler.NewInventoryHandler(d.Catalog, d.Stock)
	txHandler := handler.NewTransactionHandler(d.Checkout, d.Location)
	dashHandler := handler.NewDashboardHandler(d.Reports)
	roleHandler := handler.NewRoleHandler()

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/change-password", authHandler.ChangePassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(d.Auth))
	can := middleware.RequirePrivilege

	protected.Get("/auth/me", authHandler.Me)

	// Product Routes
	protected.Get("/products", can(model.PrivProductView), invHandler.GetProducts)
	protected.Get("/products/categories", can(model.PrivProductView), invHandler.GetCategories)
	protected.Get("/products/low-stock", can(model.PrivProductView), dashHandler.GetLowStock)
	protected.Get("/products/:id", can(model.PrivProductView), invHandler.GetProduct)
	protected.Post("/products", can(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", can(model.PrivProductUpdate), invHandler.UpdateProduct)
	protected.Delete("/products/:id", can(model.PrivProductDelete), invHandler.DeleteProduct)

	// Stock Ledger Routes
	protected.Get("/stock/logs", can(model.PrivStockView), invHandler.GetStockLogs)
	protected.Post("/stock/movements", can(model.PrivStockCreate), invHandler.RecordMovement)

	// Checkout & Transaction Routes
	protected.Post("/checkout/quote", can(model.PrivTransactionCreate), txHandler.Quote)
	protected.Post("/transactions", can(model.PrivTransactionCreate), txHandler.CreateTransaction)
	protected.Get("/transactions", can(model.PrivTransactionView), txHandler.GetTransactions)
	protected.Get("/transactions/:id", can(model.PrivTransactionView), txHandler.GetTransaction)

	// Report & Dashboard Routes
	protected.Get("/reports/summary", can(model.PrivReportView), dashHandler.GetSummary)
	protected.Get("/dashboard/stats", can(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), dashHandler.GetStockMovement)

	// User Management Routes
	protected.Get("/users", can(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", can(model.PrivUserCreate), userHandler.CreateUser)
	protected.Delete("/users/:id", can(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Get("/roles", can(model.PrivUserView), roleHandler.GetRoles)

	// WebSocket Route
	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(d.Hub.Handler()))
	}

	return app
}
