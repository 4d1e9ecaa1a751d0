package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/cmms-inventory/api-gateway/config"
	"github.com/fieldops/cmms-inventory/api-gateway/health"
	"github.com/fieldops/cmms-inventory/api-gateway/middleware"
	"github.com/fieldops/cmms-inventory/api-gateway/proxy"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix      string
	ServiceName string
	Description string
	RequireAuth bool
}

// Routes holds all route definitions. Inventory prefixes use optional auth:
// reads are open, and the backend enforces capabilities on mutations from the
// forwarded identity.
var Routes = []RouteDefinition{
	{
		Prefix:      "/api/items",
		ServiceName: "inventory",
		Description: "Item catalog",
		RequireAuth: false,
	},
	{
		Prefix:      "/api/stock",
		ServiceName: "inventory",
		Description: "Stock ledger",
		RequireAuth: false,
	},
	{
		Prefix:      "/api/movements",
		ServiceName: "inventory",
		Description: "Movement log",
		RequireAuth: false,
	},
	{
		Prefix:      "/api/requests",
		ServiceName: "inventory",
		Description: "Inventory request workflow",
		RequireAuth: false,
	},
	{
		Prefix:      "/api/workorders",
		ServiceName: "workorder",
		Description: "Work order management",
		RequireAuth: true,
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks downstream services)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Detailed service health checks
	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)
		return c.JSON(healthStatus)
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CMMS Inventory Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Register all service routes
	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy)
	}
}

// registerServiceRoutes registers all HTTP methods for a service prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, proxyHandler *proxy.ReverseProxy) {
	handler := func(c *fiber.Ctx) error {
		return proxyHandler.ProxyRequest(c, route.ServiceName)
	}

	var middlewares []fiber.Handler
	if route.RequireAuth {
		middlewares = append(middlewares, middleware.AuthMiddleware())
	} else {
		middlewares = append(middlewares, middleware.OptionalAuthMiddleware())
	}

	group := app.Group(route.Prefix, middlewares...)
	group.All("/*", handler)

	// Also handle the exact prefix path (without /*)
	app.All(route.Prefix, append(middlewares, handler)...)
}
