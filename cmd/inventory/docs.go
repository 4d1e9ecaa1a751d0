package main

// @title CMMS Inventory Service API
// @version 1.0
// @description Inventory catalog, stock ledger and request workflow service with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/fieldops/cmms-inventory
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/fieldops/cmms-inventory/blob/main/LICENSE

// @host localhost:8082
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Catalog
// @tag.description Item catalog endpoints

// @tag.name Ledger
// @tag.description Stock ledger endpoints

// @tag.name Requests
// @tag.description Inventory request workflow endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
