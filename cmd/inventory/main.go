package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	catalogHTTP "github.com/fieldops/cmms-inventory/internal/catalog/delivery/http"
	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	catalogrepo "github.com/fieldops/cmms-inventory/internal/catalog/repository"
	catalogcommand "github.com/fieldops/cmms-inventory/internal/catalog/usecase/command"
	catalogquery "github.com/fieldops/cmms-inventory/internal/catalog/usecase/query"
	ledgerHTTP "github.com/fieldops/cmms-inventory/internal/ledger/delivery/http"
	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	ledgerrepo "github.com/fieldops/cmms-inventory/internal/ledger/repository"
	ledgercommand "github.com/fieldops/cmms-inventory/internal/ledger/usecase/command"
	ledgerquery "github.com/fieldops/cmms-inventory/internal/ledger/usecase/query"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	locrepo "github.com/fieldops/cmms-inventory/internal/location/repository"
	requestHTTP "github.com/fieldops/cmms-inventory/internal/request/delivery/http"
	requestdomain "github.com/fieldops/cmms-inventory/internal/request/domain"
	requestrepo "github.com/fieldops/cmms-inventory/internal/request/repository"
	requestcommand "github.com/fieldops/cmms-inventory/internal/request/usecase/command"
	requestquery "github.com/fieldops/cmms-inventory/internal/request/usecase/query"
	"github.com/fieldops/cmms-inventory/kafka"
	"github.com/fieldops/cmms-inventory/pkg/auth"
	"github.com/fieldops/cmms-inventory/pkg/database"
	"github.com/fieldops/cmms-inventory/pkg/logger"
	"github.com/fieldops/cmms-inventory/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "inventory-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting inventory service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "inventorydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&catalogdomain.Item{},
		&ledgerdomain.StockRecord{},
		&ledgerdomain.Movement{},
		&requestdomain.InventoryRequest{},
		&locdomain.Warehouse{},
		&locdomain.Vehicle{},
		&locdomain.Site{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka is optional; without brokers the service runs but publishes nothing
	var publisher *kafka.Publisher
	var ledgerEvents ledgercommand.EventPublisher
	var requestEvents requestcommand.EventPublisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka publisher")
		}
		defer publisher.Close()
		ledgerEvents = publisher
		requestEvents = publisher
	}

	// Repositories
	itemRepo := catalogrepo.NewGormItemRepository(db)
	stockRepo := ledgerrepo.NewGormStockRepositoryWithTracing(db)
	locationRepo := locrepo.NewGormLocationRepository(db)
	requestRepo := requestrepo.NewGormRequestRepository(db, stockRepo)

	authz := auth.NewClaimsAuthorizer()

	// Catalog handlers
	itemHandler := catalogHTTP.NewItemHandler(
		catalogcommand.NewCreateItemHandler(itemRepo, authz),
		catalogcommand.NewUpdateItemHandler(itemRepo, authz),
		catalogcommand.NewDeleteItemHandler(itemRepo, stockRepo, authz),
		catalogquery.NewGetItemHandler(itemRepo),
		catalogquery.NewListItemsHandler(itemRepo),
	)

	// Ledger handlers
	receiveHandler := ledgercommand.NewReceiveStockHandler(stockRepo, itemRepo, locationRepo, authz, ledgerEvents)
	stockHandler := ledgerHTTP.NewStockHandler(
		ledgercommand.NewAdjustStockHandler(stockRepo, itemRepo, locationRepo, authz, ledgerEvents),
		ledgercommand.NewTransferStockHandler(stockRepo, itemRepo, locationRepo, authz, ledgerEvents),
		receiveHandler,
		ledgerquery.NewGetStockHandler(stockRepo),
		ledgerquery.NewListMovementsHandler(stockRepo),
	)

	// Request workflow handlers
	requestHandler := requestHTTP.NewRequestHandler(
		requestcommand.NewCreateRequestHandler(requestRepo, itemRepo, authz, requestEvents),
		requestcommand.NewApproveRequestHandler(requestRepo, locationRepo, authz, requestEvents),
		requestcommand.NewRejectRequestHandler(requestRepo, authz, requestEvents),
		requestcommand.NewDeliverRequestHandler(requestRepo, authz, requestEvents),
		requestcommand.NewConfirmReceiptHandler(requestRepo, authz, requestEvents),
		requestcommand.NewCancelRequestHandler(requestRepo, authz, requestEvents),
		requestquery.NewGetRequestHandler(requestRepo),
		requestquery.NewListRequestsHandler(requestRepo),
	)

	logger.Logger.Info().Msg("Inventory handlers initialized")

	// Goods receipts announced by purchasing land in the ledger as IN movements
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		consumer, err := kafka.NewConsumer(
			strings.Split(brokers, ","),
			getEnv("KAFKA_GROUP_ID", "inventory-service"),
			[]string{kafka.TopicGoodsReceipts},
		)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka consumer")
		}
		defer consumer.Close()

		consumer.RegisterHandler(kafka.EventTypeGoodsReceived, goodsReceiptHandler(receiveHandler))

		consumerCtx, cancelConsumer := context.WithCancel(context.Background())
		defer cancelConsumer()
		if err := consumer.Start(consumerCtx); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
		}
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8082")
	go startHTTPServer(itemHandler, stockHandler, requestHandler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

// goodsReceiptHandler adapts purchasing receipt events onto the receive stock
// command, acting as the purchasing system
func goodsReceiptHandler(receive *ledgercommand.ReceiveStockHandler) kafka.EventHandler {
	systemActor := auth.Actor{
		Username:    "purchasing-system",
		Permissions: []string{auth.PermReceiveStock},
	}
	return func(ctx context.Context, event kafka.GoodsReceiptEvent) error {
		_, err := receive.Handle(ctx, ledgercommand.ReceiveStockCommand{
			Actor:  systemActor,
			ItemID: event.ItemID,
			Location: locdomain.LocationRef{
				Type: locdomain.LocationType(event.LocationType),
				ID:   event.LocationID,
			},
			Quantity: event.Quantity,
			Reason:   "goods receipt",
			Notes:    "PO " + event.PONumber,
		})
		return err
	}
}

func startHTTPServer(
	itemHandler *catalogHTTP.ItemHandler,
	stockHandler *ledgerHTTP.StockHandler,
	requestHandler *requestHTTP.RequestHandler,
	db *sql.DB,
	port string,
) {
	// Setup router
	router := mux.NewRouter()

	// Register all middlewares using middleware registration system
	middlewareConfig := ledgerHTTP.DefaultMiddlewareConfig()
	ledgerHTTP.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	itemHandler.RegisterRoutes(router)
	stockHandler.RegisterRoutes(router)
	requestHandler.RegisterRoutes(router)

	// Health check endpoint
	router.HandleFunc("/health", healthHandler(db)).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	catalogHTTP.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)

	// CORS middleware
	corsHandler := ledgerHTTP.SetupCORS(middlewareConfig)

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, corsHandler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

// healthHandler reports liveness and database reachability
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"unreachable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
