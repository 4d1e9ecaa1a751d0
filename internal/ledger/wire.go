//go:build wireinject
// +build wireinject

package ledger

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/internal/ledger/delivery/http"
	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/internal/ledger/repository"
	"github.com/fieldops/cmms-inventory/internal/ledger/usecase/command"
	"github.com/fieldops/cmms-inventory/internal/ledger/usecase/query"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// ProvideStockRepository provides the stock repository wrapped with tracing
func ProvideStockRepository(db *gorm.DB) domain.StockRepository {
	return repository.NewGormStockRepositoryWithTracing(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStockRepository,
)

var HandlerSet = wire.NewSet(
	command.NewAdjustStockHandler,
	command.NewTransferStockHandler,
	command.NewReceiveStockHandler,
	query.NewGetStockHandler,
	query.NewListMovementsHandler,
)

// InitializeHTTPHandler initializes the ledger HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	items catalogdomain.ItemRepository,
	locations locdomain.Resolver,
	authz auth.Authorizer,
	events command.EventPublisher,
) (*http.StockHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewStockHandler,
	)
	return nil, nil
}
