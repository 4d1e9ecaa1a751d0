//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/catalog/delivery/http"
	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/internal/catalog/repository"
	"github.com/fieldops/cmms-inventory/internal/catalog/usecase/command"
	"github.com/fieldops/cmms-inventory/internal/catalog/usecase/query"
	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// ProvideItemRepository provides the catalog repository
func ProvideItemRepository(db *gorm.DB) domain.ItemRepository {
	return repository.NewGormItemRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideItemRepository,
)

var HandlerSet = wire.NewSet(
	command.NewCreateItemHandler,
	command.NewUpdateItemHandler,
	command.NewDeleteItemHandler,
	query.NewGetItemHandler,
	query.NewListItemsHandler,
)

// InitializeHTTPHandler initializes the catalog HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, ledger ledgerdomain.StockRepository, authz auth.Authorizer) (*http.ItemHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewItemHandler,
	)
	return nil, nil
}
