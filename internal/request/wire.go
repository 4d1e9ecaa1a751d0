//go:build wireinject
// +build wireinject

package request

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/delivery/http"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/internal/request/repository"
	"github.com/fieldops/cmms-inventory/internal/request/usecase/command"
	"github.com/fieldops/cmms-inventory/internal/request/usecase/query"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// ProvideRequestRepository provides the request repository
func ProvideRequestRepository(db *gorm.DB, ledger ledgerdomain.RequestLedger) domain.RequestRepository {
	return repository.NewGormRequestRepository(db, ledger)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRequestRepository,
)

var HandlerSet = wire.NewSet(
	command.NewCreateRequestHandler,
	command.NewApproveRequestHandler,
	command.NewRejectRequestHandler,
	command.NewDeliverRequestHandler,
	command.NewConfirmReceiptHandler,
	command.NewCancelRequestHandler,
	query.NewGetRequestHandler,
	query.NewListRequestsHandler,
)

// InitializeHTTPHandler initializes the request workflow HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	ledger ledgerdomain.RequestLedger,
	items catalogdomain.ItemRepository,
	locations locdomain.Resolver,
	authz auth.Authorizer,
	events command.EventPublisher,
) (*http.RequestHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewRequestHandler,
	)
	return nil, nil
}
