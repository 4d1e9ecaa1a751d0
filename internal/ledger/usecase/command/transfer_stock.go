package command

import (
	"context"
	"fmt"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// TransferStockCommand moves quantity between two locations
type TransferStockCommand struct {
	Actor    auth.Actor
	ItemID   uint
	From     locdomain.LocationRef
	To       locdomain.LocationRef
	Quantity int64
	Reason   string
	Notes    string
}

// TransferStockHandler handles the transfer stock command
type TransferStockHandler struct {
	stock     domain.StockRepository
	items     catalogdomain.ItemRepository
	locations locdomain.Resolver
	authz     auth.Authorizer
	events    EventPublisher
}

func NewTransferStockHandler(
	stock domain.StockRepository,
	items catalogdomain.ItemRepository,
	locations locdomain.Resolver,
	authz auth.Authorizer,
	events EventPublisher,
) *TransferStockHandler {
	return &TransferStockHandler{stock: stock, items: items, locations: locations, authz: authz, events: events}
}

// Handle executes the transfer. When the source is short the whole operation
// fails InsufficientStock and nothing is mutated.
func (h *TransferStockHandler) Handle(ctx context.Context, cmd TransferStockCommand) (*domain.Movement, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermTransferStock) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermTransferStock)
	}

	if cmd.Quantity <= 0 {
		return nil, apperr.Validationf("transfer quantity must be greater than 0, got %d", cmd.Quantity)
	}
	if cmd.Reason == "" {
		return nil, apperr.Validationf("reason is required")
	}
	if cmd.From == cmd.To {
		return nil, apperr.Validationf("source and destination locations are the same")
	}

	if err := checkItemAndLocation(ctx, h.items, h.locations, cmd.Actor, cmd.ItemID, cmd.From, cmd.To); err != nil {
		return nil, err
	}

	movement, err := h.stock.Transfer(ctx, domain.TransferParams{
		ItemID:   cmd.ItemID,
		From:     cmd.From,
		To:       cmd.To,
		Quantity: cmd.Quantity,
		Reason:   cmd.Reason,
		Notes:    cmd.Notes,
		Actor:    cmd.Actor.Username,
	})
	if err != nil {
		if apperr.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to transfer stock: %w", err)
	}

	publishMovement(ctx, h.events, movement)
	return movement, nil
}
