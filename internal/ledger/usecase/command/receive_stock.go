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

// ReceiveStockCommand books goods receipt into a location as an IN movement
type ReceiveStockCommand struct {
	Actor    auth.Actor
	ItemID   uint
	Location locdomain.LocationRef
	Quantity int64
	Reason   string
	Notes    string
}

// ReceiveStockHandler handles the receive stock command
type ReceiveStockHandler struct {
	stock     domain.StockRepository
	items     catalogdomain.ItemRepository
	locations locdomain.Resolver
	authz     auth.Authorizer
	events    EventPublisher
}

func NewReceiveStockHandler(
	stock domain.StockRepository,
	items catalogdomain.ItemRepository,
	locations locdomain.Resolver,
	authz auth.Authorizer,
	events EventPublisher,
) *ReceiveStockHandler {
	return &ReceiveStockHandler{stock: stock, items: items, locations: locations, authz: authz, events: events}
}

// Handle executes the receive stock command
func (h *ReceiveStockHandler) Handle(ctx context.Context, cmd ReceiveStockCommand) (*domain.Movement, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermReceiveStock) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermReceiveStock)
	}

	if cmd.Quantity <= 0 {
		return nil, apperr.Validationf("receive quantity must be greater than 0, got %d", cmd.Quantity)
	}
	if cmd.Reason == "" {
		return nil, apperr.Validationf("reason is required")
	}

	if err := checkItemAndLocation(ctx, h.items, h.locations, cmd.Actor, cmd.ItemID, cmd.Location); err != nil {
		return nil, err
	}

	movement, err := h.stock.Receive(ctx, domain.ReceiveParams{
		ItemID:   cmd.ItemID,
		Location: cmd.Location,
		Quantity: cmd.Quantity,
		Reason:   cmd.Reason,
		Notes:    cmd.Notes,
		Actor:    cmd.Actor.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive stock: %w", err)
	}

	publishMovement(ctx, h.events, movement)
	return movement, nil
}
