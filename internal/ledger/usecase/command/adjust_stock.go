package command

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
	"github.com/fieldops/cmms-inventory/pkg/logger"
)

// AdjustStockCommand states the target balance for an (item, location) pair
type AdjustStockCommand struct {
	Actor       auth.Actor
	ItemID      uint
	Location    locdomain.LocationRef
	NewQuantity int64
	Reason      string
	Notes       string
}

// AdjustStockHandler handles the adjust stock command
type AdjustStockHandler struct {
	stock     domain.StockRepository
	items     catalogdomain.ItemRepository
	locations locdomain.Resolver
	authz     auth.Authorizer
	events    EventPublisher
}

func NewAdjustStockHandler(
	stock domain.StockRepository,
	items catalogdomain.ItemRepository,
	locations locdomain.Resolver,
	authz auth.Authorizer,
	events EventPublisher,
) *AdjustStockHandler {
	return &AdjustStockHandler{stock: stock, items: items, locations: locations, authz: authz, events: events}
}

// Handle executes the adjust stock command. The caller states the target
// balance directly, so no insufficiency check applies here.
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) (*domain.StockRecord, *domain.Movement, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermAdjustStock) {
		return nil, nil, apperr.PermissionDeniedf("capability %s required", auth.PermAdjustStock)
	}

	if cmd.NewQuantity < 0 {
		return nil, nil, apperr.Validationf("new quantity cannot be negative, got %d", cmd.NewQuantity)
	}
	if cmd.Reason == "" {
		return nil, nil, apperr.Validationf("reason is required")
	}

	if err := checkItemAndLocation(ctx, h.items, h.locations, cmd.Actor, cmd.ItemID, cmd.Location); err != nil {
		return nil, nil, err
	}

	record, movement, err := h.stock.Adjust(ctx, domain.AdjustParams{
		ItemID:      cmd.ItemID,
		Location:    cmd.Location,
		NewQuantity: cmd.NewQuantity,
		Reason:      cmd.Reason,
		Notes:       cmd.Notes,
		Actor:       cmd.Actor.Username,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	publishMovement(ctx, h.events, movement)
	return record, movement, nil
}

// checkItemAndLocation validates the item is visible to the actor's company,
// active, and that the location reference resolves. Shared by the ledger
// commands; runs before any mutation.
func checkItemAndLocation(
	ctx context.Context,
	items catalogdomain.ItemRepository,
	locations locdomain.Resolver,
	actor auth.Actor,
	itemID uint,
	refs ...locdomain.LocationRef,
) error {
	item, err := items.FindByID(ctx, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("item %d", itemID)
	}
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if actor.CompanyID != 0 && item.CompanyID != actor.CompanyID {
		return apperr.NotFoundf("item %d", itemID)
	}
	if !item.Active {
		return apperr.Validationf("item %s is inactive", item.Code)
	}

	for _, ref := range refs {
		if !ref.Type.Valid() {
			return apperr.Validationf("unknown location type %q", ref.Type)
		}
		exists, err := locations.Exists(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to resolve location: %w", err)
		}
		if !exists {
			return apperr.NotFoundf("location %s/%d", ref.Type, ref.ID)
		}
	}
	return nil
}

func publishMovement(ctx context.Context, events EventPublisher, movement *domain.Movement) {
	if events == nil {
		return
	}
	if err := events.PublishMovementRecorded(ctx, movement); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("reference", movement.Reference).
			Msg("Failed to publish movement event")
	}
}
