package command

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// DeleteItemCommand removes an item from the catalog. Items with stock or
// movement history are never structurally removable, only deactivated.
type DeleteItemCommand struct {
	Actor  auth.Actor
	ItemID uint
}

// DeleteItemHandler handles the delete item command
type DeleteItemHandler struct {
	items  domain.ItemRepository
	ledger ledgerdomain.StockRepository
	authz  auth.Authorizer
}

func NewDeleteItemHandler(items domain.ItemRepository, ledger ledgerdomain.StockRepository, authz auth.Authorizer) *DeleteItemHandler {
	return &DeleteItemHandler{items: items, ledger: ledger, authz: authz}
}

// Handle executes the delete item command
func (h *DeleteItemHandler) Handle(ctx context.Context, cmd DeleteItemCommand) error {
	if !h.authz.CanPerform(cmd.Actor, auth.PermManageCatalog) {
		return apperr.PermissionDeniedf("capability %s required", auth.PermManageCatalog)
	}

	item, err := h.items.FindByID(ctx, cmd.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("item %d", cmd.ItemID)
	}
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if cmd.Actor.CompanyID != 0 && item.CompanyID != cmd.Actor.CompanyID {
		return apperr.NotFoundf("item %d", cmd.ItemID)
	}

	hasHistory, err := h.ledger.HasStockOrMovements(ctx, cmd.ItemID)
	if err != nil {
		return fmt.Errorf("failed to check item history: %w", err)
	}
	if hasHistory {
		return apperr.Conflictf("item %s has stock or movements", item.Code)
	}

	if err := h.items.Deactivate(ctx, cmd.ItemID); err != nil {
		return fmt.Errorf("failed to deactivate item: %w", err)
	}
	return nil
}
