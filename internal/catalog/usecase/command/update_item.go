package command

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// UpdateItemCommand updates the mutable fields of an item; nil fields are
// left untouched
type UpdateItemCommand struct {
	Actor  auth.Actor
	ItemID uint
	Update domain.ItemUpdate
}

// UpdateItemHandler handles the update item command
type UpdateItemHandler struct {
	items domain.ItemRepository
	authz auth.Authorizer
}

func NewUpdateItemHandler(items domain.ItemRepository, authz auth.Authorizer) *UpdateItemHandler {
	return &UpdateItemHandler{items: items, authz: authz}
}

// Handle executes the update item command
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*domain.Item, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermManageCatalog) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermManageCatalog)
	}

	item, err := h.items.FindByID(ctx, cmd.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("item %d", cmd.ItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if cmd.Actor.CompanyID != 0 && item.CompanyID != cmd.Actor.CompanyID {
		return nil, apperr.NotFoundf("item %d", cmd.ItemID)
	}

	u := cmd.Update
	if u.Name != nil {
		if *u.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		item.Name = *u.Name
	}
	if u.Category != nil {
		item.Category = *u.Category
	}
	if u.Unit != nil && *u.Unit != "" {
		item.Unit = *u.Unit
	}
	if u.UnitCostCents != nil {
		if *u.UnitCostCents < 0 {
			return nil, apperr.Validationf("unit cost cannot be negative")
		}
		item.UnitCostCents = *u.UnitCostCents
	}
	if u.MinStock != nil {
		if *u.MinStock < 0 {
			return nil, apperr.Validationf("minimum stock cannot be negative")
		}
		item.MinStock = *u.MinStock
	}
	if u.MaxStock != nil {
		item.MaxStock = u.MaxStock
	}
	if item.MaxStock != nil && *item.MaxStock < item.MinStock {
		return nil, apperr.Validationf("maximum stock %d is below minimum stock %d", *item.MaxStock, item.MinStock)
	}
	if u.Active != nil {
		item.Active = *u.Active
	}

	if err := h.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil
}
