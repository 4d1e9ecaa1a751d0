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

// CreateItemCommand adds an item to the catalog
type CreateItemCommand struct {
	Actor         auth.Actor
	Code          string
	Name          string
	Category      string
	Unit          string
	UnitCostCents int64
	MinStock      int64
	MaxStock      *int64
}

// CreateItemHandler handles the create item command
type CreateItemHandler struct {
	items domain.ItemRepository
	authz auth.Authorizer
}

func NewCreateItemHandler(items domain.ItemRepository, authz auth.Authorizer) *CreateItemHandler {
	return &CreateItemHandler{items: items, authz: authz}
}

// Handle executes the create item command
func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*domain.Item, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermManageCatalog) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermManageCatalog)
	}

	if cmd.Code == "" {
		return nil, apperr.Validationf("code is required")
	}
	if cmd.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if cmd.UnitCostCents < 0 {
		return nil, apperr.Validationf("unit cost cannot be negative")
	}
	if cmd.MinStock < 0 {
		return nil, apperr.Validationf("minimum stock cannot be negative")
	}
	if cmd.MaxStock != nil && *cmd.MaxStock < cmd.MinStock {
		return nil, apperr.Validationf("maximum stock %d is below minimum stock %d", *cmd.MaxStock, cmd.MinStock)
	}

	_, err := h.items.FindByCode(ctx, cmd.Actor.CompanyID, cmd.Code)
	if err == nil {
		return nil, apperr.Conflictf("item code %q already exists", cmd.Code)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check item code: %w", err)
	}

	unit := cmd.Unit
	if unit == "" {
		unit = "unit"
	}

	item := &domain.Item{
		CompanyID:     cmd.Actor.CompanyID,
		Code:          cmd.Code,
		Name:          cmd.Name,
		Category:      cmd.Category,
		Unit:          unit,
		UnitCostCents: cmd.UnitCostCents,
		MinStock:      cmd.MinStock,
		MaxStock:      cmd.MaxStock,
		Active:        true,
	}

	if err := h.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}
