package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

// GetItemQuery reads one item by id
type GetItemQuery struct {
	ItemID uint
}

// GetItemHandler handles the get item query
type GetItemHandler struct {
	items domain.ItemRepository
}

func NewGetItemHandler(items domain.ItemRepository) *GetItemHandler {
	return &GetItemHandler{items: items}
}

// Handle executes the get item query
func (h *GetItemHandler) Handle(ctx context.Context, q GetItemQuery) (*domain.Item, error) {
	if q.ItemID == 0 {
		return nil, apperr.Validationf("item_id is required")
	}

	item, err := h.items.FindByID(ctx, q.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("item %d", q.ItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	return item, nil
}
