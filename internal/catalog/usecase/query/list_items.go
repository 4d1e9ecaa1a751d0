package query

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
)

// ListItemsQuery pages through the catalog
type ListItemsQuery struct {
	Filter domain.ItemFilter
}

// ListItemsHandler handles the list items query
type ListItemsHandler struct {
	items domain.ItemRepository
}

func NewListItemsHandler(items domain.ItemRepository) *ListItemsHandler {
	return &ListItemsHandler{items: items}
}

// Handle executes the list items query
func (h *ListItemsHandler) Handle(ctx context.Context, q ListItemsQuery) ([]domain.Item, int64, error) {
	if q.Filter.Limit <= 0 {
		q.Filter.Limit = 20
	}
	if q.Filter.Limit > 100 {
		q.Filter.Limit = 100
	}
	if q.Filter.Offset < 0 {
		q.Filter.Offset = 0
	}

	items, total, err := h.items.FindAll(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, total, nil
}
