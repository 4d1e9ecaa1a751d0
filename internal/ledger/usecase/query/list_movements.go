package query

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

// ListMovementsQuery pages through the movement log, newest first
type ListMovementsQuery struct {
	Filter domain.MovementFilter
}

// ListMovementsHandler handles the list movements query
type ListMovementsHandler struct {
	stock domain.StockRepository
}

func NewListMovementsHandler(stock domain.StockRepository) *ListMovementsHandler {
	return &ListMovementsHandler{stock: stock}
}

// Handle executes the list movements query
func (h *ListMovementsHandler) Handle(ctx context.Context, q ListMovementsQuery) ([]domain.Movement, int64, error) {
	if q.Filter.Type != "" {
		switch q.Filter.Type {
		case domain.MovementIn, domain.MovementOut, domain.MovementTransfer, domain.MovementAdjustment:
		default:
			return nil, 0, apperr.Validationf("unknown movement type %q", q.Filter.Type)
		}
	}

	if q.Filter.Limit <= 0 {
		q.Filter.Limit = 20
	}
	if q.Filter.Limit > 100 {
		q.Filter.Limit = 100
	}
	if q.Filter.Offset < 0 {
		q.Filter.Offset = 0
	}

	movements, total, err := h.stock.ListMovements(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, total, nil
}
