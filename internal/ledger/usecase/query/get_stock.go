package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

// GetStockQuery reads the balance of an item, either at one location or across
// all locations holding it
type GetStockQuery struct {
	ItemID   uint
	Location *locdomain.LocationRef
}

// GetStockHandler handles the get stock query
type GetStockHandler struct {
	stock domain.StockRepository
}

func NewGetStockHandler(stock domain.StockRepository) *GetStockHandler {
	return &GetStockHandler{stock: stock}
}

// Handle executes the get stock query. A location that never saw a movement
// reads as a zero balance rather than an error.
func (h *GetStockHandler) Handle(ctx context.Context, q GetStockQuery) ([]domain.StockRecord, error) {
	if q.ItemID == 0 {
		return nil, apperr.Validationf("item_id is required")
	}

	if q.Location != nil {
		if !q.Location.Type.Valid() {
			return nil, apperr.Validationf("unknown location type %q", q.Location.Type)
		}
		record, err := h.stock.GetStock(ctx, q.ItemID, *q.Location)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.StockRecord{{
				ItemID:       q.ItemID,
				LocationType: q.Location.Type,
				LocationID:   q.Location.ID,
				Quantity:     0,
			}}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stock: %w", err)
		}
		return []domain.StockRecord{*record}, nil
	}

	records, err := h.stock.ListStock(ctx, q.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return records, nil
}
