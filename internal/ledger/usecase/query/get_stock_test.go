package query

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/internal/ledger/repository"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

var warehouseA = locdomain.LocationRef{Type: locdomain.LocationWarehouse, ID: 1}

func testStock(t *testing.T) *repository.GormStockRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.StockRecord{}, &domain.Movement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewGormStockRepository(db)
}

func TestGetStock_UnknownLocationReadsAsZero(t *testing.T) {
	h := NewGetStockHandler(testStock(t))

	records, err := h.Handle(context.Background(), GetStockQuery{ItemID: 1, Location: &warehouseA})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 virtual record", len(records))
	}
	if records[0].Quantity != 0 || records[0].ID != 0 {
		t.Errorf("virtual record = id %d qty %d, want unsaved zero balance", records[0].ID, records[0].Quantity)
	}
}

func TestGetStock_AllLocations(t *testing.T) {
	stock := testStock(t)
	ctx := context.Background()
	for i, qty := range []int64{5, 9} {
		if _, _, err := stock.Adjust(ctx, domain.AdjustParams{
			ItemID:      1,
			Location:    locdomain.LocationRef{Type: locdomain.LocationWarehouse, ID: uint(i + 1)},
			NewQuantity: qty,
			Reason:      "initial count",
			Actor:       "tester",
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	h := NewGetStockHandler(stock)
	records, err := h.Handle(ctx, GetStockQuery{ItemID: 1})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Quantity+records[1].Quantity != 14 {
		t.Errorf("total = %d, want 14", records[0].Quantity+records[1].Quantity)
	}
}

func TestGetStock_Validation(t *testing.T) {
	h := NewGetStockHandler(testStock(t))
	ctx := context.Background()

	if _, err := h.Handle(ctx, GetStockQuery{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing item err = %v, want ErrValidation", err)
	}

	bad := locdomain.LocationRef{Type: "LOCKER", ID: 1}
	if _, err := h.Handle(ctx, GetStockQuery{ItemID: 1, Location: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad location type err = %v, want ErrValidation", err)
	}
}

func TestListMovements_DefaultsAndCap(t *testing.T) {
	stock := testStock(t)
	h := NewListMovementsHandler(stock)
	ctx := context.Background()

	if _, _, err := h.Handle(ctx, ListMovementsQuery{Filter: domain.MovementFilter{ItemID: 1}}); err != nil {
		t.Fatalf("Handle with defaults: %v", err)
	}
	if _, _, err := h.Handle(ctx, ListMovementsQuery{Filter: domain.MovementFilter{ItemID: 1, Limit: 5000}}); err != nil {
		t.Fatalf("Handle with oversized limit: %v", err)
	}
	_, _, err := h.Handle(ctx, ListMovementsQuery{Filter: domain.MovementFilter{Type: "SHRINKAGE"}})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown type err = %v, want ErrValidation", err)
	}
}
