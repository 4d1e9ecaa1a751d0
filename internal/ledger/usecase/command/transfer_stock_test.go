package command

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

func (e *commandEnv) seedStock(t *testing.T, qty int64) {
	t.Helper()
	_, _, err := e.stock.Adjust(context.Background(), domain.AdjustParams{
		ItemID:      e.itemID,
		Location:    warehouseA,
		NewQuantity: qty,
		Reason:      "initial count",
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func TestTransferStock_HappyPath(t *testing.T) {
	e := newCommandEnv(t)
	e.seedStock(t, 10)
	h := NewTransferStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	movement, err := h.Handle(context.Background(), TransferStockCommand{
		Actor:    storekeeper,
		ItemID:   e.itemID,
		From:     warehouseA,
		To:       vehicle7,
		Quantity: 4,
		Reason:   "load-out",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if movement.Type != domain.MovementTransfer {
		t.Errorf("type = %q, want TRANSFER", movement.Type)
	}
	if len(e.events.movements) != 1 {
		t.Errorf("published events = %d, want 1", len(e.events.movements))
	}
}

func TestTransferStock_SameSourceAndDestination(t *testing.T) {
	e := newCommandEnv(t)
	h := NewTransferStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	_, err := h.Handle(context.Background(), TransferStockCommand{
		Actor:    storekeeper,
		ItemID:   e.itemID,
		From:     warehouseA,
		To:       warehouseA,
		Quantity: 1,
		Reason:   "load-out",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestTransferStock_InsufficientSurfacesWithoutEvent(t *testing.T) {
	e := newCommandEnv(t)
	e.seedStock(t, 2)
	h := NewTransferStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	_, err := h.Handle(context.Background(), TransferStockCommand{
		Actor:    storekeeper,
		ItemID:   e.itemID,
		From:     warehouseA,
		To:       vehicle7,
		Quantity: 5,
		Reason:   "load-out",
	})
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if len(e.events.movements) != 0 {
		t.Error("event published for a failed transfer")
	}
}

func TestTransferStock_NonPositiveQuantity(t *testing.T) {
	e := newCommandEnv(t)
	h := NewTransferStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	for _, qty := range []int64{0, -3} {
		_, err := h.Handle(context.Background(), TransferStockCommand{
			Actor:    storekeeper,
			ItemID:   e.itemID,
			From:     warehouseA,
			To:       vehicle7,
			Quantity: qty,
			Reason:   "load-out",
		})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("quantity %d err = %v, want ErrValidation", qty, err)
		}
	}
}

func TestReceiveStock_HappyPath(t *testing.T) {
	e := newCommandEnv(t)
	h := NewReceiveStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	movement, err := h.Handle(context.Background(), ReceiveStockCommand{
		Actor:    storekeeper,
		ItemID:   e.itemID,
		Location: warehouseA,
		Quantity: 30,
		Reason:   "goods receipt",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if movement.Type != domain.MovementIn || movement.Quantity != 30 {
		t.Errorf("movement = %s/%d, want IN/30", movement.Type, movement.Quantity)
	}

	record, err := e.stock.GetStock(context.Background(), e.itemID, warehouseA)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if record.Quantity != 30 {
		t.Errorf("quantity = %d, want 30", record.Quantity)
	}
}

func TestReceiveStock_WithoutCapability(t *testing.T) {
	e := newCommandEnv(t)
	h := NewReceiveStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	_, err := h.Handle(context.Background(), ReceiveStockCommand{
		Actor:    technician,
		ItemID:   e.itemID,
		Location: warehouseA,
		Quantity: 30,
		Reason:   "goods receipt",
	})
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}
