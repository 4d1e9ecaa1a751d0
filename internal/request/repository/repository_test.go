package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	ledgerrepo "github.com/fieldops/cmms-inventory/internal/ledger/repository"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

var warehouseA = locdomain.LocationRef{Type: locdomain.LocationWarehouse, ID: 1}

type env struct {
	requests *GormRequestRepository
	stock    *ledgerrepo.GormStockRepository
}

func testEnv(t *testing.T) *env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&domain.InventoryRequest{},
		&ledgerdomain.StockRecord{},
		&ledgerdomain.Movement{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stock := ledgerrepo.NewGormStockRepository(db)
	return &env{
		requests: NewGormRequestRepository(db, stock),
		stock:    stock,
	}
}

func (e *env) seedStock(t *testing.T, itemID uint, qty int64) {
	t.Helper()
	_, _, err := e.stock.Adjust(context.Background(), ledgerdomain.AdjustParams{
		ItemID:      itemID,
		Location:    warehouseA,
		NewQuantity: qty,
		Reason:      "initial count",
		Actor:       "tester",
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (e *env) createRequest(t *testing.T, itemID uint, qty int64) *domain.InventoryRequest {
	t.Helper()
	request := &domain.InventoryRequest{
		RequestNumber:     "REQ-" + time.Now().Format("150405.000000000"),
		WorkOrderID:       "WO-100",
		ItemID:            itemID,
		QuantityRequested: qty,
		Urgency:           domain.UrgencyNormal,
		Status:            domain.StatusPending,
		RequestedBy:       "tech-dave",
		RequestedAt:       time.Now(),
	}
	if err := e.requests.Create(context.Background(), request); err != nil {
		t.Fatalf("create request: %v", err)
	}
	return request
}

func (e *env) balance(t *testing.T, itemID uint) int64 {
	t.Helper()
	record, err := e.stock.GetStock(context.Background(), itemID, warehouseA)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return record.Quantity
}

func TestApprove_WithdrawsStockAndFlipsStatus(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	e.seedStock(t, 1, 10)
	request := e.createRequest(t, 1, 4)

	approved, err := e.requests.Approve(ctx, request.ID, 4, warehouseA, "ok", "supervisor-erin")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Errorf("status = %q, want APPROVED", approved.Status)
	}
	if approved.QuantityApproved == nil || *approved.QuantityApproved != 4 {
		t.Error("approved quantity not recorded")
	}
	if approved.ApprovedAt == nil {
		t.Error("approved_at not set")
	}
	if got := e.balance(t, 1); got != 6 {
		t.Errorf("balance = %d, want 6 after withdrawal", got)
	}

	movements, _, err := e.stock.ListMovements(ctx, ledgerdomain.MovementFilter{
		ItemID: 1, Type: ledgerdomain.MovementOut, Limit: 10,
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("OUT movements = %d, want 1", len(movements))
	}
	if movements[0].RequestID == nil || *movements[0].RequestID != request.ID {
		t.Error("withdrawal not tagged with the request id")
	}
	if movements[0].Quantity != -4 {
		t.Errorf("withdrawal quantity = %d, want -4", movements[0].Quantity)
	}
}

func TestApprove_InsufficientStockLeavesRequestPending(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	e.seedStock(t, 1, 2)
	request := e.createRequest(t, 1, 5)

	_, err := e.requests.Approve(ctx, request.ID, 5, warehouseA, "ok", "supervisor-erin")
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	reloaded, err := e.requests.FindByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.Status != domain.StatusPending {
		t.Errorf("status = %q, want PENDING after rollback", reloaded.Status)
	}
	if reloaded.QuantityApproved != nil {
		t.Error("approved quantity recorded despite rollback")
	}
	if got := e.balance(t, 1); got != 2 {
		t.Errorf("balance = %d, want 2 untouched", got)
	}

	movements, _, err := e.stock.ListMovements(ctx, ledgerdomain.MovementFilter{
		ItemID: 1, Type: ledgerdomain.MovementOut, Limit: 10,
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("OUT movements = %d, want 0 after rollback", len(movements))
	}
}

func TestApprove_NonPendingFailsGuard(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	e.seedStock(t, 1, 10)
	request := e.createRequest(t, 1, 3)

	if _, err := e.requests.Approve(ctx, request.ID, 3, warehouseA, "ok", "supervisor-erin"); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	_, err := e.requests.Approve(ctx, request.ID, 3, warehouseA, "again", "supervisor-erin")
	if !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Fatalf("err = %v, want ErrInvalidStateTransition", err)
	}
	if got := e.balance(t, 1); got != 7 {
		t.Errorf("balance = %d, want 7 (withdrawn once)", got)
	}
}

func TestReject_OnlyFromPending(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	request := e.createRequest(t, 1, 3)

	rejected, err := e.requests.Reject(ctx, request.ID, "not needed", "supervisor-erin")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Errorf("status = %q, want REJECTED", rejected.Status)
	}
	if rejected.RejectedAt == nil {
		t.Error("rejected_at not set")
	}

	if _, err := e.requests.Reject(ctx, request.ID, "again", "supervisor-erin"); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("second reject err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestDeliver_FallsBackToRequestedQuantity(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	e.seedStock(t, 1, 10)
	request := e.createRequest(t, 1, 5)

	if _, err := e.requests.Approve(ctx, request.ID, 3, warehouseA, "partial", "supervisor-erin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	delivered, err := e.requests.Deliver(ctx, request.ID, "", "storekeeper-frank")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if delivered.Status != domain.StatusDelivered {
		t.Errorf("status = %q, want DELIVERED", delivered.Status)
	}
	if delivered.QuantityDelivered != 3 {
		t.Errorf("delivered quantity = %d, want the approved 3", delivered.QuantityDelivered)
	}
	// custody handover only, the stock already moved at approval
	if got := e.balance(t, 1); got != 7 {
		t.Errorf("balance = %d, want 7", got)
	}
}

func TestConfirmReceipt_FullLifecycleAndIdempotenceGuard(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	e.seedStock(t, 1, 10)
	request := e.createRequest(t, 1, 2)

	if _, err := e.requests.Approve(ctx, request.ID, 2, warehouseA, "ok", "supervisor-erin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := e.requests.Deliver(ctx, request.ID, "", "storekeeper-frank"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	received, err := e.requests.ConfirmReceipt(ctx, request.ID, "got it", "tech-dave")
	if err != nil {
		t.Fatalf("ConfirmReceipt: %v", err)
	}
	if received.Status != domain.StatusReceived {
		t.Errorf("status = %q, want RECEIVED", received.Status)
	}
	if received.ReceivedAt == nil {
		t.Error("received_at not set")
	}

	if _, err := e.requests.ConfirmReceipt(ctx, request.ID, "again", "tech-dave"); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("second confirm err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestCancel_PendingWritesNoMovement(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	request := e.createRequest(t, 1, 3)

	cancelled, err := e.requests.Cancel(ctx, request.ID, "work order closed", "tech-dave")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %q, want CANCELLED", cancelled.Status)
	}

	_, total, err := e.stock.ListMovements(ctx, ledgerdomain.MovementFilter{ItemID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if total != 0 {
		t.Errorf("movements = %d, want 0 for a pending cancellation", total)
	}
}

func TestCancel_ApprovedReturnsStockToSource(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	e.seedStock(t, 1, 10)
	request := e.createRequest(t, 1, 4)

	if _, err := e.requests.Approve(ctx, request.ID, 4, warehouseA, "ok", "supervisor-erin"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got := e.balance(t, 1); got != 6 {
		t.Fatalf("balance = %d, want 6 after approval", got)
	}

	cancelled, err := e.requests.Cancel(ctx, request.ID, "no longer needed", "supervisor-erin")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %q, want CANCELLED", cancelled.Status)
	}
	if got := e.balance(t, 1); got != 10 {
		t.Errorf("balance = %d, want 10 after compensating return", got)
	}

	movements, _, err := e.stock.ListMovements(ctx, ledgerdomain.MovementFilter{
		ItemID: 1, Type: ledgerdomain.MovementIn, Limit: 10,
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("IN movements = %d, want the compensating return", len(movements))
	}
	if movements[0].RequestID == nil || *movements[0].RequestID != request.ID {
		t.Error("compensating return not tagged with the request id")
	}
}

func TestCancel_TerminalStatesRefuse(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()
	request := e.createRequest(t, 1, 3)

	if _, err := e.requests.Reject(ctx, request.ID, "no", "supervisor-erin"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, err := e.requests.Cancel(ctx, request.ID, "too late", "tech-dave"); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("cancel rejected request err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestFindAll_Filters(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()

	first := e.createRequest(t, 1, 3)
	second := e.createRequest(t, 2, 1)
	if _, err := e.requests.Reject(ctx, second.ID, "no", "supervisor-erin"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	pending, total, err := e.requests.FindAll(ctx, domain.RequestFilter{Status: domain.StatusPending, Limit: 10})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if total != 1 || len(pending) != 1 || pending[0].ID != first.ID {
		t.Errorf("pending filter returned %d rows, want just the first request", total)
	}

	byItem, total, err := e.requests.FindAll(ctx, domain.RequestFilter{ItemID: 2, Limit: 10})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if total != 1 || len(byItem) != 1 || byItem[0].ID != second.ID {
		t.Errorf("item filter returned %d rows, want just the second request", total)
	}
}

func TestFindByID_Missing(t *testing.T) {
	e := testEnv(t)
	if _, err := e.requests.FindByID(context.Background(), 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
