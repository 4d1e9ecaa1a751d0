package command

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	catalogrepo "github.com/fieldops/cmms-inventory/internal/catalog/repository"
	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	ledgerrepo "github.com/fieldops/cmms-inventory/internal/ledger/repository"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

var (
	warehouseA = locdomain.LocationRef{Type: locdomain.LocationWarehouse, ID: 1}
	vehicle7   = locdomain.LocationRef{Type: locdomain.LocationVehicle, ID: 7}

	storekeeper = auth.Actor{
		UserID:    10,
		Username:  "storekeeper-frank",
		CompanyID: 1,
		Permissions: []string{
			auth.PermAdjustStock,
			auth.PermTransferStock,
			auth.PermReceiveStock,
		},
	}
	technician = auth.Actor{UserID: 11, Username: "tech-dave", CompanyID: 1}
)

// staticResolver answers existence checks from a fixed allow set
type staticResolver map[locdomain.LocationRef]bool

func (r staticResolver) Exists(ctx context.Context, ref locdomain.LocationRef) (bool, error) {
	return r[ref], nil
}

// capturingPublisher records published movements and can simulate a broker outage
type capturingPublisher struct {
	movements []*domain.Movement
	err       error
}

func (p *capturingPublisher) PublishMovementRecorded(ctx context.Context, movement *domain.Movement) error {
	if p.err != nil {
		return p.err
	}
	p.movements = append(p.movements, movement)
	return nil
}

type commandEnv struct {
	stock     *ledgerrepo.GormStockRepository
	items     *catalogrepo.GormItemRepository
	locations staticResolver
	authz     *auth.ClaimsAuthorizer
	events    *capturingPublisher
	itemID    uint
}

func newCommandEnv(t *testing.T) *commandEnv {
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

	if err := db.AutoMigrate(&catalogdomain.Item{}, &domain.StockRecord{}, &domain.Movement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	items := catalogrepo.NewGormItemRepository(db)
	item := &catalogdomain.Item{CompanyID: 1, Code: "FLT-001", Name: "Oil filter", Unit: "unit", Active: true}
	if err := items.Create(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	return &commandEnv{
		stock:     ledgerrepo.NewGormStockRepository(db),
		items:     items,
		locations: staticResolver{warehouseA: true, vehicle7: true},
		authz:     auth.NewClaimsAuthorizer(),
		events:    &capturingPublisher{},
		itemID:    item.ID,
	}
}

func TestAdjustStock_HappyPathPublishesEvent(t *testing.T) {
	e := newCommandEnv(t)
	h := NewAdjustStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	record, movement, err := h.Handle(context.Background(), AdjustStockCommand{
		Actor:       storekeeper,
		ItemID:      e.itemID,
		Location:    warehouseA,
		NewQuantity: 15,
		Reason:      "cycle count",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if record.Quantity != 15 {
		t.Errorf("quantity = %d, want 15", record.Quantity)
	}
	if movement.Actor != "storekeeper-frank" {
		t.Errorf("movement actor = %q, want storekeeper-frank", movement.Actor)
	}
	if len(e.events.movements) != 1 {
		t.Errorf("published events = %d, want 1", len(e.events.movements))
	}
}

func TestAdjustStock_WithoutCapability(t *testing.T) {
	e := newCommandEnv(t)
	h := NewAdjustStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	_, _, err := h.Handle(context.Background(), AdjustStockCommand{
		Actor:       technician,
		ItemID:      e.itemID,
		Location:    warehouseA,
		NewQuantity: 15,
		Reason:      "cycle count",
	})
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}

	// the gate runs before any mutation
	if _, err := e.stock.GetStock(context.Background(), e.itemID, warehouseA); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("stock record err = %v, want none created", err)
	}
	if len(e.events.movements) != 0 {
		t.Error("event published despite denial")
	}
}

func TestAdjustStock_Validation(t *testing.T) {
	e := newCommandEnv(t)
	h := NewAdjustStockHandler(e.stock, e.items, e.locations, e.authz, e.events)
	ctx := context.Background()

	if _, _, err := h.Handle(ctx, AdjustStockCommand{
		Actor: storekeeper, ItemID: e.itemID, Location: warehouseA, NewQuantity: -1, Reason: "cycle count",
	}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("negative quantity err = %v, want ErrValidation", err)
	}

	if _, _, err := h.Handle(ctx, AdjustStockCommand{
		Actor: storekeeper, ItemID: e.itemID, Location: warehouseA, NewQuantity: 5,
	}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing reason err = %v, want ErrValidation", err)
	}
}

func TestAdjustStock_UnknownItemAndLocation(t *testing.T) {
	e := newCommandEnv(t)
	h := NewAdjustStockHandler(e.stock, e.items, e.locations, e.authz, e.events)
	ctx := context.Background()

	if _, _, err := h.Handle(ctx, AdjustStockCommand{
		Actor: storekeeper, ItemID: 999, Location: warehouseA, NewQuantity: 5, Reason: "cycle count",
	}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown item err = %v, want ErrNotFound", err)
	}

	missing := locdomain.LocationRef{Type: locdomain.LocationSite, ID: 404}
	if _, _, err := h.Handle(ctx, AdjustStockCommand{
		Actor: storekeeper, ItemID: e.itemID, Location: missing, NewQuantity: 5, Reason: "cycle count",
	}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown location err = %v, want ErrNotFound", err)
	}
}

func TestAdjustStock_InactiveItem(t *testing.T) {
	e := newCommandEnv(t)
	ctx := context.Background()

	item, err := e.items.FindByID(ctx, e.itemID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	item.Active = false
	if err := e.items.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	h := NewAdjustStockHandler(e.stock, e.items, e.locations, e.authz, e.events)
	if _, _, err := h.Handle(ctx, AdjustStockCommand{
		Actor: storekeeper, ItemID: e.itemID, Location: warehouseA, NewQuantity: 5, Reason: "cycle count",
	}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("inactive item err = %v, want ErrValidation", err)
	}
}

func TestAdjustStock_PublishFailureDoesNotFailCommand(t *testing.T) {
	e := newCommandEnv(t)
	e.events.err = errors.New("broker unreachable")
	h := NewAdjustStockHandler(e.stock, e.items, e.locations, e.authz, e.events)

	record, _, err := h.Handle(context.Background(), AdjustStockCommand{
		Actor: storekeeper, ItemID: e.itemID, Location: warehouseA, NewQuantity: 5, Reason: "cycle count",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if record.Quantity != 5 {
		t.Errorf("quantity = %d, want 5 despite publish failure", record.Quantity)
	}
}
