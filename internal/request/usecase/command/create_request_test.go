package command

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	catalogrepo "github.com/fieldops/cmms-inventory/internal/catalog/repository"
	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	ledgerrepo "github.com/fieldops/cmms-inventory/internal/ledger/repository"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	requestrepo "github.com/fieldops/cmms-inventory/internal/request/repository"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

var (
	warehouseA = locdomain.LocationRef{Type: locdomain.LocationWarehouse, ID: 1}

	technician = auth.Actor{
		UserID:    11,
		Username:  "tech-dave",
		CompanyID: 1,
		Permissions: []string{
			auth.PermCreateRequest,
			auth.PermConfirmReceipt,
			auth.PermCancelRequest,
		},
	}
	supervisor = auth.Actor{
		UserID:    12,
		Username:  "supervisor-erin",
		CompanyID: 1,
		Permissions: []string{
			auth.PermApproveRequest,
			auth.PermRejectRequest,
			auth.PermDeliverRequest,
			auth.PermCancelRequest,
		},
	}
	visitor = auth.Actor{UserID: 13, Username: "visitor", CompanyID: 1}
)

// staticResolver answers existence checks from a fixed allow set
type staticResolver map[locdomain.LocationRef]bool

func (r staticResolver) Exists(ctx context.Context, ref locdomain.LocationRef) (bool, error) {
	return r[ref], nil
}

// capturingPublisher records lifecycle events in order
type capturingPublisher struct {
	events []string
}

func (p *capturingPublisher) PublishRequestTransition(ctx context.Context, event string, request *domain.InventoryRequest) error {
	p.events = append(p.events, event)
	return nil
}

type workflowEnv struct {
	requests  *requestrepo.GormRequestRepository
	items     *catalogrepo.GormItemRepository
	stock     *ledgerrepo.GormStockRepository
	locations staticResolver
	authz     *auth.ClaimsAuthorizer
	events    *capturingPublisher
	itemID    uint
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
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

	if err := db.AutoMigrate(
		&catalogdomain.Item{},
		&ledgerdomain.StockRecord{},
		&ledgerdomain.Movement{},
		&domain.InventoryRequest{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	items := catalogrepo.NewGormItemRepository(db)
	item := &catalogdomain.Item{CompanyID: 1, Code: "FLT-001", Name: "Oil filter", Unit: "unit", Active: true}
	if err := items.Create(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	stock := ledgerrepo.NewGormStockRepository(db)
	return &workflowEnv{
		requests:  requestrepo.NewGormRequestRepository(db, stock),
		items:     items,
		stock:     stock,
		locations: staticResolver{warehouseA: true},
		authz:     auth.NewClaimsAuthorizer(),
		events:    &capturingPublisher{},
		itemID:    item.ID,
	}
}

func (e *workflowEnv) seedStock(t *testing.T, qty int64) {
	t.Helper()
	_, _, err := e.stock.Adjust(context.Background(), ledgerdomain.AdjustParams{
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

func (e *workflowEnv) createPending(t *testing.T, qty int64) *domain.InventoryRequest {
	t.Helper()
	h := NewCreateRequestHandler(e.requests, e.items, e.authz, e.events)
	request, err := h.Handle(context.Background(), CreateRequestCommand{
		Actor:       technician,
		WorkOrderID: "WO-100",
		ItemID:      e.itemID,
		Quantity:    qty,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return request
}

func TestCreateRequest_HappyPath(t *testing.T) {
	e := newWorkflowEnv(t)
	h := NewCreateRequestHandler(e.requests, e.items, e.authz, e.events)

	request, err := h.Handle(context.Background(), CreateRequestCommand{
		Actor:       technician,
		WorkOrderID: "WO-100",
		ItemID:      e.itemID,
		Quantity:    3,
		Urgency:     "HIGH",
		Notes:       "compressor down",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if request.Status != domain.StatusPending {
		t.Errorf("status = %q, want PENDING", request.Status)
	}
	if request.Urgency != domain.UrgencyHigh {
		t.Errorf("urgency = %q, want HIGH", request.Urgency)
	}
	if request.RequestNumber == "" {
		t.Error("request number not assigned")
	}
	if request.RequestedBy != "tech-dave" {
		t.Errorf("requested_by = %q, want tech-dave", request.RequestedBy)
	}
	if len(e.events.events) != 1 || e.events.events[0] != EventRequestCreated {
		t.Errorf("events = %v, want [request.created]", e.events.events)
	}
}

func TestCreateRequest_MediumUrgencyNormalizes(t *testing.T) {
	e := newWorkflowEnv(t)
	h := NewCreateRequestHandler(e.requests, e.items, e.authz, e.events)

	request, err := h.Handle(context.Background(), CreateRequestCommand{
		Actor:       technician,
		WorkOrderID: "WO-100",
		ItemID:      e.itemID,
		Quantity:    1,
		Urgency:     "MEDIUM",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if request.Urgency != domain.UrgencyNormal {
		t.Errorf("urgency = %q, want NORMAL", request.Urgency)
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	e := newWorkflowEnv(t)
	h := NewCreateRequestHandler(e.requests, e.items, e.authz, e.events)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  CreateRequestCommand
		want error
	}{
		{
			"missing work order",
			CreateRequestCommand{Actor: technician, ItemID: e.itemID, Quantity: 1},
			apperr.ErrValidation,
		},
		{
			"zero quantity",
			CreateRequestCommand{Actor: technician, WorkOrderID: "WO-100", ItemID: e.itemID, Quantity: 0},
			apperr.ErrValidation,
		},
		{
			"unknown urgency",
			CreateRequestCommand{Actor: technician, WorkOrderID: "WO-100", ItemID: e.itemID, Quantity: 1, Urgency: "ASAP"},
			apperr.ErrValidation,
		},
		{
			"unknown item",
			CreateRequestCommand{Actor: technician, WorkOrderID: "WO-100", ItemID: 999, Quantity: 1},
			apperr.ErrNotFound,
		},
		{
			"no capability",
			CreateRequestCommand{Actor: visitor, WorkOrderID: "WO-100", ItemID: e.itemID, Quantity: 1},
			apperr.ErrPermissionDenied,
		},
	}
	for _, c := range cases {
		if _, err := h.Handle(ctx, c.cmd); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
	if len(e.events.events) != 0 {
		t.Errorf("events = %v, want none for failed creates", e.events.events)
	}
}

func TestCreateRequest_ItemFromAnotherCompany(t *testing.T) {
	e := newWorkflowEnv(t)
	h := NewCreateRequestHandler(e.requests, e.items, e.authz, e.events)

	outsider := technician
	outsider.CompanyID = 2
	_, err := h.Handle(context.Background(), CreateRequestCommand{
		Actor:       outsider,
		WorkOrderID: "WO-100",
		ItemID:      e.itemID,
		Quantity:    1,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for an item outside the actor's company", err)
	}
}
