package command

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

func TestCancelRequest_NotesRequired(t *testing.T) {
	e := newWorkflowEnv(t)
	request := e.createPending(t, 2)

	h := NewCancelRequestHandler(e.requests, e.authz, e.events)
	_, err := h.Handle(context.Background(), CancelRequestCommand{
		Actor:     technician,
		RequestID: request.ID,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCancelRequest_ApprovedRestoresBalance(t *testing.T) {
	e := newWorkflowEnv(t)
	e.seedStock(t, 10)
	request := e.createPending(t, 4)
	ctx := context.Background()

	approve := NewApproveRequestHandler(e.requests, e.locations, e.authz, e.events)
	if _, err := approve.Handle(ctx, ApproveRequestCommand{
		Actor: supervisor, RequestID: request.ID, ApprovedQuantity: 4, Source: warehouseA,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cancel := NewCancelRequestHandler(e.requests, e.authz, e.events)
	cancelled, err := cancel.Handle(ctx, CancelRequestCommand{
		Actor:     supervisor,
		RequestID: request.ID,
		Notes:     "work order closed",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %q, want CANCELLED", cancelled.Status)
	}

	record, err := e.stock.GetStock(ctx, e.itemID, warehouseA)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if record.Quantity != 10 {
		t.Errorf("balance = %d, want 10 after the compensating return", record.Quantity)
	}

	last := e.events.events[len(e.events.events)-1]
	if last != EventRequestCancelled {
		t.Errorf("last event = %q, want request.cancelled", last)
	}
}

func TestCancelRequest_DeliveredRefuses(t *testing.T) {
	e := newWorkflowEnv(t)
	e.seedStock(t, 10)
	request := e.createPending(t, 2)
	ctx := context.Background()

	approve := NewApproveRequestHandler(e.requests, e.locations, e.authz, e.events)
	if _, err := approve.Handle(ctx, ApproveRequestCommand{
		Actor: supervisor, RequestID: request.ID, ApprovedQuantity: 2, Source: warehouseA,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	deliver := NewDeliverRequestHandler(e.requests, e.authz, e.events)
	if _, err := deliver.Handle(ctx, DeliverRequestCommand{Actor: supervisor, RequestID: request.ID}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	cancel := NewCancelRequestHandler(e.requests, e.authz, e.events)
	_, err := cancel.Handle(ctx, CancelRequestCommand{
		Actor:     supervisor,
		RequestID: request.ID,
		Notes:     "too late",
	})
	if !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Fatalf("err = %v, want ErrInvalidStateTransition once custody changed", err)
	}
}
