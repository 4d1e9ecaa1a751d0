package command

import (
	"context"
	"errors"
	"testing"

	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

func TestApproveRequest_HappyPath(t *testing.T) {
	e := newWorkflowEnv(t)
	e.seedStock(t, 10)
	request := e.createPending(t, 4)

	h := NewApproveRequestHandler(e.requests, e.locations, e.authz, e.events)
	approved, err := h.Handle(context.Background(), ApproveRequestCommand{
		Actor:            supervisor,
		RequestID:        request.ID,
		ApprovedQuantity: 4,
		Source:           warehouseA,
		Notes:            "ok",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Errorf("status = %q, want APPROVED", approved.Status)
	}
	want := []string{EventRequestCreated, EventRequestApproved}
	if len(e.events.events) != 2 || e.events.events[1] != EventRequestApproved {
		t.Errorf("events = %v, want %v", e.events.events, want)
	}
}

func TestApproveRequest_QuantityAboveRequested(t *testing.T) {
	e := newWorkflowEnv(t)
	e.seedStock(t, 10)
	request := e.createPending(t, 2)

	h := NewApproveRequestHandler(e.requests, e.locations, e.authz, e.events)
	_, err := h.Handle(context.Background(), ApproveRequestCommand{
		Actor:            supervisor,
		RequestID:        request.ID,
		ApprovedQuantity: 3,
		Source:           warehouseA,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestApproveRequest_UnknownSourceLocation(t *testing.T) {
	e := newWorkflowEnv(t)
	e.seedStock(t, 10)
	request := e.createPending(t, 2)

	h := NewApproveRequestHandler(e.requests, e.locations, e.authz, e.events)
	_, err := h.Handle(context.Background(), ApproveRequestCommand{
		Actor:            supervisor,
		RequestID:        request.ID,
		ApprovedQuantity: 2,
		Source:           locdomain.LocationRef{Type: locdomain.LocationSite, ID: 404},
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApproveRequest_WithoutCapability(t *testing.T) {
	e := newWorkflowEnv(t)
	e.seedStock(t, 10)
	request := e.createPending(t, 2)

	h := NewApproveRequestHandler(e.requests, e.locations, e.authz, e.events)
	_, err := h.Handle(context.Background(), ApproveRequestCommand{
		Actor:            technician,
		RequestID:        request.ID,
		ApprovedQuantity: 2,
		Source:           warehouseA,
	})
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestRejectRequest_NotesRequired(t *testing.T) {
	e := newWorkflowEnv(t)
	request := e.createPending(t, 2)

	h := NewRejectRequestHandler(e.requests, e.authz, e.events)
	if _, err := h.Handle(context.Background(), RejectRequestCommand{
		Actor:     supervisor,
		RequestID: request.ID,
	}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation without notes", err)
	}

	rejected, err := h.Handle(context.Background(), RejectRequestCommand{
		Actor:     supervisor,
		RequestID: request.ID,
		Notes:     "use refurbished part",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Errorf("status = %q, want REJECTED", rejected.Status)
	}
	if rejected.ReviewNotes != "use refurbished part" {
		t.Errorf("review notes = %q, want the rejection reason", rejected.ReviewNotes)
	}
}

func TestDeliverThenConfirm_EmitsLifecycleEvents(t *testing.T) {
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

	confirm := NewConfirmReceiptHandler(e.requests, e.authz, e.events)
	received, err := confirm.Handle(ctx, ConfirmReceiptCommand{Actor: technician, RequestID: request.ID})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if received.Status != domain.StatusReceived {
		t.Errorf("status = %q, want RECEIVED", received.Status)
	}

	want := []string{EventRequestCreated, EventRequestApproved, EventRequestDelivered, EventRequestReceived}
	if len(e.events.events) != len(want) {
		t.Fatalf("events = %v, want %v", e.events.events, want)
	}
	for i, event := range want {
		if e.events.events[i] != event {
			t.Errorf("event[%d] = %q, want %q", i, e.events.events[i], event)
		}
	}
}
