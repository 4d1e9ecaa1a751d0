package domain

import (
	"context"
	"time"

	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
)

// Request statuses. PENDING is initial; REJECTED, RECEIVED and CANCELLED are
// terminal. Every status is reachable only through its single valid
// predecessor transition.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusDelivered = "DELIVERED"
	StatusReceived  = "RECEIVED"
	StatusCancelled = "CANCELLED"
)

// Urgency levels. Queue-ordering metadata only; urgency never changes ledger
// behavior.
const (
	UrgencyLow      = "LOW"
	UrgencyNormal   = "NORMAL"
	UrgencyHigh     = "HIGH"
	UrgencyCritical = "CRITICAL"
)

// NormalizeUrgency maps input spellings onto the canonical set. MEDIUM is an
// accepted alias of NORMAL; empty defaults to NORMAL.
func NormalizeUrgency(urgency string) (string, bool) {
	switch urgency {
	case "":
		return UrgencyNormal, true
	case "MEDIUM":
		return UrgencyNormal, true
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return urgency, true
	}
	return "", false
}

// InventoryRequest is a work-order-driven parts request. Rows are never
// deleted; the full lifecycle stays queryable as a permanent audit record.
type InventoryRequest struct {
	ID                 uint                    `json:"id" gorm:"primaryKey"`
	RequestNumber      string                  `json:"request_number" gorm:"not null;uniqueIndex"`
	WorkOrderID        string                  `json:"work_order_id" gorm:"not null;index"`
	ItemID             uint                    `json:"item_id" gorm:"not null;index"`
	QuantityRequested  int64                   `json:"quantity_requested" gorm:"not null"`
	QuantityApproved   *int64                  `json:"quantity_approved,omitempty"`
	QuantityDelivered  int64                   `json:"quantity_delivered" gorm:"not null;default:0"`
	Urgency            string                  `json:"urgency" gorm:"not null;default:'NORMAL';index"`
	Status             string                  `json:"status" gorm:"not null;default:'PENDING';index"`
	SourceLocationType *locdomain.LocationType `json:"source_location_type,omitempty"`
	SourceLocationID   *uint                   `json:"source_location_id,omitempty"`
	ReviewNotes        string                  `json:"review_notes"`
	RequestedBy        string                  `json:"requested_by"`
	RequestedAt        time.Time               `json:"requested_at"`
	ApprovedAt         *time.Time              `json:"approved_at,omitempty"`
	RejectedAt         *time.Time              `json:"rejected_at,omitempty"`
	DeliveredAt        *time.Time              `json:"delivered_at,omitempty"`
	ReceivedAt         *time.Time              `json:"received_at,omitempty"`
	CancelledAt        *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

func (InventoryRequest) TableName() string {
	return "inventory_requests"
}

// SourceLocation returns the source set at approval, if any
func (r *InventoryRequest) SourceLocation() *locdomain.LocationRef {
	if r.SourceLocationType == nil || r.SourceLocationID == nil {
		return nil
	}
	return &locdomain.LocationRef{Type: *r.SourceLocationType, ID: *r.SourceLocationID}
}

// RequestFilter narrows request listings
type RequestFilter struct {
	WorkOrderID string
	ItemID      uint
	Status      string
	Urgency     string
	Limit       int
	Offset      int
}

// RequestRepository defines the contract for request data access. Transitions
// guard on the current status inside the UPDATE itself, so two concurrent
// calls on one request cannot both succeed. Approve and Cancel couple their
// ledger leg to the status flip in a single transaction.
type RequestRepository interface {
	Create(ctx context.Context, request *InventoryRequest) error
	FindByID(ctx context.Context, id uint) (*InventoryRequest, error)
	FindAll(ctx context.Context, f RequestFilter) ([]InventoryRequest, int64, error)
	Approve(ctx context.Context, id uint, approvedQty int64, source locdomain.LocationRef, notes, actor string) (*InventoryRequest, error)
	Reject(ctx context.Context, id uint, notes, actor string) (*InventoryRequest, error)
	Deliver(ctx context.Context, id uint, notes, actor string) (*InventoryRequest, error)
	ConfirmReceipt(ctx context.Context, id uint, notes, actor string) (*InventoryRequest, error)
	Cancel(ctx context.Context, id uint, notes, actor string) (*InventoryRequest, error)
}
