package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

// GormRequestRepository is the only writer of request status and timestamps.
// The ledger legs of approval and cancellation go through the injected
// RequestLedger so stock arithmetic stays inside the ledger module.
type GormRequestRepository struct {
	db     *gorm.DB
	ledger ledgerdomain.RequestLedger
}

func NewGormRequestRepository(db *gorm.DB, ledger ledgerdomain.RequestLedger) *GormRequestRepository {
	return &GormRequestRepository{db: db, ledger: ledger}
}

func (r *GormRequestRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.InventoryRequest{})
}

func (r *GormRequestRepository) Create(ctx context.Context, request *domain.InventoryRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id uint) (*domain.InventoryRequest, error) {
	var request domain.InventoryRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("request %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *GormRequestRepository) FindAll(ctx context.Context, f domain.RequestFilter) ([]domain.InventoryRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.InventoryRequest{})

	if f.WorkOrderID != "" {
		q = q.Where("work_order_id = ?", f.WorkOrderID)
	}
	if f.ItemID != 0 {
		q = q.Where("item_id = ?", f.ItemID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Urgency != "" {
		q = q.Where("urgency = ?", f.Urgency)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []domain.InventoryRequest
	err := q.Order("requested_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&requests).Error
	return requests, total, err
}

// Approve flips PENDING to APPROVED and withdraws the approved quantity from
// the source location in one transaction. If the withdrawal fails the whole
// transaction rolls back and the request stays PENDING.
func (r *GormRequestRepository) Approve(ctx context.Context, id uint, approvedQty int64, source locdomain.LocationRef, notes, actor string) (*domain.InventoryRequest, error) {
	var out *domain.InventoryRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := loadRequest(tx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&domain.InventoryRequest{}).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Updates(map[string]interface{}{
				"status":               domain.StatusApproved,
				"quantity_approved":    approvedQty,
				"source_location_type": source.Type,
				"source_location_id":   source.ID,
				"review_notes":         notes,
				"approved_at":          now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to approve request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidTransitionf("request %d is %s, only PENDING requests can be approved", id, request.Status)
		}

		if _, err := r.ledger.WithdrawTx(tx, ledgerdomain.RequestMoveParams{
			ItemID:    request.ItemID,
			Location:  source,
			Quantity:  approvedQty,
			RequestID: id,
			Reason:    "request approved",
			Actor:     actor,
		}); err != nil {
			return err
		}

		out, err = loadRequest(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject flips PENDING to REJECTED. No ledger effect.
func (r *GormRequestRepository) Reject(ctx context.Context, id uint, notes, actor string) (*domain.InventoryRequest, error) {
	return r.transition(ctx, id, domain.StatusPending, func(request *domain.InventoryRequest) map[string]interface{} {
		return map[string]interface{}{
			"status":       domain.StatusRejected,
			"review_notes": notes,
			"rejected_at":  time.Now(),
		}
	}, "only PENDING requests can be rejected")
}

// Deliver flips APPROVED to DELIVERED, recording custody handover. The stock
// already moved at approval; quantityDelivered falls back to the requested
// quantity if no approved quantity was recorded.
func (r *GormRequestRepository) Deliver(ctx context.Context, id uint, notes, actor string) (*domain.InventoryRequest, error) {
	return r.transition(ctx, id, domain.StatusApproved, func(request *domain.InventoryRequest) map[string]interface{} {
		delivered := request.QuantityRequested
		if request.QuantityApproved != nil {
			delivered = *request.QuantityApproved
		}
		updates := map[string]interface{}{
			"status":             domain.StatusDelivered,
			"quantity_delivered": delivered,
			"delivered_at":       time.Now(),
		}
		if notes != "" {
			updates["review_notes"] = notes
		}
		return updates
	}, "only APPROVED requests can be delivered")
}

// ConfirmReceipt flips DELIVERED to RECEIVED. Calling it again on an already
// RECEIVED request fails the status guard.
func (r *GormRequestRepository) ConfirmReceipt(ctx context.Context, id uint, notes, actor string) (*domain.InventoryRequest, error) {
	return r.transition(ctx, id, domain.StatusDelivered, func(request *domain.InventoryRequest) map[string]interface{} {
		updates := map[string]interface{}{
			"status":      domain.StatusReceived,
			"received_at": time.Now(),
		}
		if notes != "" {
			updates["review_notes"] = notes
		}
		return updates
	}, "only DELIVERED requests can be received")
}

// Cancel abandons a request. From PENDING it is a plain status flip; from
// APPROVED the approved quantity is returned to the source location with a
// compensating IN movement in the same transaction.
func (r *GormRequestRepository) Cancel(ctx context.Context, id uint, notes, actor string) (*domain.InventoryRequest, error) {
	var out *domain.InventoryRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := loadRequest(tx, id)
		if err != nil {
			return err
		}

		if request.Status != domain.StatusPending && request.Status != domain.StatusApproved {
			return apperr.InvalidTransitionf("request %d is %s, only PENDING or APPROVED requests can be cancelled", id, request.Status)
		}

		res := tx.Model(&domain.InventoryRequest{}).
			Where("id = ? AND status = ?", id, request.Status).
			Updates(map[string]interface{}{
				"status":       domain.StatusCancelled,
				"review_notes": notes,
				"cancelled_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidTransitionf("request %d changed state concurrently", id)
		}

		if request.Status == domain.StatusApproved {
			source := request.SourceLocation()
			if source == nil || request.QuantityApproved == nil {
				return fmt.Errorf("approved request %d is missing its source location", id)
			}
			if _, err := r.ledger.DepositTx(tx, ledgerdomain.RequestMoveParams{
				ItemID:    request.ItemID,
				Location:  *source,
				Quantity:  *request.QuantityApproved,
				RequestID: id,
				Reason:    "request cancelled",
				Actor:     actor,
			}); err != nil {
				return err
			}
		}

		out, err = loadRequest(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// transition applies a guarded single-predecessor status flip
func (r *GormRequestRepository) transition(
	ctx context.Context,
	id uint,
	fromStatus string,
	updatesFor func(*domain.InventoryRequest) map[string]interface{},
	guardMessage string,
) (*domain.InventoryRequest, error) {
	var out *domain.InventoryRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := loadRequest(tx, id)
		if err != nil {
			return err
		}

		res := tx.Model(&domain.InventoryRequest{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Updates(updatesFor(request))
		if res.Error != nil {
			return fmt.Errorf("failed to update request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidTransitionf("request %d is %s, %s", id, request.Status, guardMessage)
		}

		out, err = loadRequest(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadRequest(tx *gorm.DB, id uint) (*domain.InventoryRequest, error) {
	var request domain.InventoryRequest
	err := tx.First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("request %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return &request, nil
}
