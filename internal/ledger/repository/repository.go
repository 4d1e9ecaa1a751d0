package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockRecord{}, &domain.Movement{})
}

func (r *GormStockRepository) GetStock(ctx context.Context, itemID uint, ref locdomain.LocationRef) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND location_type = ? AND location_id = ?", itemID, ref.Type, ref.ID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormStockRepository) ListStock(ctx context.Context, itemID uint) ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("location_type, location_id").
		Find(&records).Error
	return records, err
}

// Adjust sets an (item, location) balance to a stated target quantity, writing
// an ADJUSTMENT movement with the signed delta. The balance update guards on
// the quantity it read; a lost race is re-read and retried once.
func (r *GormStockRepository) Adjust(ctx context.Context, p domain.AdjustParams) (*domain.StockRecord, *domain.Movement, error) {
	var (
		record   domain.StockRecord
		movement *domain.Movement
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < 2; attempt++ {
			record = domain.StockRecord{}
			if err := tx.Where(domain.StockRecord{
				ItemID:       p.ItemID,
				LocationType: p.Location.Type,
				LocationID:   p.Location.ID,
			}).FirstOrCreate(&record).Error; err != nil {
				return fmt.Errorf("failed to load stock record: %w", err)
			}

			delta := p.NewQuantity - record.Quantity

			res := tx.Model(&domain.StockRecord{}).
				Where("id = ? AND quantity = ?", record.ID, record.Quantity).
				Update("quantity", p.NewQuantity)
			if res.Error != nil {
				return fmt.Errorf("failed to update stock record: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// concurrent writer moved the balance, take one fresh read
				continue
			}

			record.Quantity = p.NewQuantity
			movement = &domain.Movement{
				ItemID:       p.ItemID,
				Type:         domain.MovementAdjustment,
				Quantity:     delta,
				LocationType: p.Location.Type,
				LocationID:   p.Location.ID,
				Reason:       p.Reason,
				Notes:        p.Notes,
				Actor:        p.Actor,
			}
			return insertMovement(tx, movement)
		}
		return fmt.Errorf("stock record for item %d contended, adjustment aborted", p.ItemID)
	})
	if err != nil {
		return nil, nil, err
	}
	return &record, movement, nil
}

// Transfer atomically moves quantity between two locations: conditional
// decrement at the source, upsert increment at the destination, one TRANSFER
// movement carrying both legs. Either all of it commits or none of it does.
func (r *GormStockRepository) Transfer(ctx context.Context, p domain.TransferParams) (*domain.Movement, error) {
	var movement *domain.Movement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrement(tx, p.ItemID, p.From, p.Quantity); err != nil {
			return err
		}
		if err := increment(tx, p.ItemID, p.To, p.Quantity); err != nil {
			return err
		}

		toType := p.To.Type
		toID := p.To.ID
		movement = &domain.Movement{
			ItemID:         p.ItemID,
			Type:           domain.MovementTransfer,
			Quantity:       -p.Quantity,
			LocationType:   p.From.Type,
			LocationID:     p.From.ID,
			ToLocationType: &toType,
			ToLocationID:   &toID,
			Reason:         p.Reason,
			Notes:          p.Notes,
			Actor:          p.Actor,
		}
		return insertMovement(tx, movement)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// Receive books goods receipt from outside the ledger as an IN movement
func (r *GormStockRepository) Receive(ctx context.Context, p domain.ReceiveParams) (*domain.Movement, error) {
	var movement *domain.Movement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := increment(tx, p.ItemID, p.Location, p.Quantity); err != nil {
			return err
		}

		movement = &domain.Movement{
			ItemID:       p.ItemID,
			Type:         domain.MovementIn,
			Quantity:     p.Quantity,
			LocationType: p.Location.Type,
			LocationID:   p.Location.ID,
			Reason:       p.Reason,
			Notes:        p.Notes,
			Actor:        p.Actor,
		}
		return insertMovement(tx, movement)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// WithdrawTx consumes stock for a request inside the caller's transaction,
// writing an OUT movement tagged with the request id. The insufficiency check
// is the same conditional decrement used by transfers.
func (r *GormStockRepository) WithdrawTx(tx *gorm.DB, p domain.RequestMoveParams) (*domain.Movement, error) {
	if err := decrement(tx, p.ItemID, p.Location, p.Quantity); err != nil {
		return nil, err
	}

	requestID := p.RequestID
	movement := &domain.Movement{
		ItemID:       p.ItemID,
		Type:         domain.MovementOut,
		Quantity:     -p.Quantity,
		LocationType: p.Location.Type,
		LocationID:   p.Location.ID,
		Reason:       p.Reason,
		RequestID:    &requestID,
		Actor:        p.Actor,
	}
	if err := insertMovement(tx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// DepositTx returns stock to a location inside the caller's transaction,
// writing an IN movement tagged with the request id (cancellation return)
func (r *GormStockRepository) DepositTx(tx *gorm.DB, p domain.RequestMoveParams) (*domain.Movement, error) {
	if err := increment(tx, p.ItemID, p.Location, p.Quantity); err != nil {
		return nil, err
	}

	requestID := p.RequestID
	movement := &domain.Movement{
		ItemID:       p.ItemID,
		Type:         domain.MovementIn,
		Quantity:     p.Quantity,
		LocationType: p.Location.Type,
		LocationID:   p.Location.ID,
		Reason:       p.Reason,
		RequestID:    &requestID,
		Actor:        p.Actor,
	}
	if err := insertMovement(tx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *GormStockRepository) ListMovements(ctx context.Context, f domain.MovementFilter) ([]domain.Movement, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Movement{})

	if f.ItemID != 0 {
		q = q.Where("item_id = ?", f.ItemID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Location != nil {
		q = q.Where(
			"(location_type = ? AND location_id = ?) OR (to_location_type = ? AND to_location_id = ?)",
			f.Location.Type, f.Location.ID, f.Location.Type, f.Location.ID,
		)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []domain.Movement
	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&movements).Error
	return movements, total, err
}

// LedgerBalance reconstructs a balance from the movement log: the signed sum of
// primary legs at the location minus the signed sum of transfer legs arriving
// there (destination legs are the negation of their stored quantity).
func (r *GormStockRepository) LedgerBalance(ctx context.Context, itemID uint, ref locdomain.LocationRef) (int64, error) {
	var primary, arriving int64

	err := r.db.WithContext(ctx).Model(&domain.Movement{}).
		Where("item_id = ? AND location_type = ? AND location_id = ?", itemID, ref.Type, ref.ID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&primary).Error
	if err != nil {
		return 0, err
	}

	err = r.db.WithContext(ctx).Model(&domain.Movement{}).
		Where("item_id = ? AND to_location_type = ? AND to_location_id = ?", itemID, ref.Type, ref.ID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&arriving).Error
	if err != nil {
		return 0, err
	}

	return primary - arriving, nil
}

func (r *GormStockRepository) HasStockOrMovements(ctx context.Context, itemID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StockRecord{}).
		Where("item_id = ? AND quantity <> 0", itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = r.db.WithContext(ctx).Model(&domain.Movement{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// decrement applies "quantity = quantity - n where quantity >= n". Zero rows
// affected means the source is short (or absent); the loser of a concurrent
// drain surfaces InsufficientStock rather than driving the balance negative.
func decrement(tx *gorm.DB, itemID uint, ref locdomain.LocationRef, qty int64) error {
	res := tx.Model(&domain.StockRecord{}).
		Where("item_id = ? AND location_type = ? AND location_id = ? AND quantity >= ?",
			itemID, ref.Type, ref.ID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var available int64
		var record domain.StockRecord
		err := tx.Where("item_id = ? AND location_type = ? AND location_id = ?",
			itemID, ref.Type, ref.ID).First(&record).Error
		if err == nil {
			available = record.Quantity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to read stock record: %w", err)
		}
		return apperr.InsufficientStockf(available, qty)
	}
	return nil
}

// increment upserts the destination record, creating it lazily on first
// movement into the location
func increment(tx *gorm.DB, itemID uint, ref locdomain.LocationRef, qty int64) error {
	record := domain.StockRecord{
		ItemID:       itemID,
		LocationType: ref.Type,
		LocationID:   ref.ID,
		Quantity:     qty,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "location_type"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("stock_records.quantity + ?", qty),
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}

func insertMovement(tx *gorm.DB, m *domain.Movement) error {
	m.Reference = fmt.Sprintf("MOV-%s", uuid.New().String()[:12])
	if err := tx.Create(m).Error; err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}
	return nil
}
