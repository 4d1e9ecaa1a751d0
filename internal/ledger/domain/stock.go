package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
)

// StockRecord holds the current balance for one (item, location) pair. Records
// are created lazily on first movement into a location and never deleted; the
// quantity may reach zero but must never go negative.
type StockRecord struct {
	ID           uint                   `json:"id" gorm:"primaryKey"`
	ItemID       uint                   `json:"item_id" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	LocationType locdomain.LocationType `json:"location_type" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	LocationID   uint                   `json:"location_id" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	Quantity     int64                  `json:"quantity" gorm:"not null;default:0"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (StockRecord) TableName() string {
	return "stock_records"
}

// Ref returns the record's location as a tagged reference
func (s *StockRecord) Ref() locdomain.LocationRef {
	return locdomain.LocationRef{Type: s.LocationType, ID: s.LocationID}
}

// Movement types
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementTransfer   = "TRANSFER"
	MovementAdjustment = "ADJUSTMENT"
)

// Movement is one immutable, signed, reasoned change to a balance. Quantity is
// signed from the perspective of the primary location; a TRANSFER row carries
// the source leg (negative) and its destination leg is the negation. The signed
// sum of all legs touching a (item, location) pair equals the current balance.
type Movement struct {
	ID             uint                    `json:"id" gorm:"primaryKey"`
	Reference      string                  `json:"reference" gorm:"not null;uniqueIndex"`
	ItemID         uint                    `json:"item_id" gorm:"not null;index:idx_movement_item_location"`
	Type           string                  `json:"type" gorm:"not null"`
	Quantity       int64                   `json:"quantity" gorm:"not null"`
	LocationType   locdomain.LocationType  `json:"location_type" gorm:"not null;index:idx_movement_item_location"`
	LocationID     uint                    `json:"location_id" gorm:"not null;index:idx_movement_item_location"`
	ToLocationType *locdomain.LocationType `json:"to_location_type,omitempty"`
	ToLocationID   *uint                   `json:"to_location_id,omitempty"`
	Reason         string                  `json:"reason" gorm:"not null"`
	Notes          string                  `json:"notes"`
	RequestID      *uint                   `json:"request_id,omitempty" gorm:"index"`
	Actor          string                  `json:"actor"`
	CreatedAt      time.Time               `json:"created_at" gorm:"index"`
}

func (Movement) TableName() string {
	return "movements"
}

// AdjustParams states a target balance directly; the repository derives the
// signed delta for the ADJUSTMENT movement.
type AdjustParams struct {
	ItemID      uint
	Location    locdomain.LocationRef
	NewQuantity int64
	Reason      string
	Notes       string
	Actor       string
}

// TransferParams moves quantity between two locations in one atomic unit
type TransferParams struct {
	ItemID   uint
	From     locdomain.LocationRef
	To       locdomain.LocationRef
	Quantity int64
	Reason   string
	Notes    string
	Actor    string
}

// ReceiveParams books external goods receipt into a location
type ReceiveParams struct {
	ItemID   uint
	Location locdomain.LocationRef
	Quantity int64
	Reason   string
	Notes    string
	Actor    string
}

// RequestMoveParams is the one-sided movement fired by the request workflow:
// an OUT leg at approval, or a compensating IN leg on cancellation.
type RequestMoveParams struct {
	ItemID    uint
	Location  locdomain.LocationRef
	Quantity  int64
	RequestID uint
	Reason    string
	Actor     string
}

// MovementFilter narrows movement listings
type MovementFilter struct {
	ItemID   uint
	Type     string
	Location *locdomain.LocationRef
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// StockRepository is the only component permitted to change a StockRecord.
// Every balance change writes exactly one Movement in the same transaction.
type StockRepository interface {
	GetStock(ctx context.Context, itemID uint, ref locdomain.LocationRef) (*StockRecord, error)
	ListStock(ctx context.Context, itemID uint) ([]StockRecord, error)
	Adjust(ctx context.Context, p AdjustParams) (*StockRecord, *Movement, error)
	Transfer(ctx context.Context, p TransferParams) (*Movement, error)
	Receive(ctx context.Context, p ReceiveParams) (*Movement, error)
	ListMovements(ctx context.Context, f MovementFilter) ([]Movement, int64, error)
	LedgerBalance(ctx context.Context, itemID uint, ref locdomain.LocationRef) (int64, error)
	HasStockOrMovements(ctx context.Context, itemID uint) (bool, error)
}

// RequestLedger exposes the transaction-scoped legs the request workflow needs
// so the stock effect commits or rolls back together with the status change.
// Implemented by the same repository; no other component writes stock.
type RequestLedger interface {
	WithdrawTx(tx *gorm.DB, p RequestMoveParams) (*Movement, error)
	DepositTx(tx *gorm.DB, p RequestMoveParams) (*Movement, error)
}
