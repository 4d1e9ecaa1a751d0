package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Item is spare-part master data. The code is unique per company; monetary
// values are integer cents, balances never go through floating point.
type Item struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CompanyID     uint           `json:"company_id" gorm:"not null;uniqueIndex:idx_item_company_code"`
	Code          string         `json:"code" gorm:"not null;uniqueIndex:idx_item_company_code"`
	Name          string         `json:"name" gorm:"not null"`
	Category      string         `json:"category" gorm:"index"`
	Unit          string         `json:"unit" gorm:"not null;default:'unit'"`
	UnitCostCents int64          `json:"unit_cost_cents" gorm:"not null;default:0"`
	MinStock      int64          `json:"min_stock" gorm:"not null;default:0"`
	MaxStock      *int64         `json:"max_stock,omitempty"`
	Active        bool           `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Item) TableName() string {
	return "items"
}

// ItemUpdate carries the partial fields an update may touch
type ItemUpdate struct {
	Name          *string
	Category      *string
	Unit          *string
	UnitCostCents *int64
	MinStock      *int64
	MaxStock      *int64
	Active        *bool
}

// ItemFilter narrows catalog listings
type ItemFilter struct {
	CompanyID uint
	Search    string
	Category  string
	Active    *bool
	Limit     int
	Offset    int
}

// ItemRepository defines the contract for catalog data access
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id uint) (*Item, error)
	FindByCode(ctx context.Context, companyID uint, code string) (*Item, error)
	FindAll(ctx context.Context, f ItemFilter) ([]Item, int64, error)
	Update(ctx context.Context, item *Item) error
	Deactivate(ctx context.Context, id uint) error
}
