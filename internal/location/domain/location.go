package domain

import (
	"context"
	"time"
)

// LocationType discriminates which owning table a location reference resolves
// against. The three tables stay independent; there is no shared base entity.
type LocationType string

const (
	LocationWarehouse LocationType = "WAREHOUSE"
	LocationVehicle   LocationType = "VEHICLE"
	LocationSite      LocationType = "SITE"
)

// Valid reports whether the discriminator is one of the known types
func (t LocationType) Valid() bool {
	switch t {
	case LocationWarehouse, LocationVehicle, LocationSite:
		return true
	}
	return false
}

// LocationRef is the tagged reference used wherever "a place stock can sit"
// is needed. It is not an owned entity itself.
type LocationRef struct {
	Type LocationType `json:"location_type"`
	ID   uint         `json:"location_id"`
}

// Warehouse represents a fixed storage facility
type Warehouse struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// Vehicle represents a service vehicle carrying spare parts
type Vehicle struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Plate     string    `json:"plate" gorm:"not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// Site represents a client site where stock can be held
type Site struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Site) TableName() string {
	return "sites"
}

// Resolver answers whether a location reference points at a real row in its
// owning table. Ledger mutations consult it before touching balances.
type Resolver interface {
	Exists(ctx context.Context, ref LocationRef) (bool, error)
}

// LocationRepository defines the contract for location data access
type LocationRepository interface {
	Resolver
	CreateWarehouse(ctx context.Context, w *Warehouse) error
	CreateVehicle(ctx context.Context, v *Vehicle) error
	CreateSite(ctx context.Context, s *Site) error
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	ListSites(ctx context.Context) ([]Site, error)
}
