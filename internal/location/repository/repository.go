package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/location/domain"
)

type GormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Warehouse{}, &domain.Vehicle{}, &domain.Site{})
}

// Exists resolves a tagged reference against its owning table
func (r *GormLocationRepository) Exists(ctx context.Context, ref domain.LocationRef) (bool, error) {
	var err error
	switch ref.Type {
	case domain.LocationWarehouse:
		err = r.db.WithContext(ctx).First(&domain.Warehouse{}, ref.ID).Error
	case domain.LocationVehicle:
		err = r.db.WithContext(ctx).First(&domain.Vehicle{}, ref.ID).Error
	case domain.LocationSite:
		err = r.db.WithContext(ctx).First(&domain.Site{}, ref.ID).Error
	default:
		return false, fmt.Errorf("unknown location type %q", ref.Type)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormLocationRepository) CreateWarehouse(ctx context.Context, w *domain.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *GormLocationRepository) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *GormLocationRepository) CreateSite(ctx context.Context, s *domain.Site) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormLocationRepository) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var out []domain.Warehouse
	err := r.db.WithContext(ctx).Order("code").Find(&out).Error
	return out, err
}

func (r *GormLocationRepository) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	err := r.db.WithContext(ctx).Order("plate").Find(&out).Error
	return out, err
}

func (r *GormLocationRepository) ListSites(ctx context.Context) ([]domain.Site, error) {
	var out []domain.Site
	err := r.db.WithContext(ctx).Order("code").Find(&out).Error
	return out, err
}
