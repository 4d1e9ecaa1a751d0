package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
)

type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Item{})
}

func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) FindByCode(ctx context.Context, companyID uint, code string) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) FindAll(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Item{})

	if f.CompanyID != 0 {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Item
	err := q.Order("code").Limit(f.Limit).Offset(f.Offset).Find(&items).Error
	return items, total, err
}

func (r *GormItemRepository) Update(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Deactivate flags the item inactive and soft-deletes it. Items with stock or
// movement history never reach this path; the command layer blocks them first.
func (r *GormItemRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Item{}).Where("id = ?", id).Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&domain.Item{}, id).Error
	})
}
