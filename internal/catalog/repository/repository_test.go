package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedItem(t *testing.T, repo *GormItemRepository, companyID uint, code, name, category string) *domain.Item {
	t.Helper()
	item := &domain.Item{
		CompanyID: companyID,
		Code:      code,
		Name:      name,
		Category:  category,
		Unit:      "unit",
		Active:    true,
	}
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("seed item %s: %v", code, err)
	}
	return item
}

func TestCreateAndFindByCode(t *testing.T) {
	repo := NewGormItemRepository(testDB(t))
	ctx := context.Background()

	created := seedItem(t, repo, 1, "FLT-001", "Oil filter", "filters")

	found, err := repo.FindByCode(ctx, 1, "FLT-001")
	if err != nil {
		t.Fatalf("FindByCode: %v", err)
	}
	if found.ID != created.ID || found.Name != "Oil filter" {
		t.Errorf("found %d/%q, want %d/Oil filter", found.ID, found.Name, created.ID)
	}
}

func TestFindByCode_ScopedToCompany(t *testing.T) {
	repo := NewGormItemRepository(testDB(t))
	ctx := context.Background()

	seedItem(t, repo, 1, "FLT-001", "Oil filter", "filters")

	// same code under another company is a different item
	if _, err := repo.FindByCode(ctx, 2, "FLT-001"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound for another company", err)
	}
	seedItem(t, repo, 2, "FLT-001", "Oil filter (fleet B)", "filters")
}

func TestFindAll_Filters(t *testing.T) {
	repo := NewGormItemRepository(testDB(t))
	ctx := context.Background()

	seedItem(t, repo, 1, "FLT-001", "Oil filter", "filters")
	seedItem(t, repo, 1, "BLT-010", "Drive belt", "belts")
	inactive := seedItem(t, repo, 1, "FLT-002", "Air filter", "filters")
	inactive.Active = false
	if err := repo.Update(ctx, inactive); err != nil {
		t.Fatalf("Update: %v", err)
	}

	byCategory, total, err := repo.FindAll(ctx, domain.ItemFilter{CompanyID: 1, Category: "filters", Limit: 10})
	if err != nil {
		t.Fatalf("FindAll category: %v", err)
	}
	if total != 2 || len(byCategory) != 2 {
		t.Errorf("filters category rows = %d, want 2", total)
	}

	active := true
	activeOnly, total, err := repo.FindAll(ctx, domain.ItemFilter{CompanyID: 1, Active: &active, Limit: 10})
	if err != nil {
		t.Fatalf("FindAll active: %v", err)
	}
	if total != 2 || len(activeOnly) != 2 {
		t.Errorf("active rows = %d, want 2", total)
	}

	bySearch, total, err := repo.FindAll(ctx, domain.ItemFilter{CompanyID: 1, Search: "belt", Limit: 10})
	if err != nil {
		t.Fatalf("FindAll search: %v", err)
	}
	if total != 1 || len(bySearch) != 1 || bySearch[0].Code != "BLT-010" {
		t.Errorf("search rows = %d, want just BLT-010", total)
	}
}

func TestUpdate_PersistsChanges(t *testing.T) {
	repo := NewGormItemRepository(testDB(t))
	ctx := context.Background()

	item := seedItem(t, repo, 1, "FLT-001", "Oil filter", "filters")
	item.UnitCostCents = 1250
	item.MinStock = 5
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := repo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.UnitCostCents != 1250 || found.MinStock != 5 {
		t.Errorf("cost/min = %d/%d, want 1250/5", found.UnitCostCents, found.MinStock)
	}
}

func TestDeactivate_HidesItemFromReads(t *testing.T) {
	repo := NewGormItemRepository(testDB(t))
	ctx := context.Background()

	item := seedItem(t, repo, 1, "FLT-001", "Oil filter", "filters")
	if err := repo.Deactivate(ctx, item.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, err := repo.FindByID(ctx, item.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("FindByID err = %v, want ErrRecordNotFound after soft delete", err)
	}
	_, total, err := repo.FindAll(ctx, domain.ItemFilter{CompanyID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if total != 0 {
		t.Errorf("rows = %d, want 0 after soft delete", total)
	}
}

func TestDeactivate_Missing(t *testing.T) {
	repo := NewGormItemRepository(testDB(t))
	if err := repo.Deactivate(context.Background(), 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}
