package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
)

func SeedHospital(tb testing.TB, tx *gorm.DB, name string, level int) *types.Hospital {
	tb.Helper()
	h := &types.Hospital{
		OrgCode:          "ORG-" + uuid.NewString()[:8],
		Name:             name,
		Level:            level,
		Address:          "1 Main St",
		StorageVolume:    decimal.NewFromInt(1000),
		CurrentCapacity:  decimal.NewFromInt(100),
		IsActive:         true,
		WarningThreshold: decimal.NewFromInt(20),
	}
	if err := tx.Create(h).Error; err != nil {
		tb.Fatalf("seed hospital: %v", err)
	}
	return h
}

func SeedSupply(tb testing.TB, tx *gorm.DB, code string, minStock int) *types.Supply {
	tb.Helper()
	s := &types.Supply{
		Code:          code,
		Name:          "Supply " + code,
		Category:      inventory.CategoryPPE,
		Unit:          "box",
		ShelfLife:     24,
		MinStockLevel: minStock,
	}
	if err := tx.Create(s).Error; err != nil {
		tb.Fatalf("seed supply: %v", err)
	}
	return s
}

func SeedBatch(tb testing.TB, tx *gorm.DB, hospitalID uuid.UUID, supplyCode string, qty int, expires time.Time) *types.Batch {
	tb.Helper()
	b := &types.Batch{
		BatchNumber:        "B-" + uuid.NewString()[:12],
		HospitalID:         hospitalID,
		SupplyCode:         supplyCode,
		Quantity:           qty,
		ProductionDate:     expires.AddDate(-1, 0, 0),
		ExpirationDate:     expires,
		QualityCheckPassed: true,
	}
	if err := tx.Create(b).Error; err != nil {
		tb.Fatalf("seed batch: %v", err)
	}
	return b
}

func SeedRequest(tb testing.TB, tx *gorm.DB, hospitalID uuid.UUID, status string) *types.SupplyRequest {
	tb.Helper()
	r := &types.SupplyRequest{
		HospitalID:  hospitalID,
		RequiredBy:  time.Now().UTC().Add(72 * time.Hour),
		Status:      status,
		RequesterID: uuid.New(),
	}
	if err := tx.Create(r).Error; err != nil {
		tb.Fatalf("seed request: %v", err)
	}
	return r
}

func SeedItem(tb testing.TB, tx *gorm.DB, requestID uuid.UUID, supplyCode string, qty, allocated int) *types.RequestItem {
	tb.Helper()
	it := &types.RequestItem{
		RequestID:  requestID,
		SupplyCode: supplyCode,
		Quantity:   qty,
		Allocated:  allocated,
	}
	if err := tx.Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}
