package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

var inventoryCSVHeader = []string{
	"hospital_name",
	"hospital_level",
	"supply_code",
	"supply_name",
	"category",
	"batch_number",
	"quantity",
	"min_stock_level",
	"production_date",
	"expiration_date",
	"days_remaining",
}

type ExportService interface {
	// WriteInventoryCSV streams one row per batch, ordered by expiration.
	WriteInventoryCSV(ctx context.Context, w io.Writer) (int, error)
}

type exportService struct {
	log     *logger.Logger
	batches repos.BatchRepo
	now     func() time.Time
}

func NewExportService(baseLog *logger.Logger, batches repos.BatchRepo, now func() time.Time) ExportService {
	if now == nil {
		now = time.Now
	}
	return &exportService{
		log:     baseLog.With("service", "ExportService"),
		batches: batches,
		now:     now,
	}
}

func (s *exportService) WriteInventoryCSV(ctx context.Context, w io.Writer) (int, error) {
	batches, err := s.batches.List(dbctx.Context{Ctx: ctx}, repos.BatchFilter{Preload: true})
	if err != nil {
		return 0, repos.MapError(err)
	}
	today := dateOf(s.now().UTC())
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryCSVHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	rows := 0
	for _, b := range batches {
		var hospitalName, level, supplyName, category, minStock string
		if b.Hospital != nil {
			hospitalName = b.Hospital.Name
			level = inventory.LevelLabel(b.Hospital.Level)
		}
		if b.Supply != nil {
			supplyName = b.Supply.Name
			category = b.Supply.Category
			minStock = strconv.Itoa(b.Supply.MinStockLevel)
		}
		rec := []string{
			hospitalName,
			level,
			b.SupplyCode,
			supplyName,
			category,
			b.BatchNumber,
			strconv.Itoa(b.Quantity),
			minStock,
			b.ProductionDate.Format(time.DateOnly),
			b.ExpirationDate.Format(time.DateOnly),
			strconv.Itoa(daysBetween(today, b.ExpirationDate)),
		}
		if err := cw.Write(rec); err != nil {
			return rows, fmt.Errorf("write csv row: %w", err)
		}
		rows++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	s.log.Debug("inventory exported", "rows", rows)
	return rows, nil
}
