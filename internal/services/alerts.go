package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

const DefaultExpiringWithinDays = 30

type AlertNotifier interface {
	AlertRaised(ctx context.Context, a *types.Alert)
}

type AlertRecorder interface {
	IncAlertRaised(alertType string)
}

type AlertOptions struct {
	ExpiringWithinDays int
	Location           *time.Location
	Now                func() time.Time
	Notifier           AlertNotifier
	Recorder           AlertRecorder
}

// AlertCheckReport counts the alerts a check created. Alerts that were already
// open are counted under Existing.
type AlertCheckReport struct {
	LowStock int       `json:"low_stock"`
	Expiring int       `json:"expiring"`
	Capacity int       `json:"capacity"`
	Existing int       `json:"existing"`
	At       time.Time `json:"at"`
}

func (r AlertCheckReport) Created() int {
	return r.LowStock + r.Expiring + r.Capacity
}

type AlertService interface {
	Check(ctx context.Context) (AlertCheckReport, error)
	List(dbc dbctx.Context, f repos.AlertFilter) ([]*types.Alert, error)
	Resolve(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error)
}

type alertService struct {
	log       *logger.Logger
	alerts    repos.AlertRepo
	hospitals repos.HospitalRepo
	batches   repos.BatchRepo
	opts      AlertOptions
}

func NewAlertService(baseLog *logger.Logger, alerts repos.AlertRepo, hospitals repos.HospitalRepo, batches repos.BatchRepo, opts AlertOptions) AlertService {
	if opts.ExpiringWithinDays <= 0 {
		opts.ExpiringWithinDays = DefaultExpiringWithinDays
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &alertService{
		log:       baseLog.With("service", "AlertService"),
		alerts:    alerts,
		hospitals: hospitals,
		batches:   batches,
		opts:      opts,
	}
}

// today is the current calendar date in the configured zone, as UTC midnight so
// it compares cleanly with stored date columns.
func (s *alertService) today() time.Time {
	y, m, d := s.opts.Now().In(s.opts.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

func (s *alertService) Check(ctx context.Context) (AlertCheckReport, error) {
	today := s.today()
	rep := AlertCheckReport{At: s.opts.Now().UTC()}
	dbc := dbctx.Context{Ctx: ctx}

	if err := s.checkLowStock(dbc, today, &rep); err != nil {
		return rep, fmt.Errorf("low stock check: %w", err)
	}
	if err := s.checkExpiring(dbc, today, &rep); err != nil {
		return rep, fmt.Errorf("expiring check: %w", err)
	}
	if err := s.checkCapacity(dbc, &rep); err != nil {
		return rep, fmt.Errorf("capacity check: %w", err)
	}
	s.log.Info("inventory alert check finished",
		"low_stock", rep.LowStock,
		"expiring", rep.Expiring,
		"capacity", rep.Capacity,
		"existing", rep.Existing,
	)
	return rep, nil
}

type stockKey struct {
	hospitalID uuid.UUID
	supplyCode string
}

type stockTotal struct {
	supply *types.Supply
	total  int
}

func (s *alertService) checkLowStock(dbc dbctx.Context, today time.Time, rep *AlertCheckReport) error {
	batches, err := s.batches.List(dbc, repos.BatchFilter{ValidOn: &today, Preload: true})
	if err != nil {
		return repos.MapError(err)
	}
	totals := map[stockKey]*stockTotal{}
	keys := []stockKey{}
	for _, b := range batches {
		if b.Supply == nil {
			continue
		}
		k := stockKey{hospitalID: b.HospitalID, supplyCode: b.SupplyCode}
		t, ok := totals[k]
		if !ok {
			t = &stockTotal{supply: b.Supply}
			totals[k] = t
			keys = append(keys, k)
		}
		t.total += b.Quantity
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].supplyCode != keys[j].supplyCode {
			return keys[i].supplyCode < keys[j].supplyCode
		}
		return keys[i].hospitalID.String() < keys[j].hospitalID.String()
	})
	for _, k := range keys {
		t := totals[k]
		if t.total >= t.supply.MinStockLevel {
			continue
		}
		code := k.supplyCode
		a := &types.Alert{
			HospitalID: k.hospitalID,
			SupplyCode: &code,
			AlertType:  inventory.AlertLowStock,
			Message:    fmt.Sprintf("%s is low on stock: %d on hand, minimum %d", t.supply.Name, t.total, t.supply.MinStockLevel),
		}
		if err := s.raise(dbc, a, &rep.LowStock, rep); err != nil {
			return err
		}
	}
	return nil
}

func (s *alertService) checkExpiring(dbc dbctx.Context, today time.Time, rep *AlertCheckReport) error {
	horizon := today.AddDate(0, 0, s.opts.ExpiringWithinDays)
	batches, err := s.batches.List(dbc, repos.BatchFilter{ValidOn: &today, Preload: true})
	if err != nil {
		return repos.MapError(err)
	}
	for _, b := range batches {
		exp := dateOf(b.ExpirationDate)
		if !exp.After(today) || exp.After(horizon) {
			continue
		}
		name := b.SupplyCode
		if b.Supply != nil {
			name = b.Supply.Name
		}
		code := b.SupplyCode
		batchID := b.ID
		a := &types.Alert{
			HospitalID: b.HospitalID,
			SupplyCode: &code,
			BatchID:    &batchID,
			AlertType:  inventory.AlertExpiring,
			Message:    fmt.Sprintf("%s (batch %s) expires in %d days", name, b.BatchNumber, daysBetween(today, exp)),
		}
		if err := s.raise(dbc, a, &rep.Expiring, rep); err != nil {
			return err
		}
	}
	return nil
}

func (s *alertService) checkCapacity(dbc dbctx.Context, rep *AlertCheckReport) error {
	hospitals, err := s.hospitals.List(dbc, repos.HospitalFilter{ActiveOnly: true})
	if err != nil {
		return repos.MapError(err)
	}
	hundred := decimal.NewFromInt(100)
	for _, h := range hospitals {
		if !h.StorageVolume.IsPositive() {
			continue
		}
		used := h.CapacityUsedPercent()
		if used.LessThan(hundred.Sub(h.WarningThreshold)) {
			continue
		}
		a := &types.Alert{
			HospitalID: h.ID,
			AlertType:  inventory.AlertCapacity,
			Message:    fmt.Sprintf("%s storage is near capacity: %s%% used", h.Name, used.StringFixed(2)),
		}
		if err := s.raise(dbc, a, &rep.Capacity, rep); err != nil {
			return err
		}
	}
	return nil
}

func (s *alertService) raise(dbc dbctx.Context, a *types.Alert, counter *int, rep *AlertCheckReport) error {
	out, created, err := s.alerts.GetOrCreateUnresolved(dbc, a)
	if err != nil {
		return repos.MapError(err)
	}
	if !created {
		rep.Existing++
		return nil
	}
	*counter++
	s.log.Info("inventory alert raised", "alert_id", out.ID, "alert_type", out.AlertType, "hospital_id", out.HospitalID)
	if s.opts.Recorder != nil {
		s.opts.Recorder.IncAlertRaised(out.AlertType)
	}
	if s.opts.Notifier != nil {
		s.opts.Notifier.AlertRaised(dbc.Ctx, out)
	}
	return nil
}

func (s *alertService) List(dbc dbctx.Context, f repos.AlertFilter) ([]*types.Alert, error) {
	if f.AlertType != "" && !inventory.ValidAlertType(f.AlertType) {
		return nil, fmt.Errorf("unknown alert type %q: %w", f.AlertType, errs.ErrInvalidArgument)
	}
	out, err := s.alerts.List(dbc, f)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return out, nil
}

func (s *alertService) Resolve(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error) {
	a, err := s.alerts.GetByID(dbc, id)
	if err != nil {
		return nil, repos.MapError(err)
	}
	if a.IsResolved {
		return nil, fmt.Errorf("alert %s is already resolved: %w", id, errs.ErrInvalidArgument)
	}
	var by *uuid.UUID
	if uid := ctxutil.UserID(dbc.Ctx); uid != uuid.Nil {
		by = &uid
	}
	at := s.opts.Now().UTC()
	ok, err := s.alerts.Resolve(dbc, id, by, at)
	if err != nil {
		return nil, repos.MapError(err)
	}
	if !ok {
		return nil, fmt.Errorf("alert %s is already resolved: %w", id, errs.ErrInvalidArgument)
	}
	a.IsResolved = true
	a.ResolvedBy = by
	a.ResolvedTime = &at
	s.log.Info("inventory alert resolved", "alert_id", id, "alert_type", a.AlertType)
	return a, nil
}
