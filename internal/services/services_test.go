package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	"github.com/yungbote/medsupply-backend/internal/data/repos/testutil"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type fakeRecalculator struct {
	mu    sync.Mutex
	codes []string
}

func (f *fakeRecalculator) Recalculate(ctx context.Context, supplyCode string) priority.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, supplyCode)
	return priority.Report{SupplyCode: supplyCode, Outcome: priority.OutcomeScored}
}

func (f *fakeRecalculator) Codes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.codes...)
	sort.Strings(out)
	return out
}

type fixture struct {
	db        *gorm.DB
	recalc    *fakeRecalculator
	trigger   *PriorityTrigger
	hospitals repos.HospitalRepo
	supplies  repos.SupplyRepo
	batches   repos.BatchRepo
	requests  repos.SupplyRequestRepo
	items     repos.RequestItemRepo
	alerts    repos.AlertRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	recalc := &fakeRecalculator{}
	return &fixture{
		db:        db,
		recalc:    recalc,
		trigger:   NewPriorityTrigger(log, TriggerInline, nil, recalc),
		hospitals: repos.NewHospitalRepo(db, log),
		supplies:  repos.NewSupplyRepo(db, log),
		batches:   repos.NewBatchRepo(db, log),
		requests:  repos.NewSupplyRequestRepo(db, log),
		items:     repos.NewRequestItemRepo(db, log),
		alerts:    repos.NewAlertRepo(db, log),
	}
}

func userCtx(uid uuid.UUID) dbctx.Context {
	return dbctx.Context{Ctx: ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: uid, Role: "admin"})}
}

func TestAllocateItem(t *testing.T) {
	f := newFixture(t)
	svc := NewAllocationService(f.db, testutil.Logger(t), f.requests, f.items, f.trigger)
	dbc := dbctx.Context{Ctx: context.Background()}

	testutil.SeedSupply(t, f.db, "MASK", 10)
	h := testutil.SeedHospital(t, f.db, "General", 7)
	submitted := testutil.SeedRequest(t, f.db, h.ID, "submitted")
	draft := testutil.SeedRequest(t, f.db, h.ID, "draft")
	item := testutil.SeedItem(t, f.db, submitted.ID, "MASK", 10, 0)
	draftItem := testutil.SeedItem(t, f.db, draft.ID, "MASK", 10, 0)

	cases := []struct {
		name      string
		requestID uuid.UUID
		itemID    uuid.UUID
		allocated int
		wantErr   error
	}{
		{"unknown_request", uuid.New(), item.ID, 1, errs.ErrNotFound},
		{"item_from_other_request", submitted.ID, draftItem.ID, 1, errs.ErrNotFound},
		{"draft_request", draft.ID, draftItem.ID, 1, errs.ErrInvalidArgument},
		{"negative", submitted.ID, item.ID, -1, errs.ErrInvalidArgument},
		{"over_quantity", submitted.ID, item.ID, 11, errs.ErrInvalidArgument},
		{"ok", submitted.ID, item.ID, 6, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.AllocateItem(dbc, tc.requestID, tc.itemID, tc.allocated)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AllocateItem: %v", err)
			}
			if got.Allocated != tc.allocated {
				t.Fatalf("allocated=%d want %d", got.Allocated, tc.allocated)
			}
		})
	}

	f.trigger.Wait()
	if codes := f.recalc.Codes(); len(codes) != 1 || codes[0] != "MASK" {
		t.Fatalf("expected one recalculation for MASK, got %v", codes)
	}
	stored, err := f.items.GetByID(dbc, item.ID)
	if err != nil || stored.Allocated != 6 {
		t.Fatalf("stored allocation: %+v %v", stored, err)
	}
}

func TestAllocationQueueEmptyCode(t *testing.T) {
	f := newFixture(t)
	svc := NewAllocationService(f.db, testutil.Logger(t), f.requests, f.items, f.trigger)
	rows, err := svc.Queue(dbctx.Context{Ctx: context.Background()}, "  ")
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestSupplyRequestService(t *testing.T) {
	f := newFixture(t)
	svc := NewSupplyRequestService(f.db, testutil.Logger(t), f.requests, f.items, f.hospitals, f.supplies, f.trigger)

	testutil.SeedSupply(t, f.db, "MASK", 10)
	testutil.SeedSupply(t, f.db, "GLOVE", 10)
	h := testutil.SeedHospital(t, f.db, "General", 7)
	in := CreateRequestInput{
		HospitalID: h.ID,
		RequiredBy: time.Now().UTC().Add(48 * time.Hour),
		Submit:     true,
		Items: []CreateRequestItemInput{
			{SupplyCode: "MASK", Quantity: 5},
			{SupplyCode: "GLOVE", Quantity: 3},
		},
	}

	if _, err := svc.Create(dbctx.Context{Ctx: context.Background()}, in); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without a caller, got %v", err)
	}

	user := uuid.New()
	dbc := userCtx(user)

	bad := in
	bad.Items = []CreateRequestItemInput{{SupplyCode: "NOPE", Quantity: 1}}
	if _, err := svc.Create(dbc, bad); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown supply, got %v", err)
	}

	req, err := svc.Create(dbc, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Status != "submitted" || req.RequesterID != user || len(req.Items) != 2 {
		t.Fatalf("unexpected request %+v", req)
	}
	f.trigger.Wait()
	if codes := f.recalc.Codes(); len(codes) != 2 || codes[0] != "GLOVE" || codes[1] != "MASK" {
		t.Fatalf("expected recalculation for both supplies, got %v", codes)
	}

	approved, err := svc.Approve(dbc, req.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != "approved" || approved.ApproverID == nil || *approved.ApproverID != user || approved.ApprovalTime == nil {
		t.Fatalf("approval not recorded: %+v", approved)
	}
	if _, err := svc.Reject(dbc, req.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("reject after approve should conflict, got %v", err)
	}
	if _, err := svc.Submit(dbc, req.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("submit after approve should conflict, got %v", err)
	}
	cancelled, err := svc.Cancel(dbc, req.ID)
	if err != nil || cancelled.Status != "cancelled" {
		t.Fatalf("Cancel: %+v %v", cancelled, err)
	}

	if _, err := svc.List(dbc, repos.RequestFilter{Status: "bogus"}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestInventoryCreateBatch(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.db, testutil.Logger(t), f.hospitals, f.supplies, f.batches, f.trigger)
	dbc := userCtx(uuid.New())

	testutil.SeedSupply(t, f.db, "MASK", 10)
	h := testutil.SeedHospital(t, f.db, "General", 7)
	prod := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		mutate  func(b *types.Batch)
		wantErr error
	}{
		{name: "ok"},
		{name: "missing_number", mutate: func(b *types.Batch) { b.BatchNumber = "" }, wantErr: errs.ErrInvalidArgument},
		{name: "negative_quantity", mutate: func(b *types.Batch) { b.Quantity = -1 }, wantErr: errs.ErrInvalidArgument},
		{name: "expires_before_production", mutate: func(b *types.Batch) { b.ExpirationDate = prod.AddDate(0, 0, -1) }, wantErr: errs.ErrInvalidArgument},
		{name: "unknown_supply", mutate: func(b *types.Batch) { b.SupplyCode = "NOPE" }, wantErr: errs.ErrInvalidArgument},
		{name: "unknown_hospital", mutate: func(b *types.Batch) { b.HospitalID = uuid.New() }, wantErr: errs.ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &types.Batch{
				BatchNumber:    "B-" + tc.name,
				HospitalID:     h.ID,
				SupplyCode:     "MASK",
				Quantity:       40,
				ProductionDate: prod,
				ExpirationDate: prod.AddDate(1, 0, 0),
			}
			if tc.mutate != nil {
				tc.mutate(b)
			}
			_, err := svc.CreateBatch(dbc, b)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBatch: %v", err)
			}
			if b.ReceivedBy == nil {
				t.Fatalf("received_by not taken from the caller")
			}
		})
	}

	f.trigger.Wait()
	if codes := f.recalc.Codes(); len(codes) != 1 || codes[0] != "MASK" {
		t.Fatalf("expected one recalculation, got %v", codes)
	}
	out, err := svc.ListBatches(dbc, repos.BatchFilter{SupplyCode: "MASK"})
	if err != nil || len(out) != 1 {
		t.Fatalf("ListBatches: %d %v", len(out), err)
	}
}

func TestInventoryValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.db, testutil.Logger(t), f.hospitals, f.supplies, f.batches, f.trigger)
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := svc.CreateHospital(dbc, &types.Hospital{Name: "X", OrgCode: "X1", Level: 12}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid level, got %v", err)
	}
	if _, err := svc.CreateSupply(dbc, &types.Supply{Code: "S1", Name: "Saline", Category: "ZZ", Unit: "bag"}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid category, got %v", err)
	}
	sp, err := svc.CreateSupply(dbc, &types.Supply{Code: " S1 ", Name: "Saline", Category: "DG", Unit: "bag", MinStockLevel: 5})
	if err != nil {
		t.Fatalf("CreateSupply: %v", err)
	}
	if sp.Code != "S1" {
		t.Fatalf("code not trimmed: %q", sp.Code)
	}
	if _, err := svc.GetSupply(dbc, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.ListSupplies(dbc, repos.SupplyFilter{Category: "ZZ"}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid category filter, got %v", err)
	}
}
