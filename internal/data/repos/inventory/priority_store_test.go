package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/data/repos/testutil"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

var today = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newPriorityService(store priority.Store, opts priority.Options) *priority.Service {
	opts.Now = func() time.Time { return today }
	return priority.NewService(store, logger.Nop(), opts)
}

func TestPriorityStoreScenario(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	store := NewPriorityStore(db, testutil.Logger(t))

	testutil.SeedSupply(t, db, "42131600", 20)
	ha := testutil.SeedHospital(t, db, "A", inventory.LevelThirdA)
	hb := testutil.SeedHospital(t, db, "B", inventory.LevelSecondA)
	hc := testutil.SeedHospital(t, db, "C", inventory.LevelDistrict)
	testutil.SeedBatch(t, db, hb.ID, "42131600", 50, today)
	testutil.SeedBatch(t, db, hc.ID, "42131600", 90, today)
	testutil.SeedBatch(t, db, ha.ID, "42131600", 500, today.AddDate(0, 0, -1))

	ra := testutil.SeedRequest(t, db, ha.ID, inventory.StatusSubmitted)
	rb := testutil.SeedRequest(t, db, hb.ID, inventory.StatusApproved)
	rc := testutil.SeedRequest(t, db, hc.ID, inventory.StatusSubmitted)
	ia := testutil.SeedItem(t, db, ra.ID, "42131600", 100, 0)
	ib := testutil.SeedItem(t, db, rb.ID, "42131600", 100, 0)
	ic := testutil.SeedItem(t, db, rc.ID, "42131600", 100, 0)

	draft := testutil.SeedRequest(t, db, ha.ID, inventory.StatusDraft)
	draftItem := testutil.SeedItem(t, db, draft.ID, "42131600", 100, 0)
	full := testutil.SeedItem(t, db, ra.ID, "42131600", 10, 10)

	cands, err := store.ListCandidates(ctx, "42131600")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	if cands[0].MinStockLevel != 20 || cands[0].HospitalLevel != inventory.LevelThirdA {
		t.Fatalf("candidate attributes not joined: %+v", cands[0])
	}

	codes, err := store.ListOutstandingSupplyCodes(ctx)
	if err != nil || len(codes) != 1 || codes[0] != "42131600" {
		t.Fatalf("ListOutstandingSupplyCodes: %v %v", codes, err)
	}

	rep := newPriorityService(store, priority.Options{}).Recalculate(ctx, "42131600")
	if rep.Err != nil || rep.Outcome != priority.OutcomeScored {
		t.Fatalf("unexpected report %+v", rep)
	}

	load := func(it *types.RequestItem) float64 {
		var got types.RequestItem
		if err := db.Where("item_id = ?", it.ID).First(&got).Error; err != nil {
			t.Fatalf("reload item: %v", err)
		}
		return got.Priority
	}
	pa, pb, pc := load(ia), load(ib), load(ic)
	if !(pa > pb && pb > pc) {
		t.Fatalf("expected A > B > C, got %v %v %v", pa, pb, pc)
	}
	if load(draftItem) != inventory.DefaultPriority || load(full) != inventory.DefaultPriority {
		t.Fatalf("ineligible items must keep their priority")
	}

	reqRepo := NewSupplyRequestRepo(db, testutil.Logger(t))
	got, err := reqRepo.GetByID(dbctx.Context{Ctx: ctx}, ra.ID, false)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Priority != pa {
		t.Fatalf("request priority=%v want %v", got.Priority, pa)
	}
}

func TestPriorityStoreAggregationAcrossSupplies(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	store := NewPriorityStore(db, testutil.Logger(t))

	testutil.SeedSupply(t, db, "X", 0)
	testutil.SeedSupply(t, db, "Y", 0)
	low := testutil.SeedHospital(t, db, "Low", inventory.LevelCommunity)
	high := testutil.SeedHospital(t, db, "High", inventory.LevelThirdA)

	req := testutil.SeedRequest(t, db, low.ID, inventory.StatusSubmitted)
	other := testutil.SeedRequest(t, db, high.ID, inventory.StatusSubmitted)
	x := testutil.SeedItem(t, db, req.ID, "X", 10, 0)
	testutil.SeedItem(t, db, other.ID, "X", 10, 0)
	y := testutil.SeedItem(t, db, req.ID, "Y", 10, 0)
	if err := db.Model(&types.RequestItem{}).Where("item_id = ?", y.ID).UpdateColumn("priority", 0.9).Error; err != nil {
		t.Fatalf("seed y priority: %v", err)
	}

	requestPriority := func() float64 {
		var r types.SupplyRequest
		if err := db.Where("request_id = ?", req.ID).First(&r).Error; err != nil {
			t.Fatalf("reload request: %v", err)
		}
		return r.Priority
	}
	itemPriority := func() float64 {
		var it types.RequestItem
		if err := db.Where("item_id = ?", x.ID).First(&it).Error; err != nil {
			t.Fatalf("reload item: %v", err)
		}
		return it.Priority
	}

	newPriorityService(store, priority.Options{}).Recalculate(ctx, "X")
	if requestPriority() != itemPriority() {
		t.Fatalf("touched aggregation: request=%v item=%v", requestPriority(), itemPriority())
	}

	newPriorityService(store, priority.Options{Aggregation: priority.AggregateAll}).Recalculate(ctx, "X")
	if requestPriority() != 0.9 {
		t.Fatalf("all aggregation: request=%v want 0.9", requestPriority())
	}
}

func TestPriorityStoreSingleAndEmpty(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	store := NewPriorityStore(db, testutil.Logger(t))
	svc := newPriorityService(store, priority.Options{})

	testutil.SeedSupply(t, db, "S", 5)
	h := testutil.SeedHospital(t, db, "Solo", inventory.LevelFirstA)
	req := testutil.SeedRequest(t, db, h.ID, inventory.StatusSubmitted)
	if err := db.Model(&types.SupplyRequest{}).Where("request_id = ?", req.ID).UpdateColumn("priority", 0.1).Error; err != nil {
		t.Fatalf("seed request priority: %v", err)
	}
	testutil.SeedItem(t, db, req.ID, "S", 4, 1)

	if rep := svc.Recalculate(ctx, "missing"); rep.Outcome != priority.OutcomeNoCandidates || rep.Err != nil {
		t.Fatalf("unexpected report for empty supply: %+v", rep)
	}
	rep := svc.Recalculate(ctx, "S")
	if rep.Outcome != priority.OutcomeSingleCandidate {
		t.Fatalf("outcome=%s", rep.Outcome)
	}
	var got types.SupplyRequest
	if err := db.Where("request_id = ?", req.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Priority != 0.5 {
		t.Fatalf("request priority=%v want 0.5", got.Priority)
	}
}

func TestPriorityStoreStockBatchesSkipExpired(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	store := NewPriorityStore(db, testutil.Logger(t))

	testutil.SeedSupply(t, db, "GAUZE", 0)
	h := testutil.SeedHospital(t, db, "H", inventory.LevelSecondA)
	other := testutil.SeedHospital(t, db, "Other", inventory.LevelSecondA)
	cutoff := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	testutil.SeedBatch(t, db, h.ID, "GAUZE", 7, cutoff.AddDate(-1, 0, 0))
	testutil.SeedBatch(t, db, h.ID, "GAUZE", 8, cutoff.AddDate(0, 0, -1))
	testutil.SeedBatch(t, db, h.ID, "GAUZE", 9, cutoff)
	testutil.SeedBatch(t, db, h.ID, "GAUZE", 0, cutoff.AddDate(0, 1, 0))
	testutil.SeedBatch(t, db, h.ID, "GAUZE", 10, cutoff.AddDate(0, 2, 0))
	testutil.SeedBatch(t, db, other.ID, "GAUZE", 11, cutoff.AddDate(0, 2, 0))

	got, err := store.ListStockBatches(ctx, "GAUZE", []uuid.UUID{h.ID}, cutoff)
	if err != nil {
		t.Fatalf("ListStockBatches: %v", err)
	}
	total := 0
	for _, b := range got {
		if b.HospitalID != h.ID {
			t.Fatalf("batch from unrequested hospital: %+v", b)
		}
		total += b.Quantity
	}
	if len(got) != 2 || total != 19 {
		t.Fatalf("expected the batches expiring on or after the cutoff (9+10), got %d batches totalling %d", len(got), total)
	}
}
