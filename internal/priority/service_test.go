package priority

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type memItem struct {
	id         uuid.UUID
	requestID  uuid.UUID
	supplyCode string
	requested  int
	allocated  int
	priority   float64
}

type memHospital struct {
	name     string
	level    int
	minStock int
}

type memRequest struct {
	hospitalID uuid.UUID
	priority   float64
}

type memStore struct {
	mu        sync.Mutex
	hospitals map[uuid.UUID]memHospital
	requests  map[uuid.UUID]*memRequest
	items     []*memItem
	batches   map[string][]BatchStock

	applyCalls int
	cutoffs    []time.Time
	failFor    map[string]error
	panicFor   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		hospitals: map[uuid.UUID]memHospital{},
		requests:  map[uuid.UUID]*memRequest{},
		batches:   map[string][]BatchStock{},
		failFor:   map[string]error{},
		panicFor:  map[string]bool{},
	}
}

func (m *memStore) addHospital(name string, level, minStock int) uuid.UUID {
	id := uuid.New()
	m.hospitals[id] = memHospital{name: name, level: level, minStock: minStock}
	return id
}

func (m *memStore) addRequest(hospitalID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.requests[id] = &memRequest{hospitalID: hospitalID}
	return id
}

func (m *memStore) addItem(requestID uuid.UUID, supply string, requested, allocated int) *memItem {
	it := &memItem{id: uuid.New(), requestID: requestID, supplyCode: supply, requested: requested, allocated: allocated}
	m.items = append(m.items, it)
	return it
}

func (m *memStore) ListOutstandingSupplyCodes(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, it := range m.items {
		if it.requested > it.allocated && !seen[it.supplyCode] {
			seen[it.supplyCode] = true
			out = append(out, it.supplyCode)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) ListCandidates(ctx context.Context, supplyCode string) ([]Candidate, error) {
	if m.panicFor[supplyCode] {
		panic("boom")
	}
	if err := m.failFor[supplyCode]; err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Candidate
	for _, it := range m.items {
		if it.supplyCode != supplyCode || it.requested <= it.allocated {
			continue
		}
		req := m.requests[it.requestID]
		h := m.hospitals[req.hospitalID]
		out = append(out, Candidate{
			ItemID:        it.id,
			RequestID:     it.requestID,
			HospitalID:    req.hospitalID,
			HospitalName:  h.name,
			HospitalLevel: h.level,
			Requested:     it.requested,
			Allocated:     it.allocated,
			MinStockLevel: h.minStock,
		})
	}
	return out, nil
}

func (m *memStore) ListStockBatches(ctx context.Context, supplyCode string, hospitalIDs []uuid.UUID, notBefore time.Time) ([]BatchStock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, notBefore)
	return append([]BatchStock(nil), m.batches[supplyCode]...), nil
}

func (m *memStore) MaxOtherItemPriority(ctx context.Context, supplyCode string, requestIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range requestIDs {
		want[id] = true
	}
	out := map[uuid.UUID]float64{}
	for _, it := range m.items {
		if !want[it.requestID] || it.supplyCode == supplyCode || it.requested <= it.allocated {
			continue
		}
		if v, ok := out[it.requestID]; !ok || it.priority > v {
			out[it.requestID] = it.priority
		}
	}
	return out, nil
}

func (m *memStore) ApplyScores(ctx context.Context, items []ItemScore, requests []RequestScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyCalls++
	for _, s := range items {
		for _, it := range m.items {
			if it.id == s.ItemID {
				it.priority = s.Score
			}
		}
	}
	for _, s := range requests {
		m.requests[s.RequestID].priority = s.Score
	}
	return nil
}

type captureNotifier struct {
	mu      sync.Mutex
	reports []Report
}

func (c *captureNotifier) PrioritiesRecalculated(ctx context.Context, r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
}

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(store Store, opts Options) *Service {
	opts.Now = func() time.Time { return fixedNow }
	return NewService(store, logger.Nop(), opts)
}

func TestRecalculateScenario(t *testing.T) {
	st := newMemStore()
	ha := st.addHospital("A", 9, 20)
	hb := st.addHospital("B", 7, 20)
	hc := st.addHospital("C", 3, 20)
	ra, rb, rc := st.addRequest(ha), st.addRequest(hb), st.addRequest(hc)
	ia := st.addItem(ra, "42131600", 100, 0)
	ib := st.addItem(rb, "42131600", 100, 0)
	ic := st.addItem(rc, "42131600", 100, 0)
	st.batches["42131600"] = []BatchStock{
		{HospitalID: hb, Quantity: 50, ExpirationDate: fixedNow},
		{HospitalID: hc, Quantity: 90, ExpirationDate: fixedNow},
	}

	notifier := &captureNotifier{}
	svc := newTestService(st, Options{Notifier: notifier})
	rep := svc.Recalculate(context.Background(), "42131600")
	if rep.Err != nil {
		t.Fatalf("unexpected error: %v", rep.Err)
	}
	if rep.Outcome != OutcomeScored || rep.ItemsUpdated != 3 || rep.RequestsUpdated != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if !(ia.priority > ib.priority && ib.priority > ic.priority) {
		t.Fatalf("expected A > B > C, got %v %v %v", ia.priority, ib.priority, ic.priority)
	}
	if st.requests[ra].priority != ia.priority {
		t.Fatalf("request priority should mirror its only item")
	}
	if len(notifier.reports) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.reports))
	}

	first := []float64{ia.priority, ib.priority, ic.priority}
	svc.Recalculate(context.Background(), "42131600")
	for i, it := range []*memItem{ia, ib, ic} {
		if it.priority != first[i] {
			t.Fatalf("item %d not idempotent: %v then %v", i, first[i], it.priority)
		}
	}
}

func TestRecalculateOutcomes(t *testing.T) {
	t.Run("no candidates writes nothing", func(t *testing.T) {
		st := newMemStore()
		h := st.addHospital("A", 5, 0)
		r := st.addRequest(h)
		st.addItem(r, "X", 10, 10)
		rep := newTestService(st, Options{}).Recalculate(context.Background(), "X")
		if rep.Outcome != OutcomeNoCandidates || rep.Err != nil {
			t.Fatalf("unexpected report %+v", rep)
		}
		if st.applyCalls != 0 {
			t.Fatalf("expected no writes, got %d", st.applyCalls)
		}
	})

	t.Run("single candidate gets half", func(t *testing.T) {
		st := newMemStore()
		h := st.addHospital("A", 5, 0)
		r := st.addRequest(h)
		it := st.addItem(r, "X", 10, 2)
		rep := newTestService(st, Options{}).Recalculate(context.Background(), "X")
		if rep.Outcome != OutcomeSingleCandidate {
			t.Fatalf("outcome=%s", rep.Outcome)
		}
		if it.priority != 0.5 || st.requests[r].priority != 0.5 {
			t.Fatalf("expected 0.5/0.5, got %v/%v", it.priority, st.requests[r].priority)
		}
	})

	t.Run("identical candidates get zero", func(t *testing.T) {
		st := newMemStore()
		var items []*memItem
		for i := 0; i < 3; i++ {
			h := st.addHospital("H", 4, 5)
			r := st.addRequest(h)
			st.requests[r].priority = 0.9
			it := st.addItem(r, "X", 10, 0)
			it.priority = 0.9
			items = append(items, it)
		}
		rep := newTestService(st, Options{}).Recalculate(context.Background(), "X")
		if rep.Outcome != OutcomeDegenerate {
			t.Fatalf("outcome=%s", rep.Outcome)
		}
		for _, it := range items {
			if it.priority != 0 || st.requests[it.requestID].priority != 0 {
				t.Fatalf("expected zero priorities, got %v", it.priority)
			}
		}
	})

	t.Run("blank supply code fails", func(t *testing.T) {
		rep := newTestService(newMemStore(), Options{}).Recalculate(context.Background(), "  ")
		if rep.Outcome != OutcomeFailed || !errors.Is(rep.Err, ErrEmptySupplyCode) {
			t.Fatalf("unexpected report %+v", rep)
		}
	})
}

func TestRecalculateAggregation(t *testing.T) {
	build := func() (*memStore, uuid.UUID, *memItem, *memItem) {
		st := newMemStore()
		h1 := st.addHospital("A", 2, 0)
		h2 := st.addHospital("B", 9, 0)
		r := st.addRequest(h1)
		other := st.addRequest(h2)
		x := st.addItem(r, "X", 10, 0)
		st.addItem(other, "X", 10, 0)
		y := st.addItem(r, "Y", 10, 0)
		y.priority = 0.95
		st.requests[r].priority = 0.95
		return st, r, x, y
	}

	t.Run("touched", func(t *testing.T) {
		st, r, x, y := build()
		newTestService(st, Options{}).Recalculate(context.Background(), "X")
		if st.requests[r].priority != x.priority {
			t.Fatalf("request priority=%v want X item score %v", st.requests[r].priority, x.priority)
		}
		if y.priority != 0.95 {
			t.Fatalf("item of another supply must not be touched, got %v", y.priority)
		}
	})

	t.Run("all", func(t *testing.T) {
		st, r, x, _ := build()
		newTestService(st, Options{Aggregation: AggregateAll}).Recalculate(context.Background(), "X")
		if x.priority >= 0.95 {
			t.Fatalf("fixture expects X score below 0.95, got %v", x.priority)
		}
		if st.requests[r].priority != 0.95 {
			t.Fatalf("request priority=%v want 0.95", st.requests[r].priority)
		}
	})
}

func TestRecalculateAllOutstandingIsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		st := newMemStore()
		for _, code := range []string{"A", "B", "C", "D"} {
			h := st.addHospital(code, 5, 0)
			r := st.addRequest(h)
			st.addItem(r, code, 10, 0)
		}
		st.failFor["B"] = errors.New("db down")
		st.panicFor["C"] = true

		sweep := newTestService(st, Options{SweepConcurrency: concurrency}).RecalculateAllOutstanding(context.Background())
		if sweep.Err != nil || sweep.Supplies != 4 || sweep.Failed != 2 || sweep.Succeeded != 2 {
			t.Fatalf("concurrency %d: unexpected sweep %+v", concurrency, sweep)
		}
		for _, rep := range sweep.Reports {
			switch rep.SupplyCode {
			case "B", "C":
				if rep.Outcome != OutcomeFailed || rep.Error == "" {
					t.Fatalf("expected %s to fail, got %+v", rep.SupplyCode, rep)
				}
			default:
				if rep.Outcome != OutcomeSingleCandidate {
					t.Fatalf("expected %s to succeed, got %+v", rep.SupplyCode, rep)
				}
			}
		}
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	st := newMemStore()
	ha := st.addHospital("A", 9, 40)
	hb := st.addHospital("B", 5, 40)
	hc := st.addHospital("C", 2, 40)
	ra, rb, rc := st.addRequest(ha), st.addRequest(hb), st.addRequest(hc)
	st.addItem(ra, "X", 30, 5)
	st.addItem(rb, "X", 80, 0)
	st.addItem(rc, "X", 10, 0)
	st.addItem(ra, "Y", 20, 0)
	st.addItem(rc, "Y", 60, 10)
	st.batches["X"] = []BatchStock{
		{HospitalID: ha, Quantity: 15, ExpirationDate: fixedNow.AddDate(0, 0, 40)},
		{HospitalID: hb, Quantity: 70, ExpirationDate: fixedNow.AddDate(0, 0, -3)},
		{HospitalID: hc, Quantity: 25, ExpirationDate: fixedNow.AddDate(0, 0, 5)},
	}
	st.batches["Y"] = []BatchStock{
		{HospitalID: ha, Quantity: 5, ExpirationDate: fixedNow.AddDate(0, 2, 0)},
	}

	snapshot := func() map[uuid.UUID]float64 {
		out := map[uuid.UUID]float64{}
		for _, it := range st.items {
			out[it.id] = it.priority
		}
		for id, r := range st.requests {
			out[id] = r.priority
		}
		return out
	}

	svc := newTestService(st, Options{})
	for _, code := range []string{"X", "Y"} {
		if rep := svc.Recalculate(context.Background(), code); rep.Err != nil {
			t.Fatalf("%s first run: %v", code, rep.Err)
		}
		first := snapshot()
		if rep := svc.Recalculate(context.Background(), code); rep.Err != nil {
			t.Fatalf("%s second run: %v", code, rep.Err)
		}
		second := snapshot()
		for id, v := range first {
			if second[id] != v {
				t.Fatalf("%s: score of %s changed from %v to %v", code, id, v, second[id])
			}
		}
	}

	wantCutoff := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	for _, c := range st.cutoffs {
		if !c.Equal(wantCutoff) {
			t.Fatalf("stock batches requested with cutoff %v, want %v", c, wantCutoff)
		}
	}
}

func TestRecalculateAllOutstandingReportsCancellation(t *testing.T) {
	st := newMemStore()
	for _, code := range []string{"A", "B"} {
		st.addItem(st.addRequest(st.addHospital(code, 5, 0)), code, 10, 0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweep := newTestService(st, Options{}).RecalculateAllOutstanding(ctx)
	if !errors.Is(sweep.Err, context.Canceled) || sweep.Error == "" {
		t.Fatalf("expected cancellation error, got %+v", sweep)
	}
	if sweep.Failed != 2 || st.applyCalls != 0 {
		t.Fatalf("cancelled sweep must not score: failed=%d writes=%d", sweep.Failed, st.applyCalls)
	}
}

func TestPreviewDoesNotWrite(t *testing.T) {
	st := newMemStore()
	for _, lvl := range []int{9, 3} {
		h := st.addHospital("H", lvl, 0)
		r := st.addRequest(h)
		st.addItem(r, "X", 10, 0)
	}
	ranking, err := newTestService(st, Options{}).Preview(context.Background(), "X")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if ranking.Outcome != OutcomeScored || len(ranking.Rows) != 2 {
		t.Fatalf("unexpected ranking %+v", ranking)
	}
	if st.applyCalls != 0 {
		t.Fatalf("preview must not write")
	}
}

func TestParseAggregation(t *testing.T) {
	cases := []struct {
		in      string
		want    Aggregation
		wantErr bool
	}{
		{"", AggregateTouched, false},
		{"touched", AggregateTouched, false},
		{" ALL ", AggregateAll, false},
		{"sum", "", true},
	}
	for _, tc := range cases {
		got, err := ParseAggregation(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseAggregation(%q) err=%v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAggregation(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}
