package priority

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

var ErrEmptySupplyCode = errors.New("supply code is required")

// Report describes one recalculation run.
type Report struct {
	SupplyCode      string        `json:"supply_code"`
	Outcome         Outcome       `json:"outcome"`
	Candidates      int           `json:"candidates"`
	ItemsUpdated    int           `json:"items_updated"`
	RequestsUpdated int           `json:"requests_updated"`
	Anomalies       int           `json:"numeric_anomalies"`
	At              time.Time     `json:"at"`
	Duration        time.Duration `json:"duration_ns"`
	Err             error         `json:"-"`
	Error           string        `json:"error,omitempty"`
}

type SweepReport struct {
	Supplies  int           `json:"supplies"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Reports   []Report      `json:"reports"`
	Duration  time.Duration `json:"duration_ns"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
}

type Service struct {
	store  Store
	log    *logger.Logger
	opts   Options
	tracer trace.Tracer
}

func NewService(store Store, baseLog *logger.Logger, opts Options) *Service {
	return &Service{
		store:  store,
		log:    baseLog.With("service", "PriorityService"),
		opts:   opts.withDefaults(),
		tracer: otel.Tracer("medsupply/priority"),
	}
}

func (s *Service) today() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// expiryCutoff is the UTC midnight one day before today's calendar date. The
// day of slack keeps stores from dropping a batch that expires today whatever
// zone its date was written in.
func expiryCutoff(today time.Time) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func lockKey(supplyCode string) string {
	return "priority:" + supplyCode
}

// Recalculate scores every open item of one supply and writes item and request
// priorities. It never panics and never returns an error; failures are logged
// and carried on the report.
func (s *Service) Recalculate(ctx context.Context, supplyCode string) (report Report) {
	started := time.Now()
	supplyCode = strings.TrimSpace(supplyCode)
	report = Report{SupplyCode: supplyCode, At: s.opts.Now()}

	ctx, span := s.tracer.Start(ctx, "priority.recalculate",
		trace.WithAttributes(attribute.String("supply_code", supplyCode)))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			report.Outcome = OutcomeFailed
			report.Err = fmt.Errorf("panic: %v", rec)
			s.log.Error("priority recalculation panicked",
				"supply_code", supplyCode,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
		}
		report.Duration = time.Since(started)
		if report.Err != nil {
			report.Error = report.Err.Error()
			span.RecordError(report.Err)
			span.SetStatus(codes.Error, report.Error)
		}
		span.SetAttributes(
			attribute.String("outcome", string(report.Outcome)),
			attribute.Int("candidates", report.Candidates),
		)
		if s.opts.Recorder != nil {
			s.opts.Recorder.ObservePriorityRun(string(report.Outcome), report.Duration.Seconds())
		}
	}()

	fail := func(err error) Report {
		report.Outcome = OutcomeFailed
		report.Err = err
		s.log.WithTrace(ctx).Error("priority recalculation failed", "supply_code", supplyCode, "error", err)
		return report
	}

	if supplyCode == "" {
		return fail(ErrEmptySupplyCode)
	}

	unlock, err := s.opts.Locker.Lock(ctx, lockKey(supplyCode))
	if err != nil {
		return fail(fmt.Errorf("lock supply: %w", err))
	}
	defer unlock()

	ranking, err := s.buildRanking(ctx, supplyCode)
	if err != nil {
		return fail(err)
	}
	report.Outcome = ranking.Outcome
	report.Candidates = len(ranking.Rows)
	report.Anomalies = ranking.NumericAnomalies

	switch ranking.Outcome {
	case OutcomeNoCandidates:
		s.log.Info("no open request items for supply", "supply_code", supplyCode)
		return report
	case OutcomeDegenerate:
		s.log.Warn("no criterion varies across candidates, writing zero priorities",
			"supply_code", supplyCode,
			"candidates", report.Candidates,
		)
	}
	if ranking.NumericAnomalies > 0 {
		s.log.Warn("numeric anomalies resolved during scoring",
			"supply_code", supplyCode,
			"count", ranking.NumericAnomalies,
		)
	}
	s.logRanking(ranking)

	items := ranking.ItemScores()
	requests := ranking.RequestScores()
	if s.opts.Aggregation == AggregateAll {
		requests, err = s.mergeOtherItems(ctx, supplyCode, requests)
		if err != nil {
			return fail(err)
		}
	}
	if err := s.store.ApplyScores(ctx, items, requests); err != nil {
		return fail(fmt.Errorf("apply scores: %w", err))
	}
	report.ItemsUpdated = len(items)
	report.RequestsUpdated = len(requests)

	s.log.Info("priorities recalculated",
		"supply_code", supplyCode,
		"outcome", report.Outcome,
		"items", report.ItemsUpdated,
		"requests", report.RequestsUpdated,
	)
	if s.opts.Notifier != nil {
		s.opts.Notifier.PrioritiesRecalculated(ctx, report)
	}
	return report
}

// Preview computes the ranking for a supply without writing anything.
func (s *Service) Preview(ctx context.Context, supplyCode string) (*Ranking, error) {
	supplyCode = strings.TrimSpace(supplyCode)
	if supplyCode == "" {
		return nil, ErrEmptySupplyCode
	}
	r, err := s.buildRanking(ctx, supplyCode)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) buildRanking(ctx context.Context, supplyCode string) (Ranking, error) {
	cands, err := s.store.ListCandidates(ctx, supplyCode)
	if err != nil {
		return Ranking{}, fmt.Errorf("list candidates: %w", err)
	}
	if len(cands) == 0 {
		return Ranking{SupplyCode: supplyCode, Outcome: OutcomeNoCandidates}, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(cands))
	hospitalIDs := make([]uuid.UUID, 0, len(cands))
	for _, c := range cands {
		if _, ok := seen[c.HospitalID]; ok {
			continue
		}
		seen[c.HospitalID] = struct{}{}
		hospitalIDs = append(hospitalIDs, c.HospitalID)
	}
	today := s.today()
	batches, err := s.store.ListStockBatches(ctx, supplyCode, hospitalIDs, expiryCutoff(today))
	if err != nil {
		return Ranking{}, fmt.Errorf("list stock batches: %w", err)
	}
	r := Rank(Extract(cands, batches, today))
	r.SupplyCode = supplyCode
	return r, nil
}

func (s *Service) mergeOtherItems(ctx context.Context, supplyCode string, requests []RequestScore) ([]RequestScore, error) {
	ids := make([]uuid.UUID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.RequestID)
	}
	others, err := s.store.MaxOtherItemPriority(ctx, supplyCode, ids)
	if err != nil {
		return nil, fmt.Errorf("load other item priorities: %w", err)
	}
	out := make([]RequestScore, len(requests))
	for i, r := range requests {
		if v, ok := others[r.RequestID]; ok && v > r.Score {
			r.Score = v
		}
		out[i] = r
	}
	return out, nil
}

func (s *Service) logRanking(r Ranking) {
	s.log.Debug("priority ranking",
		"supply_code", r.SupplyCode,
		"outcome", r.Outcome,
		"varying", r.VaryingNames,
		"weights", r.Weights,
		"equal_weight_fallback", r.EqualWeightFallback,
	)
	for _, row := range r.Rows {
		s.log.Debug("priority candidate",
			"supply_code", r.SupplyCode,
			"item_id", row.ItemID,
			"hospital", row.HospitalName,
			"raw", row.Raw,
			"normalized", row.Normalized,
			"score", row.Score,
		)
	}
}

// OutstandingSupplies lists the supply codes a sweep would visit.
func (s *Service) OutstandingSupplies(ctx context.Context) ([]string, error) {
	codes, err := s.store.ListOutstandingSupplyCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list outstanding supplies: %w", err)
	}
	return codes, nil
}

// RecalculateAllOutstanding runs Recalculate for every supply with open items.
// A failing supply never stops the sweep.
func (s *Service) RecalculateAllOutstanding(ctx context.Context) SweepReport {
	started := time.Now()
	var sweep SweepReport
	codes, err := s.store.ListOutstandingSupplyCodes(ctx)
	if err != nil {
		sweep.Err = fmt.Errorf("list outstanding supplies: %w", err)
		sweep.Error = sweep.Err.Error()
		sweep.Duration = time.Since(started)
		s.log.Error("priority sweep could not list supplies", "error", err)
		return sweep
	}
	s.log.Info("priority sweep started", "supplies", len(codes), "concurrency", s.opts.SweepConcurrency)

	reports := make([]Report, len(codes))
	var g errgroup.Group
	g.SetLimit(s.opts.SweepConcurrency)
	for i, code := range codes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				reports[i] = Report{SupplyCode: code, Outcome: OutcomeFailed, Err: err, Error: err.Error()}
				return err
			}
			reports[i] = s.Recalculate(ctx, code)
			return nil
		})
	}
	// Only cancellation surfaces here; per-supply failures stay in their reports.
	if err := g.Wait(); err != nil {
		sweep.Err = fmt.Errorf("sweep interrupted: %w", err)
		sweep.Error = sweep.Err.Error()
	}

	sweep.Supplies = len(codes)
	sweep.Reports = reports
	for _, r := range reports {
		if r.Outcome == OutcomeFailed {
			sweep.Failed++
		} else {
			sweep.Succeeded++
		}
	}
	sweep.Duration = time.Since(started)
	s.log.Info("priority sweep finished",
		"supplies", sweep.Supplies,
		"succeeded", sweep.Succeeded,
		"failed", sweep.Failed,
		"duration_ms", sweep.Duration.Milliseconds(),
	)
	return sweep
}
