package priority

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. Implementations must
// apply all writes of ApplyScores atomically.
type Store interface {
	// ListOutstandingSupplyCodes returns distinct supply codes with at least one
	// open item (requested > allocated).
	ListOutstandingSupplyCodes(ctx context.Context) ([]string, error)
	// ListCandidates returns the open items for a supply with their hospital attributes.
	ListCandidates(ctx context.Context, supplyCode string) ([]Candidate, error)
	// ListStockBatches returns non-deleted, non-empty batches of the supply held
	// by the given hospitals that expire on or after notBefore. Implementations
	// may return extra batches; Extract applies the exact expiry rule.
	ListStockBatches(ctx context.Context, supplyCode string, hospitalIDs []uuid.UUID, notBefore time.Time) ([]BatchStock, error)
	// MaxOtherItemPriority returns, per request, the highest stored priority among
	// its open items for supplies other than the given one.
	MaxOtherItemPriority(ctx context.Context, supplyCode string, requestIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	ApplyScores(ctx context.Context, items []ItemScore, requests []RequestScore) error
}

// Locker serializes recalculation per key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Notifier is told about every run that wrote scores.
type Notifier interface {
	PrioritiesRecalculated(ctx context.Context, report Report)
}

// Recorder receives run metrics.
type Recorder interface {
	ObservePriorityRun(outcome string, seconds float64)
}
