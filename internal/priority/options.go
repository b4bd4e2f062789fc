package priority

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/medsupply-backend/internal/platform/keylock"
)

type Aggregation string

const (
	// AggregateTouched sets a request's priority to the max over the items
	// scored in the current run.
	AggregateTouched Aggregation = "touched"
	// AggregateAll also considers stored priorities of the request's other open items.
	AggregateAll Aggregation = "all"
)

func ParseAggregation(raw string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(strings.TrimSpace(raw))) {
	case "", AggregateTouched:
		return AggregateTouched, nil
	case AggregateAll:
		return AggregateAll, nil
	default:
		return "", fmt.Errorf("unknown request aggregation %q", raw)
	}
}

type Options struct {
	// Location decides which calendar date counts as today.
	Location         *time.Location
	Aggregation      Aggregation
	SweepConcurrency int
	Now              func() time.Time
	Locker           Locker
	Notifier         Notifier
	Recorder         Recorder
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Aggregation == "" {
		o.Aggregation = AggregateTouched
	}
	if o.SweepConcurrency <= 0 {
		o.SweepConcurrency = 1
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Locker == nil {
		o.Locker = keylock.NewLocal()
	}
	return o
}
