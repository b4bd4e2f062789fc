package priority_sweep

import (
	"context"

	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type Sweeper interface {
	RecalculateAllOutstanding(ctx context.Context) priority.SweepReport
}

type Pipeline struct {
	log   *logger.Logger
	sweep Sweeper
}

func New(baseLog *logger.Logger, sweep Sweeper) *Pipeline {
	return &Pipeline{
		log:   baseLog.With("job", services.JobTypePrioritySweep),
		sweep: sweep,
	}
}

func (p *Pipeline) Type() string { return services.JobTypePrioritySweep }
