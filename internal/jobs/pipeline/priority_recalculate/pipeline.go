package priority_recalculate

import (
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type Pipeline struct {
	log  *logger.Logger
	prio services.PriorityRecalculator
}

func New(baseLog *logger.Logger, prio services.PriorityRecalculator) *Pipeline {
	return &Pipeline{
		log:  baseLog.With("job", services.JobTypePriorityRecalculate),
		prio: prio,
	}
}

func (p *Pipeline) Type() string { return services.JobTypePriorityRecalculate }
