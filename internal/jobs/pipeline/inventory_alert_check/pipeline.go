package inventory_alert_check

import (
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type Pipeline struct {
	log    *logger.Logger
	alerts services.AlertService
}

func New(baseLog *logger.Logger, alerts services.AlertService) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", services.JobTypeInventoryAlertCheck),
		alerts: alerts,
	}
}

func (p *Pipeline) Type() string { return services.JobTypeInventoryAlertCheck }
