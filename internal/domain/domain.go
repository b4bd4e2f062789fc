package domain

import (
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/domain/jobs"
)

type (
	Hospital        = inventory.Hospital
	Supplier        = inventory.Supplier
	Supply          = inventory.Supply
	Batch           = inventory.Batch
	SupplyRequest   = inventory.SupplyRequest
	RequestItem     = inventory.RequestItem
	ItemFulfillment = inventory.ItemFulfillment
	Alert           = inventory.Alert

	JobRun = jobs.JobRun
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&Hospital{},
		&Supplier{},
		&Supply{},
		&Batch{},
		&SupplyRequest{},
		&RequestItem{},
		&ItemFulfillment{},
		&Alert{},
		&JobRun{},
	}
}
