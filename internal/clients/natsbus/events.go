package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

const (
	SubjectPriorityRecalculated = "priority.recalculated"
	SubjectPriorityRequested    = "priority.requested"
	SubjectAlertRaised          = "inventory.alert.raised"
	SubjectJobEvent             = "jobs.event"
)

type PriorityRecalculatedEvent struct {
	SupplyCode string    `json:"supply_code"`
	Outcome    string    `json:"outcome"`
	Candidates int       `json:"candidates"`
	Items      int       `json:"items"`
	Requests   int       `json:"requests"`
	At         time.Time `json:"at"`
}

// JobEvent mirrors a job_run lifecycle transition.
type JobEvent struct {
	Event    string    `json:"event"`
	JobID    string    `json:"job_id"`
	JobType  string    `json:"job_type"`
	Status   string    `json:"status"`
	Stage    string    `json:"stage"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// AlertRaisedEvent is published once per newly created inventory alert.
type AlertRaisedEvent struct {
	AlertID    string    `json:"alert_id"`
	AlertType  string    `json:"alert_type"`
	HospitalID string    `json:"hospital_id"`
	SupplyCode string    `json:"supply_code,omitempty"`
	BatchID    string    `json:"batch_id,omitempty"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// PriorityRequest asks a subscriber to recalculate one supply.
type PriorityRequest struct {
	SupplyCode string `json:"supply_code"`
}

func DecodePriorityRequest(data []byte) (PriorityRequest, error) {
	var req PriorityRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("decode priority request: %w", err)
	}
	req.SupplyCode = strings.TrimSpace(req.SupplyCode)
	if req.SupplyCode == "" {
		return req, fmt.Errorf("decode priority request: %w", priority.ErrEmptySupplyCode)
	}
	return req, nil
}

// PriorityNotifier publishes a recalculated event after each successful run.
// Publish failures are logged and dropped.
type PriorityNotifier struct {
	pub Publisher
	log *logger.Logger
}

var _ priority.Notifier = (*PriorityNotifier)(nil)

func NewPriorityNotifier(pub Publisher, baseLog *logger.Logger) *PriorityNotifier {
	return &PriorityNotifier{pub: pub, log: baseLog.With("component", "PriorityNotifier")}
}

func (n *PriorityNotifier) PrioritiesRecalculated(ctx context.Context, r priority.Report) {
	if n == nil || n.pub == nil {
		return
	}
	evt := PriorityRecalculatedEvent{
		SupplyCode: r.SupplyCode,
		Outcome:    string(r.Outcome),
		Candidates: r.Candidates,
		Items:      r.ItemsUpdated,
		Requests:   r.RequestsUpdated,
		At:         r.At.UTC(),
	}
	if err := n.pub.Publish(ctx, SubjectPriorityRecalculated, evt); err != nil {
		n.log.Warn("publish priority event failed", "supply_code", r.SupplyCode, "error", err)
	}
}

// AlertNotifier publishes an alert raised event for each new inventory alert.
type AlertNotifier struct {
	pub Publisher
	log *logger.Logger
}

func NewAlertNotifier(pub Publisher, baseLog *logger.Logger) *AlertNotifier {
	return &AlertNotifier{pub: pub, log: baseLog.With("component", "AlertNotifier")}
}

func (n *AlertNotifier) AlertRaised(ctx context.Context, a *types.Alert) {
	if n == nil || n.pub == nil || a == nil {
		return
	}
	evt := AlertRaisedEvent{
		AlertID:    a.ID.String(),
		AlertType:  a.AlertType,
		HospitalID: a.HospitalID.String(),
		Message:    a.Message,
		At:         a.CreatedAt.UTC(),
	}
	if a.SupplyCode != nil {
		evt.SupplyCode = *a.SupplyCode
	}
	if a.BatchID != nil {
		evt.BatchID = a.BatchID.String()
	}
	if err := n.pub.Publish(ctx, SubjectAlertRaised, evt); err != nil {
		n.log.Warn("publish alert event failed", "alert_id", a.ID, "alert_type", a.AlertType, "error", err)
	}
}

// PriorityRequestHandler adapts a recalculation trigger to a bus handler for
// SubjectPriorityRequested.
func PriorityRequestHandler(fire func(ctx context.Context, supplyCode string)) func(ctx context.Context, data []byte) error {
	return func(ctx context.Context, data []byte) error {
		req, err := DecodePriorityRequest(data)
		if err != nil {
			return err
		}
		fire(ctx, req.SupplyCode)
		return nil
	}
}
