package natsbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type recordingPublisher struct {
	subjects []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, v any) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, v)
	return p.err
}

func TestPriorityNotifierPublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewPriorityNotifier(pub, logger.Nop())
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n.PrioritiesRecalculated(context.Background(), priority.Report{
		SupplyCode:      "42131600",
		Outcome:         priority.OutcomeScored,
		Candidates:      3,
		ItemsUpdated:    3,
		RequestsUpdated: 2,
		At:              at,
	})
	if len(pub.subjects) != 1 || pub.subjects[0] != SubjectPriorityRecalculated {
		t.Fatalf("unexpected subjects %v", pub.subjects)
	}
	evt, ok := pub.payloads[0].(PriorityRecalculatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", pub.payloads[0])
	}
	if evt.SupplyCode != "42131600" || evt.Outcome != "scored" || evt.Items != 3 || evt.Requests != 2 || !evt.At.Equal(at) {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestPriorityNotifierSwallowsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("down")}
	n := NewPriorityNotifier(pub, logger.Nop())
	n.PrioritiesRecalculated(context.Background(), priority.Report{SupplyCode: "X"})
	if len(pub.subjects) != 1 {
		t.Fatalf("expected one publish attempt")
	}
}

func TestDecodePriorityRequest(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"valid", `{"supply_code":" 42131600 "}`, "42131600", false},
		{"blank", `{"supply_code":"  "}`, "", true},
		{"malformed", `{`, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodePriorityRequest([]byte(tc.in))
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
			if !tc.wantErr && got.SupplyCode != tc.want {
				t.Fatalf("supply=%q want %q", got.SupplyCode, tc.want)
			}
		})
	}
}

func TestSubjectPrefix(t *testing.T) {
	b := &Bus{prefix: "medsupply"}
	if got := b.Subject("priority.recalculated"); got != "medsupply.priority.recalculated" {
		t.Fatalf("subject=%q", got)
	}
	var nilBus *Bus
	if got := nilBus.Subject("x"); got != "x" {
		t.Fatalf("nil bus subject=%q", got)
	}
}

func TestAlertNotifierPublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewAlertNotifier(pub, logger.Nop())
	code := "42131600"
	batch := uuid.New()
	a := &types.Alert{
		ID:         uuid.New(),
		HospitalID: uuid.New(),
		SupplyCode: &code,
		BatchID:    &batch,
		AlertType:  "expiring",
		Message:    "expires soon",
	}
	n.AlertRaised(context.Background(), a)
	n.AlertRaised(context.Background(), nil)
	if len(pub.subjects) != 1 || pub.subjects[0] != SubjectAlertRaised {
		t.Fatalf("unexpected subjects %v", pub.subjects)
	}
	evt := pub.payloads[0].(AlertRaisedEvent)
	if evt.SupplyCode != code || evt.BatchID != batch.String() || evt.AlertType != "expiring" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestPriorityRequestHandler(t *testing.T) {
	var got []string
	h := PriorityRequestHandler(func(ctx context.Context, supplyCode string) {
		got = append(got, supplyCode)
	})
	if err := h(context.Background(), []byte(`{"supply_code":" 42131600 "}`)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if err := h(context.Background(), []byte(`{"supply_code":""}`)); !errors.Is(err, priority.ErrEmptySupplyCode) {
		t.Fatalf("expected empty code error, got %v", err)
	}
	if err := h(context.Background(), []byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if len(got) != 1 || got[0] != "42131600" {
		t.Fatalf("unexpected fired codes %v", got)
	}
}
