package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

const (
	JobTypePriorityRecalculate = "priority_recalculate"
	JobTypePrioritySweep       = "priority_sweep"
	JobTypeInventoryAlertCheck = "inventory_alert_check"

	EntityTypeSupply = "supply"
	EntityTypeSystem = "system"
)

type JobService interface {
	Enqueue(dbc dbctx.Context, jobType string, entityType string, entityKey string, payload map[string]any) (*types.JobRun, error)
	// EnqueueUnlessQueued skips creation when an identical job is still waiting
	// to be claimed; the waiting job will observe the latest data anyway.
	EnqueueUnlessQueued(dbc dbctx.Context, jobType string, entityType string, entityKey string, payload map[string]any) (*types.JobRun, bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error)
	ListRecent(dbc dbctx.Context, jobType string, limit int) ([]*types.JobRun, error)
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.JobRunRepo
	notify JobNotifier
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, notify JobNotifier) JobService {
	return &jobService{
		db:     db,
		log:    baseLog.With("service", "JobService"),
		repo:   repo,
		notify: notify,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, jobType string, entityType string, entityKey string, payload map[string]any) (*types.JobRun, error) {
	jobType = strings.TrimSpace(jobType)
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type: %w", errs.ErrInvalidArgument)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if _, ok := payload["trace_id"]; !ok && td.TraceID != "" {
			payload["trace_id"] = td.TraceID
		}
		if _, ok := payload["correlation_id"]; !ok && td.CorrelationID != "" {
			payload["correlation_id"] = td.CorrelationID
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	job := &types.JobRun{
		JobType:    jobType,
		EntityType: entityType,
		EntityKey:  entityKey,
		Payload:    datatypes.JSON(b),
		Result:     datatypes.JSON([]byte(`{}`)),
	}
	if uid := ctxutil.UserID(dbc.Ctx); uid != uuid.Nil {
		job.RequestedBy = &uid
	}
	if _, err := s.repo.Create(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.Resolve(s.db)}, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", repos.MapError(err))
	}
	s.log.Debug("job enqueued", "job_id", job.ID, "job_type", jobType, "entity_key", entityKey)
	if s.notify != nil {
		s.notify.JobCreated(job)
	}
	return job, nil
}

func (s *jobService) EnqueueUnlessQueued(dbc dbctx.Context, jobType string, entityType string, entityKey string, payload map[string]any) (*types.JobRun, bool, error) {
	exists, err := s.repo.ExistsQueued(dbc, jobType, entityType, entityKey)
	if err != nil {
		return nil, false, fmt.Errorf("check queued job: %w", err)
	}
	if exists {
		return nil, false, nil
	}
	job, err := s.Enqueue(dbc, jobType, entityType, entityKey, payload)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *jobService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	rows, err := s.repo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, repos.MapError(err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("job %s: %w", id, errs.ErrNotFound)
	}
	return rows[0], nil
}

func (s *jobService) ListRecent(dbc dbctx.Context, jobType string, limit int) ([]*types.JobRun, error) {
	rows, err := s.repo.ListRecent(dbc, jobType, limit)
	if err != nil {
		return nil, repos.MapError(err)
	}
	return rows, nil
}
