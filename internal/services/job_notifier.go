package services

import (
	"context"
	"time"

	"github.com/yungbote/medsupply-backend/internal/clients/natsbus"
	types "github.com/yungbote/medsupply-backend/internal/domain"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

type JobNotifier interface {
	JobCreated(job *types.JobRun)
	JobProgress(job *types.JobRun, stage string, progress int)
	JobFailed(job *types.JobRun, stage string, errorMessage string)
	JobDone(job *types.JobRun)
}

type jobNotifier struct {
	pub natsbus.Publisher
	log *logger.Logger
}

// NewJobNotifier publishes job lifecycle events on the bus. A nil publisher
// turns every call into a no-op.
func NewJobNotifier(pub natsbus.Publisher, baseLog *logger.Logger) JobNotifier {
	return &jobNotifier{pub: pub, log: baseLog.With("component", "JobNotifier")}
}

func (n *jobNotifier) JobCreated(job *types.JobRun) {
	if job == nil {
		return
	}
	n.emit("created", job, job.Stage, job.Progress, "")
}

func (n *jobNotifier) JobProgress(job *types.JobRun, stage string, progress int) {
	n.emit("progress", job, stage, progress, "")
}

func (n *jobNotifier) JobFailed(job *types.JobRun, stage string, errorMessage string) {
	if job == nil {
		return
	}
	n.emit("failed", job, stage, job.Progress, errorMessage)
}

func (n *jobNotifier) JobDone(job *types.JobRun) {
	if job == nil {
		return
	}
	n.emit("done", job, job.Stage, 100, "")
}

func (n *jobNotifier) emit(event string, job *types.JobRun, stage string, progress int, errMsg string) {
	if n == nil || n.pub == nil || job == nil {
		return
	}
	evt := natsbus.JobEvent{
		Event:    event,
		JobID:    job.ID.String(),
		JobType:  job.JobType,
		Status:   job.Status,
		Stage:    stage,
		Progress: progress,
		Error:    errMsg,
		At:       time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.pub.Publish(ctx, natsbus.SubjectJobEvent, evt); err != nil {
		n.log.Warn("publish job event failed", "job_id", job.ID, "event", event, "error", err)
	}
}
