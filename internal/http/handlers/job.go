package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs?job_type=&limit=
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	jobs, err := h.jobs.ListRecent(requestDBC(c), strings.TrimSpace(c.Query("job_type")), limit)
	if err != nil {
		response.RespondAPIError(c, err, "list_jobs_failed")
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_job_id")
		return
	}
	job, err := h.jobs.GetByID(requestDBC(c), jobID)
	if err != nil {
		response.RespondAPIError(c, err, "job_not_found")
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}
