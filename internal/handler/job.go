package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/data/repository"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/paging"
	"github.com/jobhive/jobhive/internal/service"
)

// JobHandler handles posting lifecycle requests.
type JobHandler struct {
	jobs   *service.JobService
	logger *logger.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs *service.JobService, log *logger.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: log}
}

// Create creates a draft posting.
func (h *JobHandler) Create(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req service.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	j, err := h.jobs.CreateDraft(c.Request.Context(), cl, &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, j)
}

// Get returns one of the caller's postings.
func (h *JobHandler) Get(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	j, err := h.jobs.Get(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, j)
}

// List returns all of the caller's postings.
func (h *JobHandler) List(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	jobs, err := h.jobs.ListMine(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, jobs)
}

// Update overwrites the posting fields.
func (h *JobHandler) Update(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req service.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	j, err := h.jobs.UpdateFields(c.Request.Context(), cl, c.Param("id"), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, j)
}

// PublishFree publishes a draft on the free plan.
func (h *JobHandler) PublishFree(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	j, err := h.jobs.PublishFree(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, j)
}

// SetStatus moves the posting between draft and published.
func (h *JobHandler) SetStatus(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	j, err := h.jobs.SetStatus(c.Request.Context(), cl, c.Param("id"), domain.JobStatus(req.Status))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, j)
}

// Delete removes the posting and its applications.
func (h *JobHandler) Delete(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), cl, c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, "deleted")
}

// RequestPaidPublish starts the paid publication flow for a draft.
func (h *JobHandler) RequestPaidPublish(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	pr, err := h.jobs.RequestPaidPublish(c.Request.Context(), cl, c.Param("id"), domain.JobPlan(req.Plan))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, pr)
}

// ListPublic returns published postings for job seekers. No session is
// required.
func (h *JobHandler) ListPublic(c *gin.Context) {
	filter := repository.JobFilter{
		Country: c.Query("country"),
		Sphere:  c.Query("sphere"),
		Search:  c.Query("q"),
	}
	if v := c.Query("global_remote"); v != "" {
		b, _ := strconv.ParseBool(v)
		filter.GlobalRemote = &b
	}
	if v := c.Query("visa_sponsorship"); v != "" {
		b, _ := strconv.ParseBool(v)
		filter.VisaSponsorship = &b
	}

	var params paging.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	result, err := h.jobs.ListPublic(c.Request.Context(), filter, params)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, result)
}

// GetPublic returns one published posting by slug.
func (h *JobHandler) GetPublic(c *gin.Context) {
	j, err := h.jobs.GetPublic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, j)
}
