package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/service"
)

// ApplicationHandler handles application workflow requests.
type ApplicationHandler struct {
	applications *service.ApplicationService
	logger       *logger.Logger
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(applications *service.ApplicationService, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: log}
}

// Submit creates an application against a published posting.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		JobID       string `json:"job_id" binding:"required"`
		CoverLetter string `json:"cover_letter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	a, err := h.applications.Submit(c.Request.Context(), cl, req.JobID, req.CoverLetter)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, a)
}

// View returns the full application detail to the owning employer,
// transitioning pending applications to viewed.
func (h *ApplicationHandler) View(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	detail, err := h.applications.View(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, detail)
}

// UpdateStatus moves an application to a new review status.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
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

	if err := h.applications.UpdateStatus(c.Request.Context(), cl, c.Param("id"), domain.ApplicationStatus(req.Status)); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, "updated")
}

// BulkUpdateStatus applies a status change to many applications at once.
func (h *ApplicationHandler) BulkUpdateStatus(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		ApplicationIDs []string `json:"application_ids" binding:"required"`
		Status         string   `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	updated, err := h.applications.BulkUpdateStatus(c.Request.Context(), cl, req.ApplicationIDs, domain.ApplicationStatus(req.Status))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, gin.H{"updated": updated})
}

// ListForJob returns the applications against one of the caller's postings.
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	details, err := h.applications.ListForJob(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, details)
}

// StatusCounts returns the per-status counts for a posting's applications.
func (h *ApplicationHandler) StatusCounts(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	counts, err := h.applications.StatusCounts(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, counts)
}

// ListMine returns the caller's own applications.
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	apps, err := h.applications.ListMine(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, apps)
}
