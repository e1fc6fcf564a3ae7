package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/service"
)

// ProfileHandler handles seeker and employer profile requests.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *logger.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles *service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: log}
}

// GetSeekerProfile returns the caller's seeker profile.
func (h *ProfileHandler) GetSeekerProfile(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	p, err := h.profiles.GetSeekerProfile(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}

// UpdateSeekerProfile upserts the caller's seeker profile.
func (h *ProfileHandler) UpdateSeekerProfile(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req service.SeekerProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	p, err := h.profiles.UpdateSeekerProfile(c.Request.Context(), cl, &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}

// UploadCV receives a multipart CV document and stores it.
func (h *ProfileHandler) UploadCV(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	file, err := c.FormFile("cv")
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest("a cv file is required"))
		return
	}

	f, err := file.Open()
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest("unreadable cv file"))
		return
	}
	defer f.Close()

	p, err := h.profiles.UploadCV(c.Request.Context(), cl, file.Filename, f)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}

// CVDownloadURL returns a retrievable URL for the caller's CV.
func (h *ProfileHandler) CVDownloadURL(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	u, err := h.profiles.CVDownloadURL(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, gin.H{"url": u})
}

// GetEmployerProfile returns the caller's employer profile.
func (h *ProfileHandler) GetEmployerProfile(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	p, err := h.profiles.GetEmployerProfile(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}

// UpdateEmployerProfile upserts the caller's employer profile.
func (h *ProfileHandler) UpdateEmployerProfile(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req service.EmployerProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	p, err := h.profiles.UpdateEmployerProfile(c.Request.Context(), cl, &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}
