package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/service"
)

// PreferenceHandler handles notification preference requests.
type PreferenceHandler struct {
	prefs  *service.PreferenceService
	logger *logger.Logger
}

// NewPreferenceHandler creates a new preference handler.
func NewPreferenceHandler(prefs *service.PreferenceService, log *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs, logger: log}
}

// Get returns the caller's notification preferences.
func (h *PreferenceHandler) Get(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	p, err := h.prefs.Get(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}

// Update stores the caller's notification preferences.
func (h *PreferenceHandler) Update(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var req service.PreferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	p, err := h.prefs.Update(c.Request.Context(), cl, &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, p)
}
