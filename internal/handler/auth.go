package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/service"
)

// AuthHandler handles signup and session issuance.
type AuthHandler struct {
	accounts *service.AccountService
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts *service.AccountService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: log}
}

// Signup creates an account and returns its session token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	session, err := h.accounts.Signup(c.Request.Context(), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, session)
}

// Session issues a session token for an existing account.
func (h *AuthHandler) Session(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	session, err := h.accounts.SessionFor(c.Request.Context(), req.Email)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, session)
}

// Me returns the caller's own account.
func (h *AuthHandler) Me(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	account, err := h.accounts.Get(c.Request.Context(), cl)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, account)
}
