// Package middleware provides the gin middleware shared by all routes:
// session authentication, trace ids, and request logging.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/ctxutil"
	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/logging/logger"
	"github.com/jobhive/jobhive/internal/net/resp"
	"github.com/jobhive/jobhive/internal/security/jwt"
)

// Middleware bundles the middleware dependencies.
type Middleware struct {
	tokens *jwt.TokenManager
	logger *logger.Logger
}

// New creates a middleware bundle.
func New(tokens *jwt.TokenManager, log *logger.Logger) *Middleware {
	return &Middleware{tokens: tokens, logger: log}
}

// Auth validates the bearer token and threads the caller identity into the
// request context. Every protected route reads the caller from there; no
// handler touches the token itself.
func (m *Middleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			resp.Fail(c.Writer, resp.UnAuthorized("invalid authorization format"))
			c.Abort()
			return
		}

		payload, err := m.tokens.ParseSessionToken(parts[1])
		if err != nil {
			m.logger.Debug(c.Request.Context(), "session token rejected", "error", err)
			resp.Fail(c.Writer, resp.UnAuthorized("invalid or expired token"))
			c.Abort()
			return
		}

		role, ok := domain.ParseRole(payload.Role)
		if !ok || payload.AccountID == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("invalid token payload"))
			c.Abort()
			return
		}

		caller := domain.Caller{
			AccountID: payload.AccountID,
			Email:     payload.Email,
			Role:      role,
		}
		c.Request = c.Request.WithContext(ctxutil.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

// Caller extracts the authenticated caller placed by Auth.
func Caller(c *gin.Context) (domain.Caller, bool) {
	return ctxutil.GetCaller(c.Request.Context())
}
