// Package handler exposes the workflow operations over HTTP. Handlers bind
// and validate the request shape, pass the authenticated caller explicitly
// into the service layer, and map structured failures onto the response
// envelope.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/domain"
	"github.com/jobhive/jobhive/internal/middleware"
	"github.com/jobhive/jobhive/internal/net/resp"
)

// caller extracts the authenticated caller, failing the request when the
// auth middleware did not run.
func caller(c *gin.Context) (domain.Caller, bool) {
	cl, ok := middleware.Caller(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("no authenticated caller"))
	}
	return cl, ok
}
