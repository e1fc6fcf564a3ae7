package resp

import (
	"net/http"

	"github.com/jobhive/jobhive/internal/ecode"
)

// BadRequest indicates a malformed request.
func BadRequest(message string, data ...any) *Exception {
	return newResponse(http.StatusBadRequest, ecode.KindValidation, message, data...)
}

// UnAuthorized indicates that the request carries no valid session.
func UnAuthorized(message string, data ...any) *Exception {
	return newResponse(http.StatusUnauthorized, ecode.KindAuthorization, message, data...)
}

// Forbidden indicates the caller lacks the role or ownership required.
func Forbidden(message string, data ...any) *Exception {
	return newResponse(http.StatusForbidden, ecode.KindAuthorization, message, data...)
}

// NotFound indicates that the requested resource is not found.
func NotFound(message string, data ...any) *Exception {
	return newResponse(http.StatusNotFound, ecode.KindNotFound, message, data...)
}

// Conflict indicates a conflict with existing state.
func Conflict(message string, data ...any) *Exception {
	return newResponse(http.StatusConflict, ecode.KindDuplicateApplication, message, data...)
}

// InternalServer indicates a server error.
func InternalServer(message string, data ...any) *Exception {
	return newResponse(http.StatusInternalServerError, ecode.KindInternal, message, data...)
}

// kindStatus maps failure kinds to HTTP status codes.
var kindStatus = map[ecode.Kind]int{
	ecode.KindValidation:           http.StatusBadRequest,
	ecode.KindAuthorization:        http.StatusForbidden,
	ecode.KindNotFound:             http.StatusNotFound,
	ecode.KindQuotaExceeded:        http.StatusUnprocessableEntity,
	ecode.KindInvalidTransition:    http.StatusConflict,
	ecode.KindDuplicateApplication: http.StatusConflict,
	ecode.KindNotAJobSeeker:        http.StatusForbidden,
	ecode.KindIncompleteProfile:    http.StatusUnprocessableEntity,
	ecode.KindMissingCV:            http.StatusUnprocessableEntity,
	ecode.KindNotAccepting:         http.StatusConflict,
	ecode.KindPaymentNotCompleted:  http.StatusPaymentRequired,
	ecode.KindAlreadyPublished:     http.StatusConflict,
	ecode.KindInternal:             http.StatusInternalServerError,
}

// FromError converts a structured workflow failure into a response. Raw
// store errors surface as an opaque internal error.
func FromError(err error) *Exception {
	kind := ecode.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return newResponse(status, kind, ecode.MessageOf(err))
}
