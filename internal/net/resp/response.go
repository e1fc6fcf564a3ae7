// Package resp writes the JSON response envelope shared by all handlers.
package resp

import (
	"encoding/json"
	"net/http"

	"github.com/jobhive/jobhive/internal/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Kind    string `json:"kind,omitempty"`    // Failure kind
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// newResponse creates a new response.
func newResponse(status int, kind ecode.Kind, message string, data ...any) *Exception {
	var responseData any
	if len(data) > 0 {
		responseData = data[0]
	}

	if status < 200 || status >= 400 {
		return &Exception{
			Status:  status,
			Kind:    string(kind),
			Message: message,
			Errors:  responseData,
		}
	}

	return &Exception{
		Status:  status,
		Message: message,
		Data:    responseData,
	}
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with a custom status code.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	var message string
	var responseData any

	if len(data) > 0 {
		responseData = data[0]
		if strData, ok := responseData.(string); ok {
			message = strData
			responseData = nil
		}
	}

	r := newResponse(statusCode, "", message, responseData)

	if r.Data != nil {
		writeJSON(w, statusCode, r.Data)
		return
	}

	if message == "" {
		message = "ok"
	}
	writeJSON(w, statusCode, map[string]any{"message": message})
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = InternalServer("internal error")
	}

	status := r.Status
	if status == 0 {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, &Exception{
		Kind:    r.Kind,
		Message: r.Message,
		Errors:  r.Errors,
	})
}

func writeJSON(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
