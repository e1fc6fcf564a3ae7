// Package ecode defines the structured failure kinds returned by every
// workflow operation. A failure is always distinguishable by its kind; the
// HTTP layer maps kinds to status codes and never sees raw store errors.
package ecode

import (
	"errors"
	"fmt"
)

// Kind identifies a failure category.
type Kind string

const (
	KindValidation           Kind = "validation"
	KindAuthorization        Kind = "authorization"
	KindNotFound             Kind = "not_found"
	KindQuotaExceeded        Kind = "quota_exceeded"
	KindInvalidTransition    Kind = "invalid_transition"
	KindDuplicateApplication Kind = "duplicate_application"
	KindNotAJobSeeker        Kind = "not_a_job_seeker"
	KindIncompleteProfile    Kind = "incomplete_profile"
	KindMissingCV            Kind = "missing_cv"
	KindNotAccepting         Kind = "not_accepting_applications"
	KindPaymentNotCompleted  Kind = "payment_not_completed"
	KindAlreadyPublished     Kind = "already_published"
	KindInternal             Kind = "internal"
)

// Error is a structured failure: a kind plus a caller-facing message, with
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, or KindInternal for anything that is
// not a structured failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf extracts the caller-facing message from err, falling back to a
// generic message for unstructured errors so store internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Convenience constructors for the workflow error taxonomy.

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func Authorization(format string, args ...any) *Error {
	return New(KindAuthorization, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func QuotaExceeded(format string, args ...any) *Error {
	return New(KindQuotaExceeded, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return New(KindInvalidTransition, format, args...)
}

func DuplicateApplication(format string, args ...any) *Error {
	return New(KindDuplicateApplication, format, args...)
}

func NotAJobSeeker(format string, args ...any) *Error {
	return New(KindNotAJobSeeker, format, args...)
}

func IncompleteProfile(format string, args ...any) *Error {
	return New(KindIncompleteProfile, format, args...)
}

func MissingCV(format string, args ...any) *Error {
	return New(KindMissingCV, format, args...)
}

func NotAccepting(format string, args ...any) *Error {
	return New(KindNotAccepting, format, args...)
}

func PaymentNotCompleted(format string, args ...any) *Error {
	return New(KindPaymentNotCompleted, format, args...)
}

func AlreadyPublished(format string, args ...any) *Error {
	return New(KindAlreadyPublished, format, args...)
}

func Internal(err error, format string, args ...any) *Error {
	return Wrap(KindInternal, err, format, args...)
}
