package service

import (
	"errors"
	"fmt"
	"log"

	"tobaku-pos/internal/repository"
	"tobaku-pos/pkg/validator"
)

// Error kinds. Every error a service returns matches exactly one of these
// with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrStorage             = errors.New("storage error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// Error carries a kind plus a message safe to show to the caller.
type Error struct {
	Kind    error
	Message string
	Err     error // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func notFound(what string) error {
	return newError(ErrNotFound, "%s not found", what)
}

// validate runs the struct tags and reports the first failure.
func validate(req any) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError("Validation failed: %s", errs[0])
	}
	return nil
}

// fromRepo maps repository sentinels onto service kinds. what names the
// record for not-found messages. Errors already mapped pass through.
func fromRepo(err error, what string) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: ErrNotFound, Message: what + " not found", Err: err}
	case errors.Is(err, repository.ErrInsufficientStock):
		return &Error{Kind: ErrConcurrencyConflict, Message: "insufficient stock for " + what, Err: err}
	case errors.Is(err, repository.ErrSerialization):
		return &Error{Kind: ErrConcurrencyConflict, Message: "concurrent update, please retry", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Kind: ErrValidation, Message: what + " already exists", Err: err}
	}
	log.Printf("storage failure (%s): %v", what, err)
	return &Error{Kind: ErrStorage, Message: "storage failure", Err: err}
}
