// Package server provides the HTTP REST API for the interview agent.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/artifacts"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/resume"
	"github.com/jonathan/interview-agent/internal/types"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Wrapped errors are matched with errors.As.
func HTTPStatus(err error) int {
	var (
		emailErr      *ErrEmailAlreadyExists
		credErr       *ErrInvalidCredentials
		mismatchErr   *ErrPasswordMismatch
		userErr       *ErrUserNotFound
		notFoundErr   *types.NotFoundError
		unauthErr     *types.UnauthorizedError
		validationErr *types.ValidationError
		fieldErrs     validator.ValidationErrors
		transitionErr *types.InvalidTransitionError
		conflictErr   *types.ConflictError
		gatewayErr    *llm.GatewayError
		unreadableErr *resume.UnreadableDocumentError
		malformedErr  *resume.MalformedExtractionError
		tooLargeErr   *artifacts.TooLargeError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &emailErr), errors.As(err, &transitionErr), errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &credErr), errors.As(err, &mismatchErr), errors.As(err, &unauthErr):
		return http.StatusUnauthorized
	case errors.As(err, &userErr), errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &unreadableErr), errors.As(err, &malformedErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLargeErr), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &gatewayErr):
		if gatewayErr.Kind == llm.ErrTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text a client may see. Server and upstream
// failures are reported generically.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusBadGateway:
		return "AI service unavailable, please try again later"
	case http.StatusGatewayTimeout:
		return "AI service timed out, please try again later"
	case http.StatusRequestEntityTooLarge:
		return "upload is too large"
	}

	var (
		fieldErrs     validator.ValidationErrors
		unreadableErr *resume.UnreadableDocumentError
		malformedErr  *resume.MalformedExtractionError
	)
	switch {
	case errors.As(err, &fieldErrs):
		return extractValidationErrors(fieldErrs)
	case errors.As(err, &unreadableErr):
		return "could not read the resume document"
	case errors.As(err, &malformedErr):
		return "could not extract a profile from the resume"
	}
	return err.Error()
}
