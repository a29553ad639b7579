package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/service"
)

// RetryAfterSeconds is advertised on responses for retryable store failures.
const RetryAfterSeconds = "1"

// MapErrorToStatusCode maps domain errors to HTTP status codes. Anything
// unclassified is a 500 so internal error types never leak.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrValidation), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrIdentityConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verr     *domain.ValidationError
		verrs    validator.ValidationErrors
		conflict *service.ConflictError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return "You may only modify your own account"
	case errors.As(err, &verr):
		if verr.Field == "" {
			return "Invalid request: " + verr.Message
		}
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"
	case errors.Is(err, domain.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, domain.ErrIdentityConflict):
		return "Identity mapping conflict"
	case errors.As(err, &conflict) && conflict.Field != "":
		return conflict.Field + " already in use"
	case errors.Is(err, domain.ErrConflict):
		return "Resource already exists"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "Service temporarily unavailable, retry later"
	default:
		return "An unexpected error occurred"
	}
}

// errorField names the request field an error refers to, if any.
func errorField(err error) string {
	var (
		verr     *domain.ValidationError
		verrs    validator.ValidationErrors
		conflict *service.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Field
	case errors.As(err, &verrs) && len(verrs) > 0:
		return verrs[0].Field()
	case errors.As(err, &conflict):
		return conflict.Field
	default:
		return ""
	}
}

// HandleAPIError writes the error response for err. notFoundMessage, when
// non-empty, replaces the generic 404 text. Retryable failures carry a
// Retry-After header.
func HandleAPIError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
	notFoundMessage string,
	extra ...shared.ResponseOption,
) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusNotFound && notFoundMessage != "" {
		message = notFoundMessage
	}

	var opts []shared.ResponseOption
	if field := errorField(err); field != "" {
		opts = append(opts, shared.WithField(field))
	}
	if domain.IsRetryable(err) {
		opts = append(opts, shared.WithHeader("Retry-After", RetryAfterSeconds))
	}
	if status == http.StatusForbidden || errors.Is(err, domain.ErrIdentityConflict) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	opts = append(opts, extra...)
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError describes the first failed request field without
// echoing the rejected value.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "url", "http_url":
		return "invalid URL"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt", "gte":
		return "must be positive"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
