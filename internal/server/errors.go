package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/whitelabel/internal/authorization"
	brandingdomain "github.com/smallbiznis/whitelabel/internal/branding/domain"
	customdomaindomain "github.com/smallbiznis/whitelabel/internal/customdomain/domain"
	invitationdomain "github.com/smallbiznis/whitelabel/internal/invitation/domain"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
	userdomain "github.com/smallbiznis/whitelabel/internal/user/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var verifyErr *customdomaindomain.VerificationFailedError
	if errors.As(err, &verifyErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "verification_failed",
			Message: verifyErr.Message,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, invitationdomain.ErrExpired):
		return http.StatusBadRequest, errorPayload{
			Type:    "expired",
			Message: "invitation has expired",
		}
	case errors.Is(err, invitationdomain.ErrEmailMismatch),
		errors.Is(err, tenancydomain.ErrClientNotInAgency):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_mismatch",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, userdomain.ErrUnauthenticated),
		errors.Is(err, userdomain.ErrUnknownUser):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authorization.ErrNotAMember):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "not a member of this agency",
		}
	case errors.Is(err, authorization.ErrInsufficientRole):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "insufficient role",
		}
	case errors.Is(err, tenancydomain.ErrTierRestricted):
		return http.StatusForbidden, errorPayload{
			Type:    "tier_restricted",
			Message: "feature not available on the agency tier",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog reports the response type and the underlying code for
// the request log.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	} else if err != nil && payload.Type != "internal_error" {
		code = err.Error()
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, tenancydomain.ErrInvalidName),
		errors.Is(err, tenancydomain.ErrInvalidTier),
		errors.Is(err, tenancydomain.ErrInvalidRole),
		errors.Is(err, tenancydomain.ErrInvalidOwner),
		errors.Is(err, customdomaindomain.ErrInvalidDomain),
		errors.Is(err, invitationdomain.ErrInvalidEmail),
		errors.Is(err, invitationdomain.ErrInvalidRole),
		errors.Is(err, invitationdomain.ErrInvalidToken):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, customdomaindomain.ErrDomainTaken),
		errors.Is(err, invitationdomain.ErrAlreadyProcessed),
		errors.Is(err, tenancydomain.ErrSlugConflict):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, tenancydomain.ErrAgencyNotFound),
		errors.Is(err, tenancydomain.ErrClientNotFound),
		errors.Is(err, customdomaindomain.ErrDomainNotFound),
		errors.Is(err, invitationdomain.ErrInvitationNotFound),
		errors.Is(err, brandingdomain.ErrDomainNotConfigured),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	return strings.TrimPrefix(code, "invalid_")
}

func validationErrorMessage(code string) string {
	return "invalid " + validationErrorField(code)
}
