package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	billingdomain "github.com/veridocs/veridocs/internal/billing/domain"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	extractiondomain "github.com/veridocs/veridocs/internal/extraction/domain"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	"github.com/veridocs/veridocs/internal/storage"
	transformdomain "github.com/veridocs/veridocs/internal/transform/domain"
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
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

	if isValidationError(err) {
		code := validationErrorCode(err)
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
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, documentdomain.ErrInsufficientCredits),
		errors.Is(err, billingdomain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "insufficient_credits",
			Message: "insufficient credits",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, extractiondomain.ErrExtractionTimeout):
		return http.StatusGatewayTimeout, errorPayload{
			Type:    "upstream_timeout",
			Message: "extraction service timed out",
		}
	case errors.Is(err, extractiondomain.ErrExtractionService):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "extraction service error",
		}
	case errors.Is(err, storage.ErrStorage):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "storage unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
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
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, documentdomain.ErrInvalidName),
		errors.Is(err, documentdomain.ErrInvalidOutcome),
		errors.Is(err, documentdomain.ErrInvalidScore),
		errors.Is(err, documentdomain.ErrInvalidCategory),
		errors.Is(err, documentdomain.ErrInvalidPageToken),
		errors.Is(err, documentdomain.ErrInvalidOrganization),
		errors.Is(err, documentdomain.ErrInvalidUploader),
		errors.Is(err, documentdomain.ErrInvalidOperator),
		errors.Is(err, activitydomain.ErrInvalidDocument),
		errors.Is(err, activitydomain.ErrInvalidPageToken),
		errors.Is(err, billingdomain.ErrInvalidAmount),
		errors.Is(err, orderdomain.ErrInvalidOrganization),
		errors.Is(err, orderdomain.ErrInvalidRequester),
		errors.Is(err, transformdomain.ErrInsufficientInputs),
		errors.Is(err, transformdomain.ErrSinglePageDocument):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, documentdomain.ErrInvalidTransition),
		errors.Is(err, documentdomain.ErrDocumentDeleted),
		errors.Is(err, documentdomain.ErrDocumentNotDeleted),
		errors.Is(err, orderdomain.ErrDocumentLinked),
		errors.Is(err, orderdomain.ErrDocumentNotInOrg),
		errors.Is(err, transformdomain.ErrMixedOrganizations):
		return true
	default:
		return false
	}
}

// conflictMessage surfaces the state pair on rejected transitions so a losing
// operator can see who got there first is not them.
func conflictMessage(err error) string {
	var tErr *documentdomain.InvalidTransitionError
	if errors.As(err, &tErr) {
		return tErr.Error()
	}
	return "conflict"
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, documentdomain.ErrDocumentNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, billingdomain.ErrOrganizationNotFound),
		errors.Is(err, billingdomain.ErrPackageNotFound),
		errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
