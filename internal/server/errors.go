package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	influencerdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	qualitydomain "github.com/oguilhermeleite/Chico-Afiliado/internal/quality/domain"
	retentiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
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
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
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
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, influencerdomain.ErrInvalidInfluencer),
		errors.Is(err, conversiondomain.ErrInvalidInfluencer),
		errors.Is(err, coindomain.ErrInvalidInfluencer),
		errors.Is(err, analyticsdomain.ErrInvalidInfluencer),
		errors.Is(err, qualitydomain.ErrInvalidInfluencer),
		errors.Is(err, retentiondomain.ErrInvalidInfluencer):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
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
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
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
		errors.Is(err, influencerdomain.ErrInvalidUserID),
		errors.Is(err, influencerdomain.ErrInvalidName),
		errors.Is(err, influencerdomain.ErrInvalidEmail),
		errors.Is(err, conversiondomain.ErrInvalidUserID),
		errors.Is(err, conversiondomain.ErrInvalidReferralCode),
		errors.Is(err, conversiondomain.ErrInvalidPlan),
		errors.Is(err, conversiondomain.ErrInvalidPaymentAmount),
		errors.Is(err, coindomain.ErrInvalidUserID),
		errors.Is(err, coindomain.ErrInvalidMovementType),
		errors.Is(err, coindomain.ErrInvalidAmount),
		errors.Is(err, retentiondomain.ErrInvalidSort):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, influencerdomain.ErrNotFound),
		errors.Is(err, conversiondomain.ErrUnknownReferralCode),
		errors.Is(err, conversiondomain.ErrConversionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, influencerdomain.ErrDuplicateUser),
		errors.Is(err, conversiondomain.ErrNoPendingConversions),
		errors.Is(err, conversiondomain.ErrNoPaidConversion):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, conversiondomain.ErrNoPendingConversions):
		return "no pending conversion for user"
	case errors.Is(err, conversiondomain.ErrNoPaidConversion):
		return "no paid conversion for user"
	case errors.Is(err, influencerdomain.ErrDuplicateUser):
		return "influencer already exists for user"
	default:
		return "conflict"
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal_error", payload.Type
	case payload.Type == "validation_error":
		code := payload.Type
		if len(payload.Errors) > 0 {
			code = payload.Errors[0].Code
		}
		return "validation_error", code
	default:
		return payload.Type, payload.Type
	}
}
