package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/nalotext/smsmargin/internal/billing/domain"
	insightsdomain "github.com/nalotext/smsmargin/internal/insights/domain"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
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
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrResellerRequired   = errors.New("reseller_required")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// ErrorHandlingMiddleware converts errors attached to the gin context into
// a JSON error response once, after the handler chain has run.
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

// The cause behind an internal error stays in the logs; clients only see
// the taxonomy type.
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
	case errors.Is(err, markupruledomain.ErrDuplicateName):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
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
		errors.Is(err, ErrResellerRequired):
		return true
	case isMarkupRuleValidationError(err),
		isPricingValidationError(err),
		isWalletValidationError(err),
		isLedgerValidationError(err),
		errors.Is(err, billingdomain.ErrNoRecipients),
		errors.Is(err, insightsdomain.ErrInvalidReseller):
		return true
	default:
		return false
	}
}

func isMarkupRuleValidationError(err error) bool {
	switch {
	case errors.Is(err, markupruledomain.ErrInvalidReseller),
		errors.Is(err, markupruledomain.ErrInvalidName),
		errors.Is(err, markupruledomain.ErrInvalidKind),
		errors.Is(err, markupruledomain.ErrInvalidMarkupType),
		errors.Is(err, markupruledomain.ErrInvalidMarkupValue),
		errors.Is(err, markupruledomain.ErrPercentageTooLarge),
		errors.Is(err, markupruledomain.ErrInvalidVolumeBand),
		errors.Is(err, markupruledomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isPricingValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidReseller),
		errors.Is(err, pricingdomain.ErrInvalidVolume),
		errors.Is(err, pricingdomain.ErrInvalidBaseCost),
		errors.Is(err, pricingdomain.ErrNoVolumes):
		return true
	default:
		return false
	}
}

func isWalletValidationError(err error) bool {
	switch {
	case errors.Is(err, walletdomain.ErrInvalidReseller),
		errors.Is(err, walletdomain.ErrInvalidAmount),
		errors.Is(err, walletdomain.ErrInsufficient),
		errors.Is(err, walletdomain.ErrInvalidConfig),
		errors.Is(err, walletdomain.ErrInvalidCursor):
		return true
	default:
		return false
	}
}

func isLedgerValidationError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidReseller),
		errors.Is(err, ledgerdomain.ErrInvalidTransaction),
		errors.Is(err, ledgerdomain.ErrInvalidWindow):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, markupruledomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "insufficient_balance":
		return "insufficient balance"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", code
	case status == http.StatusTooManyRequests:
		return "rate_limited", code
	default:
		return "client", code
	}
}
