package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{name: "validation sentinel", err: walletdomain.ErrInsufficient, wantStatus: http.StatusBadRequest, wantType: "validation_error"},
		{name: "pricing validation", err: pricingdomain.ErrInvalidVolume, wantStatus: http.StatusBadRequest, wantType: "validation_error"},
		{name: "duplicate rule name", err: markupruledomain.ErrDuplicateName, wantStatus: http.StatusConflict, wantType: "conflict"},
		{name: "rule not found", err: markupruledomain.ErrNotFound, wantStatus: http.StatusNotFound, wantType: "not_found"},
		{name: "gorm not found", err: gorm.ErrRecordNotFound, wantStatus: http.StatusNotFound, wantType: "not_found"},
		{name: "rate limited", err: ErrRateLimited, wantStatus: http.StatusTooManyRequests, wantType: "rate_limited"},
		{name: "service unavailable", err: ErrServiceUnavailable, wantStatus: http.StatusServiceUnavailable, wantType: "service_unavailable"},
		{name: "unknown error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantType: "internal_error"},
		{name: "wrapped sentinel", err: errors.Join(errors.New("ctx"), walletdomain.ErrInvalidAmount), wantStatus: http.StatusBadRequest, wantType: "validation_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestMapErrorCarriesSentinelCode(t *testing.T) {
	status, payload := mapError(walletdomain.ErrInsufficient)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "insufficient_balance", payload.Errors[0].Code)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal", errType)
	assert.Equal(t, "internal_error", code)

	errType, code = classifyErrorForLog(ErrRateLimited)
	assert.Equal(t, "rate_limited", errType)
	assert.Equal(t, "rate_limited", code)

	errType, _ = classifyErrorForLog(markupruledomain.ErrInvalidName)
	assert.Equal(t, "client", errType)
}

func TestResellerRequiredMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	s := &Server{}
	r.GET("/probe", s.ResellerRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusBadRequest},
		{name: "garbage header", header: "not-a-snowflake", wantStatus: http.StatusBadRequest},
		{name: "valid header", header: "1906621664481644544", wantStatus: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tc.header != "" {
				req.Header.Set(HeaderReseller, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
