package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArkeselBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients/balance-details", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"sms_balance":"1250.5","main_balance":"30.00"}}`))
	}))
	defer srv.Close()

	provider := NewArkesel(Config{BaseURL: srv.URL, APIKey: "secret"})
	balance, err := provider.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1250.5, balance)
}

func TestArkeselBalanceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := NewArkesel(Config{BaseURL: srv.URL, APIKey: "wrong"})
	_, err := provider.Balance(context.Background())
	assert.ErrorContains(t, err, "status 401")
}

func TestArkeselBalanceAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","data":{}}`))
	}))
	defer srv.Close()

	provider := NewArkesel(Config{BaseURL: srv.URL})
	_, err := provider.Balance(context.Background())
	assert.ErrorContains(t, err, `status "error"`)
}

func TestArkeselBalanceUnparsable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"sms_balance":"n/a"}}`))
	}))
	defer srv.Close()

	provider := NewArkesel(Config{BaseURL: srv.URL})
	_, err := provider.Balance(context.Background())
	assert.ErrorContains(t, err, "parse upstream balance")
}

func TestNoOpProvider(t *testing.T) {
	balance, err := (&NoOpProvider{}).Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}
