package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Record appends one ledger row. Ledger rows are immutable.
	Record(ctx context.Context, req RecordRequest) (*ProfitTransaction, error)

	// Analytics aggregates the reseller's ledger over the trailing window.
	Analytics(ctx context.Context, req AnalyticsRequest) (*AnalyticsResponse, error)
}

type RecordRequest struct {
	TransactionID   string  `json:"transaction_id"`
	TransactionType string  `json:"transaction_type"`
	BaseCost        float64 `json:"base_cost"`
	ClientCharge    float64 `json:"client_charge"`
	Profit          float64 `json:"profit"`
	MarkupApplied   float64 `json:"markup_applied"`
	Volume          int64   `json:"volume"`
	CountryCode     *string `json:"country_code,omitempty"`
}

type AnalyticsRequest struct {
	Days int `form:"days,default=30"`
}

type AnalyticsResponse struct {
	PeriodDays       int                 `json:"period_days"`
	Since            time.Time           `json:"since"`
	TotalProfit      float64             `json:"total_profit"`
	TransactionCount int64               `json:"transaction_count"`
	ProfitByType     map[string]float64  `json:"profit_by_type"`
	Recent           []ProfitTransaction `json:"recent"`
}

var (
	ErrInvalidReseller    = errors.New("invalid_reseller")
	ErrInvalidTransaction = errors.New("invalid_transaction")
	ErrInvalidWindow      = errors.New("invalid_window")
)
