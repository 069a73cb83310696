package domain

import (
	"context"
	"errors"

	"github.com/nalotext/smsmargin/pkg/db/pagination"
	"gorm.io/datatypes"
)

type Service interface {
	// Distribute converts upstream provider credits into reseller wallet
	// credits using the inverse of the reseller's markup configuration.
	Distribute(ctx context.Context, req DistributeRequest) (*DistributeResult, error)

	// AutoDistribute runs Distribute with the stored auto-recharge amount.
	// A disabled config or an upstream balance below the threshold is not
	// an error; the result says why nothing happened.
	AutoDistribute(ctx context.Context) (*AutoDistributeResult, error)

	// Debit charges the wallet, rejecting overdrafts.
	Debit(ctx context.Context, req DebitRequest) (*WalletTransaction, error)

	Balance(ctx context.Context) (*BalanceResponse, error)
	Transactions(ctx context.Context, req TransactionsRequest) (*TransactionsResponse, error)

	UpsertAutoRecharge(ctx context.Context, req AutoRechargeRequest) (*AutoRechargeConfig, error)
}

// UpstreamBalanceChecker reports the remaining credit balance on the
// upstream SMS provider account.
type UpstreamBalanceChecker interface {
	Balance(ctx context.Context) (float64, error)
}

type DistributeRequest struct {
	ArkeselCredits   float64 `json:"arkeselCredits"`
	DistributionType string  `json:"distributionType"`
}

type DistributeResult struct {
	ArkeselCredits  float64            `json:"arkeselCredits"`
	ResellerCredits float64            `json:"resellerCredits"`
	ConversionRate  float64            `json:"conversionRate"`
	NewBalance      float64            `json:"newBalance"`
	Transaction     *WalletTransaction `json:"transaction"`
}

type AutoDistributeResult struct {
	Performed bool              `json:"performed"`
	Reason    string            `json:"reason,omitempty"`
	Result    *DistributeResult `json:"result,omitempty"`
}

const (
	ReasonAutoRechargeDisabled = "auto_recharge_disabled"
	ReasonBelowThreshold       = "below_threshold"
)

type DebitRequest struct {
	Amount      float64           `json:"amount"`
	Description string            `json:"description"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
}

type BalanceResponse struct {
	ResellerID string  `json:"reseller_id"`
	Balance    float64 `json:"balance"`
}

type TransactionsRequest struct {
	pagination.Pagination
}

type TransactionsResponse struct {
	Data     []*WalletTransaction `json:"data"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type AutoRechargeRequest struct {
	Enabled        bool    `json:"enabled"`
	MinThreshold   float64 `json:"minThreshold"`
	RechargeAmount float64 `json:"rechargeAmount"`
}

var (
	ErrInvalidReseller = errors.New("invalid_reseller")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInsufficient    = errors.New("insufficient_balance")
	ErrInvalidConfig   = errors.New("invalid_auto_recharge_config")
	ErrInvalidCursor   = errors.New("invalid_page_token")
)
