// Package domain defines the billing edge the send pipeline calls: price a
// batch, charge the wallet, and leave a ledger trail.
package domain

import (
	"context"
	"errors"

	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
)

type Service interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	Recipients  []string `json:"recipients"`
	CountryCode string   `json:"country_code"`
	SMSType     string   `json:"sms_type"`
	BaseCost    float64  `json:"base_cost"`
}

type ChargeResult struct {
	Pricing     *pricingdomain.Result            `json:"pricing"`
	TotalCharge float64                          `json:"total_charge"`
	TotalProfit float64                          `json:"total_profit"`
	Transaction *walletdomain.WalletTransaction  `json:"transaction"`
	LedgerEntry *ledgerdomain.ProfitTransaction  `json:"ledger_entry"`
}

var ErrNoRecipients = errors.New("no_recipients")
