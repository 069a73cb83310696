package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/nalotext/smsmargin/internal/billing/domain"
	"github.com/nalotext/smsmargin/internal/clock"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	smslogdomain "github.com/nalotext/smsmargin/internal/smslog/domain"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"github.com/nalotext/smsmargin/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const transactionTypeSMSCharge = "SMS_CHARGE"

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Pricing  pricingdomain.Service
	Wallet   walletdomain.Service
	Ledger   ledgerdomain.Service
	LogStore repository.Repository[smslogdomain.MessageLog]
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	pricing  pricingdomain.Service
	wallet   walletdomain.Service
	ledger   ledgerdomain.Service
	logStore repository.Repository[smslogdomain.MessageLog]
}

func New(p Params) billingdomain.Service {
	return &Service{
		log:      p.Log.Named("billing.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		pricing:  p.Pricing,
		wallet:   p.Wallet,
		ledger:   p.Ledger,
		logStore: p.LogStore,
	}
}

// Charge prices a batch of messages, debits the reseller wallet by the
// total client charge, and records both the ledger entry and the message
// logs the usage aggregator reads.
func (s *Service) Charge(ctx context.Context, req billingdomain.ChargeRequest) (*billingdomain.ChargeResult, error) {
	if len(req.Recipients) == 0 {
		return nil, billingdomain.ErrNoRecipients
	}
	volume := int64(len(req.Recipients))
	if req.SMSType == "" {
		req.SMSType = "transactional"
	}

	pricing, err := s.pricing.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:      volume,
		CountryCode: req.CountryCode,
		SMSType:     req.SMSType,
		BaseCost:    req.BaseCost,
	})
	if err != nil {
		return nil, err
	}

	totalCharge := pricingdomain.Round4(pricing.ClientPrice * float64(volume))
	totalProfit := pricingdomain.Round4(pricing.Profit * float64(volume))

	trx, err := s.wallet.Debit(ctx, walletdomain.DebitRequest{
		Amount:      totalCharge,
		Description: "SMS charge",
		Metadata: datatypes.JSONMap{
			"volume":       volume,
			"client_price": pricing.ClientPrice,
			"sms_type":     req.SMSType,
			"country_code": req.CountryCode,
		},
	})
	if err != nil {
		return nil, err
	}

	var countryCode *string
	if req.CountryCode != "" {
		countryCode = &req.CountryCode
	}
	entry, err := s.ledger.Record(ctx, ledgerdomain.RecordRequest{
		TransactionID:   trx.ID.String(),
		TransactionType: transactionTypeSMSCharge,
		BaseCost:        pricing.BaseCost,
		ClientCharge:    totalCharge,
		Profit:          totalProfit,
		MarkupApplied:   pricing.Markup,
		Volume:          volume,
		CountryCode:     countryCode,
	})
	if err != nil {
		// The wallet is already charged; surface the ledger failure rather
		// than invent a compensation flow the caller cannot see.
		s.log.Error("ledger record failed after debit",
			zap.String("wallet_transaction_id", trx.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	now := s.clock.Now()
	logs := make([]*smslogdomain.MessageLog, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		logs = append(logs, &smslogdomain.MessageLog{
			ID:         s.genID.Generate(),
			ResellerID: trx.ResellerID,
			Recipient:  recipient,
			SMSType:    req.SMSType,
			Cost:       pricing.ClientPrice,
			CreatedAt:  now,
		})
	}
	if err := s.logStore.BatchCreate(ctx, logs); err != nil {
		return nil, err
	}

	return &billingdomain.ChargeResult{
		Pricing:     pricing,
		TotalCharge: totalCharge,
		TotalProfit: totalProfit,
		Transaction: trx,
		LedgerEntry: entry,
	}, nil
}
