package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nalotext/smsmargin/internal/clock"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	obsmetrics "github.com/nalotext/smsmargin/internal/observability/metrics"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"github.com/nalotext/smsmargin/pkg/db/option"
	"github.com/nalotext/smsmargin/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	distributionTypeManual = "manual"
	distributionTypeAuto   = "auto"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          walletdomain.Repository
	RuleRepo      markupruledomain.Repository
	DefaultPolicy pricingdomain.DefaultMarkupPolicy
	Upstream      walletdomain.UpstreamBalanceChecker
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          walletdomain.Repository
	ruleRepo      markupruledomain.Repository
	defaultPolicy pricingdomain.DefaultMarkupPolicy
	upstream      walletdomain.UpstreamBalanceChecker
	obsMetrics    *obsmetrics.Metrics
}

func New(p Params) walletdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("wallet.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		ruleRepo:      p.RuleRepo,
		defaultPolicy: p.DefaultPolicy,
		upstream:      p.Upstream,
		obsMetrics:    p.ObsMetrics,
	}
}

func (s *Service) Distribute(ctx context.Context, req walletdomain.DistributeRequest) (*walletdomain.DistributeResult, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	distributionType := req.DistributionType
	if distributionType == "" {
		distributionType = distributionTypeManual
	}
	return s.distribute(ctx, resellerID, req.ArkeselCredits, distributionType)
}

func (s *Service) AutoDistribute(ctx context.Context) (*walletdomain.AutoDistributeResult, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := s.repo.FindAutoRecharge(ctx, s.db, resellerID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.Enabled || cfg.RechargeAmount <= 0 {
		return &walletdomain.AutoDistributeResult{
			Reason: walletdomain.ReasonAutoRechargeDisabled,
		}, nil
	}

	upstreamBalance, err := s.upstream.Balance(ctx)
	if err != nil {
		return nil, err
	}
	if upstreamBalance < cfg.MinThreshold {
		s.log.Debug("auto distribute skipped",
			zap.String("reseller_id", resellerID.String()),
			zap.Float64("upstream_balance", upstreamBalance),
			zap.Float64("min_threshold", cfg.MinThreshold),
		)
		return &walletdomain.AutoDistributeResult{
			Reason: walletdomain.ReasonBelowThreshold,
		}, nil
	}

	result, err := s.distribute(ctx, resellerID, cfg.RechargeAmount, distributionTypeAuto)
	if err != nil {
		return nil, err
	}
	return &walletdomain.AutoDistributeResult{
		Performed: true,
		Result:    result,
	}, nil
}

// distribute applies the inverse of the reseller's markup to convert
// upstream credits into wallet credits, then commits the balance change and
// its transaction row as one unit with the wallet row locked.
func (s *Service) distribute(ctx context.Context, resellerID snowflake.ID, upstreamCredits float64, distributionType string) (*walletdomain.DistributeResult, error) {
	if upstreamCredits <= 0 {
		return nil, walletdomain.ErrInvalidAmount
	}

	markup, markupType, err := s.resolveMarkup(ctx, resellerID)
	if err != nil {
		return nil, err
	}

	var resellerCredits float64
	switch markupType {
	case markupruledomain.MarkupTypeFixedAmount:
		resellerCredits = upstreamCredits - markup
		if resellerCredits < 0 {
			resellerCredits = 0
		}
	case markupruledomain.MarkupTypeTiered:
		if markup <= 0 {
			return nil, walletdomain.ErrInvalidConfig
		}
		resellerCredits = upstreamCredits / markup
	default:
		resellerCredits = upstreamCredits * (1 - markup/100)
	}
	resellerCredits = pricingdomain.Round4(resellerCredits)
	conversionRate := pricingdomain.Round4(resellerCredits / upstreamCredits)

	now := s.clock.Now()
	trx := &walletdomain.WalletTransaction{
		ID:          s.genID.Generate(),
		ResellerID:  resellerID,
		Type:        walletdomain.TransactionTypeCredit,
		Amount:      resellerCredits,
		Description: fmt.Sprintf("Balance distribution (%s)", distributionType),
		Metadata: datatypes.JSONMap{
			"arkesel_credits":   upstreamCredits,
			"conversion_rate":   conversionRate,
			"markup_type":       string(markupType),
			"markup_value":      markup,
			"distribution_type": distributionType,
		},
		CreatedAt: now,
	}

	var newBalance float64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockWallet(ctx, tx, resellerID, now)
		if err != nil {
			return err
		}

		newBalance = wallet.Balance + resellerCredits
		if err := s.repo.UpdateBalance(ctx, tx, wallet, newBalance); err != nil {
			return err
		}
		return s.repo.InsertTransaction(ctx, tx, trx)
	})
	if err != nil {
		s.log.Error("balance distribution failed",
			zap.String("reseller_id", resellerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.obsMetrics.RecordDistribution(ctx, distributionType)
	s.log.Info("balance distributed",
		zap.String("reseller_id", resellerID.String()),
		zap.Float64("arkesel_credits", upstreamCredits),
		zap.Float64("reseller_credits", resellerCredits),
		zap.Float64("conversion_rate", conversionRate),
	)

	return &walletdomain.DistributeResult{
		ArkeselCredits:  upstreamCredits,
		ResellerCredits: resellerCredits,
		ConversionRate:  conversionRate,
		NewBalance:      newBalance,
		Transaction:     trx,
	}, nil
}

func (s *Service) Debit(ctx context.Context, req walletdomain.DebitRequest) (*walletdomain.WalletTransaction, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, walletdomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	trx := &walletdomain.WalletTransaction{
		ID:          s.genID.Generate(),
		ResellerID:  resellerID,
		Type:        walletdomain.TransactionTypeDebit,
		Amount:      req.Amount,
		Description: req.Description,
		Metadata:    req.Metadata,
		CreatedAt:   now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockWallet(ctx, tx, resellerID, now)
		if err != nil {
			return err
		}
		if wallet.Balance < req.Amount {
			return walletdomain.ErrInsufficient
		}

		if err := s.repo.UpdateBalance(ctx, tx, wallet, wallet.Balance-req.Amount); err != nil {
			return err
		}
		return s.repo.InsertTransaction(ctx, tx, trx)
	})
	if err != nil {
		return nil, err
	}
	return trx, nil
}

func (s *Service) Balance(ctx context.Context) (*walletdomain.BalanceResponse, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	wallet, err := s.repo.FindWallet(ctx, s.db, resellerID)
	if err != nil {
		return nil, err
	}

	resp := &walletdomain.BalanceResponse{ResellerID: resellerID.String()}
	if wallet != nil {
		resp.Balance = wallet.Balance
	}
	return resp, nil
}

func (s *Service) Transactions(ctx context.Context, req walletdomain.TransactionsRequest) (*walletdomain.TransactionsResponse, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 10
	}

	opts := []option.QueryOption{
		option.WithOrder("id DESC"),
		option.WithLimit(limit),
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, walletdomain.ErrInvalidCursor
		}
		opts = append(opts, option.WithCondition("id < ?", cursor.ID))
	}

	items, err := s.repo.ListTransactions(ctx, s.db, resellerID, opts...)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, limit, func(trx *walletdomain.WalletTransaction) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: trx.ID.String()})
		return token
	})

	return &walletdomain.TransactionsResponse{
		Data:     items,
		PageInfo: pageInfo,
	}, nil
}

func (s *Service) UpsertAutoRecharge(ctx context.Context, req walletdomain.AutoRechargeRequest) (*walletdomain.AutoRechargeConfig, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.MinThreshold < 0 || req.RechargeAmount < 0 {
		return nil, walletdomain.ErrInvalidConfig
	}
	if req.Enabled && req.RechargeAmount <= 0 {
		return nil, walletdomain.ErrInvalidConfig
	}

	now := s.clock.Now()
	cfg, err := s.repo.FindAutoRecharge(ctx, s.db, resellerID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &walletdomain.AutoRechargeConfig{
			ID:         s.genID.Generate(),
			ResellerID: resellerID,
			CreatedAt:  now,
		}
	}
	cfg.Enabled = req.Enabled
	cfg.MinThreshold = req.MinThreshold
	cfg.RechargeAmount = req.RechargeAmount
	cfg.UpdatedAt = now

	if err := s.repo.SaveAutoRecharge(ctx, s.db, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Service) resolveMarkup(ctx context.Context, resellerID snowflake.ID) (float64, markupruledomain.MarkupType, error) {
	rule, err := s.ruleRepo.FindTopActive(ctx, s.db, resellerID)
	if err != nil {
		return 0, "", err
	}
	if rule != nil {
		return rule.MarkupValue, rule.MarkupType, nil
	}

	markup, err := s.defaultPolicy.DefaultMarkupFor(ctx, resellerID)
	if err != nil {
		return 0, "", err
	}
	return markup, markupruledomain.MarkupTypePercentage, nil
}

func (s *Service) lockWallet(ctx context.Context, tx *gorm.DB, resellerID snowflake.ID, now time.Time) (*walletdomain.Wallet, error) {
	wallet, err := s.repo.FindWalletForUpdate(ctx, tx, resellerID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = &walletdomain.Wallet{
		ID:         s.genID.Generate(),
		ResellerID: resellerID,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateWallet(ctx, tx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *Service) resellerIDFromContext(ctx context.Context) (snowflake.ID, error) {
	resellerID, ok := resellerctx.ResellerIDFromContext(ctx)
	if !ok || resellerID == 0 {
		return 0, walletdomain.ErrInvalidReseller
	}
	return resellerID, nil
}
