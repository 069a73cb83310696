package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nalotext/smsmargin/internal/clock"
	obsmetrics "github.com/nalotext/smsmargin/internal/observability/metrics"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"github.com/nalotext/smsmargin/pkg/db/option"
	"github.com/nalotext/smsmargin/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultWindowDays = 30

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Store      repository.Repository[ledgerdomain.ProfitTransaction]
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	store      repository.Repository[ledgerdomain.ProfitTransaction]
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("profitledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		store:      p.Store,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Record(ctx context.Context, req ledgerdomain.RecordRequest) (*ledgerdomain.ProfitTransaction, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.TransactionID == "" || req.TransactionType == "" {
		return nil, ledgerdomain.ErrInvalidTransaction
	}
	if req.Volume <= 0 {
		return nil, ledgerdomain.ErrInvalidTransaction
	}

	entry := &ledgerdomain.ProfitTransaction{
		ID:              s.genID.Generate(),
		ResellerID:      resellerID,
		TransactionID:   req.TransactionID,
		TransactionType: req.TransactionType,
		BaseCost:        req.BaseCost,
		ClientCharge:    req.ClientCharge,
		Profit:          pricingdomain.Round4(req.Profit),
		MarkupApplied:   req.MarkupApplied,
		Volume:          req.Volume,
		CountryCode:     req.CountryCode,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.obsMetrics.RecordProfitEntry(ctx, req.TransactionType)
	return entry, nil
}

func (s *Service) Analytics(ctx context.Context, req ledgerdomain.AnalyticsRequest) (*ledgerdomain.AnalyticsResponse, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	days := req.Days
	if days == 0 {
		days = defaultWindowDays
	}
	if days < 0 || days > 365 {
		return nil, ledgerdomain.ErrInvalidWindow
	}

	since := s.clock.Now().AddDate(0, 0, -days)

	type typeRow struct {
		TransactionType string
		Total           float64
		Count           int64
	}
	var rows []typeRow
	err = s.db.WithContext(ctx).
		Model(&ledgerdomain.ProfitTransaction{}).
		Select("transaction_type, SUM(profit) AS total, COUNT(*) AS count").
		Where("reseller_id = ? AND created_at >= ?", resellerID, since).
		Group("transaction_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	resp := &ledgerdomain.AnalyticsResponse{
		PeriodDays:   days,
		Since:        since,
		ProfitByType: make(map[string]float64, len(rows)),
		Recent:       []ledgerdomain.ProfitTransaction{},
	}
	total := 0.0
	for _, row := range rows {
		resp.ProfitByType[row.TransactionType] = pricingdomain.Round4(row.Total)
		resp.TransactionCount += row.Count
		total += row.Total
	}
	resp.TotalProfit = pricingdomain.Round4(total)

	recent, err := s.store.Find(ctx,
		&ledgerdomain.ProfitTransaction{ResellerID: resellerID},
		option.WithCondition("created_at >= ?", since),
		option.WithOrder("created_at DESC"),
		option.WithLimit(10),
	)
	if err != nil {
		return nil, err
	}
	for _, entry := range recent {
		resp.Recent = append(resp.Recent, *entry)
	}

	return resp, nil
}

func (s *Service) resellerIDFromContext(ctx context.Context) (snowflake.ID, error) {
	resellerID, ok := resellerctx.ResellerIDFromContext(ctx)
	if !ok || resellerID == 0 {
		return 0, ledgerdomain.ErrInvalidReseller
	}
	return resellerID, nil
}
