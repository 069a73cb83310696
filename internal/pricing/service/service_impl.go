package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	obsmetrics "github.com/nalotext/smsmargin/internal/observability/metrics"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	RuleRepo      markupruledomain.Repository
	DefaultPolicy pricingdomain.DefaultMarkupPolicy
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`

	DefaultBaseCost float64 `name:"pricing.default_base_cost"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	ruleRepo      markupruledomain.Repository
	defaultPolicy pricingdomain.DefaultMarkupPolicy
	obsMetrics    *obsmetrics.Metrics

	defaultBaseCost float64
}

func New(p Params) pricingdomain.Service {
	baseCost := p.DefaultBaseCost
	if baseCost <= 0 {
		baseCost = 0.01
	}
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("pricing.service"),
		ruleRepo:        p.RuleRepo,
		defaultPolicy:   p.DefaultPolicy,
		obsMetrics:      p.ObsMetrics,
		defaultBaseCost: baseCost,
	}
}

// Calculate selects the best-matching rule and prices one send. Pure read
// and compute; callers record ledger entries themselves.
func (s *Service) Calculate(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.Result, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.calculate(ctx, resellerID, req)
}

func (s *Service) BulkCalculate(ctx context.Context, req pricingdomain.BulkRequest) (*pricingdomain.BulkResult, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Volumes) == 0 {
		return nil, pricingdomain.ErrNoVolumes
	}

	results := make([]pricingdomain.Result, 0, len(req.Volumes))
	total := 0.0
	for _, volume := range req.Volumes {
		result, err := s.calculate(ctx, resellerID, pricingdomain.CalculateRequest{
			Volume:      volume,
			CountryCode: req.CountryCode,
			SMSType:     req.SMSType,
			BaseCost:    req.BaseCost,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
		total += result.ClientPrice
	}

	return &pricingdomain.BulkResult{
		Results:      results,
		TotalPrice:   pricingdomain.Round4(total),
		AveragePrice: pricingdomain.Round4(total / float64(len(results))),
	}, nil
}

func (s *Service) calculate(ctx context.Context, resellerID snowflake.ID, req pricingdomain.CalculateRequest) (*pricingdomain.Result, error) {
	if req.Volume <= 0 {
		return nil, pricingdomain.ErrInvalidVolume
	}
	baseCost := req.BaseCost
	if baseCost == 0 {
		baseCost = s.defaultBaseCost
	}
	if baseCost < 0 {
		return nil, pricingdomain.ErrInvalidBaseCost
	}

	candidates, err := s.ruleRepo.Match(ctx, s.db, resellerID, markupruledomain.MatchFilter{
		Volume:      req.Volume,
		CountryCode: req.CountryCode,
		SMSType:     req.SMSType,
	})
	if err != nil {
		return nil, err
	}

	var (
		markup     float64
		markupType markupruledomain.MarkupType
		matched    *markupruledomain.MarkupRule
	)
	if len(candidates) > 0 {
		matched = &candidates[0]
		markup = matched.MarkupValue
		markupType = matched.MarkupType
	} else {
		markup, err = s.defaultPolicy.DefaultMarkupFor(ctx, resellerID)
		if err != nil {
			return nil, err
		}
		markupType = markupruledomain.MarkupTypePercentage
	}

	clientPrice := pricingdomain.Round4(applyMarkup(baseCost, markup, markupType))
	profit := pricingdomain.Round4(clientPrice - baseCost)

	s.obsMetrics.RecordPricingCalculation(ctx, string(markupType), matched != nil)

	result := &pricingdomain.Result{
		BaseCost:    baseCost,
		Markup:      markup,
		MarkupType:  markupType,
		ClientPrice: clientPrice,
		Profit:      profit,
	}
	if matched != nil {
		result.Rule = ruleResponse(matched)
	}
	return result, nil
}

func applyMarkup(baseCost, markup float64, markupType markupruledomain.MarkupType) float64 {
	switch markupType {
	case markupruledomain.MarkupTypeFixedAmount:
		return baseCost + markup
	case markupruledomain.MarkupTypeTiered:
		// TIERED treats the value as a direct multiplier.
		return baseCost * markup
	default:
		return baseCost * (1 + markup/100)
	}
}

func (s *Service) resellerIDFromContext(ctx context.Context) (snowflake.ID, error) {
	resellerID, ok := resellerctx.ResellerIDFromContext(ctx)
	if !ok || resellerID == 0 {
		return 0, pricingdomain.ErrInvalidReseller
	}
	return resellerID, nil
}

func ruleResponse(r *markupruledomain.MarkupRule) *markupruledomain.Response {
	return &markupruledomain.Response{
		ID:          r.ID.String(),
		ResellerID:  r.ResellerID.String(),
		Name:        r.Name,
		Kind:        r.Kind,
		MinVolume:   r.MinVolume,
		MaxVolume:   r.MaxVolume,
		CountryCode: r.CountryCode,
		SMSType:     r.SMSType,
		MarkupType:  r.MarkupType,
		MarkupValue: r.MarkupValue,
		Priority:    r.Priority,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
