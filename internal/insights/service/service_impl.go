package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/nalotext/smsmargin/internal/clock"
	insightsdomain "github.com/nalotext/smsmargin/internal/insights/domain"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	smslogdomain "github.com/nalotext/smsmargin/internal/smslog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	usageWindowDays      = 30
	volumeDiscountFloor  = 10
	volumeDiscountCutoff = 10000
	topCountryLimit      = 5
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	DefaultPolicy pricingdomain.DefaultMarkupPolicy
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	defaultPolicy pricingdomain.DefaultMarkupPolicy
}

func New(p Params) insightsdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("insights.service"),
		clock:         p.Clock,
		defaultPolicy: p.DefaultPolicy,
	}
}

func (s *Service) Recommendations(ctx context.Context) (*insightsdomain.RecommendationsResponse, error) {
	resellerID, err := s.resellerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	since := s.clock.Now().AddDate(0, 0, -usageWindowDays)

	var totals struct {
		TotalVolume int64
		TotalCost   float64
	}
	err = s.db.WithContext(ctx).
		Model(&smslogdomain.MessageLog{}).
		Select("COUNT(*) AS total_volume, COALESCE(SUM(cost), 0) AS total_cost").
		Where("reseller_id = ? AND created_at >= ?", resellerID, since).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var recipients []string
	err = s.db.WithContext(ctx).
		Model(&smslogdomain.MessageLog{}).
		Where("reseller_id = ? AND created_at >= ?", resellerID, since).
		Pluck("recipient", &recipients).Error
	if err != nil {
		return nil, err
	}

	topCountries := rankCountryHints(recipients, topCountryLimit)

	usage := insightsdomain.UsageSummary{
		WindowDays:   usageWindowDays,
		Since:        since,
		TotalVolume:  totals.TotalVolume,
		TotalCost:    pricingdomain.Round4(totals.TotalCost),
		TopCountries: topCountries,
	}

	recommendations := []insightsdomain.Recommendation{}
	if totals.TotalVolume > volumeDiscountCutoff {
		currentMarkup, err := s.defaultPolicy.DefaultMarkupFor(ctx, resellerID)
		if err != nil {
			return nil, err
		}
		suggested := currentMarkup - 5
		if suggested < volumeDiscountFloor {
			suggested = volumeDiscountFloor
		}
		recommendations = append(recommendations, insightsdomain.Recommendation{
			Type: insightsdomain.RecommendationVolumeDiscount,
			Message: fmt.Sprintf(
				"Average monthly volume of %d messages qualifies for a volume discount; consider lowering your markup from %.0f%% to %.0f%%.",
				totals.TotalVolume, currentMarkup, suggested,
			),
			SuggestedMarkup: &suggested,
		})
	}
	for _, country := range topCountries {
		recommendations = append(recommendations, insightsdomain.Recommendation{
			Type: insightsdomain.RecommendationCountryRule,
			Message: fmt.Sprintf(
				"%d of your recent messages target the %q prefix; a country-specific rule could price them separately.",
				country.Count, country.CountryHint,
			),
			CountryHint: country.CountryHint,
		})
	}

	return &insightsdomain.RecommendationsResponse{
		Usage:           usage,
		Recommendations: recommendations,
	}, nil
}

// rankCountryHints buckets recipients by hint and returns the limit most
// frequent, ties broken alphabetically so output is stable.
func rankCountryHints(recipients []string, limit int) []insightsdomain.CountryUsage {
	counts := make(map[string]int64, len(recipients))
	for _, recipient := range recipients {
		hint := insightsdomain.ExtractCountryHint(recipient)
		if hint == "" {
			continue
		}
		counts[hint]++
	}

	ranked := make([]insightsdomain.CountryUsage, 0, len(counts))
	for hint, count := range counts {
		ranked = append(ranked, insightsdomain.CountryUsage{CountryHint: hint, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].CountryHint < ranked[j].CountryHint
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (s *Service) resellerIDFromContext(ctx context.Context) (snowflake.ID, error) {
	resellerID, ok := resellerctx.ResellerIDFromContext(ctx)
	if !ok || resellerID == 0 {
		return 0, insightsdomain.ErrInvalidReseller
	}
	return resellerID, nil
}
