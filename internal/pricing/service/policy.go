package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	resellerdomain "github.com/nalotext/smsmargin/internal/reseller/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// tierMarkups is the standing tier table. CUSTOM falls back to the standard
// rate unless the reseller stores an override.
var tierMarkups = map[resellerdomain.PricingTier]float64{
	resellerdomain.PricingTierBasic:      15,
	resellerdomain.PricingTierStandard:   20,
	resellerdomain.PricingTierPremium:    25,
	resellerdomain.PricingTierEnterprise: 30,
	resellerdomain.PricingTierCustom:     20,
}

const standardMarkup = 20

// TierMarkupPolicy resolves the default percentage markup from the
// reseller's stored pricing tier.
type TierMarkupPolicy struct {
	db *gorm.DB
}

type PolicyParams struct {
	fx.In

	DB *gorm.DB
}

func NewTierMarkupPolicy(p PolicyParams) pricingdomain.DefaultMarkupPolicy {
	return &TierMarkupPolicy{db: p.DB}
}

func (p *TierMarkupPolicy) DefaultMarkupFor(ctx context.Context, resellerID snowflake.ID) (float64, error) {
	var reseller resellerdomain.Reseller
	err := p.db.WithContext(ctx).
		Where("id = ?", resellerID).
		Limit(1).
		Scan(&reseller).Error
	if err != nil {
		return 0, err
	}
	if reseller.ID == 0 {
		return standardMarkup, nil
	}

	if reseller.PricingTier == resellerdomain.PricingTierCustom && reseller.CustomMarkup != nil {
		return *reseller.CustomMarkup, nil
	}
	if markup, ok := tierMarkups[reseller.PricingTier]; ok {
		return markup, nil
	}
	return standardMarkup, nil
}
