// Package domain holds the reseller read model consulted by pricing and
// distribution. Account lifecycle (signup, approval, suspension) is owned by
// the surrounding platform.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PricingTier is the reseller's commercial tier, the source of the default
// markup when no rule matches.
type PricingTier string

const (
	PricingTierBasic      PricingTier = "BASIC"
	PricingTierStandard   PricingTier = "STANDARD"
	PricingTierPremium    PricingTier = "PREMIUM"
	PricingTierEnterprise PricingTier = "ENTERPRISE"
	PricingTierCustom     PricingTier = "CUSTOM"
)

type Reseller struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	PricingTier  PricingTier  `json:"pricing_tier" gorm:"type:text;not null;default:STANDARD"`
	CustomMarkup *float64     `json:"custom_markup,omitempty" gorm:"type:numeric"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reseller) TableName() string { return "resellers" }
