// Package domain contains the persisted markup rule model and its service
// contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MarkupType selects how a rule transforms the base provider cost.
type MarkupType string

const (
	MarkupTypePercentage  MarkupType = "PERCENTAGE"
	MarkupTypeFixedAmount MarkupType = "FIXED_AMOUNT"
	MarkupTypeTiered      MarkupType = "TIERED"
)

// Valid reports whether the markup type is one of the supported variants.
func (t MarkupType) Valid() bool {
	switch t {
	case MarkupTypePercentage, MarkupTypeFixedAmount, MarkupTypeTiered:
		return true
	default:
		return false
	}
}

// RuleKind distinguishes reseller-authored markup rules from volume tiers.
// Both share the scope and value columns; the discriminant replaces the old
// name-prefix tagging.
type RuleKind string

const (
	RuleKindMarkup     RuleKind = "markup"
	RuleKindVolumeTier RuleKind = "volume_tier"
)

// MaxPercentageValue caps PERCENTAGE markups.
const MaxPercentageValue = 1000

// MarkupRule scopes a price adjustment to a volume band and optional
// country/SMS-type, per reseller. Among overlapping matches the highest
// priority wins; ties break on rule ID ascending.
type MarkupRule struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	ResellerID  snowflake.ID `json:"reseller_id" gorm:"column:reseller_id;not null;index;uniqueIndex:ux_markup_rules_reseller_name,priority:1"`
	Name        string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_markup_rules_reseller_name,priority:2"`
	Kind        RuleKind     `json:"kind" gorm:"type:text;not null;default:markup"`
	MinVolume   int64        `json:"min_volume" gorm:"not null;default:0"`
	MaxVolume   *int64       `json:"max_volume,omitempty" gorm:""`
	CountryCode *string      `json:"country_code,omitempty" gorm:"type:text"`
	SMSType     *string      `json:"sms_type,omitempty" gorm:"column:sms_type;type:text"`
	MarkupType  MarkupType   `json:"markup_type" gorm:"type:text;not null"`
	MarkupValue float64      `json:"markup_value" gorm:"type:numeric;not null"`
	Priority    int          `json:"priority" gorm:"not null;default:0"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MarkupRule) TableName() string { return "markup_rules" }

// Matches reports whether the rule's scope predicate covers the given send.
func (r *MarkupRule) Matches(volume int64, countryCode, smsType string) bool {
	if !r.IsActive {
		return false
	}
	if volume < r.MinVolume {
		return false
	}
	if r.MaxVolume != nil && volume > *r.MaxVolume {
		return false
	}
	if r.CountryCode != nil && *r.CountryCode != countryCode {
		return false
	}
	if r.SMSType != nil && *r.SMSType != smsType {
		return false
	}
	return true
}
