package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() markupruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *markupruledomain.MarkupRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, resellerID, id snowflake.ID) (*markupruledomain.MarkupRule, error) {
	var rule markupruledomain.MarkupRule
	err := db.WithContext(ctx).
		Where("reseller_id = ? AND id = ?", resellerID, id).
		Limit(1).
		Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, name string) (*markupruledomain.MarkupRule, error) {
	var rule markupruledomain.MarkupRule
	err := db.WithContext(ctx).
		Where("reseller_id = ? AND name = ?", resellerID, name).
		Limit(1).
		Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, filter markupruledomain.ListFilter) ([]markupruledomain.MarkupRule, error) {
	stmt := db.WithContext(ctx).Where("reseller_id = ?", resellerID)
	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}
	if !filter.IncludeInactive {
		stmt = stmt.Where("is_active = ?", true)
	}

	var items []markupruledomain.MarkupRule
	err := stmt.Order("priority DESC").Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Match(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, filter markupruledomain.MatchFilter) ([]markupruledomain.MarkupRule, error) {
	var items []markupruledomain.MarkupRule
	err := db.WithContext(ctx).
		Where("reseller_id = ? AND is_active = ?", resellerID, true).
		Where("min_volume <= ?", filter.Volume).
		Where("max_volume IS NULL OR max_volume >= ?", filter.Volume).
		Where("country_code IS NULL OR country_code = ?", filter.CountryCode).
		Where("sms_type IS NULL OR sms_type = ?", filter.SMSType).
		Order("priority DESC").Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindTopActive(ctx context.Context, db *gorm.DB, resellerID snowflake.ID) (*markupruledomain.MarkupRule, error) {
	var rule markupruledomain.MarkupRule
	err := db.WithContext(ctx).
		Where("reseller_id = ? AND is_active = ?", resellerID, true).
		Order("priority DESC").Order("id ASC").
		Limit(1).
		Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *markupruledomain.MarkupRule) error {
	return db.WithContext(ctx).
		Model(&markupruledomain.MarkupRule{}).
		Where("reseller_id = ? AND id = ?", rule.ResellerID, rule.ID).
		Updates(map[string]any{
			"name":         rule.Name,
			"min_volume":   rule.MinVolume,
			"max_volume":   rule.MaxVolume,
			"country_code": rule.CountryCode,
			"sms_type":     rule.SMSType,
			"markup_type":  rule.MarkupType,
			"markup_value": rule.MarkupValue,
			"priority":     rule.Priority,
			"is_active":    rule.IsActive,
			"updated_at":   rule.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, resellerID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("reseller_id = ? AND id = ?", resellerID, id).
		Delete(&markupruledomain.MarkupRule{}).Error
}
