package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, filter ListFilter) ([]Response, error)
}

type CreateRequest struct {
	Name        string     `json:"name"`
	Kind        RuleKind   `json:"kind"`
	MinVolume   int64      `json:"min_volume"`
	MaxVolume   *int64     `json:"max_volume"`
	CountryCode *string    `json:"country_code"`
	SMSType     *string    `json:"sms_type"`
	MarkupType  MarkupType `json:"markup_type"`
	MarkupValue float64    `json:"markup_value"`
	Priority    int        `json:"priority"`
	IsActive    *bool      `json:"is_active"`
}

// UpdateRequest carries only the fields being changed; nil means unchanged.
type UpdateRequest struct {
	Name        *string     `json:"name"`
	MinVolume   *int64      `json:"min_volume"`
	MaxVolume   *int64      `json:"max_volume"`
	CountryCode *string     `json:"country_code"`
	SMSType     *string     `json:"sms_type"`
	MarkupType  *MarkupType `json:"markup_type"`
	MarkupValue *float64    `json:"markup_value"`
	Priority    *int        `json:"priority"`
	IsActive    *bool       `json:"is_active"`
}

type Response struct {
	ID          string     `json:"id"`
	ResellerID  string     `json:"reseller_id"`
	Name        string     `json:"name"`
	Kind        RuleKind   `json:"kind"`
	MinVolume   int64      `json:"min_volume"`
	MaxVolume   *int64     `json:"max_volume,omitempty"`
	CountryCode *string    `json:"country_code,omitempty"`
	SMSType     *string    `json:"sms_type,omitempty"`
	MarkupType  MarkupType `json:"markup_type"`
	MarkupValue float64    `json:"markup_value"`
	Priority    int        `json:"priority"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var (
	ErrInvalidReseller    = errors.New("invalid_reseller")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidMarkupType  = errors.New("invalid_markup_type")
	ErrInvalidMarkupValue = errors.New("invalid_markup_value")
	ErrPercentageTooLarge = errors.New("invalid_percentage_value")
	ErrInvalidVolumeBand  = errors.New("invalid_volume_band")
	ErrInvalidID          = errors.New("invalid_id")
	ErrDuplicateName      = errors.New("duplicate_rule_name")
	ErrNotFound           = errors.New("not_found")
)
