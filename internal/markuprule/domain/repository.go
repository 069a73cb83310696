package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List results.
type ListFilter struct {
	Kind            RuleKind
	IncludeInactive bool
}

// MatchFilter is the scope predicate used for rule selection.
type MatchFilter struct {
	Volume      int64
	CountryCode string
	SMSType     string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *MarkupRule) error
	FindByID(ctx context.Context, db *gorm.DB, resellerID, id snowflake.ID) (*MarkupRule, error)
	FindByName(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, name string) (*MarkupRule, error)
	List(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, filter ListFilter) ([]MarkupRule, error)

	// Match returns active rules whose predicate covers the filter, ordered
	// priority descending then ID ascending.
	Match(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, filter MatchFilter) ([]MarkupRule, error)

	// FindTopActive returns the highest-priority active rule regardless of
	// scope, or nil when the reseller has none.
	FindTopActive(ctx context.Context, db *gorm.DB, resellerID snowflake.ID) (*MarkupRule, error)

	Update(ctx context.Context, db *gorm.DB, rule *MarkupRule) error
	Delete(ctx context.Context, db *gorm.DB, resellerID, id snowflake.ID) error
}
