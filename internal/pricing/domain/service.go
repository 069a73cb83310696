package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) (*Result, error)
	BulkCalculate(ctx context.Context, req BulkRequest) (*BulkResult, error)
}

// DefaultMarkupPolicy resolves the percentage markup used when no rule
// matches. Implementations derive it from the reseller's pricing tier.
type DefaultMarkupPolicy interface {
	DefaultMarkupFor(ctx context.Context, resellerID snowflake.ID) (float64, error)
}

var (
	ErrInvalidReseller = errors.New("invalid_reseller")
	ErrInvalidVolume   = errors.New("invalid_volume")
	ErrInvalidBaseCost = errors.New("invalid_base_cost")
	ErrNoVolumes       = errors.New("no_volumes")
)
