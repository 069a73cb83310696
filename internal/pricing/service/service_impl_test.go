package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	markuprulerepo "github.com/nalotext/smsmargin/internal/markuprule/repository"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	resellerdomain "github.com/nalotext/smsmargin/internal/reseller/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPricingService(t *testing.T) (pricingdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&markupruledomain.MarkupRule{},
		&resellerdomain.Reseller{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		RuleRepo:      markuprulerepo.Provide(),
		DefaultPolicy: NewTierMarkupPolicy(PolicyParams{DB: db}),
	})
	return svc, db, node
}

func seedRule(t *testing.T, db *gorm.DB, node *snowflake.Node, resellerID snowflake.ID, mutate func(*markupruledomain.MarkupRule)) *markupruledomain.MarkupRule {
	t.Helper()

	now := time.Now().UTC()
	rule := &markupruledomain.MarkupRule{
		ID:          node.Generate(),
		ResellerID:  resellerID,
		Name:        fmt.Sprintf("rule-%d", node.Generate()),
		Kind:        markupruledomain.RuleKindMarkup,
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 20,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if mutate != nil {
		mutate(rule)
	}
	require.NoError(t, db.Create(rule).Error)
	return rule
}

func TestCalculatePercentageMarkup(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	seedRule(t, db, node, resellerID, nil)

	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:   100,
		BaseCost: 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.012, result.ClientPrice)
	assert.Equal(t, 0.002, result.Profit)
	assert.Equal(t, markupruledomain.MarkupTypePercentage, result.MarkupType)
	require.NotNil(t, result.Rule)
}

func TestCalculateFixedAmountMarkup(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	seedRule(t, db, node, resellerID, func(r *markupruledomain.MarkupRule) {
		r.MarkupType = markupruledomain.MarkupTypeFixedAmount
		r.MarkupValue = 0.005
	})

	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:   100,
		BaseCost: 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.015, result.ClientPrice)
	assert.Equal(t, 0.005, result.Profit)
}

func TestCalculateTieredMultiplier(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	seedRule(t, db, node, resellerID, func(r *markupruledomain.MarkupRule) {
		r.MarkupType = markupruledomain.MarkupTypeTiered
		r.MarkupValue = 1.5
	})

	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:   100,
		BaseCost: 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.015, result.ClientPrice)
}

func TestCalculateDefaultTierMarkup(t *testing.T) {
	svc, db, node := setupPricingService(t)

	cases := []struct {
		name         string
		tier         resellerdomain.PricingTier
		customMarkup *float64
		wantPrice    float64
	}{
		{name: "basic", tier: resellerdomain.PricingTierBasic, wantPrice: 0.0115},
		{name: "standard", tier: resellerdomain.PricingTierStandard, wantPrice: 0.012},
		{name: "premium", tier: resellerdomain.PricingTierPremium, wantPrice: 0.0125},
		{name: "enterprise", tier: resellerdomain.PricingTierEnterprise, wantPrice: 0.013},
		{name: "custom with override", tier: resellerdomain.PricingTierCustom, customMarkup: ptrFloat(35), wantPrice: 0.0135},
		{name: "custom without override", tier: resellerdomain.PricingTierCustom, wantPrice: 0.012},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resellerID := node.Generate()
			require.NoError(t, db.Create(&resellerdomain.Reseller{
				ID:           resellerID,
				Name:         tc.name,
				PricingTier:  tc.tier,
				CustomMarkup: tc.customMarkup,
			}).Error)

			ctx := resellerctx.WithResellerID(context.Background(), resellerID)
			result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{
				Volume:   10,
				BaseCost: 0.01,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantPrice, result.ClientPrice)
			assert.Nil(t, result.Rule)
		})
	}
}

func TestCalculateUnknownResellerUsesStandardMarkup(t *testing.T) {
	svc, _, node := setupPricingService(t)
	ctx := resellerctx.WithResellerID(context.Background(), node.Generate())

	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:   10,
		BaseCost: 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Markup)
	assert.Equal(t, 0.012, result.ClientPrice)
}

func TestCalculateRuleSelection(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	// Same priority: the older rule (lower ID) wins. Higher priority beats both.
	first := seedRule(t, db, node, resellerID, func(r *markupruledomain.MarkupRule) {
		r.MarkupValue = 10
		r.Priority = 5
	})
	seedRule(t, db, node, resellerID, func(r *markupruledomain.MarkupRule) {
		r.MarkupValue = 15
		r.Priority = 5
	})

	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{Volume: 100, BaseCost: 0.01})
	require.NoError(t, err)
	require.NotNil(t, result.Rule)
	assert.Equal(t, first.ID.String(), result.Rule.ID)

	winner := seedRule(t, db, node, resellerID, func(r *markupruledomain.MarkupRule) {
		r.MarkupValue = 30
		r.Priority = 9
	})

	result, err = svc.Calculate(ctx, pricingdomain.CalculateRequest{Volume: 100, BaseCost: 0.01})
	require.NoError(t, err)
	require.NotNil(t, result.Rule)
	assert.Equal(t, winner.ID.String(), result.Rule.ID)
}

func TestCalculateScopePredicates(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	country := "GH"
	maxVolume := int64(500)
	seedRule(t, db, node, resellerID, func(r *markupruledomain.MarkupRule) {
		r.CountryCode = &country
		r.MinVolume = 100
		r.MaxVolume = &maxVolume
		r.MarkupValue = 50
		r.Priority = 10
	})

	// Out of scope on country: falls back to the default 20%.
	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:      200,
		CountryCode: "NG",
		BaseCost:    0.01,
	})
	require.NoError(t, err)
	assert.Nil(t, result.Rule)
	assert.Equal(t, 0.012, result.ClientPrice)

	// Out of scope on volume band.
	result, err = svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:      501,
		CountryCode: "GH",
		BaseCost:    0.01,
	})
	require.NoError(t, err)
	assert.Nil(t, result.Rule)

	// In scope.
	result, err = svc.Calculate(ctx, pricingdomain.CalculateRequest{
		Volume:      200,
		CountryCode: "GH",
		BaseCost:    0.01,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Rule)
	assert.Equal(t, 0.015, result.ClientPrice)
}

func TestCalculateDeterministic(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	seedRule(t, db, node, resellerID, nil)

	req := pricingdomain.CalculateRequest{Volume: 250, BaseCost: 0.0123}
	first, err := svc.Calculate(ctx, req)
	require.NoError(t, err)
	second, err := svc.Calculate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ClientPrice, second.ClientPrice)
	assert.Equal(t, first.Profit, second.Profit)
}

func TestCalculateValidation(t *testing.T) {
	svc, _, node := setupPricingService(t)
	ctx := resellerctx.WithResellerID(context.Background(), node.Generate())

	_, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{Volume: 0, BaseCost: 0.01})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidVolume)

	_, err = svc.Calculate(ctx, pricingdomain.CalculateRequest{Volume: 10, BaseCost: -0.01})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidBaseCost)

	_, err = svc.Calculate(context.Background(), pricingdomain.CalculateRequest{Volume: 10, BaseCost: 0.01})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidReseller)
}

func TestCalculateZeroBaseCostUsesDefault(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	seedRule(t, db, node, resellerID, nil)

	result, err := svc.Calculate(ctx, pricingdomain.CalculateRequest{Volume: 10})
	require.NoError(t, err)
	assert.Equal(t, 0.01, result.BaseCost)
	assert.Equal(t, 0.012, result.ClientPrice)
}

func TestBulkCalculate(t *testing.T) {
	svc, db, node := setupPricingService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	seedRule(t, db, node, resellerID, nil)

	result, err := svc.BulkCalculate(ctx, pricingdomain.BulkRequest{
		Volumes:  []int64{100, 200, 300},
		BaseCost: 0.01,
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 3)
	assert.Equal(t, 0.036, result.TotalPrice)
	assert.Equal(t, 0.012, result.AveragePrice)

	_, err = svc.BulkCalculate(ctx, pricingdomain.BulkRequest{BaseCost: 0.01})
	assert.ErrorIs(t, err, pricingdomain.ErrNoVolumes)

	_, err = svc.BulkCalculate(ctx, pricingdomain.BulkRequest{
		Volumes:  []int64{100, 0},
		BaseCost: 0.01,
	})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidVolume)
}

func ptrFloat(v float64) *float64 { return &v }
