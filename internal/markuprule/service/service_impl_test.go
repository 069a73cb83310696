package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	"github.com/nalotext/smsmargin/internal/markuprule/repository"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRuleService(t *testing.T) (markupruledomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&markupruledomain.MarkupRule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func resellerContext(node *snowflake.Node) (context.Context, snowflake.ID) {
	resellerID := node.Generate()
	return resellerctx.WithResellerID(context.Background(), resellerID), resellerID
}

func TestCreateRule(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, resellerID := resellerContext(node)

	maxVolume := int64(5000)
	country := "GH"
	rule, err := svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "ghana standard",
		MinVolume:   100,
		MaxVolume:   &maxVolume,
		CountryCode: &country,
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 25,
		Priority:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, resellerID.String(), rule.ResellerID)
	assert.Equal(t, markupruledomain.RuleKindMarkup, rule.Kind)
	assert.True(t, rule.IsActive)
	assert.Equal(t, 25.0, rule.MarkupValue)
}

func TestCreateRuleValidation(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	badMax := int64(10)

	cases := []struct {
		name string
		req  markupruledomain.CreateRequest
		want error
	}{
		{
			name: "empty name",
			req: markupruledomain.CreateRequest{
				MarkupType:  markupruledomain.MarkupTypePercentage,
				MarkupValue: 10,
			},
			want: markupruledomain.ErrInvalidName,
		},
		{
			name: "unknown markup type",
			req: markupruledomain.CreateRequest{
				Name:        "bad type",
				MarkupType:  "DISCOUNT",
				MarkupValue: 10,
			},
			want: markupruledomain.ErrInvalidMarkupType,
		},
		{
			name: "negative markup value",
			req: markupruledomain.CreateRequest{
				Name:        "negative",
				MarkupType:  markupruledomain.MarkupTypePercentage,
				MarkupValue: -1,
			},
			want: markupruledomain.ErrInvalidMarkupValue,
		},
		{
			name: "percentage above cap",
			req: markupruledomain.CreateRequest{
				Name:        "huge",
				MarkupType:  markupruledomain.MarkupTypePercentage,
				MarkupValue: 1001,
			},
			want: markupruledomain.ErrPercentageTooLarge,
		},
		{
			name: "inverted volume band",
			req: markupruledomain.CreateRequest{
				Name:        "inverted band",
				MinVolume:   100,
				MaxVolume:   &badMax,
				MarkupType:  markupruledomain.MarkupTypeFixedAmount,
				MarkupValue: 0.005,
			},
			want: markupruledomain.ErrInvalidVolumeBand,
		},
		{
			name: "unknown kind",
			req: markupruledomain.CreateRequest{
				Name:        "bad kind",
				Kind:        "discount",
				MarkupType:  markupruledomain.MarkupTypePercentage,
				MarkupValue: 10,
			},
			want: markupruledomain.ErrInvalidKind,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateRuleRequiresReseller(t *testing.T) {
	svc, _, _ := setupRuleService(t)

	_, err := svc.Create(context.Background(), markupruledomain.CreateRequest{
		Name:        "orphan",
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 10,
	})
	assert.ErrorIs(t, err, markupruledomain.ErrInvalidReseller)
}

func TestCreateRuleDuplicateName(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	req := markupruledomain.CreateRequest{
		Name:        "bulk rate",
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 15,
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, markupruledomain.ErrDuplicateName)

	// Another reseller can reuse the name.
	otherCtx, _ := resellerContext(node)
	_, err = svc.Create(otherCtx, req)
	assert.NoError(t, err)
}

func TestUpdateRulePartial(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	created, err := svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "base",
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 10,
		Priority:    1,
	})
	require.NoError(t, err)

	newValue := 12.5
	inactive := false
	updated, err := svc.Update(ctx, created.ID, markupruledomain.UpdateRequest{
		MarkupValue: &newValue,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "base", updated.Name)
	assert.Equal(t, 12.5, updated.MarkupValue)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 1, updated.Priority)
}

func TestUpdateRuleValidatesResult(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	created, err := svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "valid",
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 10,
	})
	require.NoError(t, err)

	tooLarge := 2000.0
	_, err = svc.Update(ctx, created.ID, markupruledomain.UpdateRequest{
		MarkupValue: &tooLarge,
	})
	assert.ErrorIs(t, err, markupruledomain.ErrPercentageTooLarge)
}

func TestUpdateRuleNotFound(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	name := "ghost"
	_, err := svc.Update(ctx, node.Generate().String(), markupruledomain.UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, markupruledomain.ErrNotFound)

	_, err = svc.Update(ctx, "not-a-snowflake", markupruledomain.UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, markupruledomain.ErrInvalidID)
}

func TestDeleteRule(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	created, err := svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "short lived",
		MarkupType:  markupruledomain.MarkupTypeFixedAmount,
		MarkupValue: 0.002,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, markupruledomain.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, markupruledomain.ErrNotFound)
}

func TestListRulesFilters(t *testing.T) {
	svc, _, node := setupRuleService(t)
	ctx, _ := resellerContext(node)

	inactive := false
	_, err := svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "active markup",
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 10,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "dormant markup",
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 15,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, markupruledomain.CreateRequest{
		Name:        "volume tier",
		Kind:        markupruledomain.RuleKindVolumeTier,
		MinVolume:   1000,
		MarkupType:  markupruledomain.MarkupTypePercentage,
		MarkupValue: 12,
	})
	require.NoError(t, err)

	active, err := svc.List(ctx, markupruledomain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := svc.List(ctx, markupruledomain.ListFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tiers, err := svc.List(ctx, markupruledomain.ListFilter{Kind: markupruledomain.RuleKindVolumeTier})
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "volume tier", tiers[0].Name)
}
