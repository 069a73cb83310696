package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/nalotext/smsmargin/internal/clock"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	"github.com/nalotext/smsmargin/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLedgerService(t *testing.T) (ledgerdomain.Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&ledgerdomain.ProfitTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClock,
		Store: repository.ProvideStore[ledgerdomain.ProfitTransaction](db),
	})
	return svc, node, fakeClock
}

func TestRecordEntry(t *testing.T) {
	svc, node, _ := setupLedgerService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	entry, err := svc.Record(ctx, ledgerdomain.RecordRequest{
		TransactionID:   node.Generate().String(),
		TransactionType: "SMS_CHARGE",
		BaseCost:        0.01,
		ClientCharge:    1.2,
		Profit:          0.20000001,
		MarkupApplied:   20,
		Volume:          100,
	})
	require.NoError(t, err)
	assert.Equal(t, resellerID, entry.ResellerID)
	assert.Equal(t, 0.2, entry.Profit)
	assert.NotZero(t, entry.ID)
}

func TestRecordValidation(t *testing.T) {
	svc, node, _ := setupLedgerService(t)
	ctx := resellerctx.WithResellerID(context.Background(), node.Generate())

	_, err := svc.Record(ctx, ledgerdomain.RecordRequest{
		TransactionType: "SMS_CHARGE",
		Volume:          1,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidTransaction)

	_, err = svc.Record(ctx, ledgerdomain.RecordRequest{
		TransactionID: "trx",
		Volume:        1,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidTransaction)

	_, err = svc.Record(ctx, ledgerdomain.RecordRequest{
		TransactionID:   "trx",
		TransactionType: "SMS_CHARGE",
		Volume:          0,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidTransaction)

	_, err = svc.Record(context.Background(), ledgerdomain.RecordRequest{
		TransactionID:   "trx",
		TransactionType: "SMS_CHARGE",
		Volume:          1,
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidReseller)
}

func TestAnalyticsWindow(t *testing.T) {
	svc, node, fakeClock := setupLedgerService(t)
	resellerID := node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	record := func(transactionType string, profit float64) {
		_, err := svc.Record(ctx, ledgerdomain.RecordRequest{
			TransactionID:   node.Generate().String(),
			TransactionType: transactionType,
			Profit:          profit,
			Volume:          10,
		})
		require.NoError(t, err)
	}

	// Two entries well inside the window, one that ages out of it.
	record("SMS_CHARGE", 0.5)
	fakeClock.Advance(24 * time.Hour)
	record("SMS_CHARGE", 0.25)
	record("ADJUSTMENT", 1.0)
	fakeClock.Advance(40 * 24 * time.Hour)
	record("SMS_CHARGE", 2.0)

	resp, err := svc.Analytics(ctx, ledgerdomain.AnalyticsRequest{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.PeriodDays)
	assert.Equal(t, int64(1), resp.TransactionCount)
	assert.Equal(t, 2.0, resp.TotalProfit)
	assert.Equal(t, map[string]float64{"SMS_CHARGE": 2.0}, resp.ProfitByType)
	require.Len(t, resp.Recent, 1)

	// Widening the window picks everything up.
	resp, err = svc.Analytics(ctx, ledgerdomain.AnalyticsRequest{Days: 90})
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.TransactionCount)
	assert.Equal(t, 3.75, resp.TotalProfit)
	assert.Equal(t, 2.75, resp.ProfitByType["SMS_CHARGE"])
	assert.Equal(t, 1.0, resp.ProfitByType["ADJUSTMENT"])
	require.Len(t, resp.Recent, 4)
	// Newest first.
	assert.Equal(t, 2.0, resp.Recent[0].Profit)
}

func TestAnalyticsDefaultsAndLimits(t *testing.T) {
	svc, node, _ := setupLedgerService(t)
	ctx := resellerctx.WithResellerID(context.Background(), node.Generate())

	resp, err := svc.Analytics(ctx, ledgerdomain.AnalyticsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.PeriodDays)
	assert.Equal(t, 0.0, resp.TotalProfit)
	assert.Empty(t, resp.Recent)

	_, err = svc.Analytics(ctx, ledgerdomain.AnalyticsRequest{Days: -1})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidWindow)

	_, err = svc.Analytics(ctx, ledgerdomain.AnalyticsRequest{Days: 366})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidWindow)
}

func TestAnalyticsScopedToReseller(t *testing.T) {
	svc, node, _ := setupLedgerService(t)
	ctxA := resellerctx.WithResellerID(context.Background(), node.Generate())
	ctxB := resellerctx.WithResellerID(context.Background(), node.Generate())

	_, err := svc.Record(ctxA, ledgerdomain.RecordRequest{
		TransactionID:   node.Generate().String(),
		TransactionType: "SMS_CHARGE",
		Profit:          1,
		Volume:          1,
	})
	require.NoError(t, err)

	resp, err := svc.Analytics(ctxB, ledgerdomain.AnalyticsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.TransactionCount)
}
