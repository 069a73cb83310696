package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/nalotext/smsmargin/internal/billing/domain"
	"github.com/nalotext/smsmargin/internal/clock"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	markuprulerepo "github.com/nalotext/smsmargin/internal/markuprule/repository"
	pricingservice "github.com/nalotext/smsmargin/internal/pricing/service"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	ledgerservice "github.com/nalotext/smsmargin/internal/profitledger/service"
	resellerdomain "github.com/nalotext/smsmargin/internal/reseller/domain"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	smslogdomain "github.com/nalotext/smsmargin/internal/smslog/domain"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	walletrepo "github.com/nalotext/smsmargin/internal/wallet/repository"
	walletservice "github.com/nalotext/smsmargin/internal/wallet/service"
	"github.com/nalotext/smsmargin/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type upstreamStub struct{}

func (upstreamStub) Balance(ctx context.Context) (float64, error) { return 0, nil }

type billingFixture struct {
	svc    billingdomain.Service
	wallet walletdomain.Service
	db     *gorm.DB
	node   *snowflake.Node
}

// setupBillingService wires the real pricing, wallet, and ledger services on
// one database so Charge runs the same path it does in production.
func setupBillingService(t *testing.T) billingFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// SQLite has no FOR UPDATE; drop the locking clause before queries build.
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("sqlite_no_row_locks", func(d *gorm.DB) {
		delete(d.Statement.Clauses, "FOR")
	}))

	require.NoError(t, db.AutoMigrate(
		&markupruledomain.MarkupRule{},
		&resellerdomain.Reseller{},
		&walletdomain.Wallet{},
		&walletdomain.WalletTransaction{},
		&walletdomain.AutoRechargeConfig{},
		&ledgerdomain.ProfitTransaction{},
		&smslogdomain.MessageLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	policy := pricingservice.NewTierMarkupPolicy(pricingservice.PolicyParams{DB: db})
	ruleRepo := markuprulerepo.Provide()

	pricingSvc := pricingservice.New(pricingservice.Params{
		DB:            db,
		Log:           log,
		RuleRepo:      ruleRepo,
		DefaultPolicy: policy,
	})
	walletSvc := walletservice.New(walletservice.Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Clock:         fakeClock,
		Repo:          walletrepo.Provide(),
		RuleRepo:      ruleRepo,
		DefaultPolicy: policy,
		Upstream:      upstreamStub{},
	})
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Store: repository.ProvideStore[ledgerdomain.ProfitTransaction](db),
	})

	svc := New(Params{
		Log:      log,
		GenID:    node,
		Clock:    fakeClock,
		Pricing:  pricingSvc,
		Wallet:   walletSvc,
		Ledger:   ledgerSvc,
		LogStore: repository.ProvideStore[smslogdomain.MessageLog](db),
	})
	return billingFixture{svc: svc, wallet: walletSvc, db: db, node: node}
}

func TestChargeEndToEnd(t *testing.T) {
	f := setupBillingService(t)
	resellerID := f.node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	// Fund the wallet: 1 upstream credit at the default 20% markup.
	_, err := f.wallet.Distribute(ctx, walletdomain.DistributeRequest{ArkeselCredits: 1})
	require.NoError(t, err)

	result, err := f.svc.Charge(ctx, billingdomain.ChargeRequest{
		Recipients:  []string{"+233240000001", "+233240000002", "+233240000003"},
		CountryCode: "GH",
		BaseCost:    0.01,
	})
	require.NoError(t, err)

	// 0.01 base at 20% markup is 0.012 per message, 0.036 for three.
	assert.Equal(t, 0.036, result.TotalCharge)
	assert.Equal(t, 0.006, result.TotalProfit)
	require.NotNil(t, result.Transaction)
	assert.Equal(t, walletdomain.TransactionTypeDebit, result.Transaction.Type)
	require.NotNil(t, result.LedgerEntry)
	assert.Equal(t, result.Transaction.ID.String(), result.LedgerEntry.TransactionID)
	assert.Equal(t, "SMS_CHARGE", result.LedgerEntry.TransactionType)
	assert.Equal(t, int64(3), result.LedgerEntry.Volume)

	balance, err := f.wallet.Balance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.764, balance.Balance, 1e-9)

	var logs []smslogdomain.MessageLog
	require.NoError(t, f.db.Where("reseller_id = ?", resellerID).Find(&logs).Error)
	require.Len(t, logs, 3)
	assert.Equal(t, "transactional", logs[0].SMSType)
	assert.Equal(t, 0.012, logs[0].Cost)
}

func TestChargeInsufficientBalance(t *testing.T) {
	f := setupBillingService(t)
	resellerID := f.node.Generate()
	ctx := resellerctx.WithResellerID(context.Background(), resellerID)

	_, err := f.svc.Charge(ctx, billingdomain.ChargeRequest{
		Recipients: []string{"+233240000001"},
		BaseCost:   0.01,
	})
	assert.ErrorIs(t, err, walletdomain.ErrInsufficient)

	// Nothing was written.
	var count int64
	require.NoError(t, f.db.Model(&smslogdomain.MessageLog{}).
		Where("reseller_id = ?", resellerID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, f.db.Model(&ledgerdomain.ProfitTransaction{}).
		Where("reseller_id = ?", resellerID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestChargeNoRecipients(t *testing.T) {
	f := setupBillingService(t)
	ctx := resellerctx.WithResellerID(context.Background(), f.node.Generate())

	_, err := f.svc.Charge(ctx, billingdomain.ChargeRequest{BaseCost: 0.01})
	assert.ErrorIs(t, err, billingdomain.ErrNoRecipients)
}
