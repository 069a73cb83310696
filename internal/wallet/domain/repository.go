package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nalotext/smsmargin/pkg/db/option"
	"gorm.io/gorm"
)

// Repository persists wallets, their transaction log, and auto-recharge
// configs. Callers pass the handle so balance mutations can run inside a
// surrounding gorm transaction.
type Repository interface {
	// FindWalletForUpdate loads the wallet row under SELECT ... FOR UPDATE.
	// Must be called inside a transaction. Returns nil when the reseller
	// has no wallet yet.
	FindWalletForUpdate(ctx context.Context, tx *gorm.DB, resellerID snowflake.ID) (*Wallet, error)
	CreateWallet(ctx context.Context, tx *gorm.DB, wallet *Wallet) error
	UpdateBalance(ctx context.Context, tx *gorm.DB, wallet *Wallet, newBalance float64) error
	FindWallet(ctx context.Context, db *gorm.DB, resellerID snowflake.ID) (*Wallet, error)

	InsertTransaction(ctx context.Context, tx *gorm.DB, trx *WalletTransaction) error
	ListTransactions(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, opts ...option.QueryOption) ([]*WalletTransaction, error)

	FindAutoRecharge(ctx context.Context, db *gorm.DB, resellerID snowflake.ID) (*AutoRechargeConfig, error)
	SaveAutoRecharge(ctx context.Context, db *gorm.DB, cfg *AutoRechargeConfig) error
	ListEnabledAutoRecharge(ctx context.Context, db *gorm.DB, limit, offset int) ([]AutoRechargeConfig, error)
}
