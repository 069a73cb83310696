package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"github.com/nalotext/smsmargin/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() walletdomain.Repository {
	return &repo{}
}

func (r *repo) FindWalletForUpdate(ctx context.Context, tx *gorm.DB, resellerID snowflake.ID) (*walletdomain.Wallet, error) {
	var wallet walletdomain.Wallet
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reseller_id = ?", resellerID).
		Limit(1).
		Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repo) CreateWallet(ctx context.Context, tx *gorm.DB, wallet *walletdomain.Wallet) error {
	return tx.WithContext(ctx).Create(wallet).Error
}

func (r *repo) UpdateBalance(ctx context.Context, tx *gorm.DB, wallet *walletdomain.Wallet, newBalance float64) error {
	return tx.WithContext(ctx).
		Model(&walletdomain.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]any{
			"balance":    newBalance,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) FindWallet(ctx context.Context, db *gorm.DB, resellerID snowflake.ID) (*walletdomain.Wallet, error) {
	var wallet walletdomain.Wallet
	err := db.WithContext(ctx).
		Where("reseller_id = ?", resellerID).
		Limit(1).
		Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repo) InsertTransaction(ctx context.Context, tx *gorm.DB, trx *walletdomain.WalletTransaction) error {
	return tx.WithContext(ctx).Create(trx).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, resellerID snowflake.ID, opts ...option.QueryOption) ([]*walletdomain.WalletTransaction, error) {
	stmt := db.WithContext(ctx).Where("reseller_id = ?", resellerID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var items []*walletdomain.WalletTransaction
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindAutoRecharge(ctx context.Context, db *gorm.DB, resellerID snowflake.ID) (*walletdomain.AutoRechargeConfig, error) {
	var cfg walletdomain.AutoRechargeConfig
	err := db.WithContext(ctx).
		Where("reseller_id = ?", resellerID).
		Limit(1).
		Scan(&cfg).Error
	if err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		return nil, nil
	}
	return &cfg, nil
}

func (r *repo) SaveAutoRecharge(ctx context.Context, db *gorm.DB, cfg *walletdomain.AutoRechargeConfig) error {
	return db.WithContext(ctx).Save(cfg).Error
}

func (r *repo) ListEnabledAutoRecharge(ctx context.Context, db *gorm.DB, limit, offset int) ([]walletdomain.AutoRechargeConfig, error) {
	var items []walletdomain.AutoRechargeConfig
	err := db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
