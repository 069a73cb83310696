// Package domain contains the reseller wallet models and the distribution
// service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TransactionType marks the direction of a wallet transaction.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Wallet is the reseller's prepaid balance. Mutated only inside a locked
// database transaction together with a WalletTransaction row.
type Wallet struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	ResellerID snowflake.ID `json:"reseller_id" gorm:"column:reseller_id;not null;uniqueIndex"`
	Balance    float64      `json:"balance" gorm:"type:numeric;not null;default:0"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Wallet) TableName() string { return "wallets" }

// WalletTransaction is the immutable log entry paired with every balance
// change.
type WalletTransaction struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	ResellerID  snowflake.ID      `json:"reseller_id" gorm:"column:reseller_id;not null;index"`
	Type        TransactionType   `json:"type" gorm:"type:text;not null"`
	Amount      float64           `json:"amount" gorm:"type:numeric;not null"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (WalletTransaction) TableName() string { return "wallet_transactions" }

// AutoRechargeConfig gates automatic balance distribution per reseller.
type AutoRechargeConfig struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	ResellerID     snowflake.ID `json:"reseller_id" gorm:"column:reseller_id;not null;uniqueIndex"`
	Enabled        bool         `json:"enabled" gorm:"not null;default:false"`
	MinThreshold   float64      `json:"min_threshold" gorm:"type:numeric;not null;default:0"`
	RechargeAmount float64      `json:"recharge_amount" gorm:"type:numeric;not null;default:0"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AutoRechargeConfig) TableName() string { return "auto_recharge_configs" }
