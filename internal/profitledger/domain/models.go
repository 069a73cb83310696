// Package domain holds the append-only profit ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProfitTransaction records the margin earned on one priced event. Rows are
// written once and never updated.
type ProfitTransaction struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	ResellerID      snowflake.ID `json:"reseller_id" gorm:"column:reseller_id;not null;index:ix_profit_transactions_reseller_created,priority:1"`
	TransactionID   string       `json:"transaction_id" gorm:"type:text;not null"`
	TransactionType string       `json:"transaction_type" gorm:"type:text;not null"`
	BaseCost        float64      `json:"base_cost" gorm:"type:numeric;not null"`
	ClientCharge    float64      `json:"client_charge" gorm:"type:numeric;not null"`
	Profit          float64      `json:"profit" gorm:"type:numeric;not null"`
	MarkupApplied   float64      `json:"markup_applied" gorm:"type:numeric;not null"`
	Volume          int64        `json:"volume" gorm:"not null"`
	CountryCode     *string      `json:"country_code,omitempty" gorm:"type:text"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_profit_transactions_reseller_created,priority:2"`
}

// TableName sets the database table name.
func (ProfitTransaction) TableName() string { return "profit_transactions" }
