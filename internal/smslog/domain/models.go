// Package domain holds the message log read model. The sending pipeline
// writes these rows; this service reads them for usage aggregation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MessageLog struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	ResellerID snowflake.ID `json:"reseller_id" gorm:"column:reseller_id;not null;index:ix_message_logs_reseller_created,priority:1"`
	Recipient  string       `json:"recipient" gorm:"type:text;not null"`
	SMSType    string       `json:"sms_type" gorm:"type:text;not null;default:'transactional'"`
	Cost       float64      `json:"cost" gorm:"type:numeric;not null;default:0"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_message_logs_reseller_created,priority:2"`
}

// TableName sets the database table name.
func (MessageLog) TableName() string { return "message_logs" }
