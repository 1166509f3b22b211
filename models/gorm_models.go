package models

import (
	"time"
)

// GORM-compatible models with proper tags

// QuoteMessageGorm represents the quote_messages table with GORM tags.
// Messages are the producer/supplier chat attached to a quote; the frontend
// polls for them, the backend just serves the ordered list.
type QuoteMessageGorm struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	QuoteID    int       `gorm:"column:quote_id;not null;index" json:"quote_id"`
	SenderRole string    `gorm:"column:sender_role;not null" json:"sender_role"`
	SenderName string    `gorm:"column:sender_name" json:"sender_name"`
	Body       string    `gorm:"column:body;not null" json:"body"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName specifies the table name for QuoteMessageGorm
func (QuoteMessageGorm) TableName() string {
	return "quote_messages"
}

// ProducerSettingsGorm represents the producer_settings table with GORM tags
type ProducerSettingsGorm struct {
	ID                  uint      `gorm:"primaryKey;column:id" json:"id"`
	ProducerName        string    `gorm:"column:producer_name" json:"producer_name"`
	ProducerEmail       string    `gorm:"column:producer_email;not null" json:"producer_email"`
	DefaultQuoteSubject string    `gorm:"column:default_quote_subject" json:"default_quote_subject"`
	DefaultQuoteBody    string    `gorm:"column:default_quote_body;type:text" json:"default_quote_body"`
	AutoAllocate        bool      `gorm:"column:auto_allocate;default:false" json:"auto_allocate"`
	CreatedAt           time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for ProducerSettingsGorm
func (ProducerSettingsGorm) TableName() string {
	return "producer_settings"
}
