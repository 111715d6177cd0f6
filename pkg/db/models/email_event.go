package models

import "time"

// EmailEvent is the idempotency ledger for outbound notifications. The unique
// key on (order_token, event_type) is the only cross-request mutual exclusion
// in the system: inserting the row reserves the send, and a row that reached
// `sent` blocks that event type for that token forever.
type EmailEvent struct {
	ID                int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderToken        string     `gorm:"column:order_token;not null;uniqueIndex:uq_email_events_token_event" json:"order_token"`
	EventType         string     `gorm:"column:event_type;not null;uniqueIndex:uq_email_events_token_event" json:"event_type"`
	Status            string     `gorm:"column:status;not null;default:'reserved'" json:"status"`
	Attempts          int        `gorm:"column:attempts;not null;default:0" json:"attempts"`
	ProviderMessageID *string    `gorm:"column:provider_message_id" json:"provider_message_id"`
	Error             *string    `gorm:"column:error" json:"error"`
	SentAt            *time.Time `gorm:"column:sent_at" json:"sent_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EmailEvent) TableName() string { return "email_events" }

// Ledger statuses.
const (
	EmailEventReserved = "reserved"
	EmailEventSent     = "sent"
	EmailEventFailed   = "failed"
)

// Notification event types.
const (
	EventOrderConfirmed = "order_confirmed"
	EventPaidNotice     = "paid_notice"
	EventShipdateNotice = "shipdate_notice"
	EventShippedNotice  = "shipped_notice"
)
