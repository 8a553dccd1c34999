package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	WebhookStatusPending = "pending"
	WebhookStatusSuccess = "success"
	WebhookStatusError   = "error"

	WebhookTypeAwardXP         = "award_xp"
	WebhookTypeConversationEnd = "conversation_end"
)

// WebhookLog is the append-only audit trail for inbound vendor calls. It is
// purely observational and participates in no business invariant.
type WebhookLog struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WebhookType       string         `gorm:"not null;index;column:webhook_type" json:"webhook_type"`
	UserIDFromRequest string         `gorm:"column:user_id_from_request" json:"user_id_from_request"`
	Status            string         `gorm:"not null;default:'pending';index" json:"status"`
	RequestData       datatypes.JSON `gorm:"column:request_data" json:"request_data,omitempty"`
	ResponseData      datatypes.JSON `gorm:"column:response_data" json:"response_data,omitempty"`
	ErrorMessage      string         `gorm:"type:text;column:error_message" json:"error_message,omitempty"`
	IPAddress         string         `gorm:"column:ip_address" json:"ip_address"`
	UserAgent         string         `gorm:"column:user_agent" json:"user_agent"`
	ProcessingTimeMs  *int64         `gorm:"column:processing_time_ms" json:"processing_time_ms,omitempty"`
	ProcessedAt       *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
