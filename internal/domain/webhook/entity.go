// internal/domain/webhook/entity.go
package webhook

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Event types emitted by the service. A webhook endpoint subscribes to a
// subset; "*" subscribes to all.
const (
	EventMemberCreated      = "member.created"
	EventMemberUpdated      = "member.updated"
	EventMemberDeleted      = "member.deleted"
	EventTransactionCreated = "transaction.created"
	EventCampaignCreated    = "campaign.created"
	EventCampaignUpdated    = "campaign.updated"
	EventRewardRedeemed     = "reward.redeemed"
	EventProgramCreated     = "program.created"
)

// KnownEvents lists every event type a webhook may subscribe to.
var KnownEvents = []string{
	EventMemberCreated,
	EventMemberUpdated,
	EventMemberDeleted,
	EventTransactionCreated,
	EventCampaignCreated,
	EventCampaignUpdated,
	EventRewardRedeemed,
	EventProgramCreated,
}

type Webhook struct {
	ID          string         `json:"id" db:"id"`
	MerchantID  string         `json:"merchant_id" db:"merchant_id"`
	URL         string         `json:"url" db:"url"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	Events      pq.StringArray `json:"events" db:"events"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	Secret      string         `json:"-" db:"secret"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// SubscribedTo reports whether the endpoint wants the event type.
func (w *Webhook) SubscribedTo(eventType string) bool {
	for _, e := range w.Events {
		if e == eventType || e == "*" {
			return true
		}
	}
	return false
}

type WebhookLog struct {
	ID             string    `json:"id" db:"id"`
	WebhookID      string    `json:"webhook_id" db:"webhook_id"`
	EventType      string    `json:"event_type" db:"event_type"`
	StatusCode     int       `json:"status_code" db:"status_code"`
	Successful     bool      `json:"successful" db:"successful"`
	ResponseTimeMs int64     `json:"response_time_ms" db:"response_time_ms"`
	Error          string    `json:"error,omitempty" db:"error"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Event is an outbound payload queued for delivery.
type Event struct {
	ID         string      `json:"id"`
	MerchantID string      `json:"-"`
	Type       string      `json:"type"`
	CreatedAt  time.Time   `json:"created_at"`
	Data       interface{} `json:"data"`
}
