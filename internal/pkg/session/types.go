// internal/pkg/session/types.go
package session

import "time"

// SessionData is the Redis-backed record for a dashboard session.
type SessionData struct {
	JTI            string    `json:"jti"`
	MerchantID     string    `json:"merchant_id"`
	APIKeyID       string    `json:"api_key_id"`
	Environment    string    `json:"environment"`
	Permissions    []string  `json:"permissions"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	IssuedAt       time.Time `json:"issued_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
