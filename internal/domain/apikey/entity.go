// internal/domain/apikey/entity.go
package apikey

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Environment string

const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "production"
)

// APIKey never carries the raw secret: KeyPrefix is the redacted display
// form, KeyHash the bcrypt digest used for verification.
type APIKey struct {
	ID          string         `json:"id" db:"id"`
	MerchantID  string         `json:"merchant_id" db:"merchant_id"`
	Name        string         `json:"name" db:"name"`
	KeyPrefix   string         `json:"key" db:"key_prefix"`
	KeyHash     string         `json:"-" db:"key_hash"`
	Environment Environment    `json:"environment" db:"environment"`
	Permissions pq.StringArray `json:"permissions" db:"permissions"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	ExpiresAt   sql.NullTime   `json:"expires_at,omitempty" db:"expires_at"`
	LastUsedAt  sql.NullTime   `json:"last_used_at,omitempty" db:"last_used_at"`
}

// Expired reports whether the key's expiry, if any, has passed.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt.Valid && k.ExpiresAt.Time.Before(now)
}
