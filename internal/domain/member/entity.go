// internal/domain/member/entity.go
package member

import (
	"database/sql"
	"time"
)

type Member struct {
	ID               string         `json:"id" db:"id"`
	LoyaltyProgramID string         `json:"loyalty_program_id" db:"loyalty_program_id"`
	Email            string         `json:"email" db:"email"`
	Name             string         `json:"name" db:"name"`
	ExternalRef      sql.NullString `json:"external_ref,omitempty" db:"external_ref"` // e.g. Shopify customer id
	PointsBalance    int            `json:"points_balance" db:"points_balance"`
	TierID           sql.NullString `json:"tier_id,omitempty" db:"tier_id"`
	IsActive         bool           `json:"is_active" db:"is_active"`
	JoinedAt         time.Time      `json:"joined_at" db:"joined_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

type MemberStats struct {
	TotalMembers  int64 `json:"total_members"`
	ActiveMembers int64 `json:"active_members"`
	TotalPoints   int64 `json:"total_points"`
}
