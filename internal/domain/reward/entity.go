// internal/domain/reward/entity.go
package reward

import (
	"database/sql"
	"time"
)

type RewardType string

const (
	TypePhysical   RewardType = "PHYSICAL"
	TypeDigital    RewardType = "DIGITAL"
	TypeExperience RewardType = "EXPERIENCE"
	TypeCoupon     RewardType = "COUPON"
)

type Reward struct {
	ID               string        `json:"id" db:"id"`
	LoyaltyProgramID string        `json:"loyalty_program_id" db:"loyalty_program_id"`
	Name             string        `json:"name" db:"name"`
	Description      string        `json:"description" db:"description"`
	Type             RewardType    `json:"type" db:"type"`
	PointsCost       int           `json:"points_cost" db:"points_cost"`
	Stock            sql.NullInt32 `json:"stock,omitempty" db:"stock"` // absent = unlimited
	ValidityPeriod   sql.NullInt32 `json:"validity_period,omitempty" db:"validity_period"`
	RedemptionLimit  sql.NullInt32 `json:"redemption_limit,omitempty" db:"redemption_limit"`
	IsActive         bool          `json:"is_active" db:"is_active"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// ValidType reports whether t is one of the known reward types.
func ValidType(t RewardType) bool {
	switch t {
	case TypePhysical, TypeDigital, TypeExperience, TypeCoupon:
		return true
	}
	return false
}
