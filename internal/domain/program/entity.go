// internal/domain/program/entity.go
package program

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type LoyaltyProgram struct {
	ID                 string         `json:"id" db:"id"`
	MerchantID         string         `json:"merchant_id" db:"merchant_id"`
	Name               string         `json:"name" db:"name"`
	Description        sql.NullString `json:"description,omitempty" db:"description"`
	PointsCurrencyName string         `json:"points_currency_name" db:"points_currency_name"`
	Currency           string         `json:"currency" db:"currency"`
	Timezone           string         `json:"timezone" db:"timezone"`
	IsActive           bool           `json:"is_active" db:"is_active"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

type Tier struct {
	ID               string         `json:"id" db:"id"`
	LoyaltyProgramID string         `json:"loyalty_program_id" db:"loyalty_program_id"`
	Name             string         `json:"name" db:"name"`
	Description      sql.NullString `json:"description,omitempty" db:"description"`
	PointsThreshold  int            `json:"points_threshold" db:"points_threshold"`
	Benefits         pq.StringArray `json:"benefits" db:"benefits"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

type RuleType string

const (
	RuleTypeFixed      RuleType = "FIXED"
	RuleTypePercentage RuleType = "PERCENTAGE"
)

// EarningRule is the simple per-program rule the wizard collects: FIXED
// awards Points per order, PERCENTAGE awards Points per currency unit.
type EarningRule struct {
	ID               string    `json:"id" db:"id"`
	LoyaltyProgramID string    `json:"loyalty_program_id" db:"loyalty_program_id"`
	Name             string    `json:"name" db:"name"`
	Type             RuleType  `json:"type" db:"type"`
	Points           int       `json:"points" db:"points"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// DefaultTier picks the tier new members land in: the minimum
// pointsThreshold, first encountered winning ties.
func DefaultTier(tiers []Tier) *Tier {
	if len(tiers) == 0 {
		return nil
	}

	def := &tiers[0]
	for i := 1; i < len(tiers); i++ {
		if tiers[i].PointsThreshold < def.PointsThreshold {
			def = &tiers[i]
		}
	}
	return def
}
