// internal/domain/campaign/entity.go
package campaign

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type CampaignType string

const (
	TypePointsMultiplier CampaignType = "POINTS_MULTIPLIER"
	TypeBonusPoints      CampaignType = "BONUS_POINTS"
	TypeSpecialReward    CampaignType = "SPECIAL_REWARD"
)

type RuleType string

const (
	RuleTypePointsThreshold   RuleType = "POINTS_THRESHOLD"
	RuleTypePurchaseHistory   RuleType = "PURCHASE_HISTORY"
	RuleTypeSegmentMembership RuleType = "SEGMENT_MEMBERSHIP"
)

// Rule is an eligibility condition. The Type tag decides which payload
// fields are meaningful; the others must stay zero.
type Rule struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Type          RuleType `json:"type"`
	Threshold     int      `json:"threshold,omitempty"`     // POINTS_THRESHOLD
	MinPurchases  int      `json:"minPurchases,omitempty"`  // PURCHASE_HISTORY
	TimeframeDays int      `json:"timeframeDays,omitempty"` // PURCHASE_HISTORY
	SegmentID     string   `json:"segmentId,omitempty"`     // SEGMENT_MEMBERSHIP
}

// Rewards is a union keyed by the campaign type. Exactly the field
// matching the type is populated after normalization.
type Rewards struct {
	PointsMultiplier float64 `json:"pointsMultiplier,omitempty"`
	BonusPoints      int     `json:"bonusPoints,omitempty"`
	RewardID         string  `json:"rewardId,omitempty"`
}

type Campaign struct {
	ID               string         `json:"id" db:"id"`
	LoyaltyProgramID string         `json:"loyalty_program_id" db:"loyalty_program_id"`
	Name             string         `json:"name" db:"name"`
	Description      sql.NullString `json:"description,omitempty" db:"description"`
	Type             CampaignType   `json:"type" db:"type"`

	// Validity
	StartDate time.Time    `json:"start_date" db:"start_date"`
	EndDate   sql.NullTime `json:"end_date,omitempty" db:"end_date"`

	// Eligibility
	Rules         []Rule         `json:"rules" db:"rules"`
	TargetTierIDs pq.StringArray `json:"target_tier_ids,omitempty" db:"target_tier_ids"`

	// Reward payload, normalized against Type on every write
	Rewards Rewards `json:"rewards" db:"rewards"`

	IsActive bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CampaignStats struct {
	TotalCampaigns   int64            `json:"total_campaigns"`
	ActiveCampaigns  int64            `json:"active_campaigns"`
	ExpiredCampaigns int64            `json:"expired_campaigns"`
	ByType           map[string]int64 `json:"by_type"`
}

// Expired reports whether the campaign's end date has passed.
func (c *Campaign) Expired(now time.Time) bool {
	return c.EndDate.Valid && c.EndDate.Time.Before(now)
}

// Live reports whether the campaign applies at the given instant.
func (c *Campaign) Live(now time.Time) bool {
	if !c.IsActive || now.Before(c.StartDate) {
		return false
	}
	return !c.Expired(now)
}
