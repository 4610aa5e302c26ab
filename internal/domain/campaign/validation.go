// internal/domain/campaign/validation.go
package campaign

import (
	"fmt"
	"time"
)

// NormalizeRewards enforces the reward union invariant: exactly the field
// matching the campaign type survives, the others are zeroed. The source
// dashboards let stale sub-fields leak through when the type changed, so
// the write path is where the invariant lives.
func NormalizeRewards(t CampaignType, r Rewards) (Rewards, error) {
	switch t {
	case TypePointsMultiplier:
		if r.PointsMultiplier < 1 {
			return Rewards{}, fmt.Errorf("points multiplier must be at least 1")
		}
		return Rewards{PointsMultiplier: r.PointsMultiplier}, nil
	case TypeBonusPoints:
		if r.BonusPoints <= 0 {
			return Rewards{}, fmt.Errorf("bonus points must be positive")
		}
		return Rewards{BonusPoints: r.BonusPoints}, nil
	case TypeSpecialReward:
		if r.RewardID == "" {
			return Rewards{}, fmt.Errorf("reward id is required for special reward campaigns")
		}
		return Rewards{RewardID: r.RewardID}, nil
	default:
		return Rewards{}, fmt.Errorf("unknown campaign type: %s", t)
	}
}

// ValidateRule checks a rule's tagged-union payload: the fields selected
// by Type must be set, the rest must be absent.
func ValidateRule(r Rule) error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}

	switch r.Type {
	case RuleTypePointsThreshold:
		if r.Threshold <= 0 {
			return fmt.Errorf("rule %q: threshold must be positive", r.Name)
		}
		if r.MinPurchases != 0 || r.TimeframeDays != 0 || r.SegmentID != "" {
			return fmt.Errorf("rule %q: unexpected fields for points threshold rule", r.Name)
		}
	case RuleTypePurchaseHistory:
		if r.MinPurchases <= 0 {
			return fmt.Errorf("rule %q: min purchases must be positive", r.Name)
		}
		if r.TimeframeDays <= 0 {
			return fmt.Errorf("rule %q: timeframe days must be positive", r.Name)
		}
		if r.Threshold != 0 || r.SegmentID != "" {
			return fmt.Errorf("rule %q: unexpected fields for purchase history rule", r.Name)
		}
	case RuleTypeSegmentMembership:
		if r.SegmentID == "" {
			return fmt.Errorf("rule %q: segment id is required", r.Name)
		}
		if r.Threshold != 0 || r.MinPurchases != 0 || r.TimeframeDays != 0 {
			return fmt.Errorf("rule %q: unexpected fields for segment membership rule", r.Name)
		}
	default:
		return fmt.Errorf("rule %q: unknown rule type %q", r.Name, r.Type)
	}

	return nil
}

// ValidateDates checks the start/end window. End date is optional.
func ValidateDates(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if end != nil && !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}
