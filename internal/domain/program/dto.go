// internal/domain/program/dto.go
package program

import "fmt"

type BasicInfo struct {
	Name               string `json:"name" binding:"required,max=255"`
	Description        string `json:"description"`
	PointsCurrencyName string `json:"points_currency_name"`
	Currency           string `json:"currency"`
	Timezone           string `json:"timezone"`
}

type TierInput struct {
	Name            string   `json:"name" binding:"required,max=255"`
	Description     string   `json:"description"`
	PointsThreshold int      `json:"points_threshold" binding:"min=0"`
	Benefits        []string `json:"benefits"`
}

type RuleInput struct {
	Name   string   `json:"name" binding:"required,max=255"`
	Type   RuleType `json:"type" binding:"required"`
	Points int      `json:"points" binding:"required,min=1"`
}

type RewardInput struct {
	Name            string `json:"name" binding:"required,max=255"`
	Description     string `json:"description"`
	Type            string `json:"type" binding:"required"`
	PointsCost      int    `json:"points_cost" binding:"required,min=1"`
	Stock           *int   `json:"stock"`
	ValidityPeriod  *int   `json:"validity_period"`
	RedemptionLimit *int   `json:"redemption_limit"`
}

// ProgramFormData is the wizard's aggregate submission, created atomically.
// Basic info and at least one rule are required; tiers and rewards are not.
type ProgramFormData struct {
	BasicInfo BasicInfo     `json:"basic_info" binding:"required"`
	Rules     []RuleInput   `json:"rules"`
	Tiers     []TierInput   `json:"tiers"`
	Rewards   []RewardInput `json:"rewards"`
}

// Validate applies the wizard's gate: name and at least one rule.
func (f *ProgramFormData) Validate() error {
	if f.BasicInfo.Name == "" {
		return fmt.Errorf("program name is required")
	}
	if len(f.Rules) == 0 {
		return fmt.Errorf("at least one earning rule is required")
	}
	for i, r := range f.Rules {
		if r.Type != RuleTypeFixed && r.Type != RuleTypePercentage {
			return fmt.Errorf("rule %d: unknown rule type %q", i, r.Type)
		}
		if r.Points <= 0 {
			return fmt.Errorf("rule %d: points must be positive", i)
		}
	}
	for i, t := range f.Tiers {
		if t.PointsThreshold < 0 {
			return fmt.Errorf("tier %d: points threshold must be non-negative", i)
		}
	}
	return nil
}

// CompletionPercent reports how much of the wizard is populated: each of
// the four sections counts once when it has at least one entry.
func (f *ProgramFormData) CompletionPercent() int {
	sections := 0
	if f.BasicInfo.Name != "" {
		sections++
	}
	if len(f.Rules) > 0 {
		sections++
	}
	if len(f.Tiers) > 0 {
		sections++
	}
	if len(f.Rewards) > 0 {
		sections++
	}
	return sections * 100 / 4
}

type UpdateProgramRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=255"`
	Description        *string `json:"description"`
	PointsCurrencyName *string `json:"points_currency_name"`
	IsActive           *bool   `json:"is_active"`
}

type CreateTierRequest struct {
	Name            string   `json:"name" binding:"required,max=255"`
	Description     string   `json:"description"`
	PointsThreshold int      `json:"points_threshold" binding:"min=0"`
	Benefits        []string `json:"benefits"`
}

type UpdateTierRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=255"`
	Description     *string  `json:"description"`
	PointsThreshold *int     `json:"points_threshold" binding:"omitempty,min=0"`
	Benefits        []string `json:"benefits"`
}
