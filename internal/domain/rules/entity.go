// internal/domain/rules/entity.go
package rules

import (
	"database/sql"
	"fmt"
	"time"
)

type ConditionType string

const (
	ConditionCartValue          ConditionType = "cartValue"
	ConditionLoyaltyTier        ConditionType = "loyaltyTier"
	ConditionPurchaseCategory   ConditionType = "purchaseCategory"
	ConditionTransactionChannel ConditionType = "transactionChannel"
	ConditionPurchaseCount      ConditionType = "purchaseCount"
	ConditionDayOfWeek          ConditionType = "dayOfWeek"
	ConditionTimeOfDay          ConditionType = "timeOfDay"
)

type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorLessThan    Operator = "lessThan"
	OperatorContains    Operator = "contains"
	OperatorIn          Operator = "in"
)

type EffectType string

const (
	EffectAddPoints     EffectType = "addPoints"
	EffectApplyDiscount EffectType = "applyDiscount"
	EffectGiveReward    EffectType = "giveReward"
	EffectUpgradeTier   EffectType = "upgradeTier"
)

// Condition is one clause in the implicit AND-chain of a rule.
// For loyaltyTier conditions the canonical reference is TierID; Value
// carries the tier name for display.
type Condition struct {
	Type     ConditionType `json:"type"`
	Operator Operator      `json:"operator"`
	Value    string        `json:"value"`
	TierID   string        `json:"tierId,omitempty"`
}

// Effect is one outcome of a matched rule. GiveReward carries RewardID,
// upgradeTier carries TierID; Value stays the display string.
type Effect struct {
	Type     EffectType `json:"type"`
	Value    string     `json:"value"`
	Formula  string     `json:"formula,omitempty"`
	RewardID string     `json:"rewardId,omitempty"`
	TierID   string     `json:"tierId,omitempty"`
}

type EnhancedRule struct {
	ID               string         `json:"id" db:"id"`
	LoyaltyProgramID string         `json:"loyalty_program_id" db:"loyalty_program_id"`
	Name             string         `json:"name" db:"name"`
	Description      sql.NullString `json:"description,omitempty" db:"description"`
	IsActive         bool           `json:"is_active" db:"is_active"`
	Position         int            `json:"position" db:"position"`
	Conditions       []Condition    `json:"conditions" db:"conditions"`
	Effects          []Effect       `json:"effects" db:"effects"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

var allOperators = []Operator{
	OperatorEquals, OperatorGreaterThan, OperatorLessThan, OperatorContains, OperatorIn,
}

// OperatorsFor returns the operators a condition type admits, first entry
// being the default a type switch must reset to.
func OperatorsFor(t ConditionType) []Operator {
	switch t {
	case ConditionLoyaltyTier:
		return []Operator{OperatorEquals, OperatorIn}
	case ConditionPurchaseCategory:
		return []Operator{OperatorEquals, OperatorContains}
	case ConditionDayOfWeek, ConditionTimeOfDay:
		return []Operator{OperatorEquals}
	default:
		return allOperators
	}
}

// OperatorAllowed reports whether op is valid for the condition type.
func OperatorAllowed(t ConditionType, op Operator) bool {
	for _, allowed := range OperatorsFor(t) {
		if op == allowed {
			return true
		}
	}
	return false
}

// DefaultOperator is the operator a condition falls back to when its type
// changes and the previous operator is no longer valid.
func DefaultOperator(t ConditionType) Operator {
	return OperatorsFor(t)[0]
}

// NormalizeCondition resets an operator invalidated by a type change.
func NormalizeCondition(c Condition) Condition {
	if !OperatorAllowed(c.Type, c.Operator) {
		c.Operator = DefaultOperator(c.Type)
	}
	return c
}

// Validate checks the rule invariants: non-empty condition and effect
// lists, per-type operator constraints, and required entity references.
func (r *EnhancedRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("rule %q: at least one condition is required", r.Name)
	}
	if len(r.Effects) == 0 {
		return fmt.Errorf("rule %q: at least one effect is required", r.Name)
	}

	for i, c := range r.Conditions {
		if err := validateCondition(c); err != nil {
			return fmt.Errorf("rule %q condition %d: %w", r.Name, i, err)
		}
	}
	for i, e := range r.Effects {
		if err := validateEffect(e); err != nil {
			return fmt.Errorf("rule %q effect %d: %w", r.Name, i, err)
		}
	}

	return nil
}

func validateCondition(c Condition) error {
	switch c.Type {
	case ConditionCartValue, ConditionLoyaltyTier, ConditionPurchaseCategory,
		ConditionTransactionChannel, ConditionPurchaseCount,
		ConditionDayOfWeek, ConditionTimeOfDay:
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}

	if !OperatorAllowed(c.Type, c.Operator) {
		return fmt.Errorf("operator %q not allowed for condition type %q", c.Operator, c.Type)
	}
	if c.Type == ConditionLoyaltyTier && c.TierID == "" {
		return fmt.Errorf("loyalty tier condition requires a tier id")
	}
	if c.Value == "" {
		return fmt.Errorf("condition value is required")
	}

	return nil
}

func validateEffect(e Effect) error {
	switch e.Type {
	case EffectAddPoints, EffectApplyDiscount:
		if e.Value == "" {
			return fmt.Errorf("effect value is required")
		}
	case EffectGiveReward:
		if e.RewardID == "" {
			return fmt.Errorf("give reward effect requires a reward id")
		}
	case EffectUpgradeTier:
		if e.TierID == "" {
			return fmt.Errorf("upgrade tier effect requires a tier id")
		}
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}

	return nil
}
