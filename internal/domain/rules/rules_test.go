// internal/domain/rules/rules_test.go
package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorsFor(t *testing.T) {
	tests := []struct {
		ctype ConditionType
		want  []Operator
	}{
		{ConditionLoyaltyTier, []Operator{OperatorEquals, OperatorIn}},
		{ConditionPurchaseCategory, []Operator{OperatorEquals, OperatorContains}},
		{ConditionDayOfWeek, []Operator{OperatorEquals}},
		{ConditionTimeOfDay, []Operator{OperatorEquals}},
		{ConditionCartValue, allOperators},
		{ConditionPurchaseCount, allOperators},
	}

	for _, tt := range tests {
		t.Run(string(tt.ctype), func(t *testing.T) {
			assert.Equal(t, tt.want, OperatorsFor(tt.ctype))
		})
	}
}

func TestNormalizeCondition(t *testing.T) {
	t.Run("invalid operator resets to type default", func(t *testing.T) {
		c := NormalizeCondition(Condition{
			Type:     ConditionLoyaltyTier,
			Operator: OperatorGreaterThan,
			Value:    "Gold",
			TierID:   "tier_1",
		})
		assert.Equal(t, OperatorEquals, c.Operator)
	})

	t.Run("valid operator is kept", func(t *testing.T) {
		c := NormalizeCondition(Condition{
			Type:     ConditionCartValue,
			Operator: OperatorLessThan,
			Value:    "50",
		})
		assert.Equal(t, OperatorLessThan, c.Operator)
	})
}

func TestEnhancedRuleValidate(t *testing.T) {
	valid := EnhancedRule{
		Name: "weekend double",
		Conditions: []Condition{
			{Type: ConditionDayOfWeek, Operator: OperatorEquals, Value: "saturday"},
		},
		Effects: []Effect{
			{Type: EffectAddPoints, Value: "100"},
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*EnhancedRule)
	}{
		{"missing name", func(r *EnhancedRule) { r.Name = "" }},
		{"no conditions", func(r *EnhancedRule) { r.Conditions = nil }},
		{"no effects", func(r *EnhancedRule) { r.Effects = nil }},
		{"unknown condition type", func(r *EnhancedRule) {
			r.Conditions[0].Type = ConditionType("weather")
		}},
		{"operator not allowed for type", func(r *EnhancedRule) {
			r.Conditions[0].Operator = OperatorContains
		}},
		{"tier condition without tier id", func(r *EnhancedRule) {
			r.Conditions[0] = Condition{Type: ConditionLoyaltyTier, Operator: OperatorEquals, Value: "Gold"}
		}},
		{"empty condition value", func(r *EnhancedRule) { r.Conditions[0].Value = "" }},
		{"add points without value", func(r *EnhancedRule) { r.Effects[0].Value = "" }},
		{"give reward without reward id", func(r *EnhancedRule) {
			r.Effects[0] = Effect{Type: EffectGiveReward}
		}},
		{"upgrade tier without tier id", func(r *EnhancedRule) {
			r.Effects[0] = Effect{Type: EffectUpgradeTier}
		}},
		{"unknown effect type", func(r *EnhancedRule) {
			r.Effects[0] = Effect{Type: EffectType("sendEmail"), Value: "x"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			r.Conditions = append([]Condition(nil), valid.Conditions...)
			r.Effects = append([]Effect(nil), valid.Effects...)
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestGraphValidate(t *testing.T) {
	base := Graph{
		Nodes: []Node{
			{ID: "n1", Kind: NodeBasePoints, Config: NodeConfig{Points: 1}},
			{ID: "n2", Kind: NodeCategoryMultiplier, Config: NodeConfig{Multiplier: 2, Category: "electronics"}},
		},
		Edges: []Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	}
	require.NoError(t, base.Validate())

	t.Run("duplicate node id", func(t *testing.T) {
		g := base
		g.Nodes = append(g.Nodes, Node{ID: "n1", Kind: NodeMaximumPoints})
		assert.Error(t, g.Validate())
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		g := base
		g.Edges = []Edge{{ID: "e1", Source: "n1", Target: "ghost"}}
		assert.Error(t, g.Validate())
	})

	t.Run("multiplier below one", func(t *testing.T) {
		g := base
		g.Nodes = []Node{{ID: "n1", Kind: NodeCategoryMultiplier, Config: NodeConfig{Multiplier: 0.5, Category: "x"}}}
		g.Edges = nil
		assert.Error(t, g.Validate())
	})

	t.Run("unknown node kind", func(t *testing.T) {
		g := base
		g.Nodes = []Node{{ID: "n1", Kind: NodeKind("teleport")}}
		g.Edges = nil
		assert.Error(t, g.Validate())
	})
}

func TestGraphExport(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "n1", Kind: NodeBasePoints, Config: NodeConfig{Points: 2, MinAmount: 10}},
			{ID: "n2", Kind: NodeCategoryMultiplier, Config: NodeConfig{Multiplier: 3, Category: "books"}},
			{ID: "n3", Kind: NodeCategoryMultiplier, Config: NodeConfig{Multiplier: 1.5, Category: "food"}},
			{ID: "n4", Kind: NodeMinimumPurchase, Config: NodeConfig{MinAmount: 5}},
			{ID: "n5", Kind: NodeMaximumPoints, Config: NodeConfig{MaxPoints: 500}},
		},
	}

	cfg := g.Export()
	assert.Equal(t, 2, cfg.BasePoints)
	assert.Equal(t, 10.0, cfg.BaseMinAmount)
	assert.Equal(t, map[string]float64{"books": 3, "food": 1.5}, cfg.CategoryMultipliers)
	assert.Equal(t, 5.0, cfg.MinimumPurchase)
	assert.Equal(t, 500, cfg.MaximumPoints)
}

func TestGraphExportLaterNodeWins(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "n1", Kind: NodeBasePoints, Config: NodeConfig{Points: 1}},
			{ID: "n2", Kind: NodeBasePoints, Config: NodeConfig{Points: 5}},
		},
	}
	assert.Equal(t, 5, g.Export().BasePoints)
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, NodeConfig{Points: 1}, DefaultConfig(NodeBasePoints))
	assert.Equal(t, NodeConfig{Multiplier: 1, Category: "default"}, DefaultConfig(NodeCategoryMultiplier))
	assert.Equal(t, NodeConfig{}, DefaultConfig(NodeKind("bogus")))
}
