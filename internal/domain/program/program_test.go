// internal/domain/program/program_test.go
package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTier(t *testing.T) {
	t.Run("nil for no tiers", func(t *testing.T) {
		assert.Nil(t, DefaultTier(nil))
	})

	t.Run("lowest threshold wins", func(t *testing.T) {
		tiers := []Tier{
			{ID: "gold", PointsThreshold: 1000},
			{ID: "bronze", PointsThreshold: 0},
			{ID: "silver", PointsThreshold: 500},
		}
		def := DefaultTier(tiers)
		assert.Equal(t, "bronze", def.ID)
	})

	t.Run("first encountered wins ties", func(t *testing.T) {
		tiers := []Tier{
			{ID: "a", PointsThreshold: 0},
			{ID: "b", PointsThreshold: 0},
		}
		assert.Equal(t, "a", DefaultTier(tiers).ID)
	})
}

func TestProgramFormDataValidate(t *testing.T) {
	valid := ProgramFormData{
		BasicInfo: BasicInfo{Name: "Coffee Club"},
		Rules:     []RuleInput{{Name: "base", Type: RuleTypeFixed, Points: 10}},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ProgramFormData)
	}{
		{"missing name", func(f *ProgramFormData) { f.BasicInfo.Name = "" }},
		{"no rules", func(f *ProgramFormData) { f.Rules = nil }},
		{"unknown rule type", func(f *ProgramFormData) { f.Rules[0].Type = RuleType("DOUBLE") }},
		{"zero points", func(f *ProgramFormData) { f.Rules[0].Points = 0 }},
		{"negative tier threshold", func(f *ProgramFormData) {
			f.Tiers = []TierInput{{Name: "bad", PointsThreshold: -1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			f.Rules = append([]RuleInput(nil), valid.Rules...)
			tt.mutate(&f)
			assert.Error(t, f.Validate())
		})
	}
}

func TestCompletionPercent(t *testing.T) {
	f := ProgramFormData{}
	assert.Equal(t, 0, f.CompletionPercent())

	f.BasicInfo.Name = "Coffee Club"
	assert.Equal(t, 25, f.CompletionPercent())

	f.Rules = []RuleInput{{Name: "base", Type: RuleTypeFixed, Points: 10}}
	assert.Equal(t, 50, f.CompletionPercent())

	f.Tiers = []TierInput{{Name: "bronze"}}
	assert.Equal(t, 75, f.CompletionPercent())

	f.Rewards = []RewardInput{{Name: "mug", Type: "PHYSICAL", PointsCost: 100}}
	assert.Equal(t, 100, f.CompletionPercent())
}
