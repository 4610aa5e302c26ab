// internal/service/transaction_service_test.go
package service

import (
	"database/sql"
	"testing"

	"loyaltystudio-service/internal/domain/campaign"
	"loyaltystudio-service/internal/domain/program"
	"loyaltystudio-service/internal/domain/rules"
	"loyaltystudio-service/internal/domain/transaction"

	"github.com/stretchr/testify/assert"
)

func TestBasePoints(t *testing.T) {
	earningRules := []program.EarningRule{
		{Name: "flat", Type: program.RuleTypeFixed, Points: 10, IsActive: true},
		{Name: "percent", Type: program.RuleTypePercentage, Points: 5, IsActive: true},
		{Name: "retired", Type: program.RuleTypeFixed, Points: 100, IsActive: false},
	}

	tests := []struct {
		name        string
		orderAmount float64
		want        int
	}{
		{"flat plus percentage", 200, 20},  // 10 + floor(200*5/100)
		{"fractional floors down", 150, 17}, // 10 + floor(7.5)
		{"zero order still earns flat", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, basePoints(earningRules, tt.orderAmount))
		})
	}

	t.Run("no rules means no points", func(t *testing.T) {
		assert.Equal(t, 0, basePoints(nil, 500))
	})
}

func TestApplyGraphConfig(t *testing.T) {
	cfg := &rules.EarningConfig{
		BasePoints:          5,
		BaseMinAmount:       10,
		CategoryMultipliers: map[string]float64{"electronics": 2, "grocery": 1},
		MinimumPurchase:     20,
		MaximumPoints:       100,
	}

	tests := []struct {
		name   string
		points int
		req    *transaction.EarnRequest
		want   int
	}{
		{
			name:   "below minimum purchase earns nothing",
			points: 50,
			req:    &transaction.EarnRequest{OrderAmount: 15},
			want:   0,
		},
		{
			name:   "graph base added above its min amount",
			points: 10,
			req:    &transaction.EarnRequest{OrderAmount: 30},
			want:   15,
		},
		{
			name:   "category multiplier applies",
			points: 10,
			req:    &transaction.EarnRequest{OrderAmount: 30, Category: "electronics"},
			want:   30, // (10+5)*2
		},
		{
			name:   "multiplier of one is a no-op",
			points: 10,
			req:    &transaction.EarnRequest{OrderAmount: 30, Category: "grocery"},
			want:   15,
		},
		{
			name:   "unknown category ignored",
			points: 10,
			req:    &transaction.EarnRequest{OrderAmount: 30, Category: "books"},
			want:   15,
		},
		{
			name:   "cap clamps the total",
			points: 200,
			req:    &transaction.EarnRequest{OrderAmount: 30},
			want:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyGraphConfig(cfg, tt.points, tt.req))
		})
	}

	t.Run("empty config passes points through", func(t *testing.T) {
		assert.Equal(t, 42, applyGraphConfig(&rules.EarningConfig{}, 42, &transaction.EarnRequest{OrderAmount: 1}))
	})
}

func TestApplyCampaigns(t *testing.T) {
	noTier := sql.NullString{}
	goldTier := sql.NullString{String: "tier_gold", Valid: true}

	double := campaign.Campaign{
		Type:    campaign.TypePointsMultiplier,
		Rewards: campaign.Rewards{PointsMultiplier: 2},
	}
	halfExtra := campaign.Campaign{
		Type:    campaign.TypePointsMultiplier,
		Rewards: campaign.Rewards{PointsMultiplier: 1.5},
	}
	bonus := campaign.Campaign{
		Type:    campaign.TypeBonusPoints,
		Rewards: campaign.Rewards{BonusPoints: 25},
	}
	goldOnly := campaign.Campaign{
		Type:          campaign.TypeBonusPoints,
		TargetTierIDs: []string{"tier_gold"},
		Rewards:       campaign.Rewards{BonusPoints: 100},
	}

	tests := []struct {
		name      string
		campaigns []campaign.Campaign
		points    int
		tierID    sql.NullString
		want      int
	}{
		{"no campaigns", nil, 10, noTier, 10},
		{"single multiplier", []campaign.Campaign{double}, 10, noTier, 20},
		{"multipliers compound", []campaign.Campaign{double, halfExtra}, 10, noTier, 30},
		{"bonus adds after multiplier", []campaign.Campaign{double, bonus}, 10, noTier, 45},
		{"tier-targeted skipped without tier", []campaign.Campaign{goldOnly}, 10, noTier, 10},
		{"tier-targeted applies to matching tier", []campaign.Campaign{goldOnly}, 10, goldTier, 110},
		{"fractional result floors", []campaign.Campaign{halfExtra}, 5, noTier, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyCampaigns(tt.campaigns, tt.points, tt.tierID))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	page, pageSize := 0, 0
	normalizePage(&page, &pageSize)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	page, pageSize = 3, 50
	normalizePage(&page, &pageSize)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(1, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
}
