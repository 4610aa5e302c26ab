// internal/domain/campaign/validation_test.go
package campaign

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRewards(t *testing.T) {
	tests := []struct {
		name    string
		ctype   CampaignType
		in      Rewards
		want    Rewards
		wantErr bool
	}{
		{
			name:  "multiplier keeps only multiplier",
			ctype: TypePointsMultiplier,
			in:    Rewards{PointsMultiplier: 2, BonusPoints: 500, RewardID: "rw_1"},
			want:  Rewards{PointsMultiplier: 2},
		},
		{
			name:  "bonus points keeps only bonus",
			ctype: TypeBonusPoints,
			in:    Rewards{PointsMultiplier: 3, BonusPoints: 100},
			want:  Rewards{BonusPoints: 100},
		},
		{
			name:  "special reward keeps only reward id",
			ctype: TypeSpecialReward,
			in:    Rewards{BonusPoints: 50, RewardID: "rw_9"},
			want:  Rewards{RewardID: "rw_9"},
		},
		{
			name:    "multiplier below one rejected",
			ctype:   TypePointsMultiplier,
			in:      Rewards{PointsMultiplier: 0.5},
			wantErr: true,
		},
		{
			name:    "zero bonus rejected",
			ctype:   TypeBonusPoints,
			in:      Rewards{BonusPoints: 0},
			wantErr: true,
		},
		{
			name:    "special reward without id rejected",
			ctype:   TypeSpecialReward,
			in:      Rewards{BonusPoints: 10},
			wantErr: true,
		},
		{
			name:    "unknown type rejected",
			ctype:   CampaignType("FLASH_SALE"),
			in:      Rewards{BonusPoints: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRewards(tt.ctype, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{
			name: "valid points threshold",
			rule: Rule{Name: "gold gate", Type: RuleTypePointsThreshold, Threshold: 1000},
		},
		{
			name: "valid purchase history",
			rule: Rule{Name: "regulars", Type: RuleTypePurchaseHistory, MinPurchases: 3, TimeframeDays: 30},
		},
		{
			name: "valid segment membership",
			rule: Rule{Name: "vip list", Type: RuleTypeSegmentMembership, SegmentID: "seg_1"},
		},
		{
			name:    "missing name",
			rule:    Rule{Type: RuleTypePointsThreshold, Threshold: 100},
			wantErr: true,
		},
		{
			name:    "threshold rule with zero threshold",
			rule:    Rule{Name: "bad", Type: RuleTypePointsThreshold},
			wantErr: true,
		},
		{
			name:    "threshold rule with foreign fields",
			rule:    Rule{Name: "leaky", Type: RuleTypePointsThreshold, Threshold: 100, SegmentID: "seg_1"},
			wantErr: true,
		},
		{
			name:    "purchase history missing timeframe",
			rule:    Rule{Name: "bad", Type: RuleTypePurchaseHistory, MinPurchases: 3},
			wantErr: true,
		},
		{
			name:    "segment rule with threshold leftover",
			rule:    Rule{Name: "leaky", Type: RuleTypeSegmentMembership, SegmentID: "seg_1", Threshold: 5},
			wantErr: true,
		},
		{
			name:    "unknown rule type",
			rule:    Rule{Name: "odd", Type: RuleType("BIRTHDAY")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDates(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	after := start.Add(24 * time.Hour)

	assert.NoError(t, ValidateDates(start, nil))
	assert.NoError(t, ValidateDates(start, &after))
	assert.Error(t, ValidateDates(time.Time{}, nil))
	assert.Error(t, ValidateDates(start, &before))
	assert.Error(t, ValidateDates(start, &start), "end equal to start is invalid")
}

func TestCampaignLive(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	base := Campaign{
		IsActive:  true,
		StartDate: now.Add(-time.Hour),
	}

	t.Run("active open-ended campaign is live", func(t *testing.T) {
		c := base
		assert.True(t, c.Live(now))
	})

	t.Run("inactive campaign is not live", func(t *testing.T) {
		c := base
		c.IsActive = false
		assert.False(t, c.Live(now))
	})

	t.Run("not yet started", func(t *testing.T) {
		c := base
		c.StartDate = now.Add(time.Hour)
		assert.False(t, c.Live(now))
	})

	t.Run("expired", func(t *testing.T) {
		c := base
		c.EndDate = sql.NullTime{Time: now.Add(-time.Minute), Valid: true}
		assert.True(t, c.Expired(now))
		assert.False(t, c.Live(now))
	})

	t.Run("end date in the future", func(t *testing.T) {
		c := base
		c.EndDate = sql.NullTime{Time: now.Add(time.Hour), Valid: true}
		assert.True(t, c.Live(now))
	})
}
