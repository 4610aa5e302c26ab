// internal/cache/campaign_cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"loyaltystudio-service/internal/domain/campaign"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) (*CampaignCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCampaignCache(client), mr
}

func TestCampaignCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	_, ok := c.GetLive(ctx, "prog_1")
	assert.False(t, ok, "empty cache misses")

	campaigns := []campaign.Campaign{
		{
			ID:               "cmp_1",
			LoyaltyProgramID: "prog_1",
			Name:             "summer double points",
			Type:             campaign.TypePointsMultiplier,
			StartDate:        time.Now().Add(-time.Hour),
			Rewards:          campaign.Rewards{PointsMultiplier: 2},
			IsActive:         true,
		},
	}
	require.NoError(t, c.SetLive(ctx, "prog_1", campaigns))

	got, ok := c.GetLive(ctx, "prog_1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "cmp_1", got[0].ID)
	assert.Equal(t, 2.0, got[0].Rewards.PointsMultiplier)

	// Other programs don't share entries.
	_, ok = c.GetLive(ctx, "prog_2")
	assert.False(t, ok)
}

func TestCampaignCacheInvalidate(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLive(ctx, "prog_1", []campaign.Campaign{{ID: "cmp_1"}}))
	require.NoError(t, c.Invalidate(ctx, "prog_1"))

	_, ok := c.GetLive(ctx, "prog_1")
	assert.False(t, ok)
}

func TestCampaignCacheExpires(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLive(ctx, "prog_1", []campaign.Campaign{{ID: "cmp_1"}}))

	mr.FastForward(6 * time.Minute)

	_, ok := c.GetLive(ctx, "prog_1")
	assert.False(t, ok)
}

func TestCampaignCacheEmptyListIsAHit(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLive(ctx, "prog_1", []campaign.Campaign{}))

	got, ok := c.GetLive(ctx, "prog_1")
	assert.True(t, ok, "a cached empty list is distinct from a miss")
	assert.Empty(t, got)
}
