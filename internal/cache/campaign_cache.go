// internal/cache/campaign_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/campaign"

	"github.com/redis/go-redis/v9"
)

// CampaignCache keeps each program's live campaigns in Redis so the
// transaction hot path never queries Postgres. Writes invalidate; reads
// repopulate with a short TTL as a safety net against missed invalidation.
type CampaignCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCampaignCache(rdb *redis.Client) *CampaignCache {
	return &CampaignCache{rdb: rdb, ttl: 5 * time.Minute}
}

// GetLive returns the cached live campaigns, or (nil, false) on a miss.
func (c *CampaignCache) GetLive(ctx context.Context, programID string) ([]campaign.Campaign, bool) {
	val, err := c.rdb.Get(ctx, c.key(programID)).Bytes()
	if err != nil {
		return nil, false
	}

	var campaigns []campaign.Campaign
	if err := json.Unmarshal(val, &campaigns); err != nil {
		return nil, false
	}

	return campaigns, true
}

// SetLive stores the live campaign list for a program.
func (c *CampaignCache) SetLive(ctx context.Context, programID string, campaigns []campaign.Campaign) error {
	data, err := json.Marshal(campaigns)
	if err != nil {
		return fmt.Errorf("failed to marshal campaigns: %w", err)
	}

	if err := c.rdb.Set(ctx, c.key(programID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache campaigns: %w", err)
	}

	return nil
}

// Invalidate drops the cached list after any campaign write.
func (c *CampaignCache) Invalidate(ctx context.Context, programID string) error {
	return c.rdb.Del(ctx, c.key(programID)).Err()
}

func (c *CampaignCache) key(programID string) string {
	return fmt.Sprintf("campaigns:%s:live", programID)
}
