// internal/domain/campaign/dto.go
package campaign

import "time"

type CreateCampaignRequest struct {
	// Populated from the route, not the body.
	LoyaltyProgramID string       `json:"-"`
	Name             string       `json:"name" binding:"required,max=255"`
	Description      string       `json:"description"`
	Type             CampaignType `json:"type" binding:"required"`

	StartDate time.Time  `json:"start_date" binding:"required"`
	EndDate   *time.Time `json:"end_date"`

	Rules         []Rule   `json:"rules"`
	TargetTierIDs []string `json:"target_tier_ids"`

	Rewards Rewards `json:"rewards"`
}

type UpdateCampaignRequest struct {
	Name        *string       `json:"name" binding:"omitempty,max=255"`
	Description *string       `json:"description"`
	Type        *CampaignType `json:"type"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	Rules         []Rule   `json:"rules"`
	TargetTierIDs []string `json:"target_tier_ids"`

	Rewards *Rewards `json:"rewards"`
}

type CampaignListFilters struct {
	Type      *CampaignType `form:"type"`
	IsActive  *bool         `form:"is_active"`
	Search    string        `form:"search"`
	Page      int           `form:"page" binding:"min=0"`
	PageSize  int           `form:"page_size" binding:"min=0,max=100"`
	SortBy    string        `form:"sort_by"` // created_at, start_date, end_date
	SortOrder string        `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type CampaignListResponse struct {
	Campaigns  []Campaign `json:"campaigns"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
