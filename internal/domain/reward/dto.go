// internal/domain/reward/dto.go
package reward

type CreateRewardRequest struct {
	Name            string     `json:"name" binding:"required,max=255"`
	Description     string     `json:"description" binding:"required"`
	Type            RewardType `json:"type" binding:"required"`
	PointsCost      int        `json:"points_cost" binding:"required,min=1"`
	Stock           *int32     `json:"stock" binding:"omitempty,min=0"`
	ValidityPeriod  *int32     `json:"validity_period" binding:"omitempty,min=1"`
	RedemptionLimit *int32     `json:"redemption_limit" binding:"omitempty,min=1"`
}

type UpdateRewardRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=255"`
	Description     *string `json:"description"`
	PointsCost      *int    `json:"points_cost" binding:"omitempty,min=1"`
	Stock           *int32  `json:"stock" binding:"omitempty,min=0"`
	ValidityPeriod  *int32  `json:"validity_period" binding:"omitempty,min=1"`
	RedemptionLimit *int32  `json:"redemption_limit" binding:"omitempty,min=1"`
	IsActive        *bool   `json:"is_active"`
}
