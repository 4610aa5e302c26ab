// internal/domain/merchant/dto.go
package merchant

type CreateMerchantRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	Website  string `json:"website"`
}

type UpdateMerchantRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Currency *string `json:"currency"`
	Timezone *string `json:"timezone"`
	Website  *string `json:"website"`
}

// SetupRequest is the final step of the embedded-app wizard: merchant
// creation, shop mapping, and initial settings land in one transaction.
type SetupRequest struct {
	ShopDomain string                `json:"shop_domain" binding:"required"`
	Merchant   CreateMerchantRequest `json:"merchant" binding:"required"`
	Settings   SettingsInput         `json:"settings"`
}

type SettingsInput struct {
	AutoEnrollOnOrder bool `json:"auto_enroll_on_order"`
	PointsOnOrders    bool `json:"points_on_orders"`
	WidgetEnabled     bool `json:"widget_enabled"`
}

type SetupResponse struct {
	Merchant Merchant        `json:"merchant"`
	Mapping  MerchantMapping `json:"mapping"`
	Settings ShopSettings    `json:"settings"`
}
