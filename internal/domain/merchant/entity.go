// internal/domain/merchant/entity.go
package merchant

import (
	"database/sql"
	"time"
)

type Merchant struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	Currency  string         `json:"currency" db:"currency"`
	Timezone  string         `json:"timezone" db:"timezone"`
	Website   sql.NullString `json:"website,omitempty" db:"website"`
	IsActive  bool           `json:"is_active" db:"is_active"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// MerchantMapping links an external shop (keyed by domain) to a merchant.
// A missing mapping for a shop is a normal pre-onboarding state.
type MerchantMapping struct {
	ID         string    `json:"id" db:"id"`
	ShopDomain string    `json:"shop_domain" db:"shop_domain"`
	MerchantID string    `json:"merchant_id" db:"merchant_id"`
	Platform   string    `json:"platform" db:"platform"` // shopify
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ShopSettings holds the platform-specific settings written during setup.
type ShopSettings struct {
	MerchantID        string    `json:"merchant_id" db:"merchant_id"`
	AutoEnrollOnOrder bool      `json:"auto_enroll_on_order" db:"auto_enroll_on_order"`
	PointsOnOrders    bool      `json:"points_on_orders" db:"points_on_orders"`
	WidgetEnabled     bool      `json:"widget_enabled" db:"widget_enabled"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
