// internal/repository/postgres/merchant_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/merchant"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MerchantRepository struct {
	db *pgxpool.Pool
}

func NewMerchantRepository(db *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// CreateTx inserts a merchant inside a setup transaction.
func (r *MerchantRepository) CreateTx(ctx context.Context, tx pgx.Tx, m *merchant.Merchant) error {
	query := `
		INSERT INTO merchants (id, name, email, currency, timezone, website, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		m.ID, m.Name, m.Email, m.Currency, m.Timezone, m.Website, m.IsActive,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}

	return nil
}

// CreateMappingTx inserts a shop mapping inside a setup transaction.
func (r *MerchantRepository) CreateMappingTx(ctx context.Context, tx pgx.Tx, mm *merchant.MerchantMapping) error {
	query := `
		INSERT INTO merchant_mappings (id, shop_domain, merchant_id, platform, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query, mm.ID, mm.ShopDomain, mm.MerchantID, mm.Platform, mm.IsActive).
		Scan(&mm.CreatedAt, &mm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create merchant mapping: %w", err)
	}

	return nil
}

// UpsertSettingsTx writes the platform settings row.
func (r *MerchantRepository) UpsertSettingsTx(ctx context.Context, tx pgx.Tx, s *merchant.ShopSettings) error {
	query := `
		INSERT INTO shop_settings (merchant_id, auto_enroll_on_order, points_on_orders, widget_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (merchant_id)
		DO UPDATE SET auto_enroll_on_order = EXCLUDED.auto_enroll_on_order,
		              points_on_orders = EXCLUDED.points_on_orders,
		              widget_enabled = EXCLUDED.widget_enabled,
		              updated_at = EXCLUDED.updated_at
	`

	s.UpdatedAt = time.Now()
	if _, err := tx.Exec(ctx, query, s.MerchantID, s.AutoEnrollOnOrder, s.PointsOnOrders, s.WidgetEnabled, s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert shop settings: %w", err)
	}

	return nil
}

// FindByID retrieves a merchant.
func (r *MerchantRepository) FindByID(ctx context.Context, id string) (*merchant.Merchant, error) {
	query := `
		SELECT id, name, email, currency, timezone, website, is_active, created_at, updated_at
		FROM merchants
		WHERE id = $1
	`

	var m merchant.Merchant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Email, &m.Currency, &m.Timezone, &m.Website,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find merchant: %w", err)
	}

	return &m, nil
}

// FindMappingByShopDomain looks up the mapping for a shop. Absence is a
// normal pre-onboarding state, signalled with ErrNotFound.
func (r *MerchantRepository) FindMappingByShopDomain(ctx context.Context, shopDomain string) (*merchant.MerchantMapping, error) {
	query := `
		SELECT id, shop_domain, merchant_id, platform, is_active, created_at, updated_at
		FROM merchant_mappings
		WHERE shop_domain = $1
	`

	var mm merchant.MerchantMapping
	err := r.db.QueryRow(ctx, query, shopDomain).Scan(
		&mm.ID, &mm.ShopDomain, &mm.MerchantID, &mm.Platform, &mm.IsActive,
		&mm.CreatedAt, &mm.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find merchant mapping: %w", err)
	}

	return &mm, nil
}

// FindSettings retrieves the platform settings for a merchant.
func (r *MerchantRepository) FindSettings(ctx context.Context, merchantID string) (*merchant.ShopSettings, error) {
	query := `
		SELECT merchant_id, auto_enroll_on_order, points_on_orders, widget_enabled, updated_at
		FROM shop_settings
		WHERE merchant_id = $1
	`

	var s merchant.ShopSettings
	err := r.db.QueryRow(ctx, query, merchantID).Scan(
		&s.MerchantID, &s.AutoEnrollOnOrder, &s.PointsOnOrders, &s.WidgetEnabled, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shop settings: %w", err)
	}

	return &s, nil
}

// Update rewrites a merchant's mutable fields.
func (r *MerchantRepository) Update(ctx context.Context, m *merchant.Merchant) error {
	query := `
		UPDATE merchants
		SET name = $1, email = $2, currency = $3, timezone = $4, website = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(ctx, query,
		m.Name, m.Email, m.Currency, m.Timezone, m.Website, time.Now(), m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update merchant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// DeactivateMapping marks a shop mapping inactive on app uninstall.
func (r *MerchantRepository) DeactivateMapping(ctx context.Context, shopDomain string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE merchant_mappings SET is_active = FALSE, updated_at = $1 WHERE shop_domain = $2`,
		time.Now(), shopDomain,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate mapping: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
