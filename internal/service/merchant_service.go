// internal/service/merchant_service.go
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/merchant"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/pkg/session"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/shopify"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// MerchantService owns merchant onboarding. Setup writes the merchant,
// the shop mapping, and the initial settings in one transaction so a
// merchant can never exist without its mapping.
type MerchantService struct {
	db          *postgres.DB
	repo        *postgres.MerchantRepository
	sessions    *session.Manager
	shop        *shopify.Client
	callbackURL string
	logger      *zap.Logger
}

func NewMerchantService(
	db *postgres.DB,
	repo *postgres.MerchantRepository,
	sessions *session.Manager,
	shop *shopify.Client,
	callbackURL string,
	logger *zap.Logger,
) *MerchantService {
	return &MerchantService{
		db:          db,
		repo:        repo,
		sessions:    sessions,
		shop:        shop,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// Setup onboards a shop. A shop domain that is already mapped is a
// conflict; partial onboarding cannot happen because everything lands in
// a single transaction.
func (s *MerchantService) Setup(ctx context.Context, req *merchant.SetupRequest) (*merchant.SetupResponse, error) {
	if _, err := s.repo.FindMappingByShopDomain(ctx, req.ShopDomain); err == nil {
		return nil, xerrors.Wrap(xerrors.ErrConflict, "shop is already set up")
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	currency := req.Merchant.Currency
	timezone := req.Merchant.Timezone
	if currency == "" || timezone == "" {
		// Fill wizard gaps from the shop itself when we can reach it.
		if info, err := s.shop.GetShopInfo(ctx, req.ShopDomain); err == nil {
			currency = defaultString(currency, info.CurrencyCode)
			timezone = defaultString(timezone, info.IanaTimezone)
		}
	}

	m := &merchant.Merchant{
		ID:       ulid.Make().String(),
		Name:     req.Merchant.Name,
		Email:    req.Merchant.Email,
		Currency: defaultString(currency, "USD"),
		Timezone: defaultString(timezone, "UTC"),
		IsActive: true,
	}
	if req.Merchant.Website != "" {
		m.Website = sql.NullString{String: req.Merchant.Website, Valid: true}
	}

	mapping := &merchant.MerchantMapping{
		ID:         ulid.Make().String(),
		ShopDomain: req.ShopDomain,
		MerchantID: m.ID,
		Platform:   "shopify",
		IsActive:   true,
	}

	settings := &merchant.ShopSettings{
		MerchantID:        m.ID,
		AutoEnrollOnOrder: req.Settings.AutoEnrollOnOrder,
		PointsOnOrders:    req.Settings.PointsOnOrders,
		WidgetEnabled:     req.Settings.WidgetEnabled,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin setup transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CreateTx(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMappingTx(ctx, tx, mapping); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertSettingsTx(ctx, tx, settings); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit setup transaction: %w", err)
	}

	s.logger.Info("merchant setup complete",
		zap.String("merchant_id", m.ID),
		zap.String("shop_domain", req.ShopDomain),
	)

	// Webhook registration is not part of the transaction; Shopify being
	// unreachable must not undo onboarding. Missing subscriptions just mean
	// no order events until re-registration.
	go s.registerShopWebhooks(req.ShopDomain)

	return &merchant.SetupResponse{Merchant: *m, Mapping: *mapping, Settings: *settings}, nil
}

func (s *MerchantService) registerShopWebhooks(shopDomain string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topics := []string{
		"ORDERS_CREATE", "ORDERS_UPDATED", "ORDERS_CANCELLED",
		"CUSTOMERS_CREATE", "CUSTOMERS_UPDATE", "APP_UNINSTALLED",
	}
	for _, topic := range topics {
		id, err := s.shop.RegisterWebhook(ctx, shopDomain, topic, s.callbackURL)
		if err != nil {
			s.logger.Error("failed to register shopify webhook",
				zap.String("shop_domain", shopDomain),
				zap.String("topic", topic),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("shopify webhook registered",
			zap.String("shop_domain", shopDomain),
			zap.String("topic", topic),
			zap.String("subscription_id", id),
		)
	}
}

// Get retrieves a merchant.
func (s *MerchantService) Get(ctx context.Context, id string) (*merchant.Merchant, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByShopDomain resolves a shop domain to its merchant. Used by the
// embedded-app routes, where requests carry the shop, not the merchant.
func (s *MerchantService) GetByShopDomain(ctx context.Context, shopDomain string) (*merchant.Merchant, error) {
	mapping, err := s.repo.FindMappingByShopDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if !mapping.IsActive {
		return nil, xerrors.ErrNotFound
	}
	return s.repo.FindByID(ctx, mapping.MerchantID)
}

// Update rewrites a merchant's mutable fields.
func (s *MerchantService) Update(ctx context.Context, id string, req *merchant.UpdateMerchantRequest) (*merchant.Merchant, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Email != nil {
		m.Email = *req.Email
	}
	if req.Currency != nil {
		m.Currency = *req.Currency
	}
	if req.Timezone != nil {
		m.Timezone = *req.Timezone
	}
	if req.Website != nil {
		m.Website = sql.NullString{String: *req.Website, Valid: *req.Website != ""}
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// GetSettings retrieves the shop settings for a merchant.
func (s *MerchantService) GetSettings(ctx context.Context, merchantID string) (*merchant.ShopSettings, error) {
	return s.repo.FindSettings(ctx, merchantID)
}

// UpdateSettings replaces the shop settings.
func (s *MerchantService) UpdateSettings(ctx context.Context, merchantID string, in *merchant.SettingsInput) (*merchant.ShopSettings, error) {
	settings := &merchant.ShopSettings{
		MerchantID:        merchantID,
		AutoEnrollOnOrder: in.AutoEnrollOnOrder,
		PointsOnOrders:    in.PointsOnOrders,
		WidgetEnabled:     in.WidgetEnabled,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.UpsertSettingsTx(ctx, tx, settings); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit settings: %w", err)
	}

	return settings, nil
}

// HandleUninstall deactivates the shop mapping and kills every live
// dashboard session for the merchant.
func (s *MerchantService) HandleUninstall(ctx context.Context, shopDomain string) error {
	mapping, err := s.repo.FindMappingByShopDomain(ctx, shopDomain)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			// Uninstall for a shop we never onboarded; nothing to do.
			return nil
		}
		return err
	}

	if err := s.repo.DeactivateMapping(ctx, shopDomain); err != nil {
		return err
	}

	revoked, err := s.sessions.RevokeAllSessions(ctx, mapping.MerchantID)
	if err != nil {
		s.logger.Error("failed to revoke sessions on uninstall",
			zap.String("merchant_id", mapping.MerchantID),
			zap.Error(err),
		)
	}

	s.logger.Info("app uninstalled",
		zap.String("shop_domain", shopDomain),
		zap.String("merchant_id", mapping.MerchantID),
		zap.Int64("sessions_revoked", revoked),
	)

	return nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
