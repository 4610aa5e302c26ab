// internal/service/webhook_service.go
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/webhook"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/pkg/secrets"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/webhookq"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// WebhookService owns webhook endpoint management. Secrets are write-only
// after creation: reading one back always rotates it first.
type WebhookService struct {
	repo       *postgres.WebhookRepository
	dispatcher *webhookq.Dispatcher
	logger     *zap.Logger
}

func NewWebhookService(repo *postgres.WebhookRepository, dispatcher *webhookq.Dispatcher, logger *zap.Logger) *WebhookService {
	return &WebhookService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Create registers an endpoint with a fresh signing secret. The secret is
// returned in the response body this one time.
func (s *WebhookService) Create(ctx context.Context, merchantID string, req *webhook.CreateWebhookRequest) (*webhook.Webhook, string, error) {
	if err := validateEvents(req.Events); err != nil {
		return nil, "", xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}

	secret, err := secrets.GenerateWebhookSecret()
	if err != nil {
		return nil, "", err
	}

	w := &webhook.Webhook{
		ID:         ulid.Make().String(),
		MerchantID: merchantID,
		URL:        req.URL,
		Events:     req.Events,
		IsActive:   true,
		Secret:     secret,
	}
	if req.Description != "" {
		w.Description = sql.NullString{String: req.Description, Valid: true}
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, "", err
	}

	return w, secret, nil
}

// Get retrieves an endpoint, scoped to its owner.
func (s *WebhookService) Get(ctx context.Context, merchantID, id string) (*webhook.Webhook, error) {
	return s.findOwned(ctx, merchantID, id)
}

// List returns a merchant's endpoints.
func (s *WebhookService) List(ctx context.Context, merchantID string) ([]webhook.Webhook, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

// Update rewrites an endpoint's mutable fields. The secret is not
// updatable here; RevealSecret rotates it.
func (s *WebhookService) Update(ctx context.Context, merchantID, id string, req *webhook.UpdateWebhookRequest) (*webhook.Webhook, error) {
	w, err := s.findOwned(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		w.URL = *req.URL
	}
	if req.Description != nil {
		w.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Events != nil {
		if err := validateEvents(req.Events); err != nil {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
		}
		w.Events = req.Events
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// RevealSecret rotates the endpoint's signing secret and returns the new
// value. The old secret stops verifying immediately, so a reveal is never
// a silent read.
func (s *WebhookService) RevealSecret(ctx context.Context, merchantID, id string) (*webhook.RevealSecretResponse, error) {
	if _, err := s.findOwned(ctx, merchantID, id); err != nil {
		return nil, err
	}

	secret, err := secrets.GenerateWebhookSecret()
	if err != nil {
		return nil, err
	}

	if err := s.repo.RotateSecret(ctx, id, secret); err != nil {
		return nil, err
	}

	s.logger.Info("webhook secret rotated",
		zap.String("merchant_id", merchantID),
		zap.String("webhook_id", id),
	)

	return &webhook.RevealSecretResponse{
		Secret:    secret,
		RotatedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Delete removes an endpoint and its delivery logs.
func (s *WebhookService) Delete(ctx context.Context, merchantID, id string) error {
	if _, err := s.findOwned(ctx, merchantID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListLogs returns delivery attempts for an endpoint.
func (s *WebhookService) ListLogs(ctx context.Context, merchantID, id string, f *webhook.LogListFilters) ([]webhook.WebhookLog, int64, error) {
	if _, err := s.findOwned(ctx, merchantID, id); err != nil {
		return nil, 0, err
	}

	normalizePage(&f.Page, &f.PageSize)
	return s.repo.ListLogs(ctx, id, f)
}

// SendTest queues a synthetic event so a merchant can verify an endpoint
// end to end, signature included.
func (s *WebhookService) SendTest(ctx context.Context, merchantID, id string) error {
	w, err := s.findOwned(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if !w.IsActive {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "webhook is not active")
	}

	eventType := "*"
	if len(w.Events) > 0 && w.Events[0] != "*" {
		eventType = w.Events[0]
	}

	s.dispatcher.Publish(merchantID, eventType, map[string]string{
		"test":       "true",
		"webhook_id": id,
	})

	return nil
}

func (s *WebhookService) findOwned(ctx context.Context, merchantID, id string) (*webhook.Webhook, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.MerchantID != merchantID {
		return nil, xerrors.ErrForbidden
	}
	return w, nil
}

func validateEvents(events []string) error {
	known := make(map[string]bool, len(webhook.KnownEvents))
	for _, e := range webhook.KnownEvents {
		known[e] = true
	}

	for _, e := range events {
		if e == "*" {
			continue
		}
		if !known[e] {
			return fmt.Errorf("unknown event type %q", e)
		}
	}
	return nil
}
