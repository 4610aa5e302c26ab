// internal/service/apikey_service.go
package service

import (
	"context"
	"database/sql"
	"time"

	"loyaltystudio-service/internal/domain/apikey"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/pkg/secrets"
	"loyaltystudio-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// APIKeyService owns API key lifecycle. The raw key exists in memory for
// the duration of one Create call; afterwards only the bcrypt hash and
// the redacted prefix remain.
type APIKeyService struct {
	repo   *postgres.APIKeyRepository
	logger *zap.Logger
}

func NewAPIKeyService(repo *postgres.APIKeyRepository, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{repo: repo, logger: logger}
}

// Create mints a new key and returns the raw secret exactly once.
func (s *APIKeyService) Create(ctx context.Context, merchantID string, req *apikey.CreateAPIKeyRequest) (*apikey.CreateAPIKeyResponse, error) {
	raw, prefix, err := secrets.GenerateAPIKey(string(req.Environment))
	if err != nil {
		return nil, err
	}

	hash, err := secrets.HashKey(raw)
	if err != nil {
		return nil, err
	}

	k := &apikey.APIKey{
		ID:          ulid.Make().String(),
		MerchantID:  merchantID,
		Name:        req.Name,
		KeyPrefix:   prefix,
		KeyHash:     hash,
		Environment: req.Environment,
		Permissions: req.Permissions,
		IsActive:    true,
	}
	if len(k.Permissions) == 0 {
		k.Permissions = []string{"read", "write"}
	}
	if req.ExpiresAt != nil {
		k.ExpiresAt = sql.NullTime{Time: *req.ExpiresAt, Valid: true}
	}

	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}

	s.logger.Info("api key created",
		zap.String("merchant_id", merchantID),
		zap.String("key_id", k.ID),
		zap.String("environment", string(k.Environment)),
	)

	return &apikey.CreateAPIKeyResponse{Key: *k, RawKey: raw}, nil
}

// List returns a merchant's keys. Only redacted prefixes leave this layer.
func (s *APIKeyService) List(ctx context.Context, merchantID string) ([]apikey.APIKey, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

// Revoke permanently deactivates a key.
func (s *APIKeyService) Revoke(ctx context.Context, merchantID, keyID string) error {
	k, err := s.repo.FindByID(ctx, keyID)
	if err != nil {
		return err
	}
	if k.MerchantID != merchantID {
		return xerrors.ErrForbidden
	}

	if err := s.repo.Revoke(ctx, keyID); err != nil {
		return err
	}

	s.logger.Info("api key revoked",
		zap.String("merchant_id", merchantID),
		zap.String("key_id", keyID),
	)

	return nil
}

// Verify resolves a raw key to its active record. The stored redacted
// prefix narrows the candidates; bcrypt settles the match. A raw key
// that looks like a stored prefix (ends in "...") is rejected outright,
// because a redacted value is display data, never a credential.
func (s *APIKeyService) Verify(ctx context.Context, merchantID, rawKey string) (*apikey.APIKey, error) {
	if secrets.LooksRedacted(rawKey) {
		return nil, xerrors.ErrUnauthorized
	}

	candidates, err := s.repo.FindCandidates(ctx, merchantID, secrets.Redact(rawKey))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range candidates {
		k := &candidates[i]
		if k.Expired(now) {
			continue
		}
		if secrets.CompareKey(k.KeyHash, rawKey) {
			go s.repo.TouchLastUsed(context.Background(), k.ID)
			return k, nil
		}
	}

	return nil, xerrors.ErrUnauthorized
}
