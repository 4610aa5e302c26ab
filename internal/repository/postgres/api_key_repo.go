// internal/repository/postgres/api_key_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltystudio-service/internal/domain/apikey"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type APIKeyRepository struct {
	db *pgxpool.Pool
}

func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

const apiKeyColumns = `
	id, merchant_id, name, key_prefix, key_hash, environment, permissions,
	is_active, created_at, expires_at, last_used_at
`

// Create inserts a key record. Only the prefix and hash are stored; the
// raw key never reaches the database.
func (r *APIKeyRepository) Create(ctx context.Context, k *apikey.APIKey) error {
	query := `
		INSERT INTO api_keys (
			id, merchant_id, name, key_prefix, key_hash, environment,
			permissions, is_active, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		k.ID, k.MerchantID, k.Name, k.KeyPrefix, k.KeyHash, k.Environment,
		k.Permissions, k.IsActive, k.ExpiresAt,
	).Scan(&k.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// FindByID retrieves a key record.
func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (*apikey.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindCandidates returns active keys for a merchant whose stored prefix
// matches the presented raw key. bcrypt comparison happens in the service.
func (r *APIKeyRepository) FindCandidates(ctx context.Context, merchantID, keyPrefix string) ([]apikey.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE merchant_id = $1 AND key_prefix = $2 AND is_active = TRUE
	`

	rows, err := r.db.Query(ctx, query, merchantID, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to find api key candidates: %w", err)
	}
	defer rows.Close()

	keys := []apikey.APIKey{}
	for rows.Next() {
		k, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, *k)
	}

	return keys, rows.Err()
}

// ListByMerchant returns a merchant's keys, newest first.
func (r *APIKeyRepository) ListByMerchant(ctx context.Context, merchantID string) ([]apikey.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := []apikey.APIKey{}
	for rows.Next() {
		k, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, *k)
	}

	return keys, rows.Err()
}

// TouchLastUsed records key usage. Best effort; callers ignore errors.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

// Revoke deactivates a key.
func (r *APIKeyRepository) Revoke(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `UPDATE api_keys SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *APIKeyRepository) scanOne(row pgx.Row) (*apikey.APIKey, error) {
	var k apikey.APIKey
	err := row.Scan(
		&k.ID, &k.MerchantID, &k.Name, &k.KeyPrefix, &k.KeyHash, &k.Environment,
		&k.Permissions, &k.IsActive, &k.CreatedAt, &k.ExpiresAt, &k.LastUsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan api key: %w", err)
	}
	return &k, nil
}
