// internal/repository/postgres/webhook_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyaltystudio-service/internal/domain/webhook"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WebhookRepository struct {
	db *pgxpool.Pool
}

func NewWebhookRepository(db *pgxpool.Pool) *WebhookRepository {
	return &WebhookRepository{db: db}
}

const webhookColumns = `
	id, merchant_id, url, description, events, is_active, secret, created_at, updated_at
`

// Create inserts a webhook endpoint.
func (r *WebhookRepository) Create(ctx context.Context, w *webhook.Webhook) error {
	query := `
		INSERT INTO webhooks (id, merchant_id, url, description, events, is_active, secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		w.ID, w.MerchantID, w.URL, w.Description, w.Events, w.IsActive, w.Secret,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}

	return nil
}

// FindByID retrieves a webhook.
func (r *WebhookRepository) FindByID(ctx context.Context, id string) (*webhook.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ListByMerchant returns a merchant's webhooks.
func (r *WebhookRepository) ListByMerchant(ctx context.Context, merchantID string) ([]webhook.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE merchant_id = $1 ORDER BY created_at`
	return r.scanMany(ctx, query, merchantID)
}

// ListActiveByEvent returns active endpoints subscribed to an event type.
// The "*" subscription matches every event.
func (r *WebhookRepository) ListActiveByEvent(ctx context.Context, merchantID, eventType string) ([]webhook.Webhook, error) {
	query := `
		SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE merchant_id = $1 AND is_active = TRUE AND (events @> ARRAY[$2] OR events @> ARRAY['*'])
	`
	return r.scanMany(ctx, query, merchantID, eventType)
}

// Update rewrites a webhook's mutable fields.
func (r *WebhookRepository) Update(ctx context.Context, w *webhook.Webhook) error {
	query := `
		UPDATE webhooks
		SET url = $1, description = $2, events = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query, w.URL, w.Description, w.Events, w.IsActive, time.Now(), w.ID)
	if err != nil {
		return fmt.Errorf("failed to update webhook: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// RotateSecret swaps the signing secret. Every reveal goes through here,
// so the previous secret stops verifying at the moment of the read.
func (r *WebhookRepository) RotateSecret(ctx context.Context, id, secret string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE webhooks SET secret = $1, updated_at = $2 WHERE id = $3`,
		secret, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to rotate webhook secret: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a webhook and its logs.
func (r *WebhookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// CreateLog records a delivery attempt.
func (r *WebhookRepository) CreateLog(ctx context.Context, l *webhook.WebhookLog) error {
	query := `
		INSERT INTO webhook_logs (id, webhook_id, event_type, status_code, successful, response_time_ms, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		l.ID, l.WebhookID, l.EventType, l.StatusCode, l.Successful, l.ResponseTimeMs, l.Error,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create webhook log: %w", err)
	}

	return nil
}

// ListLogs returns delivery attempts for an endpoint, newest first.
func (r *WebhookRepository) ListLogs(ctx context.Context, webhookID string, f *webhook.LogListFilters) ([]webhook.WebhookLog, int64, error) {
	where := []string{"webhook_id = $1"}
	args := []interface{}{webhookID}

	if f.Successful != nil {
		args = append(args, *f.Successful)
		where = append(where, fmt.Sprintf("successful = $%d", len(args)))
	}
	if f.EventType != "" {
		args = append(args, f.EventType)
		where = append(where, fmt.Sprintf("event_type = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM webhook_logs WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count webhook logs: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(`
		SELECT id, webhook_id, event_type, status_code, successful, response_time_ms, error, created_at
		FROM webhook_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	defer rows.Close()

	logs := []webhook.WebhookLog{}
	for rows.Next() {
		var l webhook.WebhookLog
		if err := rows.Scan(
			&l.ID, &l.WebhookID, &l.EventType, &l.StatusCode, &l.Successful,
			&l.ResponseTimeMs, &l.Error, &l.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan webhook log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, total, rows.Err()
}

func (r *WebhookRepository) scanOne(row pgx.Row) (*webhook.Webhook, error) {
	var w webhook.Webhook
	err := row.Scan(
		&w.ID, &w.MerchantID, &w.URL, &w.Description, &w.Events, &w.IsActive,
		&w.Secret, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan webhook: %w", err)
	}
	return &w, nil
}

func (r *WebhookRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]webhook.Webhook, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	defer rows.Close()

	webhooks := []webhook.Webhook{}
	for rows.Next() {
		w, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, *w)
	}

	return webhooks, rows.Err()
}
