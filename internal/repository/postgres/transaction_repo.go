// internal/repository/postgres/transaction_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loyaltystudio-service/internal/domain/transaction"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateTx records a transaction inside the same transaction that adjusts
// the member balance.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx pgx.Tx, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, member_id, type, points, description, order_ref, reward_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		t.ID, t.MemberID, t.Type, t.Points, t.Description, t.OrderRef, t.RewardID,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByOrderRef retrieves the transaction recorded against an external
// order reference, if any.
func (r *TransactionRepository) FindByOrderRef(ctx context.Context, orderRef string) (*transaction.Transaction, error) {
	query := `
		SELECT id, member_id, type, points, description, order_ref, reward_id, created_at
		FROM transactions
		WHERE order_ref = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var t transaction.Transaction
	err := r.db.QueryRow(ctx, query, orderRef).Scan(
		&t.ID, &t.MemberID, &t.Type, &t.Points, &t.Description, &t.OrderRef, &t.RewardID, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction by order ref: %w", err)
	}

	return &t, nil
}

// List returns transactions with filters and pagination, scoped to a
// program through the member join.
func (r *TransactionRepository) List(ctx context.Context, programID string, f *transaction.TransactionListFilters) ([]transaction.Transaction, int64, error) {
	where := []string{"m.loyalty_program_id = $1"}
	args := []interface{}{programID}

	if f.MemberID != "" {
		args = append(args, f.MemberID)
		where = append(where, fmt.Sprintf("t.member_id = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("t.type = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM transactions t JOIN members m ON m.id = t.member_id
		WHERE ` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(`
		SELECT t.id, t.member_id, t.type, t.points, t.description, t.order_ref, t.reward_id, t.created_at
		FROM transactions t JOIN members m ON m.id = t.member_id
		WHERE %s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []transaction.Transaction{}
	for rows.Next() {
		var t transaction.Transaction
		if err := rows.Scan(
			&t.ID, &t.MemberID, &t.Type, &t.Points, &t.Description, &t.OrderRef, &t.RewardID, &t.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, total, rows.Err()
}

// Stats aggregates earn/redeem totals for a program.
func (r *TransactionRepository) Stats(ctx context.Context, programID string) (*transaction.TransactionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(t.points) FILTER (WHERE t.type = 'EARN'), 0),
			COALESCE(SUM(t.points) FILTER (WHERE t.type = 'REDEEM'), 0)
		FROM transactions t JOIN members m ON m.id = t.member_id
		WHERE m.loyalty_program_id = $1
	`

	var stats transaction.TransactionStats
	if err := r.db.QueryRow(ctx, query, programID).Scan(
		&stats.TotalTransactions, &stats.TotalEarned, &stats.TotalRedeemed,
	); err != nil {
		return nil, fmt.Errorf("failed to get transaction stats: %w", err)
	}

	return &stats, nil
}
