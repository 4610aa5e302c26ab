// internal/repository/postgres/member_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyaltystudio-service/internal/domain/member"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `
	id, loyalty_program_id, email, name, external_ref, points_balance,
	tier_id, is_active, joined_at, updated_at
`

// Create inserts a member. Email is unique per program.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (
			id, loyalty_program_id, email, name, external_ref,
			points_balance, tier_id, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING joined_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		m.ID, m.LoyaltyProgramID, m.Email, m.Name, m.ExternalRef,
		m.PointsBalance, m.TierID, m.IsActive,
	).Scan(&m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// FindByID retrieves a member.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves a member by email within a program.
func (r *MemberRepository) FindByEmail(ctx context.Context, programID, email string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE loyalty_program_id = $1 AND lower(email) = lower($2)`
	return r.scanOne(r.db.QueryRow(ctx, query, programID, email))
}

// FindByExternalRef retrieves a member by platform reference.
func (r *MemberRepository) FindByExternalRef(ctx context.Context, programID, ref string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE loyalty_program_id = $1 AND external_ref = $2`
	return r.scanOne(r.db.QueryRow(ctx, query, programID, ref))
}

// List returns members with filters and pagination.
func (r *MemberRepository) List(ctx context.Context, programID string, f *member.MemberListFilters) ([]member.Member, int64, error) {
	where := []string{"loyalty_program_id = $1"}
	args := []interface{}{programID}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if f.TierID != "" {
		args = append(args, f.TierID)
		where = append(where, fmt.Sprintf("tier_id = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(
		`SELECT %s FROM members WHERE %s ORDER BY joined_at DESC LIMIT $%d OFFSET $%d`,
		memberColumns, whereClause, len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []member.Member{}
	for rows.Next() {
		var m member.Member
		if err := rows.Scan(
			&m.ID, &m.LoyaltyProgramID, &m.Email, &m.Name, &m.ExternalRef, &m.PointsBalance,
			&m.TierID, &m.IsActive, &m.JoinedAt, &m.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, total, rows.Err()
}

// Update rewrites a member's mutable fields.
func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `
		UPDATE members
		SET name = $1, tier_id = $2, is_active = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query, m.Name, m.TierID, m.IsActive, time.Now(), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// AdjustBalance applies a points delta inside a transaction, refusing to
// drive the balance negative.
func (r *MemberRepository) AdjustBalance(ctx context.Context, tx pgx.Tx, memberID string, delta int) (int, error) {
	query := `
		UPDATE members
		SET points_balance = points_balance + $1, updated_at = $2
		WHERE id = $3 AND points_balance + $1 >= 0
		RETURNING points_balance
	`

	var balance int
	err := tx.QueryRow(ctx, query, delta, time.Now(), memberID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, xerrors.ErrInsufficientPoints
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return balance, nil
}

// Delete removes a member.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Stats aggregates member counts for a program.
func (r *MemberRepository) Stats(ctx context.Context, programID string) (*member.MemberStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active), COALESCE(SUM(points_balance), 0)
		FROM members
		WHERE loyalty_program_id = $1
	`

	var stats member.MemberStats
	if err := r.db.QueryRow(ctx, query, programID).Scan(
		&stats.TotalMembers, &stats.ActiveMembers, &stats.TotalPoints,
	); err != nil {
		return nil, fmt.Errorf("failed to get member stats: %w", err)
	}

	return &stats, nil
}

func (r *MemberRepository) scanOne(row pgx.Row) (*member.Member, error) {
	var m member.Member
	err := row.Scan(
		&m.ID, &m.LoyaltyProgramID, &m.Email, &m.Name, &m.ExternalRef, &m.PointsBalance,
		&m.TierID, &m.IsActive, &m.JoinedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return &m, nil
}
