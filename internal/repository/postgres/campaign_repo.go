// internal/repository/postgres/campaign_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyaltystudio-service/internal/domain/campaign"
	xerrors "loyaltystudio-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CampaignRepository struct {
	db *pgxpool.Pool
}

func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `
	id, loyalty_program_id, name, description, type,
	start_date, end_date, rules, target_tier_ids, rewards,
	is_active, created_at, updated_at
`

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	query := `
		INSERT INTO campaigns (
			id, loyalty_program_id, name, description, type,
			start_date, end_date, rules, target_tier_ids, rewards, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	rulesJSON, err := json.Marshal(c.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	rewardsJSON, err := json.Marshal(c.Rewards)
	if err != nil {
		return fmt.Errorf("failed to marshal rewards: %w", err)
	}

	err = r.db.QueryRow(
		ctx, query,
		c.ID, c.LoyaltyProgramID, c.Name, c.Description, c.Type,
		c.StartDate, c.EndDate, rulesJSON, c.TargetTierIDs, rewardsJSON, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// FindByID retrieves a campaign by ID.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*campaign.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return scanCampaign(row)
}

// List retrieves campaigns for a program with filters and pagination.
func (r *CampaignRepository) List(ctx context.Context, programID string, f *campaign.CampaignListFilters) ([]campaign.Campaign, int64, error) {
	where := []string{"loyalty_program_id = $1"}
	args := []interface{}{programID}

	if f.Type != nil {
		args = append(args, *f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE ` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	sortBy := "created_at"
	switch f.SortBy {
	case "start_date", "end_date", "name":
		sortBy = f.SortBy
	}
	sortOrder := "DESC"
	if f.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(
		`SELECT %s FROM campaigns WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		campaignColumns, whereClause, sortBy, sortOrder, len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []campaign.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, *c)
	}

	return campaigns, total, rows.Err()
}

// FindLive returns the campaigns currently applying for a program.
func (r *CampaignRepository) FindLive(ctx context.Context, programID string, now time.Time) ([]campaign.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE loyalty_program_id = $1
		  AND is_active = TRUE
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date > $2)
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, programID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find live campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []campaign.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}

	return campaigns, rows.Err()
}

// Update rewrites a campaign's mutable fields.
func (r *CampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1, description = $2, type = $3, start_date = $4, end_date = $5,
		    rules = $6, target_tier_ids = $7, rewards = $8, updated_at = $9
		WHERE id = $10
	`

	rulesJSON, err := json.Marshal(c.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	rewardsJSON, err := json.Marshal(c.Rewards)
	if err != nil {
		return fmt.Errorf("failed to marshal rewards: %w", err)
	}

	result, err := r.db.Exec(
		ctx, query,
		c.Name, c.Description, c.Type, c.StartDate, c.EndDate,
		rulesJSON, c.TargetTierIDs, rewardsJSON, time.Now(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateActive flips the active flag.
func (r *CampaignRepository) UpdateActive(ctx context.Context, id string, isActive bool) error {
	query := `UPDATE campaigns SET is_active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, isActive, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Stats aggregates campaign counts for a program.
func (r *CampaignRepository) Stats(ctx context.Context, programID string) (*campaign.CampaignStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE end_date IS NOT NULL AND end_date < now())
		FROM campaigns
		WHERE loyalty_program_id = $1
	`

	stats := &campaign.CampaignStats{ByType: map[string]int64{}}
	err := r.db.QueryRow(ctx, query, programID).Scan(
		&stats.TotalCampaigns, &stats.ActiveCampaigns, &stats.ExpiredCampaigns,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign stats: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT type, COUNT(*) FROM campaigns WHERE loyalty_program_id = $1 GROUP BY type`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		stats.ByType[t] = n
	}

	return stats, rows.Err()
}

func scanCampaign(row pgx.Row) (*campaign.Campaign, error) {
	var c campaign.Campaign
	var rulesJSON, rewardsJSON []byte

	err := row.Scan(
		&c.ID, &c.LoyaltyProgramID, &c.Name, &c.Description, &c.Type,
		&c.StartDate, &c.EndDate, &rulesJSON, &c.TargetTierIDs, &rewardsJSON,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan campaign: %w", err)
	}

	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &c.Rules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
		}
	}
	if len(rewardsJSON) > 0 {
		if err := json.Unmarshal(rewardsJSON, &c.Rewards); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rewards: %w", err)
		}
	}

	return &c, nil
}
