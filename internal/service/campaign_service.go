// internal/service/campaign_service.go
package service

import (
	"context"
	"database/sql"
	"time"

	"loyaltystudio-service/internal/cache"
	"loyaltystudio-service/internal/domain/campaign"
	"loyaltystudio-service/internal/domain/webhook"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/webhookq"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// CampaignService owns campaign CRUD. Every write normalizes the reward
// union against the campaign type and invalidates the live-campaign
// cache the transaction path reads from.
type CampaignService struct {
	repo       *postgres.CampaignRepository
	programs   *postgres.ProgramRepository
	cache      *cache.CampaignCache
	dispatcher *webhookq.Dispatcher
	logger     *zap.Logger
}

func NewCampaignService(
	repo *postgres.CampaignRepository,
	programs *postgres.ProgramRepository,
	campaignCache *cache.CampaignCache,
	dispatcher *webhookq.Dispatcher,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		repo:       repo,
		programs:   programs,
		cache:      campaignCache,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create validates and stores a campaign.
func (s *CampaignService) Create(ctx context.Context, req *campaign.CreateCampaignRequest) (*campaign.Campaign, error) {
	p, err := s.programs.FindByID(ctx, req.LoyaltyProgramID)
	if err != nil {
		return nil, err
	}

	if err := campaign.ValidateDates(req.StartDate, req.EndDate); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	for _, r := range req.Rules {
		if err := campaign.ValidateRule(r); err != nil {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
		}
	}

	rewards, err := campaign.NormalizeRewards(req.Type, req.Rewards)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}

	c := &campaign.Campaign{
		ID:               ulid.Make().String(),
		LoyaltyProgramID: req.LoyaltyProgramID,
		Name:             req.Name,
		Type:             req.Type,
		StartDate:        req.StartDate,
		Rules:            req.Rules,
		TargetTierIDs:    req.TargetTierIDs,
		Rewards:          rewards,
		IsActive:         true,
	}
	if req.Description != "" {
		c.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.EndDate != nil {
		c.EndDate = sql.NullTime{Time: *req.EndDate, Valid: true}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, c.LoyaltyProgramID)
	s.dispatcher.Publish(p.MerchantID, webhook.EventCampaignCreated, c)

	return c, nil
}

// Get retrieves a campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a program's campaigns with filters and pagination.
func (s *CampaignService) List(ctx context.Context, programID string, f *campaign.CampaignListFilters) (*campaign.CampaignListResponse, error) {
	normalizePage(&f.Page, &f.PageSize)

	campaigns, total, err := s.repo.List(ctx, programID, f)
	if err != nil {
		return nil, err
	}

	return &campaign.CampaignListResponse{
		Campaigns:  campaigns,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages(total, f.PageSize),
	}, nil
}

// Update applies a partial update, re-normalizing the reward union
// whenever the type or the rewards change.
func (s *CampaignService) Update(ctx context.Context, id string, req *campaign.UpdateCampaignRequest) (*campaign.Campaign, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Type != nil {
		c.Type = *req.Type
	}
	if req.StartDate != nil {
		c.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		c.EndDate = sql.NullTime{Time: *req.EndDate, Valid: true}
	}
	if req.Rules != nil {
		for _, r := range req.Rules {
			if err := campaign.ValidateRule(r); err != nil {
				return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
			}
		}
		c.Rules = req.Rules
	}
	if req.TargetTierIDs != nil {
		c.TargetTierIDs = req.TargetTierIDs
	}
	if req.Rewards != nil {
		c.Rewards = *req.Rewards
	}

	var end *time.Time
	if c.EndDate.Valid {
		end = &c.EndDate.Time
	}
	if err := campaign.ValidateDates(c.StartDate, end); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}

	// A type change invalidates whatever reward payload was stored, so
	// normalization runs on every update, not just reward edits.
	rewards, err := campaign.NormalizeRewards(c.Type, c.Rewards)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	c.Rewards = rewards

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, c.LoyaltyProgramID)
	s.publishUpdated(ctx, c)

	return c, nil
}

// SetActive flips the active flag.
func (s *CampaignService) SetActive(ctx context.Context, id string, active bool) (*campaign.Campaign, error) {
	if err := s.repo.UpdateActive(ctx, id, active); err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, c.LoyaltyProgramID)
	s.publishUpdated(ctx, c)

	return c, nil
}

// Delete removes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, c.LoyaltyProgramID)
	return nil
}

// Stats aggregates campaign counts for a program.
func (s *CampaignService) Stats(ctx context.Context, programID string) (*campaign.CampaignStats, error) {
	return s.repo.Stats(ctx, programID)
}

// Live returns the campaigns applying right now, read through the cache.
func (s *CampaignService) Live(ctx context.Context, programID string) ([]campaign.Campaign, error) {
	if campaigns, ok := s.cache.GetLive(ctx, programID); ok {
		return campaigns, nil
	}

	campaigns, err := s.repo.FindLive(ctx, programID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetLive(ctx, programID, campaigns); err != nil {
		s.logger.Warn("failed to cache live campaigns", zap.Error(err))
	}

	return campaigns, nil
}

func (s *CampaignService) invalidate(ctx context.Context, programID string) {
	if err := s.cache.Invalidate(ctx, programID); err != nil {
		s.logger.Warn("failed to invalidate campaign cache",
			zap.String("program_id", programID),
			zap.Error(err),
		)
	}
}

func (s *CampaignService) publishUpdated(ctx context.Context, c *campaign.Campaign) {
	p, err := s.programs.FindByID(ctx, c.LoyaltyProgramID)
	if err != nil {
		s.logger.Warn("failed to resolve program for campaign event", zap.Error(err))
		return
	}
	s.dispatcher.Publish(p.MerchantID, webhook.EventCampaignUpdated, c)
}

func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 {
		*pageSize = 20
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
