// internal/service/transaction_service.go
package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"loyaltystudio-service/internal/domain/campaign"
	"loyaltystudio-service/internal/domain/member"
	"loyaltystudio-service/internal/domain/program"
	"loyaltystudio-service/internal/domain/rules"
	"loyaltystudio-service/internal/domain/transaction"
	"loyaltystudio-service/internal/domain/webhook"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/webhookq"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TransactionService owns the points ledger. Earning resolves the
// program's wizard rules, the saved rule graph, and any live campaigns;
// every balance change and its transaction record commit together.
type TransactionService struct {
	db         *postgres.DB
	repo       *postgres.TransactionRepository
	members    *postgres.MemberRepository
	rewards    *postgres.RewardRepository
	tiers      *postgres.TierRepository
	programs   *postgres.ProgramRepository
	rules      *RulesService
	campaigns  *CampaignService
	dispatcher *webhookq.Dispatcher
	logger     *zap.Logger
}

func NewTransactionService(
	db *postgres.DB,
	repo *postgres.TransactionRepository,
	members *postgres.MemberRepository,
	rewards *postgres.RewardRepository,
	tiers *postgres.TierRepository,
	programs *postgres.ProgramRepository,
	rules *RulesService,
	campaigns *CampaignService,
	dispatcher *webhookq.Dispatcher,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		db:         db,
		repo:       repo,
		members:    members,
		rewards:    rewards,
		tiers:      tiers,
		programs:   programs,
		rules:      rules,
		campaigns:  campaigns,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Earn awards points for an order. Points come from the program's
// earning configuration, multiplied and topped up by live campaigns the
// member qualifies for, then applied with the transaction record in one
// database transaction. The member's tier upgrades when the new balance
// crosses a threshold.
func (s *TransactionService) Earn(ctx context.Context, merchantID, programID string, req *transaction.EarnRequest) (*transaction.Transaction, error) {
	m, err := s.members.FindByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if m.LoyaltyProgramID != programID {
		return nil, xerrors.ErrForbidden
	}
	if !m.IsActive {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "member is not active")
	}

	points, err := s.computeEarn(ctx, programID, m.TierID, req)
	if err != nil {
		return nil, err
	}
	if points <= 0 {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "order does not qualify for points")
	}

	t := &transaction.Transaction{
		ID:          ulid.Make().String(),
		MemberID:    m.ID,
		Type:        transaction.TypeEarn,
		Points:      points,
		Description: defaultString(req.Description, fmt.Sprintf("Points for order %s", req.OrderRef)),
	}
	if req.OrderRef != "" {
		t.OrderRef = sql.NullString{String: req.OrderRef, Valid: true}
	}

	balance, err := s.apply(ctx, m.ID, points, t)
	if err != nil {
		return nil, err
	}

	if err := s.maybeUpgradeTier(ctx, m, balance); err != nil {
		s.logger.Warn("tier upgrade failed",
			zap.String("member_id", m.ID),
			zap.Error(err),
		)
	}

	s.dispatcher.Publish(merchantID, webhook.EventTransactionCreated, t)

	return t, nil
}

// Redeem exchanges points for a reward. Stock is consumed first; the
// balance deduction and the transaction record then commit together.
func (s *TransactionService) Redeem(ctx context.Context, merchantID, programID string, req *transaction.RedeemRequest) (*transaction.Transaction, error) {
	m, err := s.members.FindByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if m.LoyaltyProgramID != programID {
		return nil, xerrors.ErrForbidden
	}

	rw, err := s.rewards.FindByID(ctx, req.RewardID)
	if err != nil {
		return nil, err
	}
	if rw.LoyaltyProgramID != programID || !rw.IsActive {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "reward is not available")
	}
	if m.PointsBalance < rw.PointsCost {
		return nil, xerrors.ErrInsufficientPoints
	}

	if err := s.rewards.DecrementStock(ctx, rw.ID); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return nil, xerrors.Wrap(xerrors.ErrConflict, "reward is out of stock")
		}
		return nil, err
	}

	t := &transaction.Transaction{
		ID:          ulid.Make().String(),
		MemberID:    m.ID,
		Type:        transaction.TypeRedeem,
		Points:      -rw.PointsCost,
		Description: defaultString(req.Description, fmt.Sprintf("Redeemed %s", rw.Name)),
		RewardID:    sql.NullString{String: rw.ID, Valid: true},
	}

	if _, err := s.apply(ctx, m.ID, -rw.PointsCost, t); err != nil {
		return nil, err
	}

	s.dispatcher.Publish(merchantID, webhook.EventRewardRedeemed, map[string]interface{}{
		"member_id":   m.ID,
		"reward_id":   rw.ID,
		"reward_name": rw.Name,
		"points":      rw.PointsCost,
	})
	s.dispatcher.Publish(merchantID, webhook.EventTransactionCreated, t)

	return t, nil
}

// Adjust applies a manual points correction, positive or negative.
func (s *TransactionService) Adjust(ctx context.Context, merchantID, programID string, req *transaction.AdjustRequest) (*transaction.Transaction, error) {
	m, err := s.members.FindByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if m.LoyaltyProgramID != programID {
		return nil, xerrors.ErrForbidden
	}

	t := &transaction.Transaction{
		ID:          ulid.Make().String(),
		MemberID:    m.ID,
		Type:        transaction.TypeAdjust,
		Points:      req.Points,
		Description: req.Description,
	}
	if req.OrderRef != "" {
		t.OrderRef = sql.NullString{String: req.OrderRef, Valid: true}
	}

	if _, err := s.apply(ctx, m.ID, req.Points, t); err != nil {
		return nil, err
	}

	s.dispatcher.Publish(merchantID, webhook.EventTransactionCreated, t)

	return t, nil
}

// FindByOrderRef retrieves the transaction recorded against an external
// order reference.
func (s *TransactionService) FindByOrderRef(ctx context.Context, orderRef string) (*transaction.Transaction, error) {
	return s.repo.FindByOrderRef(ctx, orderRef)
}

// List returns a program's transactions with filters and pagination.
func (s *TransactionService) List(ctx context.Context, programID string, f *transaction.TransactionListFilters) (*transaction.TransactionListResponse, error) {
	normalizePage(&f.Page, &f.PageSize)

	transactions, total, err := s.repo.List(ctx, programID, f)
	if err != nil {
		return nil, err
	}

	return &transaction.TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         f.Page,
		PageSize:     f.PageSize,
		TotalPages:   totalPages(total, f.PageSize),
	}, nil
}

// Stats aggregates earn/redeem totals for a program.
func (s *TransactionService) Stats(ctx context.Context, programID string) (*transaction.TransactionStats, error) {
	return s.repo.Stats(ctx, programID)
}

// apply commits a balance delta and its transaction record atomically,
// returning the new balance.
func (s *TransactionService) apply(ctx context.Context, memberID string, delta int, t *transaction.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := s.members.AdjustBalance(ctx, tx, memberID, delta)
	if err != nil {
		return 0, err
	}
	if err := s.repo.CreateTx(ctx, tx, t); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// computeEarn resolves base points, then layers graph config and live
// campaigns on top.
func (s *TransactionService) computeEarn(ctx context.Context, programID string, tierID sql.NullString, req *transaction.EarnRequest) (int, error) {
	earningRules, err := s.programs.ListEarningRules(ctx, programID)
	if err != nil {
		return 0, err
	}

	points := basePoints(earningRules, req.OrderAmount)

	cfg, err := s.rules.EarningConfig(ctx, programID)
	if err != nil {
		return 0, err
	}
	if cfg != nil {
		points = applyGraphConfig(cfg, points, req)
	}

	campaigns, err := s.campaigns.Live(ctx, programID)
	if err != nil {
		s.logger.Warn("failed to load live campaigns, earning without them",
			zap.String("program_id", programID),
			zap.Error(err),
		)
		return points, nil
	}

	return applyCampaigns(campaigns, points, tierID), nil
}

// basePoints sums the program's active wizard rules: FIXED awards a flat
// amount per order, PERCENTAGE awards points per 100 currency units.
func basePoints(earningRules []program.EarningRule, orderAmount float64) int {
	points := 0
	for _, r := range earningRules {
		if !r.IsActive {
			continue
		}
		switch r.Type {
		case program.RuleTypeFixed:
			points += r.Points
		case program.RuleTypePercentage:
			points += int(math.Floor(orderAmount * float64(r.Points) / 100))
		}
	}
	return points
}

// applyGraphConfig layers the flattened rule graph over the wizard base:
// a minimum-purchase gate, graph base points, a category multiplier, and
// a hard cap, in that order.
func applyGraphConfig(cfg *rules.EarningConfig, points int, req *transaction.EarnRequest) int {
	if cfg.MinimumPurchase > 0 && req.OrderAmount < cfg.MinimumPurchase {
		return 0
	}

	if cfg.BasePoints > 0 && req.OrderAmount >= cfg.BaseMinAmount {
		points += cfg.BasePoints
	}

	if req.Category != "" {
		if mult, ok := cfg.CategoryMultipliers[req.Category]; ok && mult > 1 {
			points = int(math.Floor(float64(points) * mult))
		}
	}

	if cfg.MaximumPoints > 0 && points > cfg.MaximumPoints {
		points = cfg.MaximumPoints
	}

	return points
}

// applyCampaigns layers live campaign rewards onto the base: multipliers
// compound, bonuses add. A campaign with target tiers only applies to
// members in one of them.
func applyCampaigns(campaigns []campaign.Campaign, points int, tierID sql.NullString) int {
	bonus := 0
	multiplier := 1.0

	for _, c := range campaigns {
		if len(c.TargetTierIDs) > 0 {
			if !tierID.Valid || !containsString(c.TargetTierIDs, tierID.String) {
				continue
			}
		}

		switch c.Type {
		case campaign.TypePointsMultiplier:
			multiplier *= c.Rewards.PointsMultiplier
		case campaign.TypeBonusPoints:
			bonus += c.Rewards.BonusPoints
		}
	}

	return int(math.Floor(float64(points)*multiplier)) + bonus
}

// maybeUpgradeTier moves the member to the highest tier whose threshold
// the new balance meets. Members are never downgraded automatically.
func (s *TransactionService) maybeUpgradeTier(ctx context.Context, m *member.Member, balance int) error {
	tiers, err := s.tiers.ListByProgram(ctx, m.LoyaltyProgramID)
	if err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}

	var target *program.Tier
	for i := range tiers {
		if balance >= tiers[i].PointsThreshold {
			target = &tiers[i]
		}
	}
	if target == nil || (m.TierID.Valid && m.TierID.String == target.ID) {
		return nil
	}

	if m.TierID.Valid {
		current, err := s.tiers.FindByID(ctx, m.TierID.String)
		if err == nil && current.PointsThreshold >= target.PointsThreshold {
			return nil
		}
	}

	m.TierID = sql.NullString{String: target.ID, Valid: true}
	if err := s.members.Update(ctx, m); err != nil {
		return err
	}

	s.logger.Info("member tier upgraded",
		zap.String("member_id", m.ID),
		zap.String("tier_id", target.ID),
		zap.Int("balance", balance),
	)

	return nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
