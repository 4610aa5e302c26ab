// internal/service/member_service.go
package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"loyaltystudio-service/internal/domain/member"
	"loyaltystudio-service/internal/domain/program"
	"loyaltystudio-service/internal/domain/webhook"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/pkg/session"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/webhookq"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// MemberService owns program members, including the CSV bulk import.
type MemberService struct {
	repo       *postgres.MemberRepository
	tiers      *postgres.TierRepository
	programs   *postgres.ProgramRepository
	limiter    *session.RateLimiter
	dispatcher *webhookq.Dispatcher
	logger     *zap.Logger
}

func NewMemberService(
	repo *postgres.MemberRepository,
	tiers *postgres.TierRepository,
	programs *postgres.ProgramRepository,
	limiter *session.RateLimiter,
	dispatcher *webhookq.Dispatcher,
	logger *zap.Logger,
) *MemberService {
	return &MemberService{
		repo:       repo,
		tiers:      tiers,
		programs:   programs,
		limiter:    limiter,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create enrolls a member. When no tier is given the member lands in the
// program's default tier (lowest threshold), if the program has tiers.
func (s *MemberService) Create(ctx context.Context, merchantID, programID string, req *member.CreateMemberRequest) (*member.Member, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}

	tierID := req.TierID
	if tierID == "" {
		tiers, err := s.tiers.ListByProgram(ctx, programID)
		if err != nil {
			return nil, err
		}
		if def := program.DefaultTier(tiers); def != nil {
			tierID = def.ID
		}
	}

	m := &member.Member{
		ID:               ulid.Make().String(),
		LoyaltyProgramID: programID,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Name:             req.Name,
		PointsBalance:    req.InitialPoints,
		IsActive:         true,
	}
	if tierID != "" {
		m.TierID = sql.NullString{String: tierID, Valid: true}
	}
	if req.ExternalRef != "" {
		m.ExternalRef = sql.NullString{String: req.ExternalRef, Valid: true}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return nil, xerrors.Wrap(xerrors.ErrConflict, "a member with this email already exists")
		}
		return nil, err
	}

	s.dispatcher.Publish(merchantID, webhook.EventMemberCreated, m)

	return m, nil
}

// Get retrieves a member.
func (s *MemberService) Get(ctx context.Context, id string) (*member.Member, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByEmail looks a member up by email within a program.
func (s *MemberService) FindByEmail(ctx context.Context, programID, email string) (*member.Member, error) {
	return s.repo.FindByEmail(ctx, programID, strings.ToLower(strings.TrimSpace(email)))
}

// List returns members with filters and pagination.
func (s *MemberService) List(ctx context.Context, programID string, f *member.MemberListFilters) (*member.MemberListResponse, error) {
	normalizePage(&f.Page, &f.PageSize)

	members, total, err := s.repo.List(ctx, programID, f)
	if err != nil {
		return nil, err
	}

	return &member.MemberListResponse{
		Members:    members,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages(total, f.PageSize),
	}, nil
}

// Update rewrites a member's mutable fields.
func (s *MemberService) Update(ctx context.Context, merchantID, id string, req *member.UpdateMemberRequest) (*member.Member, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.TierID != nil {
		m.TierID = sql.NullString{String: *req.TierID, Valid: *req.TierID != ""}
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.dispatcher.Publish(merchantID, webhook.EventMemberUpdated, m)

	return m, nil
}

// Delete removes a member and their transaction history.
func (s *MemberService) Delete(ctx context.Context, merchantID, id string) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.dispatcher.Publish(merchantID, webhook.EventMemberDeleted, map[string]string{
		"id":    m.ID,
		"email": m.Email,
	})

	return nil
}

// Stats aggregates member counts for a program.
func (s *MemberService) Stats(ctx context.Context, programID string) (*member.MemberStats, error) {
	return s.repo.Stats(ctx, programID)
}

var importHeader = []string{"email", "name", "initialPoints"}

// ImportCSV bulk-enrolls members from a CSV stream. Expected columns are
// email,name,initialPoints with an optional trailing tierName. Rows are
// processed sequentially; a bad row is recorded and skipped, never
// aborting the rest of the file. Invalid initialPoints values import as 0.
func (s *MemberService) ImportCSV(ctx context.Context, merchantID, programID string, r io.Reader) (*member.ImportResult, error) {
	allowed, err := s.limiter.CheckImportAttempt(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, xerrors.Wrap(xerrors.ErrRateLimited, "import limit reached, try again later")
	}

	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "csv file is empty or unreadable")
	}
	if err := validateImportHeader(header); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	hasTierColumn := len(header) > 3

	tiers, err := s.tiers.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	tiersByName := make(map[string]*program.Tier, len(tiers))
	for i := range tiers {
		tiersByName[strings.ToLower(tiers[i].Name)] = &tiers[i]
	}
	defaultTier := program.DefaultTier(tiers)

	result := &member.ImportResult{CreatedIDs: []string{}}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Total++
			result.FailureCount++
			result.Errors = append(result.Errors, member.ImportRowError{
				Line: line, Error: "malformed csv row",
			})
			continue
		}

		result.Total++

		row := parseImportRow(record, hasTierColumn)
		if rowErr := s.importRow(ctx, programID, row, tiersByName, defaultTier, result); rowErr != "" {
			result.FailureCount++
			result.Errors = append(result.Errors, member.ImportRowError{
				Line: line, Email: row.Email, Error: rowErr,
			})
		}
	}

	s.logger.Info("member import finished",
		zap.String("program_id", programID),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
	)

	return result, nil
}

func (s *MemberService) importRow(
	ctx context.Context,
	programID string,
	row member.ImportRow,
	tiersByName map[string]*program.Tier,
	defaultTier *program.Tier,
	result *member.ImportResult,
) string {
	email := strings.ToLower(strings.TrimSpace(row.Email))
	if email == "" || !strings.Contains(email, "@") {
		return "invalid email"
	}
	if strings.TrimSpace(row.Name) == "" {
		return "name is required"
	}

	// Source files regularly carry junk in the points column; treat
	// anything unparseable as zero rather than rejecting the row.
	points, err := strconv.Atoi(strings.TrimSpace(row.InitialPoints))
	if err != nil || points < 0 {
		points = 0
	}

	var tierID string
	if row.TierName != "" {
		if t, ok := tiersByName[strings.ToLower(strings.TrimSpace(row.TierName))]; ok {
			tierID = t.ID
		} else if defaultTier != nil {
			tierID = defaultTier.ID
		}
	} else if defaultTier != nil {
		tierID = defaultTier.ID
	}

	m := &member.Member{
		ID:               ulid.Make().String(),
		LoyaltyProgramID: programID,
		Email:            email,
		Name:             strings.TrimSpace(row.Name),
		PointsBalance:    points,
		IsActive:         true,
	}
	if tierID != "" {
		m.TierID = sql.NullString{String: tierID, Valid: true}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return "member already exists"
		}
		return "failed to create member"
	}

	result.SuccessCount++
	result.CreatedIDs = append(result.CreatedIDs, m.ID)
	return ""
}

func validateImportHeader(header []string) error {
	if len(header) < len(importHeader) {
		return fmt.Errorf("csv header must start with %s", strings.Join(importHeader, ","))
	}
	for i, want := range importHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("csv column %d must be %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

func parseImportRow(record []string, hasTierColumn bool) member.ImportRow {
	row := member.ImportRow{}
	if len(record) > 0 {
		row.Email = record[0]
	}
	if len(record) > 1 {
		row.Name = record[1]
	}
	if len(record) > 2 {
		row.InitialPoints = record[2]
	}
	if hasTierColumn && len(record) > 3 {
		row.TierName = record[3]
	}
	return row
}
