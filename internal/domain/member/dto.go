// internal/domain/member/dto.go
package member

type CreateMemberRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"name" binding:"required,max=255"`
	InitialPoints int    `json:"initial_points" binding:"min=0"`
	TierID        string `json:"tier_id"`
	ExternalRef   string `json:"external_ref"`
}

type UpdateMemberRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	TierID   *string `json:"tier_id"`
	IsActive *bool   `json:"is_active"`
}

type MemberListFilters struct {
	Search   string `form:"search"`
	TierID   string `form:"tier_id"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

type MemberListResponse struct {
	Members    []Member `json:"members"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// ImportRow is one parsed CSV line. InitialPoints keeps the raw string so
// the lenient numeric parse (invalid input becomes 0) happens in one place.
type ImportRow struct {
	Email         string
	Name          string
	InitialPoints string
	TierName      string
}

type ImportRowError struct {
	Line  int    `json:"line"`
	Email string `json:"email,omitempty"`
	Error string `json:"error"`
}

type ImportResult struct {
	Total        int              `json:"total"`
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	CreatedIDs   []string         `json:"created_ids"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}
