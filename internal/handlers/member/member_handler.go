// internal/handlers/member/member_handler.go
package member

import (
	"net/http"

	"loyaltystudio-service/internal/domain/member"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MemberHandler struct {
	memberService *service.MemberService
	logger        *zap.Logger
}

func NewMemberHandler(memberService *service.MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// Create enrolls a member into a program.
func (h *MemberHandler) Create(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req member.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.memberService.Create(c.Request.Context(), merchantID, c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to create member", err)
		return
	}

	response.Success(c, http.StatusCreated, "member created", result)
}

// List returns a program's members with filters and pagination.
func (h *MemberHandler) List(c *gin.Context) {
	var filters member.MemberListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.memberService.List(c.Request.Context(), c.Param("id"), &filters)
	if err != nil {
		response.Failure(c, "failed to list members", err)
		return
	}

	response.Success(c, http.StatusOK, "members retrieved", result)
}

// Stats aggregates member counts and balances for a program.
func (h *MemberHandler) Stats(c *gin.Context) {
	result, err := h.memberService.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to get member stats", err)
		return
	}

	response.Success(c, http.StatusOK, "member stats retrieved", result)
}

// Import ingests a members CSV. The file comes either as multipart form
// field "file" or as the raw request body.
func (h *MemberHandler) Import(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)
	programID := c.Param("id")

	reader := c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	result, err := h.memberService.ImportCSV(c.Request.Context(), merchantID, programID, reader)
	if err != nil {
		response.Failure(c, "failed to import members", err)
		return
	}

	h.logger.Info("members imported",
		zap.String("merchant_id", merchantID),
		zap.String("program_id", programID),
		zap.Int("imported", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
	)

	response.Success(c, http.StatusOK, "import complete", result)
}

// Get retrieves a member.
func (h *MemberHandler) Get(c *gin.Context) {
	result, err := h.memberService.Get(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		response.Failure(c, "failed to get member", err)
		return
	}

	response.Success(c, http.StatusOK, "member retrieved", result)
}

// Update applies a partial update to a member.
func (h *MemberHandler) Update(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req member.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.memberService.Update(c.Request.Context(), merchantID, c.Param("member_id"), &req)
	if err != nil {
		response.Failure(c, "failed to update member", err)
		return
	}

	response.Success(c, http.StatusOK, "member updated", result)
}

// Delete removes a member.
func (h *MemberHandler) Delete(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	if err := h.memberService.Delete(c.Request.Context(), merchantID, c.Param("member_id")); err != nil {
		response.Failure(c, "failed to delete member", err)
		return
	}

	response.Success(c, http.StatusOK, "member deleted", nil)
}
