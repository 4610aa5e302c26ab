// internal/handlers/program/program_handler.go
package program

import (
	"net/http"

	"loyaltystudio-service/internal/domain/program"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgramHandler struct {
	programService *service.ProgramService
}

func NewProgramHandler(programService *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{
		programService: programService,
	}
}

// ========== Programs ==========

// Create runs the program wizard: the aggregate form commits atomically.
func (h *ProgramHandler) Create(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var form program.ProgramFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.programService.CreateFromWizard(c.Request.Context(), merchantID, &form)
	if err != nil {
		response.Failure(c, "failed to create program", err)
		return
	}

	response.Success(c, http.StatusCreated, "program created", result)
}

// List returns the merchant's programs.
func (h *ProgramHandler) List(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.programService.List(c.Request.Context(), merchantID)
	if err != nil {
		response.Failure(c, "failed to list programs", err)
		return
	}

	response.Success(c, http.StatusOK, "programs retrieved", result)
}

// Get returns a program with its rules, tiers, and rewards.
func (h *ProgramHandler) Get(c *gin.Context) {
	result, err := h.programService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to get program", err)
		return
	}

	response.Success(c, http.StatusOK, "program retrieved", result)
}

// Update rewrites a program's mutable fields.
func (h *ProgramHandler) Update(c *gin.Context) {
	var req program.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.programService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to update program", err)
		return
	}

	response.Success(c, http.StatusOK, "program updated", result)
}

// Delete removes a program and everything under it.
func (h *ProgramHandler) Delete(c *gin.Context) {
	if err := h.programService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Failure(c, "failed to delete program", err)
		return
	}

	response.Success(c, http.StatusOK, "program deleted", nil)
}

// ========== Tiers ==========

// ListTiers returns a program's tiers.
func (h *ProgramHandler) ListTiers(c *gin.Context) {
	result, err := h.programService.ListTiers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to list tiers", err)
		return
	}

	response.Success(c, http.StatusOK, "tiers retrieved", result)
}

// CreateTier adds a tier to a program.
func (h *ProgramHandler) CreateTier(c *gin.Context) {
	var req program.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.programService.CreateTier(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to create tier", err)
		return
	}

	response.Success(c, http.StatusCreated, "tier created", result)
}

// UpdateTier rewrites a tier's mutable fields.
func (h *ProgramHandler) UpdateTier(c *gin.Context) {
	var req program.UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.programService.UpdateTier(c.Request.Context(), c.Param("tier_id"), &req)
	if err != nil {
		response.Failure(c, "failed to update tier", err)
		return
	}

	response.Success(c, http.StatusOK, "tier updated", result)
}

// DeleteTier removes a tier.
func (h *ProgramHandler) DeleteTier(c *gin.Context) {
	if err := h.programService.DeleteTier(c.Request.Context(), c.Param("tier_id")); err != nil {
		response.Failure(c, "failed to delete tier", err)
		return
	}

	response.Success(c, http.StatusOK, "tier deleted", nil)
}
