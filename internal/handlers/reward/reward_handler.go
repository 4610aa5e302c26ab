// internal/handlers/reward/reward_handler.go
package reward

import (
	"net/http"

	"loyaltystudio-service/internal/domain/reward"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	rewardService *service.RewardService
}

func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

// Create adds a reward to a program's catalog.
func (h *RewardHandler) Create(c *gin.Context) {
	var req reward.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.rewardService.Create(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to create reward", err)
		return
	}

	response.Success(c, http.StatusCreated, "reward created", result)
}

// List returns a program's reward catalog.
func (h *RewardHandler) List(c *gin.Context) {
	result, err := h.rewardService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to list rewards", err)
		return
	}

	response.Success(c, http.StatusOK, "rewards retrieved", result)
}

// Get retrieves a reward.
func (h *RewardHandler) Get(c *gin.Context) {
	result, err := h.rewardService.Get(c.Request.Context(), c.Param("reward_id"))
	if err != nil {
		response.Failure(c, "failed to get reward", err)
		return
	}

	response.Success(c, http.StatusOK, "reward retrieved", result)
}

// Update applies a partial update to a reward.
func (h *RewardHandler) Update(c *gin.Context) {
	var req reward.UpdateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.rewardService.Update(c.Request.Context(), c.Param("reward_id"), &req)
	if err != nil {
		response.Failure(c, "failed to update reward", err)
		return
	}

	response.Success(c, http.StatusOK, "reward updated", result)
}

// Delete removes a reward from the catalog.
func (h *RewardHandler) Delete(c *gin.Context) {
	if err := h.rewardService.Delete(c.Request.Context(), c.Param("reward_id")); err != nil {
		response.Failure(c, "failed to delete reward", err)
		return
	}

	response.Success(c, http.StatusOK, "reward deleted", nil)
}
