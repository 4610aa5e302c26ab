// internal/handlers/campaign/campaign_handler.go
package campaign

import (
	"net/http"

	"loyaltystudio-service/internal/domain/campaign"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignService *service.CampaignService
}

func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// Create creates a campaign under a program.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req campaign.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	req.LoyaltyProgramID = c.Param("id")

	result, err := h.campaignService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Failure(c, "failed to create campaign", err)
		return
	}

	response.Success(c, http.StatusCreated, "campaign created", result)
}

// List returns a program's campaigns with filters and pagination.
func (h *CampaignHandler) List(c *gin.Context) {
	var filters campaign.CampaignListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.campaignService.List(c.Request.Context(), c.Param("id"), &filters)
	if err != nil {
		response.Failure(c, "failed to list campaigns", err)
		return
	}

	response.Success(c, http.StatusOK, "campaigns retrieved", result)
}

// Live returns the campaigns currently applying for a program.
func (h *CampaignHandler) Live(c *gin.Context) {
	result, err := h.campaignService.Live(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to get live campaigns", err)
		return
	}

	response.Success(c, http.StatusOK, "live campaigns retrieved", result)
}

// Stats aggregates campaign counts for a program.
func (h *CampaignHandler) Stats(c *gin.Context) {
	result, err := h.campaignService.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to get campaign stats", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign stats retrieved", result)
}

// Get retrieves a campaign.
func (h *CampaignHandler) Get(c *gin.Context) {
	result, err := h.campaignService.Get(c.Request.Context(), c.Param("campaign_id"))
	if err != nil {
		response.Failure(c, "failed to get campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign retrieved", result)
}

// Update applies a partial update to a campaign.
func (h *CampaignHandler) Update(c *gin.Context) {
	var req campaign.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.campaignService.Update(c.Request.Context(), c.Param("campaign_id"), &req)
	if err != nil {
		response.Failure(c, "failed to update campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign updated", result)
}

// Activate turns a campaign on.
func (h *CampaignHandler) Activate(c *gin.Context) {
	result, err := h.campaignService.SetActive(c.Request.Context(), c.Param("campaign_id"), true)
	if err != nil {
		response.Failure(c, "failed to activate campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign activated", result)
}

// Deactivate turns a campaign off.
func (h *CampaignHandler) Deactivate(c *gin.Context) {
	result, err := h.campaignService.SetActive(c.Request.Context(), c.Param("campaign_id"), false)
	if err != nil {
		response.Failure(c, "failed to deactivate campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign deactivated", result)
}

// Delete removes a campaign.
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.campaignService.Delete(c.Request.Context(), c.Param("campaign_id")); err != nil {
		response.Failure(c, "failed to delete campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign deleted", nil)
}
