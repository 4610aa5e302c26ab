// internal/handlers/rules/rules_handler.go
package rules

import (
	"net/http"

	"loyaltystudio-service/internal/domain/rules"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type RulesHandler struct {
	rulesService *service.RulesService
}

func NewRulesHandler(rulesService *service.RulesService) *RulesHandler {
	return &RulesHandler{
		rulesService: rulesService,
	}
}

// ========== Enhanced Rules ==========

// List returns a program's enhanced rules ordered by position.
func (h *RulesHandler) List(c *gin.Context) {
	result, err := h.rulesService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to list rules", err)
		return
	}

	response.Success(c, http.StatusOK, "rules retrieved", result)
}

// ReplaceAll swaps in the full rule list for a program atomically.
func (h *RulesHandler) ReplaceAll(c *gin.Context) {
	var req rules.ReplaceRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.rulesService.ReplaceAll(c.Request.Context(), c.Param("id"), req.Rules)
	if err != nil {
		response.Failure(c, "failed to save rules", err)
		return
	}

	response.Success(c, http.StatusOK, "rules saved", result)
}

// ========== Rule Graph ==========

// GetGraph returns the visual rule builder graph for a program.
func (h *RulesHandler) GetGraph(c *gin.Context) {
	result, err := h.rulesService.GetGraph(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to get rule graph", err)
		return
	}

	response.Success(c, http.StatusOK, "rule graph retrieved", result)
}

// SaveGraph validates and stores a rule graph.
func (h *RulesHandler) SaveGraph(c *gin.Context) {
	var req rules.SaveGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.rulesService.SaveGraph(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to save rule graph", err)
		return
	}

	response.Success(c, http.StatusOK, "rule graph saved", result)
}

// EarningConfig exports the saved graph as a flat earning configuration.
func (h *RulesHandler) EarningConfig(c *gin.Context) {
	result, err := h.rulesService.EarningConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to export earning config", err)
		return
	}

	response.Success(c, http.StatusOK, "earning config retrieved", result)
}
