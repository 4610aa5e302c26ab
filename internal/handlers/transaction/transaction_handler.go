// internal/handlers/transaction/transaction_handler.go
package transaction

import (
	"net/http"

	"loyaltystudio-service/internal/domain/transaction"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Earn awards points for an order through the program's rule stack.
func (h *TransactionHandler) Earn(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req transaction.EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.transactionService.Earn(c.Request.Context(), merchantID, c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to record earn", err)
		return
	}

	response.Success(c, http.StatusCreated, "points earned", result)
}

// Redeem exchanges points for a catalog reward.
func (h *TransactionHandler) Redeem(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req transaction.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.transactionService.Redeem(c.Request.Context(), merchantID, c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to redeem reward", err)
		return
	}

	response.Success(c, http.StatusCreated, "reward redeemed", result)
}

// Adjust applies a manual balance correction, positive or negative.
func (h *TransactionHandler) Adjust(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req transaction.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.transactionService.Adjust(c.Request.Context(), merchantID, c.Param("id"), &req)
	if err != nil {
		response.Failure(c, "failed to adjust balance", err)
		return
	}

	response.Success(c, http.StatusCreated, "balance adjusted", result)
}

// List returns a program's transaction history with filters and pagination.
func (h *TransactionHandler) List(c *gin.Context) {
	var filters transaction.TransactionListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.transactionService.List(c.Request.Context(), c.Param("id"), &filters)
	if err != nil {
		response.Failure(c, "failed to list transactions", err)
		return
	}

	response.Success(c, http.StatusOK, "transactions retrieved", result)
}

// Stats aggregates transaction volumes for a program.
func (h *TransactionHandler) Stats(c *gin.Context) {
	result, err := h.transactionService.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Failure(c, "failed to get transaction stats", err)
		return
	}

	response.Success(c, http.StatusOK, "transaction stats retrieved", result)
}
