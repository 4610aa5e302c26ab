// internal/domain/transaction/dto.go
package transaction

type EarnRequest struct {
	MemberID    string  `json:"member_id" binding:"required"`
	OrderAmount float64 `json:"order_amount" binding:"required,min=0"`
	Category    string  `json:"category"`
	OrderRef    string  `json:"order_ref"`
	Description string  `json:"description"`
}

type RedeemRequest struct {
	MemberID    string `json:"member_id" binding:"required"`
	RewardID    string `json:"reward_id" binding:"required"`
	Description string `json:"description"`
}

type AdjustRequest struct {
	MemberID    string `json:"member_id" binding:"required"`
	Points      int    `json:"points" binding:"required"`
	Description string `json:"description" binding:"required"`
	OrderRef    string `json:"order_ref"`
}

type TransactionListFilters struct {
	MemberID string `form:"member_id"`
	Type     string `form:"type" binding:"omitempty,oneof=EARN REDEEM ADJUST"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
}
