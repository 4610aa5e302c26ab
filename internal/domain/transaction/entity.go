// internal/domain/transaction/entity.go
package transaction

import (
	"database/sql"
	"time"
)

type TransactionType string

const (
	TypeEarn   TransactionType = "EARN"
	TypeRedeem TransactionType = "REDEEM"
	TypeAdjust TransactionType = "ADJUST"
)

type Transaction struct {
	ID          string          `json:"id" db:"id"`
	MemberID    string          `json:"member_id" db:"member_id"`
	Type        TransactionType `json:"type" db:"type"`
	Points      int             `json:"points" db:"points"`
	Description string          `json:"description" db:"description"`
	OrderRef    sql.NullString  `json:"order_ref,omitempty" db:"order_ref"`
	RewardID    sql.NullString  `json:"reward_id,omitempty" db:"reward_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type TransactionStats struct {
	TotalTransactions int64 `json:"total_transactions"`
	TotalEarned       int64 `json:"total_earned"`
	TotalRedeemed     int64 `json:"total_redeemed"`
}
