// internal/domain/rules/dto.go
package rules

type RuleInput struct {
	ID          string      `json:"id"`
	Name        string      `json:"name" binding:"required,max=255"`
	Description string      `json:"description"`
	IsActive    *bool       `json:"is_active"`
	Conditions  []Condition `json:"conditions" binding:"required,min=1"`
	Effects     []Effect    `json:"effects" binding:"required,min=1"`
}

// ReplaceRulesRequest is the save-all payload: the whole rule list for a
// program, applied atomically.
type ReplaceRulesRequest struct {
	Rules []RuleInput `json:"rules" binding:"required"`
}

type SaveGraphRequest struct {
	Nodes []Node `json:"nodes" binding:"required"`
	Edges []Edge `json:"edges"`
}
