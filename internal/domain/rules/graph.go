// internal/domain/rules/graph.go
package rules

import (
	"fmt"
	"time"
)

type NodeKind string

const (
	NodeBasePoints         NodeKind = "basePoints"
	NodeCategoryMultiplier NodeKind = "categoryMultiplier"
	NodeMinimumPurchase    NodeKind = "minimumPurchase"
	NodeMaximumPoints      NodeKind = "maximumPoints"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeConfig is the union of per-kind settings; the node kind decides
// which fields apply.
type NodeConfig struct {
	Points     int     `json:"points,omitempty"`     // basePoints
	MinAmount  float64 `json:"minAmount,omitempty"`  // basePoints, minimumPurchase
	Multiplier float64 `json:"multiplier,omitempty"` // categoryMultiplier
	Category   string  `json:"category,omitempty"`   // categoryMultiplier
	MaxPoints  int     `json:"maxPoints,omitempty"`  // maximumPoints
}

type Node struct {
	ID       string     `json:"id"`
	Kind     NodeKind   `json:"kind"`
	Position Position   `json:"position"`
	Config   NodeConfig `json:"config"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the persisted form of the visual rule builder, one per program.
type Graph struct {
	LoyaltyProgramID string    `json:"loyalty_program_id" db:"loyalty_program_id"`
	Nodes            []Node    `json:"nodes" db:"nodes"`
	Edges            []Edge    `json:"edges" db:"edges"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultConfig seeds a freshly dropped node with type-appropriate values.
func DefaultConfig(kind NodeKind) NodeConfig {
	switch kind {
	case NodeBasePoints:
		return NodeConfig{Points: 1, MinAmount: 0}
	case NodeCategoryMultiplier:
		return NodeConfig{Multiplier: 1, Category: "default"}
	case NodeMinimumPurchase:
		return NodeConfig{MinAmount: 0}
	case NodeMaximumPoints:
		return NodeConfig{MaxPoints: 0}
	default:
		return NodeConfig{}
	}
}

// ValidateNode checks the per-kind config schema: numeric fields are
// non-negative and multipliers are at least 1.
func ValidateNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("node id is required")
	}

	switch n.Kind {
	case NodeBasePoints:
		if n.Config.Points < 0 {
			return fmt.Errorf("node %s: points must be non-negative", n.ID)
		}
		if n.Config.MinAmount < 0 {
			return fmt.Errorf("node %s: min amount must be non-negative", n.ID)
		}
	case NodeCategoryMultiplier:
		if n.Config.Multiplier < 1 {
			return fmt.Errorf("node %s: multiplier must be at least 1", n.ID)
		}
		if n.Config.Category == "" {
			return fmt.Errorf("node %s: category is required", n.ID)
		}
	case NodeMinimumPurchase:
		if n.Config.MinAmount < 0 {
			return fmt.Errorf("node %s: min amount must be non-negative", n.ID)
		}
	case NodeMaximumPoints:
		if n.Config.MaxPoints < 0 {
			return fmt.Errorf("node %s: max points must be non-negative", n.ID)
		}
	default:
		return fmt.Errorf("node %s: unknown node kind %q", n.ID, n.Kind)
	}

	return nil
}

// Validate checks every node and that edges reference known nodes.
func (g *Graph) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := ValidateNode(n); err != nil {
			return err
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		ids[n.ID] = true
	}

	for _, e := range g.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("edge %s: unknown source node %s", e.ID, e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("edge %s: unknown target node %s", e.ID, e.Target)
		}
	}

	return nil
}

// EarningConfig is the flattened export of a rule graph, consumed by the
// transaction path.
type EarningConfig struct {
	BasePoints          int                `json:"base_points"`
	BaseMinAmount       float64            `json:"base_min_amount"`
	CategoryMultipliers map[string]float64 `json:"category_multipliers,omitempty"`
	MinimumPurchase     float64            `json:"minimum_purchase,omitempty"`
	MaximumPoints       int                `json:"maximum_points,omitempty"`
}

// Export flattens the graph into earning-rule config. Later nodes of the
// same kind win, matching the builder's visual top-to-bottom order.
func (g *Graph) Export() EarningConfig {
	cfg := EarningConfig{CategoryMultipliers: map[string]float64{}}
	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeBasePoints:
			cfg.BasePoints = n.Config.Points
			cfg.BaseMinAmount = n.Config.MinAmount
		case NodeCategoryMultiplier:
			cfg.CategoryMultipliers[n.Config.Category] = n.Config.Multiplier
		case NodeMinimumPurchase:
			cfg.MinimumPurchase = n.Config.MinAmount
		case NodeMaximumPoints:
			cfg.MaximumPoints = n.Config.MaxPoints
		}
	}
	return cfg
}
