package models

// ConditionNode is a recursive trigger condition: either a leaf comparison
// ({field, operator, value}) or a boolean combinator ({op, children}).
// A node with a non-empty Op is a combinator; everything else is a leaf.
// Persistence serializes the tree as JSON at the column level, so the node
// itself carries no sql plumbing.
type ConditionNode struct {
	Field    string           `json:"field,omitempty"`
	Operator string           `json:"operator,omitempty"`
	Value    interface{}      `json:"value,omitempty"`
	Op       string           `json:"op,omitempty"`
	Children []*ConditionNode `json:"children,omitempty"`
}

// IsLeaf reports whether the node is a field comparison.
func (n *ConditionNode) IsLeaf() bool {
	return n != nil && n.Op == ""
}

// Diagnostic records one non-fatal anomaly hit during trigger evaluation,
// e.g. a leaf referencing a field the schema no longer carries.
type Diagnostic struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
