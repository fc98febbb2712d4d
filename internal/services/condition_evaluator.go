package services

import (
	"fmt"
	"reflect"
	"strings"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/models"
)

// EvaluateConditions evaluates a trigger condition tree against a record.
// It is total: malformed or stale conditions degrade to false plus a
// diagnostic so a bad rule never blocks unrelated record writes.
//
// A nil tree matches everything. Empty AND evaluates to true, empty OR to
// false; both combinators short-circuit.
func EvaluateConditions(node *models.ConditionNode, record *models.Record, schema *models.ComposedSchema) (bool, []models.Diagnostic) {
	if node == nil {
		return true, nil
	}

	var diags []models.Diagnostic
	result := evaluateNode(node, record, schema, &diags)
	return result, diags
}

func evaluateNode(node *models.ConditionNode, record *models.Record, schema *models.ComposedSchema, diags *[]models.Diagnostic) bool {
	if node == nil {
		*diags = append(*diags, models.Diagnostic{Message: "nil condition node"})
		return false
	}

	switch node.Op {
	case constants.CombinatorAnd:
		for _, child := range node.Children {
			if !evaluateNode(child, record, schema, diags) {
				return false
			}
		}
		return true
	case constants.CombinatorOr:
		for _, child := range node.Children {
			if evaluateNode(child, record, schema, diags) {
				return true
			}
		}
		return false
	case "":
		return evaluateLeaf(node, record, schema, diags)
	}

	*diags = append(*diags, models.Diagnostic{Message: fmt.Sprintf("unknown combinator '%s'", node.Op)})
	return false
}

func evaluateLeaf(leaf *models.ConditionNode, record *models.Record, schema *models.ComposedSchema, diags *[]models.Diagnostic) bool {
	if schema != nil && !schema.HasField(leaf.Field) {
		*diags = append(*diags, models.Diagnostic{
			Field:   leaf.Field,
			Message: fmt.Sprintf("field '%s' is not part of the schema", leaf.Field),
		})
		return false
	}

	actual, found := record.Lookup(leaf.Field)
	if !found {
		*diags = append(*diags, models.Diagnostic{
			Field:   leaf.Field,
			Message: fmt.Sprintf("field '%s' is absent from the record", leaf.Field),
		})
		return false
	}

	switch leaf.Operator {
	case constants.OpEq:
		return looseEqual(actual, leaf.Value)
	case constants.OpNe:
		return !looseEqual(actual, leaf.Value)
	case constants.OpGt, constants.OpGte, constants.OpLt, constants.OpLte:
		return evaluateOrdering(leaf, actual, diags)
	case constants.OpLike:
		return evaluateLike(leaf, actual, diags)
	case constants.OpIn:
		return evaluateMembership(leaf, actual, diags)
	case constants.OpNotIn:
		ok := evaluateMembershipList(leaf, actual, diags)
		if ok == nil {
			return false
		}
		return !*ok
	}

	*diags = append(*diags, models.Diagnostic{
		Field:   leaf.Field,
		Message: fmt.Sprintf("unsupported operator '%s'", leaf.Operator),
	})
	return false
}

// looseEqual compares with numeric coercion when both sides read as
// numbers, strict comparison otherwise.
func looseEqual(a, b interface{}) bool {
	an, aok := models.AsNumber(a)
	bn, bok := models.AsNumber(b)
	if aok && bok {
		return an == bn
	}
	return reflect.DeepEqual(a, b)
}

func evaluateOrdering(leaf *models.ConditionNode, actual interface{}, diags *[]models.Diagnostic) bool {
	// Numbers first, then date-comparable values.
	an, aok := models.AsNumber(actual)
	bn, bok := models.AsNumber(leaf.Value)
	if aok && bok {
		return compareOrdered(leaf.Operator, an, bn)
	}

	ad, aok := models.AsDate(actual)
	bd, bok := models.AsDate(leaf.Value)
	if aok && bok {
		return compareOrdered(leaf.Operator, float64(ad.UnixMilli()), float64(bd.UnixMilli()))
	}

	*diags = append(*diags, models.Diagnostic{
		Field:   leaf.Field,
		Message: fmt.Sprintf("operator '%s' requires comparable numeric or date operands", leaf.Operator),
	})
	return false
}

func compareOrdered(op string, a, b float64) bool {
	switch op {
	case constants.OpGt:
		return a > b
	case constants.OpGte:
		return a >= b
	case constants.OpLt:
		return a < b
	case constants.OpLte:
		return a <= b
	}
	return false
}

func evaluateLike(leaf *models.ConditionNode, actual interface{}, diags *[]models.Diagnostic) bool {
	haystack, hok := models.AsText(actual)
	needle, nok := models.AsText(leaf.Value)
	if !hok || !nok {
		*diags = append(*diags, models.Diagnostic{
			Field:   leaf.Field,
			Message: "operator 'like' requires text operands",
		})
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func evaluateMembership(leaf *models.ConditionNode, actual interface{}, diags *[]models.Diagnostic) bool {
	ok := evaluateMembershipList(leaf, actual, diags)
	if ok == nil {
		return false
	}
	return *ok
}

// evaluateMembershipList returns nil when the condition value is not an
// array; the caller degrades to false either way.
func evaluateMembershipList(leaf *models.ConditionNode, actual interface{}, diags *[]models.Diagnostic) *bool {
	list, ok := leaf.Value.([]interface{})
	if !ok {
		*diags = append(*diags, models.Diagnostic{
			Field:   leaf.Field,
			Message: fmt.Sprintf("operator '%s' expects an array value", leaf.Operator),
		})
		return nil
	}

	found := false
	for _, item := range list {
		if looseEqual(actual, item) {
			found = true
			break
		}
	}
	return &found
}

// ValidateConditionTree is the strict CRUD-time check: every leaf field
// must resolve in the source schema, every operator and combinator must be
// known, and in/not_in values must be arrays.
func ValidateConditionTree(node *models.ConditionNode, schema *models.ComposedSchema) []string {
	if node == nil {
		return nil
	}

	var errs []string
	validateConditionNode(node, schema, &errs)
	return errs
}

func validateConditionNode(node *models.ConditionNode, schema *models.ComposedSchema, errs *[]string) {
	if node == nil {
		*errs = append(*errs, "condition node must not be null")
		return
	}

	if node.Op != "" {
		if node.Op != constants.CombinatorAnd && node.Op != constants.CombinatorOr {
			*errs = append(*errs, fmt.Sprintf("unknown combinator '%s'", node.Op))
		}
		for _, child := range node.Children {
			validateConditionNode(child, schema, errs)
		}
		return
	}

	if node.Field == "" {
		*errs = append(*errs, "condition leaf must name a field")
	} else if schema != nil && !schema.HasField(node.Field) {
		*errs = append(*errs, fmt.Sprintf("field '%s' does not exist in the source schema", node.Field))
	}

	if !constants.IsValidOperator(node.Operator) {
		*errs = append(*errs, fmt.Sprintf("unknown operator '%s'", node.Operator))
	}

	if node.Operator == constants.OpIn || node.Operator == constants.OpNotIn {
		if _, ok := node.Value.([]interface{}); !ok {
			*errs = append(*errs, fmt.Sprintf("operator '%s' expects an array value", node.Operator))
		}
	}
}
