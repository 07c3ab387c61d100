package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/importdesk/importdesk/internal/db/models"
)

// EvaluateConditions folds the condition chain left to right over the deal
// snapshot. Each condition's LogicalOperator joins it to the accumulated
// result of its predecessors; an empty chain matches.
func EvaluateConditions(conditions []models.RuleCondition, deal *models.Deal) (bool, error) {
	if len(conditions) == 0 {
		return true, nil
	}

	result, err := evaluateCondition(conditions[0], deal)
	if err != nil {
		return false, err
	}

	for _, cond := range conditions[1:] {
		matched, err := evaluateCondition(cond, deal)
		if err != nil {
			return false, err
		}

		switch cond.LogicalOperator {
		case models.LogicalOr:
			result = result || matched
		default: // AND, also when unspecified
			result = result && matched
		}
	}

	return result, nil
}

func evaluateCondition(cond models.RuleCondition, deal *models.Deal) (bool, error) {
	switch cond.Field {
	case "value":
		return compareNumeric(cond, deal.Value)
	case "currency":
		return compareString(cond, deal.Currency)
	case "status":
		return compareString(cond, string(deal.Status))
	case "pipelineId":
		return compareString(cond, deal.PipelineID)
	case "stageId":
		return compareString(cond, deal.StageID)
	case "title":
		return compareString(cond, deal.Title)
	case "lostReason":
		return compareString(cond, deal.LostReason)
	case "ownerId":
		return compareString(cond, deal.OwnerID)
	case "organisationId":
		return compareString(cond, deal.OrganisationID)
	default:
		return false, fmt.Errorf("unknown condition field: %s", cond.Field)
	}
}

func compareNumeric(cond models.RuleCondition, value float64) (bool, error) {
	target, ok := toFloat(cond.Value)
	if !ok {
		return false, fmt.Errorf("non-numeric value for field %s: %v", cond.Field, cond.Value)
	}

	switch cond.Operator {
	case "==":
		return value == target, nil
	case "!=":
		return value != target, nil
	case ">":
		return value > target, nil
	case ">=":
		return value >= target, nil
	case "<":
		return value < target, nil
	case "<=":
		return value <= target, nil
	default:
		return false, fmt.Errorf("unknown numeric operator: %s", cond.Operator)
	}
}

func compareString(cond models.RuleCondition, value string) (bool, error) {
	switch cond.Operator {
	case "==":
		target, ok := cond.Value.(string)
		if !ok {
			return false, fmt.Errorf("non-string value for field %s: %v", cond.Field, cond.Value)
		}
		return value == target, nil
	case "!=":
		target, ok := cond.Value.(string)
		if !ok {
			return false, fmt.Errorf("non-string value for field %s: %v", cond.Field, cond.Value)
		}
		return value != target, nil
	case "contains":
		target, ok := cond.Value.(string)
		if !ok {
			return false, fmt.Errorf("non-string value for field %s: %v", cond.Field, cond.Value)
		}
		return strings.Contains(value, target), nil
	case "in":
		return stringIn(cond, value)
	default:
		return false, fmt.Errorf("unknown string operator: %s", cond.Operator)
	}
}

// stringIn accepts both []string and the []any shape JSON decoding yields.
func stringIn(cond models.RuleCondition, value string) (bool, error) {
	switch list := cond.Value.(type) {
	case []string:
		for _, v := range list {
			if v == value {
				return true, nil
			}
		}
		return false, nil
	case []any:
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return false, fmt.Errorf("non-string element in 'in' list for field %s", cond.Field)
			}
			if s == value {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("invalid value for 'in' operator on field %s", cond.Field)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
