package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/importdesk/importdesk/internal/db/models"
)

func TestEvaluateConditions(t *testing.T) {
	deal := &models.Deal{
		ID:             "deal-1",
		TenantID:       "tenant-test",
		PipelineID:     "pipe-1",
		StageID:        "stage-2",
		Title:          "BMW X5 fleet import",
		OrganisationID: "org-1",
		OwnerID:        "user-7",
		Value:          25000,
		Currency:       "EUR",
		Status:         models.DealStatusLost,
		LostReason:     "price too high",
	}

	testCases := []struct {
		name       string
		conditions []models.RuleCondition
		expected   bool
		wantErr    bool
	}{
		{
			name:       "empty chain matches",
			conditions: nil,
			expected:   true,
		},
		{
			name: "numeric equality",
			conditions: []models.RuleCondition{
				{Field: "value", Operator: "==", Value: 25000.0},
			},
			expected: true,
		},
		{
			name: "numeric greater than with int value",
			conditions: []models.RuleCondition{
				{Field: "value", Operator: ">", Value: 20000},
			},
			expected: true,
		},
		{
			name: "numeric less than fails",
			conditions: []models.RuleCondition{
				{Field: "value", Operator: "<", Value: 10000},
			},
			expected: false,
		},
		{
			name: "string equality on status",
			conditions: []models.RuleCondition{
				{Field: "status", Operator: "==", Value: "lost"},
			},
			expected: true,
		},
		{
			name: "string inequality",
			conditions: []models.RuleCondition{
				{Field: "currency", Operator: "!=", Value: "USD"},
			},
			expected: true,
		},
		{
			name: "contains on title",
			conditions: []models.RuleCondition{
				{Field: "title", Operator: "contains", Value: "fleet"},
			},
			expected: true,
		},
		{
			name: "in operator with string slice",
			conditions: []models.RuleCondition{
				{Field: "pipelineId", Operator: "in", Value: []string{"pipe-1", "pipe-2"}},
			},
			expected: true,
		},
		{
			name: "in operator with decoded json list",
			conditions: []models.RuleCondition{
				{Field: "stageId", Operator: "in", Value: []any{"stage-1", "stage-2"}},
			},
			expected: true,
		},
		{
			name: "and chain requires both",
			conditions: []models.RuleCondition{
				{Field: "status", Operator: "==", Value: "lost"},
				{Field: "value", Operator: ">", Value: 50000.0, LogicalOperator: models.LogicalAnd},
			},
			expected: false,
		},
		{
			name: "or chain needs either",
			conditions: []models.RuleCondition{
				{Field: "value", Operator: ">", Value: 50000.0},
				{Field: "lostReason", Operator: "contains", Value: "price", LogicalOperator: models.LogicalOr},
			},
			expected: true,
		},
		{
			name: "missing logical operator defaults to and",
			conditions: []models.RuleCondition{
				{Field: "status", Operator: "==", Value: "lost"},
				{Field: "ownerId", Operator: "==", Value: "user-8"},
			},
			expected: false,
		},
		{
			name: "unknown field errors",
			conditions: []models.RuleCondition{
				{Field: "licensePlate", Operator: "==", Value: "x"},
			},
			wantErr: true,
		},
		{
			name: "unknown operator errors",
			conditions: []models.RuleCondition{
				{Field: "value", Operator: "~=", Value: 1.0},
			},
			wantErr: true,
		},
		{
			name: "non numeric operand errors",
			conditions: []models.RuleCondition{
				{Field: "value", Operator: ">", Value: "lots"},
			},
			wantErr: true,
		},
		{
			name: "non string operand errors",
			conditions: []models.RuleCondition{
				{Field: "status", Operator: "==", Value: 7},
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matched, err := EvaluateConditions(tc.conditions, deal)

			if tc.wantErr {
				require.Error(t, err)
				assert.False(t, matched)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, matched)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected float64
		ok       bool
	}{
		{"float64", 1.5, 1.5, true},
		{"float32", float32(2), 2, true},
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"string", "5", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, ok := toFloat(tc.value)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, f)
			}
		})
	}
}
