package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestIssue_Text(t *testing.T) {
	tests := []struct {
		name   string
		issue  Issue
		expect string
	}{
		{"with path", Issue{Message: "expected string, received number", Path: []string{"name"}}, "expected string, received number (at name)"},
		{"nested path", Issue{Message: "missing required property", Path: []string{"user", "address", "city"}}, "missing required property (at user.address.city)"},
		{"array index in path", Issue{Message: "expected number, received string", Path: []string{"items", "0", "price"}}, "expected number, received string (at items.0.price)"},
		{"empty path", Issue{Message: "value is not an object"}, "value is not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.issue.Text())
		})
	}
}

func TestMessagesFromIssues(t *testing.T) {
	issues := []Issue{
		{Message: "expected string, received number", Path: []string{"name"}},
		{Message: "missing required property", Path: []string{"email"}},
	}
	msgs := messagesFromIssues(issues)
	assert.Equal(t, []Message{
		{Code: CodeValidation, Text: "expected string, received number (at name)"},
		{Code: CodeValidation, Text: "missing required property (at email)"},
	}, msgs)
}

func TestFailureResponse(t *testing.T) {
	resp := failureResponse([]Issue{{Message: "bad value", Path: []string{"x"}}})
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, []Message{{Code: CodeValidation, Text: "bad value (at x)"}}, resp.Messages)
}
