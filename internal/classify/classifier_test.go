package classify

import (
	"testing"
)

func TestClassifyAddressee(t *testing.T) {
	tests := []struct {
		name          string
		addressee     string
		number        string
		expectType    string
		minConfidence float64
		expectSignal  string
	}{
		{
			name:          "nine digit number is a group",
			addressee:     "老同学",
			number:        "123456789",
			expectType:    TypeGroup,
			minConfidence: 0.6,
			expectSignal:  "group_number_length",
		},
		{
			name:          "group keyword in name",
			addressee:     "工作群",
			number:        "12345",
			expectType:    TypeGroup,
			minConfidence: 0.4,
			expectSignal:  "group_keyword:群",
		},
		{
			name:          "everyone keyword",
			addressee:     "大家",
			number:        "88888888",
			expectType:    TypeGroup,
			minConfidence: 0.4,
			expectSignal:  "group_keyword:大家",
		},
		{
			name:          "both signals capped",
			addressee:     "好多人的群",
			number:        "987654321",
			expectType:    TypeGroup,
			minConfidence: 0.9,
			expectSignal:  "group_number_length",
		},
		{
			name:          "plain contact",
			addressee:     "小明",
			number:        "123456",
			expectType:    TypeContact,
			minConfidence: 0.5,
			expectSignal:  "default_contact",
		},
		{
			name:          "ten digit number is a contact",
			addressee:     "张三",
			number:        "1234567890",
			expectType:    TypeContact,
			minConfidence: 0.5,
			expectSignal:  "default_contact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyAddressee(tt.addressee, tt.number)

			if result.Type != tt.expectType {
				t.Errorf("expected type '%s', got '%s'", tt.expectType, result.Type)
			}
			if result.Confidence < tt.minConfidence {
				t.Errorf("expected confidence >= %.2f, got %.2f", tt.minConfidence, result.Confidence)
			}
			if result.Confidence > 1.0 {
				t.Errorf("confidence should be capped at 1.0, got %.2f", result.Confidence)
			}

			found := false
			for _, s := range result.Signals {
				if s == tt.expectSignal {
					found = true
				}
			}
			if !found {
				t.Errorf("expected signal '%s' in %v", tt.expectSignal, result.Signals)
			}

			if result.IsGroup() != (tt.expectType == TypeGroup) {
				t.Errorf("IsGroup() disagrees with type '%s'", result.Type)
			}
		})
	}
}
