package extract

import (
	"testing"
)

func TestValidGroupID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"0123", false},
		{"12", false},
		{"abcde", false},
		{"", false},
		{"12345678901", false},
		{"12 34", false},
		{"123456789", true},
		{"1234", true},
		{"1234567890", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ValidGroupID(tt.id); got != tt.valid {
				t.Errorf("ValidGroupID(%q) = %v, expected %v", tt.id, got, tt.valid)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"100", 100},
		{" 42 ", 42},
		{"88元", 88},
		{"abc", 0},
		{"", 0},
		{"-5", 0},
		{"99999999999999999999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseAmount(tt.input); got != tt.expected {
				t.Errorf("parseAmount(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindAllIsStateless(t *testing.T) {
	body := "[qq号|A|111|1][qq号|B|222|2]"

	first := findAll(contactPattern, body)
	second := findAll(contactPattern, body)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Expected 2 matches on every scan, got %d and %d", len(first), len(second))
	}
	if first[1].fields[0] != "B" || second[1].fields[0] != "B" {
		t.Errorf("Expected second match name 'B', got '%s' and '%s'", first[1].fields[0], second[1].fields[0])
	}
}

func TestRuneOffset(t *testing.T) {
	body := "你好[qq号|A|1|1]"
	matches := findAll(contactPattern, body)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if got := runeOffset(body, matches[0].start); got != 2 {
		t.Errorf("Expected character offset 2, got %d", got)
	}
}
