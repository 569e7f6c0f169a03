package services

import "testing"

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple name", "Greenwood", "greenwood"},
		{"Name with spaces", "Greenwood High School", "greenwood-high-school"},
		{"Mixed case", "ST MARY Academy", "st-mary-academy"},
		{"Punctuation stripped", "St. Mary's Academy", "st-marys-academy"},
		{"Digits kept", "School 42", "school-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateSlug(tt.input); got != tt.expected {
				t.Errorf("generateSlug(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
