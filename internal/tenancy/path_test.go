package tenancy

import "testing"

func TestExtractSlug(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Tenant API namespace", "/schools/alpha/students", "alpha"},
		{"Tenant API namespace bare", "/schools/alpha", "alpha"},
		{"Legacy admin shape", "/alpha/admin/reports", "alpha"},
		{"Legacy teachers shape", "/alpha/teachers", "alpha"},
		{"Legacy students shape", "/beta/students/42", "beta"},
		{"Legacy dashboard shape", "/beta/dashboard", "beta"},
		{"Top-level admin is not a slug", "/admin/students", ""},
		{"Top-level teachers is not a slug", "/teachers/salaries/1", ""},
		{"Top-level dashboard is not a slug", "/dashboard/students", ""},
		{"Super admin area", "/super-admin/schools", ""},
		{"Controller area", "/controller/quality-reviews", ""},
		{"Unknown second segment", "/alpha/reports", ""},
		{"Case sensitive section", "/alpha/Admin/reports", ""},
		{"Root", "/", ""},
		{"Single segment", "/alpha", ""},
		{"Empty", "", ""},
		{"Login", "/login", ""},
		{"Api prefix", "/api/v1/auth/login", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSlug(tt.path); got != tt.expected {
				t.Errorf("ExtractSlug(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestUnderTenantAPI(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/schools/alpha/students", true},
		{"/schools/alpha", true},
		{"/alpha/admin/reports", false},
		{"/admin/students", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := UnderTenantAPI(tt.path); got != tt.expected {
				t.Errorf("UnderTenantAPI(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
