package validation

import (
	"net"
	"strings"
	"testing"
)

func TestNewBaseURLValidator(t *testing.T) {
	v := NewBaseURLValidator()
	if v == nil {
		t.Fatal("NewBaseURLValidator returned nil")
	}
	if !v.AllowPrivateIPs {
		t.Error("Expected AllowPrivateIPs to be true by default")
	}
	if v.MaxLength != 2048 {
		t.Errorf("Expected MaxLength to be 2048, got %d", v.MaxLength)
	}

	strict := NewStrictBaseURLValidator()
	if strict.AllowPrivateIPs {
		t.Error("Expected AllowPrivateIPs to be false for strict mode")
	}
}

func TestValidateAndNormalize(t *testing.T) {
	v := NewBaseURLValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
		errorMsg    string
	}{
		{
			name:        "empty URL",
			input:       "",
			shouldError: true,
			errorMsg:    "URL cannot be empty",
		},
		{
			name:        "whitespace-only URL",
			input:       "   ",
			shouldError: true,
			errorMsg:    "URL cannot be empty",
		},
		{
			name:     "URL without protocol gets HTTPS",
			input:    "hacker-news.firebaseio.com",
			expected: "https://hacker-news.firebaseio.com",
		},
		{
			name:     "trailing slash stripped",
			input:    "https://hacker-news.firebaseio.com/",
			expected: "https://hacker-news.firebaseio.com",
		},
		{
			name:     "path prefix kept",
			input:    "http://proxy.internal/hn/",
			expected: "http://proxy.internal/hn",
		},
		{
			name:     "loopback with port allowed",
			input:    "http://127.0.0.1:8080",
			expected: "http://127.0.0.1:8080",
		},
		{
			name:        "URL too long",
			input:       "https://example.org/" + strings.Repeat("a", 2100),
			shouldError: true,
			errorMsg:    "URL too long",
		},
		{
			name:        "invalid characters",
			input:       "https://example.org/<script>",
			shouldError: true,
			errorMsg:    "invalid characters",
		},
		{
			name:        "unsupported scheme",
			input:       "ftp://example.org",
			shouldError: true,
			errorMsg:    "http or https",
		},
		{
			name:        "query not allowed",
			input:       "https://example.org?print=pretty",
			shouldError: true,
			errorMsg:    "query or fragment",
		},
		{
			name:        "directory traversal",
			input:       "https://example.org/a/../b",
			shouldError: true,
			errorMsg:    "directory traversal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStrictValidatorRejectsPrivateHosts(t *testing.T) {
	v := NewStrictBaseURLValidator()

	for _, input := range []string{
		"http://localhost:8080",
		"http://127.0.0.1",
		"http://10.0.0.5",
		"http://192.168.1.1",
	} {
		if _, err := v.ValidateAndNormalize(input); err == nil {
			t.Errorf("expected strict validator to reject %q", input)
		}
	}

	if _, err := v.ValidateAndNormalize("https://hacker-news.firebaseio.com"); err != nil {
		t.Errorf("strict validator rejected public host: %v", err)
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.0.1", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		if got := isPrivateIP(net.ParseIP(tt.ip)); got != tt.private {
			t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
		}
	}
}
