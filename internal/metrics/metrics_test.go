package metrics

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/tournaments", "/api/tournaments"},
		{"/api/tournaments/9f6e1a2b-3c4d-5e6f-7a8b-9c0d1e2f3a4b/join", "/api/tournaments/{id}/join"},
		{"/api/tournaments/9f6e1a2b-3c4d-5e6f-7a8b-9c0d1e2f3a4b", "/api/tournaments/{id}"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
