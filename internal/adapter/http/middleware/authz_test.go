package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:3000", true},
		{"127.0.0.1:8080", true},
		{"[::1]:8080", true},
		{"api.domrealce.pt", false},
		{"10.0.0.5:8080", false},
		{"192.168.1.2", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLoopback(tt.host), "host %q", tt.host)
	}
}
