package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whatsapp prefix stripped", "whatsapp:+919876543210", "+919876543210"},
		{"already canonical", "+919876543210", "+919876543210"},
		{"bare 10 digit gets country code", "9876543210", "+919876543210"},
		{"91-prefixed 12 digit", "919876543210", "+919876543210"},
		{"spaces and dashes removed", "+91 98765-43210", "+919876543210"},
		{"leading zero trunk prefix dropped", "09876543210", "+919876543210"},
		{"us number untouched", "+14155552671", "+14155552671"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}
