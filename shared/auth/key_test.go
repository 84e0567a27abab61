package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	const key = "change_on_install"

	tests := []struct {
		name      string
		presented string
		want      bool
	}{
		{name: "exact match", presented: "change_on_install", want: true},
		{name: "prefix", presented: "change_on", want: false},
		{name: "suffix", presented: "on_install", want: false},
		{name: "superstring", presented: "change_on_install2", want: false},
		{name: "leading garbage", presented: "xchange_on_install", want: false},
		{name: "case variant", presented: "Change_On_Install", want: false},
		{name: "empty", presented: "", want: false},
		{name: "whitespace padded", presented: " change_on_install ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateKey(key, tt.presented))
		})
	}
}

func TestValidateKeyEmptyExpected(t *testing.T) {
	// A misconfigured empty key must never accept anything, including
	// another empty string.
	assert.False(t, ValidateKey("", ""))
	assert.False(t, ValidateKey("", "anything"))
}
