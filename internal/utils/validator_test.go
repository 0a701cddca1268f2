// internal/utils/validator_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidSlug(t *testing.T) {
	valid := []string{"acme", "acme-snacks", "loja-do-ze", "a1-b2-c3"}
	for _, s := range valid {
		assert.True(t, IsValidSlug(s), "expected %q to be valid", s)
	}

	invalid := []string{"", "A", "Acme", "acme_snacks", "-acme", "acme-", "acme--snacks", "loja do ze", strings.Repeat("a", 101)}
	for _, s := range invalid {
		assert.False(t, IsValidSlug(s), "expected %q to be invalid", s)
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := GenerateOrderNumber()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(number, "ZC-"), "got %q", number)
		assert.Len(t, number, 11)
		assert.False(t, seen[number], "duplicate order number %q", number)
		seen[number] = true
	}
}

func TestValidateStructStrongPassword(t *testing.T) {
	type req struct {
		Password string `validate:"required,strong_password"`
	}

	assert.NoError(t, ValidateStruct(&req{Password: "Password123"}))
	assert.Error(t, ValidateStruct(&req{Password: "weak"}))
	assert.Error(t, ValidateStruct(&req{Password: "alllowercase1"}))
	assert.Error(t, ValidateStruct(&req{Password: "NoNumbersHere"}))
}
