package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Olga"))
	assert.NoError(t, ValidateName("  Jo  "), "surrounding whitespace is ignored")

	assert.Error(t, ValidateName("O"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("a", 61)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("olga@example.com"))

	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Olga <olga@example.com>"), "display names are rejected")
	assert.Error(t, ValidateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("StrongPass123"))

	assert.Error(t, ValidatePassword("aB1"), "too short")
	assert.Error(t, ValidatePassword(strings.Repeat("a", 70)+"abc123"), "over the bcrypt limit")
	assert.Error(t, ValidatePassword("onlyletters"), "needs a digit")
	assert.Error(t, ValidatePassword("12345678"), "needs a letter")
}
