package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"a.b+c@sub.example.co", true},
		{"alice@example", false},
		{"@example.com", false},
		{"alice@", false},
		{"", false},
		{"alice at example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidEmail(tt.email), "email %q", tt.email)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("bob"))
	assert.NoError(t, ValidateUsername(strings.Repeat("a", UsernameMaxLength)))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", UsernameMaxLength+1)))
	// Surrounding whitespace does not count toward the length.
	assert.Error(t, ValidateUsername("  a  "))
}

func TestValidateFullName(t *testing.T) {
	assert.NoError(t, ValidateFullName("Alice Doe"))
	assert.Error(t, ValidateFullName("Al"))
	assert.Error(t, ValidateFullName(strings.Repeat("a", FullNameMaxLength+1)))
}

func TestValidateBioAndLocation(t *testing.T) {
	assert.NoError(t, ValidateBio(""))
	assert.NoError(t, ValidateBio(strings.Repeat("x", BioMaxLength)))
	assert.Error(t, ValidateBio(strings.Repeat("x", BioMaxLength+1)))

	assert.NoError(t, ValidateLocation(""))
	assert.NoError(t, ValidateLocation(strings.Repeat("x", LocationMaxLength)))
	assert.Error(t, ValidateLocation(strings.Repeat("x", LocationMaxLength+1)))
}

func TestIsValidImageURL(t *testing.T) {
	assert.True(t, IsValidImageURL(""))
	assert.True(t, IsValidImageURL("https://cdn.example.com/avatar.png"))
	assert.True(t, IsValidImageURL("http://example.com/a.jpg"))
	assert.False(t, IsValidImageURL("ftp://example.com/a.jpg"))
	assert.False(t, IsValidImageURL("not a url"))
	assert.False(t, IsValidImageURL("/relative/path.png"))
}

func TestValidateDOB(t *testing.T) {
	assert.NoError(t, ValidateDOB(time.Now().AddDate(-MinimumAgeYears-1, 0, 0)))
	assert.Error(t, ValidateDOB(time.Now().AddDate(-MinimumAgeYears+1, 0, 0)))
	assert.Error(t, ValidateDOB(time.Now()))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("secret"))
	assert.False(t, IsValidPassword("12345"))
	assert.False(t, IsValidPassword(""))
}
