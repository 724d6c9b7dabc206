package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Profile field constraints, checked before persistence. These mirror
// the limits enforced by the API contract: short usernames and names,
// a capped bio and location, URL-shaped image fields and a minimum age.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	FullNameMinLength = 3
	FullNameMaxLength = 30
	BioMaxLength      = 100
	LocationMaxLength = 30
	MinimumAgeYears   = 13
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return fmt.Errorf("username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength)
	}
	return nil
}

func ValidateFullName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if len(fullName) < FullNameMinLength || len(fullName) > FullNameMaxLength {
		return fmt.Errorf("full name must be between %d and %d characters", FullNameMinLength, FullNameMaxLength)
	}
	return nil
}

func ValidateBio(bio string) error {
	if len(bio) > BioMaxLength {
		return fmt.Errorf("bio cannot exceed %d characters", BioMaxLength)
	}
	return nil
}

func ValidateLocation(location string) error {
	if len(location) > LocationMaxLength {
		return fmt.Errorf("location cannot exceed %d characters", LocationMaxLength)
	}
	return nil
}

// IsValidImageURL accepts absolute http(s) URLs. Empty values are fine;
// the model falls back to the default images.
func IsValidImageURL(raw string) bool {
	if raw == "" {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateDOB enforces the minimum account age.
func ValidateDOB(dob time.Time) error {
	cutoff := time.Now().AddDate(-MinimumAgeYears, 0, 0)
	if dob.After(cutoff) {
		return fmt.Errorf("you must be at least %d years old", MinimumAgeYears)
	}
	return nil
}

func IsValidPassword(password string) bool {
	return len(password) >= 6
}
