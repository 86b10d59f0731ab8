package auth

import (
	"fmt"
	"strings"
	"unicode"

	"dispatch/internal/domain/entity"
)

// CredentialRequirements defines password policy requirements.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

var keyboardPatterns = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
	"qwerty",
	"asdfgh",
	"zxcvb",
}

// CheckPassword applies the policy to a new password. Failures are
// validation errors on the "password" field.
func (r CredentialRequirements) CheckPassword(password string) error {
	fail := func(msg string) error {
		return &entity.ValidationError{Field: "password", Message: msg}
	}
	if len([]rune(password)) < r.MinPasswordLength {
		return fail(fmt.Sprintf("This password is too short. It must contain at least %d characters.", r.MinPasswordLength))
	}
	lower := strings.ToLower(password)
	for _, weak := range r.WeakPasswords {
		if lower == strings.ToLower(weak) {
			return fail("This password is too common.")
		}
	}
	if isNumeric(password) {
		return fail("This password is entirely numeric.")
	}
	if isRepeatedChar(password) || isKeyboardPattern(lower) {
		return fail("This password is too easy to guess.")
	}
	return nil
}

func isNumeric(pass string) bool {
	for _, ch := range pass {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return pass != ""
}

// isRepeatedChar checks if the password consists of a single repeated character.
func isRepeatedChar(pass string) bool {
	if len(pass) == 0 {
		return false
	}
	first := pass[0]
	for i := 1; i < len(pass); i++ {
		if pass[i] != first {
			return false
		}
	}
	return true
}

// isKeyboardPattern reports passwords that are a keyboard row, forwards or
// backwards, with at most a short suffix.
func isKeyboardPattern(lower string) bool {
	for _, pattern := range keyboardPatterns {
		for _, p := range []string{pattern, reverse(pattern)} {
			if strings.HasPrefix(lower, p) && len(lower)-len(p) <= 3 {
				return true
			}
		}
	}
	return false
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
