package auth

import (
	"errors"
	"fmt"
	"strings"

	authservice "dispatch/internal/service/auth"
)

// MinJWTSecretLength is the shortest accepted HS256 signing secret.
const MinJWTSecretLength = 32

var weakSecretPrefixes = []string{
	"secret",
	"password",
	"changeme",
	"jwt",
	"dispatch",
	"admin",
	"test",
	"default",
}

var secretPolicy = authservice.CredentialRequirements{MinPasswordLength: MinJWTSecretLength}

// ValidateJWTSecret rejects signing secrets that are missing, short or
// guessable. It runs once at startup.
func ValidateJWTSecret(secret string) error {
	if secret == "" {
		return errors.New("jwt secret validation failed: secret must not be empty")
	}
	if err := secretPolicy.CheckPassword(secret); err != nil {
		return fmt.Errorf("jwt secret validation failed: %w", err)
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakSecretPrefixes {
		// padding a weak word out to length is still weak
		if strings.HasPrefix(lower, weak) && len(strings.Trim(lower[len(weak):], "0123456789-_!")) == 0 {
			return fmt.Errorf("jwt secret validation failed: secret must not be based on %q", weak)
		}
	}
	return nil
}
