package auth

import (
	"errors"
	"fmt"
	"strings"
)

// MinSecretLength is the minimum JWT_SECRET length accepted at startup.
const MinSecretLength = 32

// weakSecretPrefixes catch placeholder secrets copied from examples.
var weakSecretPrefixes = []string{
	"secret",
	"password",
	"changeme",
	"your-secret",
	"jwt-secret",
	"test",
	"default",
	"admin",
	"123456",
	"qwerty",
}

// ValidateSecret checks JWT_SECRET at startup. The error never contains the secret.
func ValidateSecret(secret string) error {
	if secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters (current length: %d)", MinSecretLength, len(secret))
	}
	if isRepeatedChar(secret) {
		return errors.New("JWT_SECRET must not be a single repeated character")
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakSecretPrefixes {
		// "secretsecretsecret..." のような水増しも弾く
		if strings.HasPrefix(lower, weak) && strings.Count(lower, weak)*len(weak) >= len(lower)/2 {
			return errors.New("JWT_SECRET must not be based on a common placeholder")
		}
	}
	return nil
}

func isRepeatedChar(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}
