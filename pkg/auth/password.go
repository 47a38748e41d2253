package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashAccessCode hashes an access code for storage in configuration.
func HashAccessCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckAccessCode compares a submitted code against the configured one.
// The configured value may be a bcrypt hash or, for local development, the
// plain code itself; plain codes are compared in constant time.
func CheckAccessCode(code, configured string) bool {
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(code)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(configured)) == 1
}
