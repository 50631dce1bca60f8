package auth

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateConfirmationCode returns a fresh single-use code suitable for
// emailing. Only its bcrypt hash is ever persisted.
func GenerateConfirmationCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// HashCode creates a bcrypt hash from the given plaintext code.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks the provided plaintext code against the stored hash.
func VerifyCode(hashedCode, providedCode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
