package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/jxskiss/base62"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
	hashCost                   = DefaultCost
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomToken returns n random bytes encoded as a URL-safe base62 string.
func RandomToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base62.EncodeToString(bytes), nil
}

// CheckoutReference generates the opaque reference handed to the payment provider.
func CheckoutReference() (string, error) {
	token, err := RandomToken(12)
	if err != nil {
		return "", err
	}
	return "chk_" + token, nil
}
