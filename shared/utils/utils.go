package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GenerateID generates a unique ID with the given prefix.
// Prefixes in use: usr, bil, sch, swp, dsp.
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidateUserID validates the user ID format
func ValidateUserID(userID string) bool {
	return strings.HasPrefix(userID, "usr-")
}

// ValidateBillID validates the bill ID format
func ValidateBillID(billID string) bool {
	return strings.HasPrefix(billID, "bil-")
}

// ValidateSwapID validates the swap ID format
func ValidateSwapID(swapID string) bool {
	return strings.HasPrefix(swapID, "swp-")
}
