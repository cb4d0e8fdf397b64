package utils

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// RegistrationPassword builds the initial password issued at registration:
// the username concatenated with the phone number. Accounts are expected to
// change it; the derivation is part of the registration contract.
func RegistrationPassword(username string, phone int64) string {
	return username + strconv.FormatInt(phone, 10)
}
