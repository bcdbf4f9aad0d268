// Package auth hashes/verifies user passwords (session rows are created by
// the HTTP auth handler), the Go-idiomatic counterpart to the original's argon2-based auth.rs:
// golang.org/x/crypto's own bcrypt implementation, reusing the x/crypto
// dependency already pulled in for HKDF key derivation.
package auth

import "golang.org/x/crypto/bcrypt"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
