// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts. Registration
// rejects longer ones as a validation error instead of a hashing failure.
const MaxPasswordBytes = 72

// unknownAccountHash is compared against when a login names no account, so
// the response time does not reveal which emails are registered.
var unknownAccountHash, _ = bcrypt.GenerateFromPassword([]byte("folio-unknown-account"), bcrypt.DefaultCost)

// HashPassword hashes an account password for users.account.
func HashPassword(plainTextPassword string) (string, error) {
	if len(plainTextPassword) > MaxPasswordBytes {
		return "", fmt.Errorf("sec: password exceeds %d bytes", MaxPasswordBytes)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash reports whether the password matches the stored hash.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}

// RejectUnknownAccount spends the same bcrypt work as [CheckPasswordHash] and
// always reports a mismatch.
func RejectUnknownAccount(plainTextPassword string) bool {
	_ = bcrypt.CompareHashAndPassword(unknownAccountHash, []byte(plainTextPassword))
	return false
}
