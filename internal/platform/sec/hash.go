// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

package sec

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable codes for credential-hashing failures. These are infrastructure
// faults (algorithm unavailable, malformed stored hash), distinct from a
// policy violation or a plain mismatch.
const (
	CodeEncryptionFailed   = "PASSWORD_ENCRYPTION_FAILED"
	CodeVerificationFailed = "PASSWORD_MATCH_FAILED"
)

// BcryptEncoder hashes and verifies credentials with the bcrypt algorithm.
//
// It satisfies the PasswordEncoder capability the user domain service
// depends on: both operations may fail with a typed hashing failure that
// callers can distinguish from a simple wrong-password result.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder returns an encoder using bcrypt's default cost, the
// balance point between security and CPU load during registration spikes.
func NewBcryptEncoder() *BcryptEncoder {
	return &BcryptEncoder{cost: bcrypt.DefaultCost}
}

// Hash converts a plain-text password into a bcrypt hash.
func (encoder *BcryptEncoder) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), encoder.cost)
	if err != nil {
		return "", apperr.Internal(err).WithCode(CodeEncryptionFailed)
	}
	return string(hashedBytes), nil
}

// Matches compares a plain-text password with its stored hash.
//
// A wrong password returns (false, nil); only infrastructure faults (e.g.
// a stored hash that is not valid bcrypt) return an error.
func (encoder *BcryptEncoder) Matches(plainTextPassword, existingHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, apperr.Internal(err).WithCode(CodeVerificationFailed)
}
