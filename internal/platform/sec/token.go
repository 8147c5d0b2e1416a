// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a hex-encoded random token of byteLength
// random bytes, suitable for refresh and password-reset tokens.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// HashToken returns the hex SHA-256 digest of a token.
//
// Only the digest is persisted, so a leaked sessions table cannot be
// replayed against the API.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
