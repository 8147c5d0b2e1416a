// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and logic for authentication,
authorization, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies beyond the domain value types and encapsulate all business rules
related to user identity.
*/
package auth

import (
	"time"

	"github.com/bookwormhq/bookworm/internal/platform/sec"
)

// # Stable Codes

// Stable codes for user account rule violations.
const (
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUserEmailTaken      = "USER_EMAIL_TAKEN"
	CodeUserInvalidPassword = "USER_INVALID_PASSWORD"
	CodeUserRoleInvalid     = "USER_ROLE_INVALID"
)

// # Domain Entities

// User represents a registered member of the library.
//
// Name and email fields are only ever assigned from validated value types
// (value.FullName, value.Email); the entity itself carries the flattened,
// storage-ready representation.
type User struct {
	ID           string       `json:"id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FullName returns the display form of the member's name, first name first.
func (user *User) FullName() string {
	return user.FirstName + " " + user.LastName
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRole            = "role"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
)
