// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

/*
Package auth implements the core identity and access management system of the library.

It handles everything from member registration and secure password hashing to session
lifecycle management via JWT and refresh tokens (stored in Redis).

Architecture:

  - Service: Orchestrates business logic (Register, Login, password lifecycle).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and Redis (Tokens).
  - Security: Leverages bcrypt hashing and RSA-signed JWTs through small capability
    interfaces (PasswordEncoder, TokenProvider).

Credential input is never persisted raw: every password flows through the
value.Password policy on its plaintext form and through the encoder before a
hash reaches storage.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/bookwormhq/bookworm/internal/core/value"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/sec"
	"github.com/bookwormhq/bookworm/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// PasswordEncoder defines the credential-hashing collaborator.
//
// Matches distinguishes a plain wrong password (false, nil) from an
// infrastructure fault (false, err); the service maps only the former to an
// authorization failure.
type PasswordEncoder interface {
	// Hash converts a plain-text password into its stored hash form.
	Hash(plainTextPassword string) (string, error)

	// Matches compares a plain-text password with a stored hash.
	Matches(plainTextPassword, existingHash string) (bool, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	sessionRepository           SessionRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	passwordEncoder             PasswordEncoder
	tokenProvider               TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	encoder PasswordEncoder,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		userRepository:              userRepo,
		sessionRepository:           sessionRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		passwordEncoder:             encoder,
		tokenProvider:               tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	LastName  string
	FirstName string
	Email     string
	Password  string
	Role      string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new member. The raw password is validated against the
full credential policy BEFORE hashing — a hash must never be checked against
the plaintext policy. Email and name pass through their own value types, so a
persisted account can only ever carry valid fields.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Validation, Conflict (if the email is taken), or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Full policy validation on the raw value, before any hashing.
	password, err := value.NewPassword(input.Password)
	if err != nil {
		return nil, err
	}

	email, err := value.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	fullName, err := value.NewFullName(input.LastName, input.FirstName)
	if err != nil {
		return nil, err
	}

	role := sec.RoleMember
	if input.Role != "" {
		role = sec.UserRole(input.Role)
		if !role.IsValid() {
			return nil, apperr.ValidationError("Unknown role: "+input.Role).
				WithCode(CodeUserRoleInvalid)
		}
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	taken, err := service.userRepository.ExistsByEmail(context, email.String())
	if err != nil {
		return nil, fmt.Errorf("auth_service_email_lookup_failed: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("Email is already registered").
			WithCode(CodeUserEmailTaken)
	}

	// Prevent storing plain-text passwords. The encoder owns cost selection.
	hashedPassword, err := service.passwordEncoder.Hash(password.Value())
	if err != nil {
		return nil, err
	}

	// Rehydrate through the encrypted path so a malformed encoder output
	// fails here instead of at the next login.
	storedPassword, err := value.PasswordFromHash(hashedPassword)
	if err != nil {
		return nil, err
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		FirstName:    fullName.FirstName(),
		LastName:     fullName.LastName(),
		Email:        email.String(),
		PasswordHash: storedPassword.Value(),
		Role:         role,
		IsVerified:   false,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
		// TODO: Trigger email service with the verification link
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new session with rotated security tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Constant-time comparison inside bcrypt prevents timing attacks.
	matches, err := service.passwordEncoder.Matches(input.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !matches {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the user's active session.

Description: Ensures that a tracked refresh token can never be used again.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token
	tokenHash := sec.HashToken(refreshToken)

	// Find the session by token hash
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	// If (err == nil) Revoke the session
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the user associated with this session
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	// Generate a fresh Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	// Generate a fresh Refresh Token for the rotation
	newRefreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_secure_token_failed: %w", err)
	}

	// Persist the new session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	newSession := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(newRefreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, newSession); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Discovery token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, validates the replacement against the full
credential policy, hashes it, updates the DB, and revokes all active sessions
for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// The replacement password faces the same policy as a registration.
	password, err := value.NewPassword(newPassword)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := service.passwordEncoder.Hash(password.Value())
	if err != nil {
		return err
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: Revoke EVERY active session for this user
	_ = service.sessionRepository.RevokeAll(context, userID)

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password BEFORE the new password is even
looked at — a wrong current password fails with no side effect and no policy
feedback on the replacement. On success all OTHER refresh sessions are revoked
to force re-login across devices.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string
  - currentRefreshToken: string

Returns:
  - *User: Updated entity carrying the new hash
  - err: Not found, Unauthorized, validation, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword, currentRefreshToken string) (*User, error) {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Verify the current password before allowing change
	matches, err := service.passwordEncoder.Matches(currentPassword, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !matches {
		return nil, apperr.Unauthorized("Current password is incorrect").
			WithCode(CodeUserInvalidPassword)
	}

	// Full policy validation on the raw replacement value
	password, err := value.NewPassword(newPassword)
	if err != nil {
		return nil, err
	}

	// Hash the brand new password
	hashedPassword, err := service.passwordEncoder.Hash(password.Value())
	if err != nil {
		return nil, err
	}

	storedPassword, err := value.PasswordFromHash(hashedPassword)
	if err != nil {
		return nil, err
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, storedPassword.Value()); err != nil {
		return nil, fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}
	user.PasswordHash = storedPassword.Value()

	// Security Side Effect: Revoke all other sessions to force re-login on other devices
	tokenHash := sec.HashToken(currentRefreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)
	if err == nil {
		_ = service.sessionRepository.RevokeOthers(context, userID, session.ID)
	}

	return user, nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
