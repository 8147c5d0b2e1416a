// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm/internal/core/value"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/sec"
	"github.com/bookwormhq/bookworm/internal/users/auth"
)

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	users           map[string]*auth.User
	passwordUpdates int
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found").WithCode(auth.CodeUserNotFound)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email").WithCode(auth.CodeUserNotFound)
}

func (f *fakeUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	f.passwordUpdates++
	if user, ok := f.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, userID string) error {
	if user, ok := f.users[userID]; ok {
		user.IsVerified = true
	}
	return nil
}

// fakeSessionRepository records sessions and revocations.
type fakeSessionRepository struct {
	sessions map[string]*auth.Session
	revoked  []string
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range f.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session not found or expired")
}

func (f *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	f.revoked = append(f.revoked, sessionID)
	if session, ok := f.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (f *fakeSessionRepository) RevokeAll(_ context.Context, userID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
			f.revoked = append(f.revoked, session.ID)
		}
	}
	return nil
}

func (f *fakeSessionRepository) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID && session.ID != currentSessionID {
			session.IsRevoked = true
			f.revoked = append(f.revoked, session.ID)
		}
	}
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(_ context.Context) error { return nil }

// fakeTokenStore serves as both reset and verification token repository.
type fakeTokenStore struct {
	tokens map[string]string
}

func (f *fakeTokenStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return "", apperr.NotFound("Token is invalid or expired")
	}
	return userID, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

// fakeEncoder produces deterministic bcrypt-shaped hashes and counts calls,
// so tests can prove whether hashing happened at all.
type fakeEncoder struct {
	hashCalls int
}

func fakeHashOf(raw string) string {
	payload := raw + strings.Repeat("x", 53)
	return "$2a$10$" + payload[:53]
}

func (f *fakeEncoder) Hash(raw string) (string, error) {
	f.hashCalls++
	return fakeHashOf(raw), nil
}

func (f *fakeEncoder) Matches(raw, hash string) (bool, error) {
	return fakeHashOf(raw) == hash, nil
}

// fakeTokenProvider signs nothing; it just echoes the identity.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "access-token-for-" + userID, nil
}

func newTestService(t *testing.T) (*auth.Service, *fakeUserRepository, *fakeSessionRepository, *fakeEncoder) {
	t.Helper()

	users := &fakeUserRepository{users: map[string]*auth.User{}}
	sessions := &fakeSessionRepository{sessions: map[string]*auth.Session{}}
	encoder := &fakeEncoder{}

	service := auth.NewService(
		users,
		sessions,
		&fakeTokenStore{tokens: map[string]string{}},
		&fakeTokenStore{tokens: map[string]string{}},
		encoder,
		fakeTokenProvider{},
	)
	return service, users, sessions, encoder
}

const validPassword = "Str0ng!pass"

func seedUser(users *fakeUserRepository, id, email, rawPassword string) *auth.User {
	user := &auth.User{
		ID:           id,
		FirstName:    "Jin",
		LastName:     "Park",
		Email:        email,
		PasswordHash: fakeHashOf(rawPassword),
		Role:         sec.RoleMember,
	}
	users.users[id] = user
	return user
}

/*
TestRegister verifies the enrollment flow: the raw password passes policy,
gets hashed, and the persisted account carries validated fields with the
default member role.
*/
func TestRegister(t *testing.T) {
	service, users, _, encoder := newTestService(t)

	created, err := service.Register(context.Background(), auth.RegisterInput{
		LastName:  "Park",
		FirstName: "Jin",
		Email:     "jin.park@example.com",
		Password:  validPassword,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Jin", created.FirstName)
	assert.Equal(t, "Park", created.LastName)
	assert.Equal(t, "jin.park@example.com", created.Email)
	assert.Equal(t, sec.RoleMember, created.Role)
	assert.False(t, created.IsVerified)

	assert.NotEqual(t, validPassword, created.PasswordHash, "raw password never stored")
	assert.Equal(t, 1, encoder.hashCalls)
	assert.Len(t, users.users, 1)
}

/*
TestRegister_InvalidInput verifies that a failing value type blocks the flow
before anything is hashed or persisted.
*/
func TestRegister_InvalidInput(t *testing.T) {
	service, users, _, encoder := newTestService(t)

	tests := []struct {
		name     string
		input    auth.RegisterInput
		wantCode string
	}{
		{
			name: "weak_password",
			input: auth.RegisterInput{
				LastName: "Park", FirstName: "Jin",
				Email: "jin@example.com", Password: "abcdefgh",
			},
			wantCode: value.CodePasswordPolicy,
		},
		{
			name: "bad_email",
			input: auth.RegisterInput{
				LastName: "Park", FirstName: "Jin",
				Email: "not-an-email", Password: validPassword,
			},
			wantCode: value.CodeEmailInvalidFormat,
		},
		{
			name: "short_first_name",
			input: auth.RegisterInput{
				LastName: "Park", FirstName: "J",
				Email: "jin@example.com", Password: validPassword,
			},
			wantCode: value.CodeNameInvalid,
		},
		{
			name: "unknown_role",
			input: auth.RegisterInput{
				LastName: "Park", FirstName: "Jin",
				Email: "jin@example.com", Password: validPassword, Role: "superuser",
			},
			wantCode: auth.CodeUserRoleInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.wantCode))
			assert.Empty(t, users.users, "nothing persisted")
			assert.Zero(t, encoder.hashCalls, "nothing hashed")
		})
	}
}

/*
TestRegister_EmailTaken verifies the uniqueness conflict.
*/
func TestRegister_EmailTaken(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(users, "u1", "jin.park@example.com", validPassword)

	_, err := service.Register(context.Background(), auth.RegisterInput{
		LastName:  "Park",
		FirstName: "Jin",
		Email:     "jin.park@example.com",
		Password:  validPassword,
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, auth.CodeUserEmailTaken))
	assert.Len(t, users.users, 1)
}

/*
TestLogin verifies credential checks and the session side effect.
*/
func TestLogin(t *testing.T) {
	service, users, sessions, _ := newTestService(t)
	seedUser(users, "u1", "jin.park@example.com", validPassword)

	t.Run("valid_credentials", func(t *testing.T) {
		session, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "jin.park@example.com",
			Password: validPassword,
		})
		require.NoError(t, err)

		assert.Equal(t, "access-token-for-u1", session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Len(t, sessions.sessions, 1)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "jin.park@example.com",
			Password: "Wrong1!pass",
		})
		require.Error(t, err)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "ghost@example.com",
			Password: validPassword,
		})
		require.Error(t, err)
	})
}

/*
TestChangePassword verifies the happy path: correct current password, policy
pass on the new one, and a rotated stored credential.
*/
func TestChangePassword(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(users, "u1", "jin.park@example.com", validPassword)
	originalHash := users.users["u1"].PasswordHash

	updated, err := service.ChangePassword(
		context.Background(), "u1", validPassword, "N3w!passwd", "no-session")
	require.NoError(t, err)

	assert.NotEqual(t, originalHash, updated.PasswordHash, "stored credential rotated")
	assert.Equal(t, updated.PasswordHash, users.users["u1"].PasswordHash)
	assert.Equal(t, 1, users.passwordUpdates)
}

/*
TestChangePassword_WrongCurrent verifies that a wrong current password fails
before the replacement is validated at all: even a policy-breaking new
password reports the invalid-password code, with no side effect.
*/
func TestChangePassword_WrongCurrent(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(users, "u1", "jin.park@example.com", validPassword)

	_, err := service.ChangePassword(
		context.Background(), "u1", "Wrong1!pass", "weak", "no-session")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, auth.CodeUserInvalidPassword))
	assert.False(t, apperr.HasCode(err, value.CodePasswordPolicy))
	assert.Zero(t, users.passwordUpdates, "no side effect")
}

/*
TestChangePassword_WeakReplacement verifies that the new password faces the
full policy once the current one is verified.
*/
func TestChangePassword_WeakReplacement(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(users, "u1", "jin.park@example.com", validPassword)

	_, err := service.ChangePassword(
		context.Background(), "u1", validPassword, "weak", "no-session")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, value.CodePasswordPolicy))
	assert.Zero(t, users.passwordUpdates)
}

/*
TestChangePassword_UnknownUser verifies the not-found failure.
*/
func TestChangePassword_UnknownUser(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, err := service.ChangePassword(
		context.Background(), "ghost", validPassword, "N3w!passwd", "no-session")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, auth.CodeUserNotFound))
}

/*
TestChangePassword_RevokesOtherSessions verifies the cross-device security
side effect: every session except the caller's gets revoked.
*/
func TestChangePassword_RevokesOtherSessions(t *testing.T) {
	service, users, sessions, _ := newTestService(t)
	seedUser(users, "u1", "jin.park@example.com", validPassword)

	currentToken := "current-refresh-token"
	sessions.sessions["s-current"] = &auth.Session{
		ID: "s-current", UserID: "u1", TokenHash: sec.HashToken(currentToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	sessions.sessions["s-other"] = &auth.Session{
		ID: "s-other", UserID: "u1", TokenHash: sec.HashToken("other-token"),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err := service.ChangePassword(
		context.Background(), "u1", validPassword, "N3w!passwd", currentToken)
	require.NoError(t, err)

	assert.True(t, sessions.sessions["s-other"].IsRevoked)
	assert.False(t, sessions.sessions["s-current"].IsRevoked)
}
