package value

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable codes for password violations.
const (
	CodePasswordRequired    = "PASSWORD_REQUIRED"
	CodePasswordPolicy      = "PASSWORD_POLICY_VIOLATION"
	CodePasswordInvalidHash = "PASSWORD_INVALID_HASH"
)

// minPasswordLength is the minimum number of characters for a raw password.
const minPasswordLength = 8

var (
	uppercasePattern = regexp.MustCompile(`[A-Z]`)
	digitPattern     = regexp.MustCompile(`[0-9]`)
	specialPattern   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)

	// bcryptShapePattern recognizes a stored bcrypt hash ($2a/$2b/$2y, cost, 53 chars).
	bcryptShapePattern = regexp.MustCompile(`^\$2[aby]\$\d{2}\$.{53}$`)
)

// Password is a credential value that knows whether it is already hashed.
//
// The raw construction path enforces the full complexity policy; the hash
// path ([PasswordFromHash]) rehydrates a persisted bcrypt value without
// re-running policy checks.
type Password struct {
	value     string
	encrypted bool
}

// NewPassword validates raw against the full complexity policy.
//
// A blank password short-circuits with a dedicated "required" failure.
// Otherwise ALL violated rules are collected into a single aggregated
// error, one [apperr.FieldError] per broken rule, so the caller sees the
// complete list in one round trip.
func NewPassword(raw string) (Password, error) {
	if strings.TrimSpace(raw) == "" {
		return Password{}, apperr.ValidationError("Password is required").
			WithCode(CodePasswordRequired)
	}

	violations := policyViolations(raw)
	if len(violations) > 0 {
		messages := make([]string, len(violations))
		for i, violation := range violations {
			messages[i] = violation.Message
		}
		return Password{}, apperr.ValidationError(
			"Password does not meet policy: "+strings.Join(messages, "; "),
			violations...,
		).WithCode(CodePasswordPolicy)
	}

	return Password{value: raw, encrypted: false}, nil
}

// PasswordFromHash rehydrates a persisted credential.
//
// Policy checks are skipped; only the bcrypt shape of the stored value is
// verified. The returned instance is marked encrypted.
func PasswordFromHash(hash string) (Password, error) {
	if !bcryptShapePattern.MatchString(hash) {
		return Password{}, apperr.ValidationError("Stored password hash is malformed").
			WithCode(CodePasswordInvalidHash)
	}

	return Password{value: hash, encrypted: true}, nil
}

// IsValidPassword runs the full policy and reports the outcome as a boolean.
func IsValidPassword(raw string) bool {
	_, err := NewPassword(raw)
	return err == nil
}

// Value returns the stored value (the raw password or the hash).
func (p Password) Value() string { return p.value }

// IsEncrypted reports whether the value is a persisted hash.
func (p Password) IsEncrypted() bool { return p.encrypted }

// String masks the credential so it can never leak through logs.
func (p Password) String() string {
	if p.encrypted {
		return "[ENCRYPTED]"
	}
	return "[RAW]"
}

// policyViolations returns one entry per broken complexity rule.
func policyViolations(raw string) []apperr.FieldError {
	var violations []apperr.FieldError

	add := func(message string) {
		violations = append(violations, apperr.FieldError{Field: "password", Message: message})
	}

	// Characters, not bytes: a multibyte rune counts once.
	if utf8.RuneCountInString(raw) < minPasswordLength {
		add("Must be at least 8 characters long")
	}
	if !uppercasePattern.MatchString(raw) {
		add("Must contain at least one uppercase letter")
	}
	if !digitPattern.MatchString(raw) {
		add("Must contain at least one digit")
	}
	if !specialPattern.MatchString(raw) {
		add(`Must contain at least one special character (!@#$%^&*(),.?":{}|<>)`)
	}

	return violations
}
