// Package value holds the self-validating value types of the library domain.
//
// Every type here is immutable and constructed through a factory that either
// returns a valid instance or a typed [apperr.AppError]; there is no way to
// hold an instance that violates its invariants.
package value

import (
	"regexp"
	"strings"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable codes for email violations.
const (
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeEmailInvalidFormat = "EMAIL_INVALID_FORMAT"
	CodeEmailDomainTooLong = "EMAIL_DOMAIN_TOO_LONG"
)

// maxEmailDomainLength bounds the portion after the '@'.
const maxEmailDomainLength = 255

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)

// Email is a validated email address.
type Email struct {
	value string
}

// NewEmail validates raw and returns an immutable Email.
//
// Checks run fail-fast in a fixed order: emptiness, pattern, domain length.
func NewEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Email{}, apperr.ValidationError("Email is required").
			WithCode(CodeEmailRequired)
	}

	if !emailPattern.MatchString(trimmed) {
		return Email{}, apperr.ValidationError("Email format is invalid").
			WithCode(CodeEmailInvalidFormat)
	}

	if len(trimmed[strings.LastIndex(trimmed, "@")+1:]) > maxEmailDomainLength {
		return Email{}, apperr.ValidationError("Email domain exceeds 255 characters").
			WithCode(CodeEmailDomainTooLong)
	}

	return Email{value: trimmed}, nil
}

// String returns the validated address.
func (e Email) String() string { return e.value }

// Domain returns the portion after the '@'.
func (e Email) Domain() string {
	return e.value[strings.LastIndex(e.value, "@")+1:]
}
