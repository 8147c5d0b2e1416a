package value

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable code for name violations.
const CodeNameInvalid = "NAME_INVALID"

// Per-part length bounds.
const (
	minLastNameLength  = 1
	maxLastNameLength  = 20
	minFirstNameLength = 2
	maxFirstNameLength = 30
)

// FullName is a validated member name, split into last and first parts.
type FullName struct {
	lastName  string
	firstName string
}

// NewFullName validates both parts and returns an immutable FullName.
//
// Each part is trimmed, must be non-empty, and must respect its own length
// bounds. Validation fails on the first violated rule.
func NewFullName(lastName, firstName string) (FullName, error) {
	trimmedLast := strings.TrimSpace(lastName)
	trimmedFirst := strings.TrimSpace(firstName)

	if trimmedLast == "" {
		return FullName{}, nameError("Last name is required")
	}
	if count := utf8.RuneCountInString(trimmedLast); count < minLastNameLength || count > maxLastNameLength {
		return FullName{}, nameError(fmt.Sprintf("Last name must be between %d and %d characters", minLastNameLength, maxLastNameLength))
	}

	if trimmedFirst == "" {
		return FullName{}, nameError("First name is required")
	}
	if count := utf8.RuneCountInString(trimmedFirst); count < minFirstNameLength || count > maxFirstNameLength {
		return FullName{}, nameError(fmt.Sprintf("First name must be between %d and %d characters", minFirstNameLength, maxFirstNameLength))
	}

	return FullName{lastName: trimmedLast, firstName: trimmedFirst}, nil
}

// LastName returns the validated last-name part.
func (n FullName) LastName() string { return n.lastName }

// FirstName returns the validated first-name part.
func (n FullName) FirstName() string { return n.firstName }

// String renders the display form "First Last".
func (n FullName) String() string {
	return n.firstName + " " + n.lastName
}

func nameError(message string) *apperr.AppError {
	return apperr.ValidationError(message).WithCode(CodeNameInvalid)
}
