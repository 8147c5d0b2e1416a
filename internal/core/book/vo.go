package book

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable codes for book value violations.
const (
	CodeTitleInvalid    = "BOOK_TITLE_INVALID"
	CodeLanguageInvalid = "BOOK_LANGUAGE_INVALID"
	CodeTypeInvalid     = "BOOK_TYPE_INVALID"
	CodeQuantityInvalid = "BOOK_QUANTITY_INVALID"
)

// maxTitleLength bounds a catalog title.
const maxTitleLength = 200

// MaxQuantity bounds the stock count of a single catalog entry.
const MaxQuantity = 9999

// SupportedLanguages is the fixed set of catalog languages.
var SupportedLanguages = []string{
	"KOREAN", "ENGLISH", "JAPANESE", "CHINESE", "SPANISH", "FRENCH", "GERMAN",
}

// SupportedTypes is the fixed set of catalog classifications.
var SupportedTypes = []string{
	"FICTION", "NON_FICTION", "SCIENCE", "TECHNOLOGY", "HISTORY",
	"BIOGRAPHY", "REFERENCE", "TEXTBOOK", "CHILDREN", "COMIC",
}

// Title is a validated book title.
type Title struct {
	value string
}

// NewTitle trims and validates a title (non-empty, at most 200 characters).
func NewTitle(raw string) (Title, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Title{}, apperr.ValidationError("Book title is required").
			WithCode(CodeTitleInvalid)
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return Title{}, apperr.ValidationError(
			fmt.Sprintf("Book title cannot exceed %d characters", maxTitleLength),
		).WithCode(CodeTitleInvalid)
	}

	return Title{value: trimmed}, nil
}

// Value returns the validated title.
func (t Title) Value() string { return t.value }

// Language is a validated, case-normalized catalog language.
type Language struct {
	value string
}

// NewLanguage validates raw against the supported set, case-insensitively.
func NewLanguage(raw string) (Language, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Language{}, apperr.ValidationError("Book language is required").
			WithCode(CodeLanguageInvalid)
	}

	normalized := strings.ToUpper(trimmed)
	for _, supported := range SupportedLanguages {
		if normalized == supported {
			return Language{value: normalized}, nil
		}
	}

	return Language{}, apperr.ValidationError(
		fmt.Sprintf("Unsupported language %q. Supported: %s", raw, strings.Join(SupportedLanguages, ", ")),
	).WithCode(CodeLanguageInvalid)
}

// Value returns the normalized (uppercase) language.
func (l Language) Value() string { return l.value }

// Type is a validated, case-normalized catalog classification.
type Type struct {
	value string
}

// NewType validates raw against the supported set, case-insensitively.
func NewType(raw string) (Type, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Type{}, apperr.ValidationError("Book type is required").
			WithCode(CodeTypeInvalid)
	}

	normalized := strings.ToUpper(trimmed)
	for _, supported := range SupportedTypes {
		if normalized == supported {
			return Type{value: normalized}, nil
		}
	}

	return Type{}, apperr.ValidationError(
		fmt.Sprintf("Unsupported book type %q. Supported: %s", raw, strings.Join(SupportedTypes, ", ")),
	).WithCode(CodeTypeInvalid)
}

// Value returns the normalized (uppercase) type.
func (t Type) Value() string { return t.value }

// Quantity is a validated stock count (0 to 9999 inclusive; zero means the
// entry stays in the catalog with nothing on the shelf).
type Quantity struct {
	value int
}

// QuantityOf validates v against the stock bounds.
func QuantityOf(v int) (Quantity, error) {
	if v < 0 {
		return Quantity{}, apperr.ValidationError("Book quantity cannot be negative").
			WithCode(CodeQuantityInvalid)
	}
	if v > MaxQuantity {
		return Quantity{}, apperr.ValidationError(
			fmt.Sprintf("Book quantity cannot exceed %d", MaxQuantity),
		).WithCode(CodeQuantityInvalid)
	}

	return Quantity{value: v}, nil
}

// Value returns the validated count.
func (q Quantity) Value() int { return q.value }

// Increase returns a new Quantity raised by amount (amount must be positive).
func (q Quantity) Increase(amount int) (Quantity, error) {
	if amount <= 0 {
		return Quantity{}, apperr.ValidationError("Increase amount must be positive").
			WithCode(CodeQuantityInvalid)
	}
	return QuantityOf(q.value + amount)
}

// Decrease returns a new Quantity lowered by amount (amount must be positive
// and not exceed the current count).
func (q Quantity) Decrease(amount int) (Quantity, error) {
	if amount <= 0 {
		return Quantity{}, apperr.ValidationError("Decrease amount must be positive").
			WithCode(CodeQuantityInvalid)
	}
	if q.value < amount {
		return Quantity{}, apperr.ValidationError("Cannot decrease below zero stock").
			WithCode(CodeQuantityInvalid)
	}
	return QuantityOf(q.value - amount)
}

// HasStock reports whether any copy is on the shelf.
func (q Quantity) HasStock() bool { return q.value > 0 }

// HasStockFor reports whether at least required copies are on the shelf.
func (q Quantity) HasStockFor(required int) bool { return q.value >= required }
