package book

import (
	"time"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable codes for catalog rule violations.
const (
	CodeBookNotFound     = "BOOK_NOT_FOUND"
	CodeBookDuplicate    = "BOOK_DUPLICATE"
	CodeBookNotDeletable = "BOOK_NOT_DELETABLE"
	CodeBookNotAvailable = "BOOK_NOT_AVAILABLE"
)

// Status is the lifecycle state of a catalog entry.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBorrowed    Status = "borrowed"
	StatusReserved    Status = "reserved"
	StatusMaintenance Status = "maintenance"
	StatusLost        Status = "lost"
	StatusDamaged     Status = "damaged"
)

// CanBorrow reports whether the status permits lending at all.
func (s Status) CanBorrow() bool {
	return s == StatusAvailable
}

// IsOperational reports whether the status permits deletion: the book is
// not on loan, not reserved, and not missing or broken. Maintenance copies
// are on the shelf and may still be removed from the catalog.
func (s Status) IsOperational() bool {
	return s == StatusAvailable || s == StatusMaintenance
}

// IsProblematic reports whether the copy is physically gone or unusable.
func (s Status) IsProblematic() bool {
	return s == StatusLost || s == StatusDamaged
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusReserved, StatusMaintenance, StatusLost, StatusDamaged:
		return true
	}
	return false
}

// Book represents a catalog entry with its stock count.
//
// Identity for duplicate detection is the (title, language, type) triple,
// never the title alone: the same title in another language or binding is a
// different book.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Language     string    `json:"language"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Status       Status    `json:"status"`
	RegisteredBy string    `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New assembles a fresh catalog entry in the available state from already
// validated value wrappers.
func New(id string, title Title, language Language, bookType Type, quantity Quantity, registeredBy string) *Book {
	return &Book{
		ID:           id,
		Title:        title.Value(),
		Language:     language.Value(),
		Type:         bookType.Value(),
		Quantity:     quantity.Value(),
		Status:       StatusAvailable,
		RegisteredBy: registeredBy,
	}
}

// IsSameBook reports whether the identity triple matches.
func (b *Book) IsSameBook(title Title, language Language, bookType Type) bool {
	return b.Title == title.Value() &&
		b.Language == language.Value() &&
		b.Type == bookType.Value()
}

// CanBorrow reports whether amount copies can be lent right now.
func (b *Book) CanBorrow(amount int) bool {
	return b.Status.CanBorrow() && b.Quantity >= amount
}

// IsAvailable reports whether at least one copy can be lent.
func (b *Book) IsAvailable() bool {
	return b.Status.CanBorrow() && b.Quantity > 0
}

// AddStock increases the stock count; an all-borrowed book becomes
// available again once copies return to the shelf.
func (b *Book) AddStock(amount int) error {
	quantity, err := QuantityOf(b.Quantity)
	if err != nil {
		return err
	}

	increased, err := quantity.Increase(amount)
	if err != nil {
		return err
	}

	b.Quantity = increased.Value()
	if b.Status == StatusBorrowed && b.Quantity > 0 {
		b.Status = StatusAvailable
	}
	return nil
}

// BorrowStock removes amount copies from the shelf, flipping the status to
// borrowed when the last copy leaves.
func (b *Book) BorrowStock(amount int) error {
	if !b.CanBorrow(amount) {
		return apperr.Unprocessable("Book cannot be borrowed in its current state or stock").
			WithCode(CodeBookNotAvailable)
	}

	quantity, err := QuantityOf(b.Quantity)
	if err != nil {
		return err
	}

	decreased, err := quantity.Decrease(amount)
	if err != nil {
		return err
	}

	b.Quantity = decreased.Value()
	if b.Quantity == 0 {
		b.Status = StatusBorrowed
	}
	return nil
}

// ReturnStock puts amount copies back on the shelf.
func (b *Book) ReturnStock(amount int) error {
	return b.AddStock(amount)
}

// Filter holds the parameters for a paginated catalog search.
type Filter struct {
	Query    string // ILIKE search against title
	Language string
	Type     string
	Status   string
}

// Global field names for validation
const (
	FieldTitle    = "title"
	FieldLanguage = "language"
	FieldType     = "type"
	FieldQuantity = "quantity"
	FieldStatus   = "status"
)
