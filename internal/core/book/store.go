package book

import "context"

// Repository is the storage contract for the catalog.
//
// Required property: the backing store MUST enforce a uniqueness constraint
// on the (title, language, type) identity triple. Register's duplicate
// lookup followed by a write is a check-then-act sequence; two concurrent
// registrations of the same triple can both observe "no match". The
// constraint turns the losing insert into a unique violation (surfaced as a
// 409 Conflict by dberr) instead of a silent duplicate row. The postgres
// implementation gets this from the books_identity index in the schema.
type Repository interface {
	ListBooks(context context.Context, f Filter, limit, offset int) ([]*Book, int, error)
	GetBook(context context.Context, id string) (*Book, error)

	// FindSameBook returns the book matching the identity triple, or
	// (nil, nil) when no such book exists.
	FindSameBook(context context.Context, title, language, bookType string) (*Book, error)

	CreateBook(context context.Context, b *Book) error
	UpdateBook(context context.Context, b *Book) error
	DeleteBook(context context.Context, id string) error
}
