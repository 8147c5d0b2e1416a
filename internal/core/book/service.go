package book

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/pkg/slice"
	"github.com/bookwormhq/bookworm/pkg/uuidv7"
)

// Service implements the catalog business rules: duplicate-merge
// registration, update-conflict validation, the deletion guard, and borrow
// eligibility.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RegisterInput carries the raw fields of a registration request.
type RegisterInput struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// UpdateInput carries the raw fields of a catalog update. Nil pointers mean
// "leave unchanged".
type UpdateInput struct {
	Title    string  `json:"title"`
	Language string  `json:"language"`
	Type     string  `json:"type"`
	Quantity *int    `json:"quantity"`
	Status   *string `json:"status"`
}

func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.ListBooks(context, filter, limit, offset)
}

func (service *Service) GetBook(context context.Context, id string) (*Book, error) {
	return service.repo.GetBook(context, id)
}

// Register adds a book to the catalog without creating duplicates.
//
// If a book with the same (title, language, type) triple already exists,
// the incoming quantity is merged into its stock; otherwise a new entry is
// created in the available state. Either way exactly one write is persisted.
func (service *Service) Register(context context.Context, input RegisterInput, registeredBy string) (*Book, error) {
	title, err := NewTitle(input.Title)
	if err != nil {
		return nil, err
	}
	language, err := NewLanguage(input.Language)
	if err != nil {
		return nil, err
	}
	bookType, err := NewType(input.Type)
	if err != nil {
		return nil, err
	}
	quantity, err := QuantityOf(input.Quantity)
	if err != nil {
		return nil, err
	}

	existing, err := service.repo.FindSameBook(context, title.Value(), language.Value(), bookType.Value())
	if err != nil {
		return nil, err
	}

	// Duplicate path: merge stock into the existing entry.
	if existing != nil {
		if err := existing.AddStock(quantity.Value()); err != nil {
			return nil, err
		}
		if err := service.repo.UpdateBook(context, existing); err != nil {
			return nil, err
		}

		service.logger.Info("book_stock_merged",
			slog.String("book_id", existing.ID),
			slog.Int("added", quantity.Value()),
			slog.Int("total", existing.Quantity),
		)
		return existing, nil
	}

	newBook := New(uuidv7.New(), title, language, bookType, quantity, registeredBy)
	if err := service.repo.CreateBook(context, newBook); err != nil {
		return nil, err
	}

	service.logger.Info("book_registered",
		slog.String("book_id", newBook.ID),
		slog.String("title", newBook.Title),
		slog.Int("quantity", newBook.Quantity),
	)
	return newBook, nil
}

// ValidateUpdate checks that changing a book's identity triple does not
// collide with a different existing book.
//
// Proposing the book's own current triple is trivially fine (a no-op
// rename); a triple owned by another book fails with a duplicate conflict.
func (service *Service) ValidateUpdate(context context.Context, bookID, newTitle, newLanguage, newType string) error {
	_, _, err := service.validateUpdate(context, bookID, newTitle, newLanguage, newType)
	return err
}

// identity is a parsed (title, language, type) triple.
type identity struct {
	title    Title
	language Language
	bookType Type
}

func (service *Service) validateUpdate(context context.Context, bookID, newTitle, newLanguage, newType string) (*Book, identity, error) {
	title, err := NewTitle(newTitle)
	if err != nil {
		return nil, identity{}, err
	}
	language, err := NewLanguage(newLanguage)
	if err != nil {
		return nil, identity{}, err
	}
	bookType, err := NewType(newType)
	if err != nil {
		return nil, identity{}, err
	}
	triple := identity{title: title, language: language, bookType: bookType}

	current, err := service.repo.GetBook(context, bookID)
	if err != nil {
		return nil, identity{}, err
	}

	if current.IsSameBook(title, language, bookType) {
		return current, triple, nil
	}

	duplicate, err := service.repo.FindSameBook(context, title.Value(), language.Value(), bookType.Value())
	if err != nil {
		return nil, identity{}, err
	}
	if duplicate != nil && duplicate.ID != bookID {
		return nil, identity{}, apperr.Conflict(fmt.Sprintf(
			"A book with the same identity already exists (title: %s, language: %s, type: %s)",
			title.Value(), language.Value(), bookType.Value(),
		)).WithCode(CodeBookDuplicate)
	}

	return current, triple, nil
}

// UpdateBook applies a catalog update after the conflict validation passes.
func (service *Service) UpdateBook(context context.Context, id string, input UpdateInput) (*Book, error) {
	current, triple, err := service.validateUpdate(context, id, input.Title, input.Language, input.Type)
	if err != nil {
		return nil, err
	}

	current.Title = triple.title.Value()
	current.Language = triple.language.Value()
	current.Type = triple.bookType.Value()

	if input.Quantity != nil {
		quantity, err := QuantityOf(*input.Quantity)
		if err != nil {
			return nil, err
		}
		current.Quantity = quantity.Value()
	}

	if input.Status != nil {
		status := Status(*input.Status)
		if !status.IsValid() {
			return nil, apperr.ValidationError("Unknown book status: " + *input.Status)
		}
		current.Status = status
	}

	if err := service.repo.UpdateBook(context, current); err != nil {
		return nil, err
	}

	service.logger.Info("book_updated", slog.String("book_id", id))
	return current, nil
}

// ValidateDeletion checks that the book may be removed from the catalog.
//
// Only operational books (not on loan, not reserved, not lost or damaged)
// may be deleted. Cross-checking active loan records is a known follow-up;
// the status guard is the rule enforced today.
func (service *Service) ValidateDeletion(context context.Context, bookID string) error {
	b, err := service.repo.GetBook(context, bookID)
	if err != nil {
		return err
	}

	if !b.Status.IsOperational() {
		return apperr.Unprocessable(
			fmt.Sprintf("Book cannot be deleted in its current state (%s)", b.Status),
		).WithCode(CodeBookNotDeletable)
	}

	return nil
}

// DeleteBook removes a book after the deletion guard passes.
func (service *Service) DeleteBook(context context.Context, id string) error {
	if err := service.ValidateDeletion(context, id); err != nil {
		return err
	}

	if err := service.repo.DeleteBook(context, id); err != nil {
		return err
	}

	service.logger.Warn("book_deleted", slog.String("book_id", id))
	return nil
}

// CanBorrow reports whether requestedQuantity copies of the book can be
// lent. It answers with a boolean; only a missing book is an error.
func (service *Service) CanBorrow(context context.Context, bookID string, requestedQuantity int) (bool, error) {
	b, err := service.repo.GetBook(context, bookID)
	if err != nil {
		return false, err
	}

	return b.CanBorrow(requestedQuantity), nil
}

// IsLowStock reports whether the book's stock is at or below threshold.
// Pure comparison; no lookup, no side effect.
func (service *Service) IsLowStock(b *Book, threshold int) bool {
	return b.Quantity <= threshold
}

// ListLowStock returns the catalog entries within the requested page whose
// stock sits at or below threshold, for the staff dashboard.
func (service *Service) ListLowStock(context context.Context, threshold, limit, offset int) ([]*Book, error) {
	books, _, err := service.repo.ListBooks(context, Filter{}, limit, offset)
	if err != nil {
		return nil, err
	}

	return slice.Filter(books, func(b *Book) bool {
		return service.IsLowStock(b, threshold)
	}), nil
}
