package book_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm/internal/core/book"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/pkg/pointer"
)

// fakeRepository is an in-memory Repository for rule tests.
type fakeRepository struct {
	books   map[string]*book.Book
	writes  int
	deletes int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: map[string]*book.Book{}}
}

func (f *fakeRepository) ListBooks(_ context.Context, _ book.Filter, _, _ int) ([]*book.Book, int, error) {
	var all []*book.Book
	for _, b := range f.books {
		all = append(all, b)
	}
	return all, len(all), nil
}

func (f *fakeRepository) GetBook(_ context.Context, id string) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, apperr.NotFound("Book").WithCode(book.CodeBookNotFound)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeRepository) FindSameBook(_ context.Context, title, language, bookType string) (*book.Book, error) {
	for _, b := range f.books {
		if b.Title == title && b.Language == language && b.Type == bookType {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) CreateBook(_ context.Context, b *book.Book) error {
	f.writes++
	copied := *b
	f.books[b.ID] = &copied
	return nil
}

func (f *fakeRepository) UpdateBook(_ context.Context, b *book.Book) error {
	f.writes++
	copied := *b
	f.books[b.ID] = &copied
	return nil
}

func (f *fakeRepository) DeleteBook(_ context.Context, id string) error {
	f.deletes++
	delete(f.books, id)
	return nil
}

func newTestService(t *testing.T) (*book.Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	return book.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func seedBook(t *testing.T, repo *fakeRepository, id, title, language, bookType string, quantity int, status book.Status) {
	t.Helper()
	repo.books[id] = &book.Book{
		ID: id, Title: title, Language: language, Type: bookType,
		Quantity: quantity, Status: status, RegisteredBy: "librarian-1",
	}
}

/*
TestRegister_NewBook verifies the creation path: no matching triple exists,
so a new available entry is persisted with the given quantity.
*/
func TestRegister_NewBook(t *testing.T) {
	service, repo := newTestService(t)

	registered, err := service.Register(context.Background(), book.RegisterInput{
		Title: "The Hobbit", Language: "english", Type: "fiction", Quantity: 3,
	}, "librarian-1")
	require.NoError(t, err)

	assert.NotEmpty(t, registered.ID)
	assert.Equal(t, "The Hobbit", registered.Title)
	assert.Equal(t, "ENGLISH", registered.Language)
	assert.Equal(t, "FICTION", registered.Type)
	assert.Equal(t, 3, registered.Quantity)
	assert.Equal(t, book.StatusAvailable, registered.Status)
	assert.Equal(t, 1, repo.writes)
}

/*
TestRegister_DuplicateMergesStock verifies the duplicate path: registering
an existing (title, language, type) triple adds to its stock instead of
creating a second entry.
*/
func TestRegister_DuplicateMergesStock(t *testing.T) {
	service, repo := newTestService(t)

	first, err := service.Register(context.Background(), book.RegisterInput{
		Title: "The Hobbit", Language: "ENGLISH", Type: "FICTION", Quantity: 3,
	}, "librarian-1")
	require.NoError(t, err)

	second, err := service.Register(context.Background(), book.RegisterInput{
		Title: "The Hobbit", Language: "english", Type: "Fiction", Quantity: 2,
	}, "librarian-2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "no second book must be created")
	assert.Equal(t, 5, second.Quantity)
	assert.Len(t, repo.books, 1)
	assert.Equal(t, 2, repo.writes, "exactly one write per registration")
}

/*
TestRegister_InvalidValues verifies that value validation runs before any
storage access.
*/
func TestRegister_InvalidValues(t *testing.T) {
	service, repo := newTestService(t)

	tests := []struct {
		name     string
		input    book.RegisterInput
		wantCode string
	}{
		{"empty_title", book.RegisterInput{Title: " ", Language: "ENGLISH", Type: "FICTION", Quantity: 1}, book.CodeTitleInvalid},
		{"unknown_language", book.RegisterInput{Title: "T", Language: "KLINGON", Type: "FICTION", Quantity: 1}, book.CodeLanguageInvalid},
		{"unknown_type", book.RegisterInput{Title: "T", Language: "ENGLISH", Type: "SCROLL", Quantity: 1}, book.CodeTypeInvalid},
		{"negative_quantity", book.RegisterInput{Title: "T", Language: "ENGLISH", Type: "FICTION", Quantity: -1}, book.CodeQuantityInvalid},
		{"excessive_quantity", book.RegisterInput{Title: "T", Language: "ENGLISH", Type: "FICTION", Quantity: 10000}, book.CodeQuantityInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.input, "librarian-1")
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.wantCode))
			assert.Zero(t, repo.writes)
		})
	}
}

/*
TestValidateUpdate covers the three update outcomes: own triple is a no-op,
a colliding triple conflicts, a free triple passes.
*/
func TestValidateUpdate(t *testing.T) {
	service, repo := newTestService(t)
	seedBook(t, repo, "book-7", "The Hobbit", "ENGLISH", "FICTION", 3, book.StatusAvailable)
	seedBook(t, repo, "book-9", "Dune", "ENGLISH", "FICTION", 2, book.StatusAvailable)

	t.Run("own_triple_is_trivially_ok", func(t *testing.T) {
		err := service.ValidateUpdate(context.Background(), "book-7", "The Hobbit", "ENGLISH", "FICTION")
		assert.NoError(t, err)
		assert.Zero(t, repo.writes)
	})

	t.Run("other_books_triple_conflicts", func(t *testing.T) {
		err := service.ValidateUpdate(context.Background(), "book-7", "Dune", "ENGLISH", "FICTION")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, book.CodeBookDuplicate))
	})

	t.Run("free_triple_passes", func(t *testing.T) {
		err := service.ValidateUpdate(context.Background(), "book-7", "The Silmarillion", "ENGLISH", "FICTION")
		assert.NoError(t, err)
	})

	t.Run("missing_book_fails", func(t *testing.T) {
		err := service.ValidateUpdate(context.Background(), "missing", "Dune", "ENGLISH", "FICTION")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, book.CodeBookNotFound))
	})
}

/*
TestValidateDeletion verifies the status guard: only operational books
(on the shelf, possibly under maintenance) may be deleted.
*/
func TestValidateDeletion(t *testing.T) {
	service, repo := newTestService(t)
	seedBook(t, repo, "shelved", "A", "ENGLISH", "FICTION", 3, book.StatusAvailable)
	seedBook(t, repo, "repairing", "B", "ENGLISH", "FICTION", 1, book.StatusMaintenance)
	seedBook(t, repo, "lent", "C", "ENGLISH", "FICTION", 0, book.StatusBorrowed)
	seedBook(t, repo, "held", "D", "ENGLISH", "FICTION", 1, book.StatusReserved)
	seedBook(t, repo, "gone", "E", "ENGLISH", "FICTION", 0, book.StatusLost)

	assert.NoError(t, service.ValidateDeletion(context.Background(), "shelved"))
	assert.NoError(t, service.ValidateDeletion(context.Background(), "repairing"))

	for _, id := range []string{"lent", "held", "gone"} {
		err := service.ValidateDeletion(context.Background(), id)
		require.Error(t, err, id)
		assert.True(t, apperr.HasCode(err, book.CodeBookNotDeletable), id)
	}

	err := service.ValidateDeletion(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeBookNotFound))
}

/*
TestDeleteBook verifies that the guard blocks the write, not just the answer.
*/
func TestDeleteBook(t *testing.T) {
	service, repo := newTestService(t)
	seedBook(t, repo, "lent", "C", "ENGLISH", "FICTION", 0, book.StatusBorrowed)
	seedBook(t, repo, "shelved", "A", "ENGLISH", "FICTION", 2, book.StatusAvailable)

	require.Error(t, service.DeleteBook(context.Background(), "lent"))
	assert.Zero(t, repo.deletes)

	require.NoError(t, service.DeleteBook(context.Background(), "shelved"))
	assert.Equal(t, 1, repo.deletes)
}

/*
TestCanBorrow verifies the boolean answer delegates to the book's own
stock and status check.
*/
func TestCanBorrow(t *testing.T) {
	service, repo := newTestService(t)
	seedBook(t, repo, "stocked", "A", "ENGLISH", "FICTION", 3, book.StatusAvailable)
	seedBook(t, repo, "drained", "B", "ENGLISH", "FICTION", 0, book.StatusBorrowed)

	ok, err := service.CanBorrow(context.Background(), "stocked", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanBorrow(context.Background(), "stocked", 4)
	require.NoError(t, err)
	assert.False(t, ok, "insufficient stock answers false, not an error")

	ok, err = service.CanBorrow(context.Background(), "drained", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = service.CanBorrow(context.Background(), "missing", 1)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeBookNotFound))
}

/*
TestUpdateBook verifies that a passing validation applies the identity
triple alongside the optional quantity and status fields.
*/
func TestUpdateBook(t *testing.T) {
	service, repo := newTestService(t)
	seedBook(t, repo, "b1", "Dune", "ENGLISH", "FICTION", 3, book.StatusAvailable)

	updated, err := service.UpdateBook(context.Background(), "b1", book.UpdateInput{
		Title:    "Dune Messiah",
		Language: "english",
		Type:     "fiction",
		Quantity: pointer.To(7),
		Status:   pointer.To(string(book.StatusMaintenance)),
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, book.StatusMaintenance, updated.Status)
	assert.Equal(t, 7, repo.books["b1"].Quantity)

	// Omitted fields stay untouched.
	kept, err := service.UpdateBook(context.Background(), "b1", book.UpdateInput{
		Title: "Dune Messiah", Language: "ENGLISH", Type: "FICTION",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, kept.Quantity)
	assert.Equal(t, book.StatusMaintenance, kept.Status)

	// A bad status never reaches storage.
	_, err = service.UpdateBook(context.Background(), "b1", book.UpdateInput{
		Title: "Dune Messiah", Language: "ENGLISH", Type: "FICTION",
		Status: pointer.To("vaporized"),
	})
	require.Error(t, err)
}

/*
TestIsLowStock covers the pure threshold comparison.
*/
func TestIsLowStock(t *testing.T) {
	service, _ := newTestService(t)

	assert.True(t, service.IsLowStock(&book.Book{Quantity: 2}, 2))
	assert.True(t, service.IsLowStock(&book.Book{Quantity: 0}, 2))
	assert.False(t, service.IsLowStock(&book.Book{Quantity: 3}, 2))
}

/*
TestListLowStock verifies the dashboard report keeps only entries at or
below the threshold.
*/
func TestListLowStock(t *testing.T) {
	service, repo := newTestService(t)
	seedBook(t, repo, "scarce", "A", "ENGLISH", "FICTION", 1, book.StatusAvailable)
	seedBook(t, repo, "plenty", "B", "ENGLISH", "FICTION", 8, book.StatusAvailable)
	seedBook(t, repo, "edge", "C", "ENGLISH", "FICTION", 2, book.StatusAvailable)

	low, err := service.ListLowStock(context.Background(), 2, 20, 0)
	require.NoError(t, err)

	require.Len(t, low, 2)
	for _, b := range low {
		assert.LessOrEqual(t, b.Quantity, 2)
	}
}
