package loan_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm/internal/core/book"
	"github.com/bookwormhq/bookworm/internal/core/loan"
	"github.com/bookwormhq/bookworm/internal/core/value"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/clock"
	"github.com/bookwormhq/bookworm/internal/platform/config"
)

var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

// fakeLoanRepository is an in-memory loan Repository. Like the real store
// it pairs loan writes with the book's stock: both land or neither does.
type fakeLoanRepository struct {
	loans map[string]*loan.Loan
	books *fakeBookRepository

	createErr error
	closeErr  error
}

func (f *fakeLoanRepository) ListLoans(_ context.Context, filter loan.Filter, _, _ int) ([]*loan.Loan, int, error) {
	var matched []*loan.Loan
	for _, l := range f.loans {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		matched = append(matched, l)
	}
	return matched, len(matched), nil
}

func (f *fakeLoanRepository) GetLoan(_ context.Context, id string) (*loan.Loan, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, apperr.NotFound("Loan").WithCode(loan.CodeLoanNotFound)
	}
	copied := *l
	return &copied, nil
}

func (f *fakeLoanRepository) ListOverdueLoans(_ context.Context, day time.Time, _, _ int) ([]*loan.Loan, int, error) {
	var overdue []*loan.Loan
	for _, l := range f.loans {
		if l.IsOverdue(day) {
			copied := *l
			overdue = append(overdue, &copied)
		}
	}
	return overdue, len(overdue), nil
}

func (f *fakeLoanRepository) CreateLoan(_ context.Context, l *loan.Loan) error {
	if f.createErr != nil {
		return f.createErr
	}

	b, ok := f.books.books[l.BookID]
	if !ok || !b.CanBorrow(l.Quantity) {
		return apperr.Unprocessable("Book cannot be borrowed in its current state or stock").
			WithCode(book.CodeBookNotAvailable)
	}
	b.Quantity -= l.Quantity
	if b.Quantity == 0 {
		b.Status = book.StatusBorrowed
	}

	copied := *l
	f.loans[l.ID] = &copied
	return nil
}

func (f *fakeLoanRepository) UpdateLoan(_ context.Context, l *loan.Loan) error {
	copied := *l
	f.loans[l.ID] = &copied
	return nil
}

func (f *fakeLoanRepository) CloseLoan(_ context.Context, l *loan.Loan) error {
	if f.closeErr != nil {
		return f.closeErr
	}

	b, ok := f.books.books[l.BookID]
	if !ok {
		return apperr.NotFound("Book").WithCode(book.CodeBookNotFound)
	}
	b.Quantity += l.Quantity
	if b.Status == book.StatusBorrowed {
		b.Status = book.StatusAvailable
	}

	copied := *l
	f.loans[l.ID] = &copied
	return nil
}

// fakeBookRepository is the minimal book.Repository needed by loan rules.
type fakeBookRepository struct {
	books map[string]*book.Book
}

func (f *fakeBookRepository) ListBooks(_ context.Context, _ book.Filter, _, _ int) ([]*book.Book, int, error) {
	return nil, 0, nil
}

func (f *fakeBookRepository) GetBook(_ context.Context, id string) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, apperr.NotFound("Book").WithCode(book.CodeBookNotFound)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepository) FindSameBook(_ context.Context, _, _, _ string) (*book.Book, error) {
	return nil, nil
}

func (f *fakeBookRepository) CreateBook(_ context.Context, b *book.Book) error {
	copied := *b
	f.books[b.ID] = &copied
	return nil
}

func (f *fakeBookRepository) UpdateBook(_ context.Context, b *book.Book) error {
	copied := *b
	f.books[b.ID] = &copied
	return nil
}

func (f *fakeBookRepository) DeleteBook(_ context.Context, id string) error {
	delete(f.books, id)
	return nil
}

func newTestService(t *testing.T) (*loan.Service, *fakeLoanRepository, *fakeBookRepository) {
	t.Helper()

	books := &fakeBookRepository{books: map[string]*book.Book{}}
	loans := &fakeLoanRepository{loans: map[string]*loan.Loan{}, books: books}
	policy := config.Policy{DefaultLoanDays: 14, LowStockThreshold: 2, OverdueFinePerDay: 100}

	service := loan.NewService(loans, books, clock.Fixed{Day: today}, policy, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, loans, books
}

/*
TestBorrow verifies the happy path: quantity validated, stock decremented,
period defaulted from policy.
*/
func TestBorrow(t *testing.T) {
	service, loans, books := newTestService(t)
	books.books["b1"] = &book.Book{ID: "b1", Quantity: 3, Status: book.StatusAvailable}

	created, err := service.Borrow(context.Background(), "b1", "member-1", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, created.Quantity)
	assert.Equal(t, loan.StatusActive, created.Status)
	assert.Equal(t, today, created.LoanDate)
	assert.Equal(t, today.AddDate(0, 0, 14), created.DueDate)

	assert.Equal(t, 1, books.books["b1"].Quantity, "stock decremented")
	assert.Len(t, loans.loans, 1)
}

/*
TestBorrow_Failures verifies quantity bounds and stock/status guards, with
no partial writes.
*/
func TestBorrow_Failures(t *testing.T) {
	service, loans, books := newTestService(t)
	books.books["b1"] = &book.Book{ID: "b1", Quantity: 3, Status: book.StatusAvailable}
	books.books["b2"] = &book.Book{ID: "b2", Quantity: 0, Status: book.StatusBorrowed}

	tests := []struct {
		name     string
		bookID   string
		quantity int
		wantCode string
	}{
		{"zero_quantity", "b1", 0, value.CodeLoanQuantityInvalid},
		{"oversized_batch", "b1", 6, value.CodeLoanQuantityInvalid},
		{"insufficient_stock", "b1", 4, book.CodeBookNotAvailable},
		{"not_available", "b2", 1, book.CodeBookNotAvailable},
		{"missing_book", "nope", 1, book.CodeBookNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Borrow(context.Background(), tt.bookID, "member-1", tt.quantity)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.wantCode))
			assert.Empty(t, loans.loans)
			assert.Equal(t, 3, books.books["b1"].Quantity)
		})
	}
}

/*
TestBorrow_PersistenceFailure verifies that a failed loan write leaves no
trace: no loan row, and the shelf count untouched.
*/
func TestBorrow_PersistenceFailure(t *testing.T) {
	service, loans, books := newTestService(t)
	books.books["b1"] = &book.Book{ID: "b1", Quantity: 3, Status: book.StatusAvailable}
	loans.createErr = apperr.Internal(assert.AnError)

	_, err := service.Borrow(context.Background(), "b1", "member-1", 2)
	require.Error(t, err)

	assert.Empty(t, loans.loans, "no phantom loan")
	assert.Equal(t, 3, books.books["b1"].Quantity, "stock untouched")
}

/*
TestReturn verifies stock restoration and the active-only guard.
*/
func TestReturn(t *testing.T) {
	service, loans, books := newTestService(t)
	books.books["b1"] = &book.Book{ID: "b1", Quantity: 0, Status: book.StatusBorrowed}
	loans.loans["l1"] = &loan.Loan{
		ID: "l1", BookID: "b1", UserID: "member-1", Quantity: 2,
		LoanDate: today.AddDate(0, 0, -7), DueDate: today.AddDate(0, 0, 7),
		Status: loan.StatusActive,
	}

	returned, err := service.Return(context.Background(), "l1")
	require.NoError(t, err)

	assert.Equal(t, loan.StatusReturned, returned.Status)
	assert.Equal(t, 2, books.books["b1"].Quantity)
	assert.Equal(t, book.StatusAvailable, books.books["b1"].Status)

	// A second return must fail.
	_, err = service.Return(context.Background(), "l1")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, loan.CodeLoanNotActive))
}

/*
TestReturn_PersistenceFailure verifies that a failed close leaves the loan
active and the shelf count unchanged.
*/
func TestReturn_PersistenceFailure(t *testing.T) {
	service, loans, books := newTestService(t)
	books.books["b1"] = &book.Book{ID: "b1", Quantity: 0, Status: book.StatusBorrowed}
	loans.loans["l1"] = &loan.Loan{
		ID: "l1", BookID: "b1", UserID: "member-1", Quantity: 2,
		LoanDate: today.AddDate(0, 0, -7), DueDate: today.AddDate(0, 0, 7),
		Status: loan.StatusActive,
	}
	loans.closeErr = apperr.Internal(assert.AnError)

	_, err := service.Return(context.Background(), "l1")
	require.Error(t, err)

	assert.Equal(t, loan.StatusActive, loans.loans["l1"].Status, "loan still active")
	assert.Equal(t, 0, books.books["b1"].Quantity, "stock untouched")
}

/*
TestExtend verifies the extension window and the overdue block.
*/
func TestExtend(t *testing.T) {
	service, loans, _ := newTestService(t)
	loans.loans["current"] = &loan.Loan{
		ID: "current", BookID: "b1", UserID: "member-1", Quantity: 1,
		LoanDate: today.AddDate(0, 0, -7), DueDate: today.AddDate(0, 0, 7),
		Status: loan.StatusActive,
	}
	loans.loans["late"] = &loan.Loan{
		ID: "late", BookID: "b1", UserID: "member-1", Quantity: 1,
		LoanDate: today.AddDate(0, 0, -30), DueDate: today.AddDate(0, 0, -3),
		Status: loan.StatusActive,
	}

	t.Run("valid_extension", func(t *testing.T) {
		extended, err := service.Extend(context.Background(), "current", 7)
		require.NoError(t, err)
		assert.Equal(t, today.AddDate(0, 0, 14), extended.DueDate)
		assert.Equal(t, today.AddDate(0, 0, -7), extended.LoanDate, "loan date unchanged")
	})

	t.Run("out_of_range_days", func(t *testing.T) {
		for _, days := range []int{0, -1, 15} {
			_, err := service.Extend(context.Background(), "current", days)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, value.CodeLoanExtensionInvalid))
		}
	})

	t.Run("overdue_loan_blocked", func(t *testing.T) {
		_, err := service.Extend(context.Background(), "late", 7)
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, loan.CodeLoanOverdue))
	})
}

/*
TestListOverdue verifies the derived day counts and policy fines.
*/
func TestListOverdue(t *testing.T) {
	service, loans, _ := newTestService(t)
	loans.loans["late"] = &loan.Loan{
		ID: "late", BookID: "b1", UserID: "member-1", Quantity: 1,
		LoanDate: today.AddDate(0, 0, -20), DueDate: today.AddDate(0, 0, -3),
		Status: loan.StatusActive,
	}
	loans.loans["current"] = &loan.Loan{
		ID: "current", BookID: "b1", UserID: "member-2", Quantity: 1,
		LoanDate: today.AddDate(0, 0, -7), DueDate: today.AddDate(0, 0, 7),
		Status: loan.StatusActive,
	}
	loans.loans["settled"] = &loan.Loan{
		ID: "settled", BookID: "b1", UserID: "member-3", Quantity: 1,
		LoanDate: today.AddDate(0, 0, -20), DueDate: today.AddDate(0, 0, -3),
		Status: loan.StatusReturned,
	}

	report, total, err := service.ListOverdue(context.Background(), 20, 0)
	require.NoError(t, err)

	require.Equal(t, 1, total)
	require.Len(t, report, 1)
	assert.Equal(t, "late", report[0].ID)
	assert.Equal(t, 3, report[0].OverdueDays)
	assert.Equal(t, 300, report[0].Fine)
}
