package loan

import (
	"context"
	"time"
)

// Repository is the storage contract for loan records.
//
// Loan writes are paired with the book's shelf count, and the pairing is
// the repository's responsibility: a loan row and its stock movement must
// commit or fail together, never one without the other. The stock movement
// itself must be relative (quantity +/- delta), not an absolute overwrite,
// so concurrent borrows against the same book cannot lose an update.
type Repository interface {
	ListLoans(context context.Context, f Filter, limit, offset int) ([]*Loan, int, error)
	GetLoan(context context.Context, id string) (*Loan, error)

	// ListOverdueLoans returns active loans whose due date is strictly
	// before today.
	ListOverdueLoans(context context.Context, today time.Time, limit, offset int) ([]*Loan, int, error)

	// CreateLoan persists l and takes l.Quantity copies off the book's
	// shelf in the same atomic step. The decrement is guarded: when fewer
	// than l.Quantity copies remain (a concurrent borrow won the race),
	// nothing is written and the call fails with BOOK_NOT_AVAILABLE.
	CreateLoan(context context.Context, l *Loan) error

	// UpdateLoan persists the loan's due date and status. No stock
	// movement; use CloseLoan when copies go back on the shelf.
	UpdateLoan(context context.Context, l *Loan) error

	// CloseLoan persists the loan's terminal status and puts l.Quantity
	// copies back on the shelf in the same atomic step.
	CloseLoan(context context.Context, l *Loan) error
}
