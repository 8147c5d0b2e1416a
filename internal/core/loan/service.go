package loan

import (
	"context"
	"log/slog"

	"github.com/bookwormhq/bookworm/internal/core/book"
	"github.com/bookwormhq/bookworm/internal/core/value"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/clock"
	"github.com/bookwormhq/bookworm/internal/platform/config"
	"github.com/bookwormhq/bookworm/pkg/uuidv7"
)

// Service implements loan tracking: sized, timed borrows against the
// catalog's stock, returns, extensions, and overdue reporting.
//
// All date rules go through the injected clock; the service never reads
// time.Now for rule evaluation.
type Service struct {
	loans  Repository
	books  book.Repository
	clock  clock.Clock
	policy config.Policy
	logger *slog.Logger
}

func NewService(loans Repository, books book.Repository, clk clock.Clock, policy config.Policy, logger *slog.Logger) *Service {
	return &Service{
		loans:  loans,
		books:  books,
		clock:  clk,
		policy: policy,
		logger: logger,
	}
}

func (service *Service) ListLoans(context context.Context, filter Filter, limit, offset int) ([]*Loan, int, error) {
	return service.loans.ListLoans(context, filter, limit, offset)
}

func (service *Service) GetLoan(context context.Context, id string) (*Loan, error) {
	return service.loans.GetLoan(context, id)
}

// Borrow lends quantity copies of a book to a member.
//
// The quantity is validated as a batch size (1-5), the book must be able to
// lend that many copies, and the period starts today with the policy's
// default length. The loan row and the stock decrement commit together in
// the repository; a failed write leaves neither behind.
func (service *Service) Borrow(context context.Context, bookID, userID string, quantity int) (*Loan, error) {
	loanQuantity, err := value.NewLoanQuantity(quantity)
	if err != nil {
		return nil, err
	}

	b, err := service.books.GetBook(context, bookID)
	if err != nil {
		return nil, err
	}

	// Pre-flight on a throwaway copy for the domain error; the store
	// re-checks stock under its transaction, so a concurrent borrow can
	// never oversell the same copies.
	if err := b.BorrowStock(loanQuantity.Value()); err != nil {
		return nil, err
	}

	period := value.DefaultLoanPeriod(service.clock.Today(), service.policy.DefaultLoanDays)

	newLoan := &Loan{
		ID:       uuidv7.New(),
		BookID:   b.ID,
		UserID:   userID,
		Quantity: loanQuantity.Value(),
		LoanDate: period.LoanDate(),
		DueDate:  period.DueDate(),
		Status:   StatusActive,
	}

	if err := service.loans.CreateLoan(context, newLoan); err != nil {
		return nil, err
	}

	service.logger.Info("loan_created",
		slog.String("loan_id", newLoan.ID),
		slog.String("book_id", b.ID),
		slog.String("user_id", userID),
		slog.Int("quantity", loanQuantity.Value()),
		slog.Time("due_date", newLoan.DueDate),
	)
	return newLoan, nil
}

// Return closes an active loan and puts the copies back on the shelf.
func (service *Service) Return(context context.Context, loanID string) (*Loan, error) {
	l, err := service.loans.GetLoan(context, loanID)
	if err != nil {
		return nil, err
	}

	if !l.IsActive() {
		return nil, apperr.Unprocessable("Only an active loan can be returned").
			WithCode(CodeLoanNotActive)
	}

	l.Status = StatusReturned
	if err := service.loans.CloseLoan(context, l); err != nil {
		return nil, err
	}

	service.logger.Info("loan_returned",
		slog.String("loan_id", l.ID),
		slog.String("book_id", l.BookID),
	)
	return l, nil
}

// Extend pushes an active loan's due date forward by days (1-14).
//
// An overdue loan cannot be extended; the member has to return the copies
// and settle the fine first.
func (service *Service) Extend(context context.Context, loanID string, days int) (*Loan, error) {
	l, err := service.loans.GetLoan(context, loanID)
	if err != nil {
		return nil, err
	}

	if !l.IsActive() {
		return nil, apperr.Unprocessable("Only an active loan can be extended").
			WithCode(CodeLoanNotActive)
	}
	if l.IsOverdue(service.clock.Today()) {
		return nil, apperr.Unprocessable("An overdue loan cannot be extended").
			WithCode(CodeLoanOverdue)
	}

	period, err := value.LoanPeriodFromDates(l.LoanDate, l.DueDate)
	if err != nil {
		return nil, err
	}
	extended, err := period.Extend(days)
	if err != nil {
		return nil, err
	}

	l.DueDate = extended.DueDate()
	if err := service.loans.UpdateLoan(context, l); err != nil {
		return nil, err
	}

	service.logger.Info("loan_extended",
		slog.String("loan_id", l.ID),
		slog.Int("days", days),
		slog.Time("due_date", l.DueDate),
	)
	return l, nil
}

// Cancel voids an active loan before the copies leave the shelf.
func (service *Service) Cancel(context context.Context, loanID string) (*Loan, error) {
	l, err := service.loans.GetLoan(context, loanID)
	if err != nil {
		return nil, err
	}

	if !l.IsActive() {
		return nil, apperr.Unprocessable("Only an active loan can be cancelled").
			WithCode(CodeLoanNotActive)
	}

	l.Status = StatusCancelled
	if err := service.loans.CloseLoan(context, l); err != nil {
		return nil, err
	}

	service.logger.Info("loan_cancelled", slog.String("loan_id", l.ID))
	return l, nil
}

// OverdueLoan pairs a loan with its accrued fine for reporting.
type OverdueLoan struct {
	*Loan
	OverdueDays int `json:"overdue_days"`
	Fine        int `json:"fine"`
}

// ListOverdue returns active loans past their due date, each with its
// day count and accrued fine per the library policy.
func (service *Service) ListOverdue(context context.Context, limit, offset int) ([]*OverdueLoan, int, error) {
	today := service.clock.Today()

	overdue, total, err := service.loans.ListOverdueLoans(context, today, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	report := make([]*OverdueLoan, 0, len(overdue))
	for _, l := range overdue {
		period, err := value.LoanPeriodFromDates(l.LoanDate, l.DueDate)
		if err != nil {
			return nil, 0, err
		}

		days := period.OverdueDays(today)
		report = append(report, &OverdueLoan{
			Loan:        l,
			OverdueDays: days,
			Fine:        days * service.policy.OverdueFinePerDay,
		})
	}

	return report, total, nil
}
