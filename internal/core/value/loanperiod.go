package value

import (
	"fmt"
	"time"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/clock"
)

// Stable codes for loan-period violations.
const (
	CodeLoanPeriodInvalid    = "LOAN_PERIOD_INVALID"
	CodeLoanExtensionInvalid = "LOAN_EXTENSION_INVALID"
)

// Extension bounds, in days.
const (
	MinExtensionDays = 1
	MaxExtensionDays = 14
)

// LoanPeriod is the validated start/due date pair of a loan.
//
// Both dates are calendar dates (UTC midnight). The type never reads the
// system clock: "today" is always supplied by the caller, which keeps every
// rule deterministic under test.
type LoanPeriod struct {
	loanDate time.Time
	dueDate  time.Time
}

// NewLoanPeriod validates the date pair against today.
//
// Rules: both dates required, due date not before loan date, loan date not
// in the past relative to today.
func NewLoanPeriod(loanDate, dueDate, today time.Time) (LoanPeriod, error) {
	if loanDate.IsZero() {
		return LoanPeriod{}, periodError("Loan date is required")
	}
	if dueDate.IsZero() {
		return LoanPeriod{}, periodError("Due date is required")
	}

	normalizedLoan := clock.Date(loanDate)
	normalizedDue := clock.Date(dueDate)
	normalizedToday := clock.Date(today)

	if normalizedDue.Before(normalizedLoan) {
		return LoanPeriod{}, periodError("Due date cannot be before loan date")
	}
	if normalizedLoan.Before(normalizedToday) {
		return LoanPeriod{}, periodError("Loan date cannot be in the past")
	}

	return LoanPeriod{loanDate: normalizedLoan, dueDate: normalizedDue}, nil
}

// LoanPeriodFromDates rehydrates a persisted period.
//
// Only the date ordering is checked; the not-in-the-past rule applies to new
// loans, not to periods read back from storage whose start date has since
// passed.
func LoanPeriodFromDates(loanDate, dueDate time.Time) (LoanPeriod, error) {
	if loanDate.IsZero() {
		return LoanPeriod{}, periodError("Loan date is required")
	}
	if dueDate.IsZero() {
		return LoanPeriod{}, periodError("Due date is required")
	}

	normalizedLoan := clock.Date(loanDate)
	normalizedDue := clock.Date(dueDate)
	if normalizedDue.Before(normalizedLoan) {
		return LoanPeriod{}, periodError("Due date cannot be before loan date")
	}

	return LoanPeriod{loanDate: normalizedLoan, dueDate: normalizedDue}, nil
}

// DefaultLoanPeriod starts a period today and sets the due date days ahead.
func DefaultLoanPeriod(today time.Time, days int) LoanPeriod {
	start := clock.Date(today)
	return LoanPeriod{loanDate: start, dueDate: start.AddDate(0, 0, days)}
}

// LoanDate returns the start date.
func (p LoanPeriod) LoanDate() time.Time { return p.loanDate }

// DueDate returns the due date.
func (p LoanPeriod) DueDate() time.Time { return p.dueDate }

// TotalLoanDays returns the full length of the period in days.
func (p LoanPeriod) TotalLoanDays() int {
	return daysBetween(p.loanDate, p.dueDate)
}

// DaysUntilDue returns the remaining days before the due date, or 0 once
// the period is overdue.
func (p LoanPeriod) DaysUntilDue(today time.Time) int {
	remaining := daysBetween(clock.Date(today), p.dueDate)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsOverdue reports whether today is past the due date.
func (p LoanPeriod) IsOverdue(today time.Time) bool {
	return clock.Date(today).After(p.dueDate)
}

// OverdueDays returns how many days past due the period is, or 0 if it is
// not overdue.
func (p LoanPeriod) OverdueDays(today time.Time) int {
	if !p.IsOverdue(today) {
		return 0
	}
	return daysBetween(p.dueDate, clock.Date(today))
}

// Extend returns a NEW period with the due date pushed forward by days.
//
// The loan date is unchanged and the receiver is never mutated. Extensions
// outside [MinExtensionDays, MaxExtensionDays] are rejected.
func (p LoanPeriod) Extend(days int) (LoanPeriod, error) {
	if days < MinExtensionDays || days > MaxExtensionDays {
		return LoanPeriod{}, apperr.ValidationError(
			fmt.Sprintf("Extension must be between %d and %d days", MinExtensionDays, MaxExtensionDays),
		).WithCode(CodeLoanExtensionInvalid)
	}

	return LoanPeriod{loanDate: p.loanDate, dueDate: p.dueDate.AddDate(0, 0, days)}, nil
}

// daysBetween counts whole days from a to b (negative when b precedes a).
// Both inputs are already UTC midnights, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func periodError(message string) *apperr.AppError {
	return apperr.ValidationError(message).WithCode(CodeLoanPeriodInvalid)
}
