package loan

import (
	"time"

	"github.com/bookwormhq/bookworm/internal/platform/clock"
)

// Stable codes for loan rule violations.
const (
	CodeLoanNotFound  = "LOAN_NOT_FOUND"
	CodeLoanNotActive = "LOAN_NOT_ACTIVE"
	CodeLoanOverdue   = "LOAN_OVERDUE"
	CodeLoanForbidden = "LOAN_FORBIDDEN"
)

// Status is the lifecycle state of a loan. Overdue is not a stored state:
// it is derived from the due date so a loan can never be "stuck" overdue
// after a return.
type Status string

const (
	StatusActive    Status = "active"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// Loan ties a member to the copies of a book they borrowed for a period.
type Loan struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Quantity  int       `json:"quantity"`
	LoanDate  time.Time `json:"loan_date"`
	DueDate   time.Time `json:"due_date"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the loan is still out.
func (l *Loan) IsActive() bool {
	return l.Status == StatusActive
}

// IsOverdue reports whether the loan is active and past its due date.
func (l *Loan) IsOverdue(today time.Time) bool {
	return l.IsActive() && clock.Date(today).After(clock.Date(l.DueDate))
}

// Filter holds the parameters for a paginated loan search.
type Filter struct {
	UserID string
	BookID string
	Status string
}
