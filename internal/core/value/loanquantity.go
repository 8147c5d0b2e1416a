package value

import (
	"fmt"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Stable code for loan-quantity violations.
const CodeLoanQuantityInvalid = "LOAN_QUANTITY_INVALID"

// Batch borrow bounds.
const (
	MinLoanQuantity = 1
	MaxLoanQuantity = 5
)

// LoanQuantity is the number of copies requested in a single borrow.
type LoanQuantity struct {
	value int
}

// NewLoanQuantity validates v against the batch borrow bounds.
func NewLoanQuantity(v int) (LoanQuantity, error) {
	if v < MinLoanQuantity || v > MaxLoanQuantity {
		return LoanQuantity{}, apperr.ValidationError(
			fmt.Sprintf("Loan quantity must be between %d and %d", MinLoanQuantity, MaxLoanQuantity),
		).WithCode(CodeLoanQuantityInvalid)
	}

	return LoanQuantity{value: v}, nil
}

// Value returns the validated quantity.
func (q LoanQuantity) Value() int { return q.value }
