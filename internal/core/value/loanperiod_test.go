package value_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm/internal/core/value"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/clock"
)

var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

/*
TestNewLoanPeriod covers the date-pair construction rules against an
injected "today".
*/
func TestNewLoanPeriod(t *testing.T) {
	tests := []struct {
		name     string
		loanDate time.Time
		dueDate  time.Time
		wantErr  bool
	}{
		{"valid_two_weeks", today, today.AddDate(0, 0, 14), false},
		{"valid_same_day", today, today, false},
		{"valid_future_start", today.AddDate(0, 0, 3), today.AddDate(0, 0, 17), false},
		{"zero_loan_date", time.Time{}, today.AddDate(0, 0, 14), true},
		{"zero_due_date", today, time.Time{}, true},
		{"due_before_loan", today.AddDate(0, 0, 5), today, true},
		{"loan_in_past", today.AddDate(0, 0, -1), today.AddDate(0, 0, 14), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := value.NewLoanPeriod(tt.loanDate, tt.dueDate, today)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, value.CodeLoanPeriodInvalid))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, clock.Date(tt.loanDate), period.LoanDate())
			assert.Equal(t, clock.Date(tt.dueDate), period.DueDate())
		})
	}
}

/*
TestLoanPeriod_Extend verifies the 1-14 day extension window and that
extending yields a new value without touching the original.
*/
func TestLoanPeriod_Extend(t *testing.T) {
	period := value.DefaultLoanPeriod(today, 14)

	t.Run("valid_extensions", func(t *testing.T) {
		for _, days := range []int{1, 7, 14} {
			extended, err := period.Extend(days)
			require.NoError(t, err)

			assert.Equal(t, period.DueDate().AddDate(0, 0, days), extended.DueDate())
			assert.Equal(t, period.LoanDate(), extended.LoanDate())
		}
	})

	t.Run("invalid_extensions", func(t *testing.T) {
		for _, days := range []int{0, -1, 15} {
			_, err := period.Extend(days)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, value.CodeLoanExtensionInvalid))
		}
	})

	t.Run("original_unchanged", func(t *testing.T) {
		_, err := period.Extend(7)
		require.NoError(t, err)
		assert.Equal(t, today.AddDate(0, 0, 14), period.DueDate())
	})
}

/*
TestLoanPeriod_DerivedFacts checks the overdue and remaining-day math.
*/
func TestLoanPeriod_DerivedFacts(t *testing.T) {
	period := value.DefaultLoanPeriod(today, 14)

	assert.Equal(t, 14, period.TotalLoanDays())
	assert.Equal(t, 14, period.DaysUntilDue(today))
	assert.Equal(t, 4, period.DaysUntilDue(today.AddDate(0, 0, 10)))

	// On the due date itself the loan is not yet overdue.
	dueDay := today.AddDate(0, 0, 14)
	assert.False(t, period.IsOverdue(dueDay))
	assert.Equal(t, 0, period.OverdueDays(dueDay))
	assert.Equal(t, 0, period.DaysUntilDue(dueDay))

	// Three days past due.
	lateDay := dueDay.AddDate(0, 0, 3)
	assert.True(t, period.IsOverdue(lateDay))
	assert.Equal(t, 3, period.OverdueDays(lateDay))
	assert.Equal(t, 0, period.DaysUntilDue(lateDay))
}
