package loan

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookwormhq/bookworm/internal/core/book"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/dberr"
)

// loanColumns is the select list shared by every read query.
const loanColumns = `id, book_id, user_id, quantity, loan_date, due_date, status, created_at, updated_at`

// classify stamps the loan domain code onto a missing-row failure.
func classify(err error) error {
	wrapped := dberr.Wrap(err, "Loan")

	if ae := apperr.As(wrapped); ae != nil && ae.HTTPStatus == http.StatusNotFound {
		return ae.WithCode(CodeLoanNotFound)
	}
	return wrapped
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListLoans(context context.Context, f Filter, limit, offset int) ([]*Loan, int, error) {
	query := `SELECT ` + loanColumns + ` FROM catalog.loans WHERE 1=1`
	countQuery := `SELECT count(*) FROM catalog.loans WHERE 1=1`

	args := []any{}
	appendClause := func(clause string, value any) {
		args = append(args, value)
		placeholder := fmt.Sprintf(clause, len(args))
		query += placeholder
		countQuery += placeholder
	}

	if f.UserID != "" {
		appendClause(" AND user_id = $%d", f.UserID)
	}
	if f.BookID != "" {
		appendClause(" AND book_id = $%d", f.BookID)
	}
	if f.Status != "" {
		appendClause(" AND status = $%d", f.Status)
	}

	var total int
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_loans")
	}

	query += fmt.Sprintf(" ORDER BY loan_date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return repository.queryLoans(context, query, args, total)
}

func (repository *PostgresRepository) GetLoan(context context.Context, id string) (*Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM catalog.loans WHERE id = $1`

	l := &Loan{}
	if err := scanLoan(repository.db.QueryRow(context, query, id), l); err != nil {
		return nil, classify(err)
	}

	return l, nil
}

func (repository *PostgresRepository) ListOverdueLoans(context context.Context, today time.Time, limit, offset int) ([]*Loan, int, error) {
	baseWhere := ` FROM catalog.loans WHERE status = $1 AND due_date < $2`

	var total int
	err := repository.db.QueryRow(context, `SELECT count(*)`+baseWhere, StatusActive, today).Scan(&total)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_overdue_loans")
	}

	query := `SELECT ` + loanColumns + baseWhere + ` ORDER BY due_date ASC LIMIT $3 OFFSET $4`
	return repository.queryLoans(context, query, []any{StatusActive, today, limit, offset}, total)
}

// CreateLoan inserts the loan row and decrements the book's stock in one
// transaction. The decrement is relative and guarded; losing the race for
// the last copies rolls the insert back and fails as not-available.
func (repository *PostgresRepository) CreateLoan(context context.Context, l *Loan) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_loan_tx")
	}
	defer func() { _ = tx.Rollback(context) }()

	insert := `
		INSERT INTO catalog.loans (id, book_id, user_id, quantity, loan_date, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(context, insert,
		l.ID, l.BookID, l.UserID, l.Quantity, l.LoanDate, l.DueDate, l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return classify(err)
	}

	borrowStock := `
		UPDATE catalog.books
		SET quantity = quantity - $2,
		    status = CASE WHEN quantity - $2 = 0 THEN 'borrowed' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'available' AND quantity >= $2
	`
	tag, err := tx.Exec(context, borrowStock, l.BookID, l.Quantity)
	if err != nil {
		return dberr.Wrap(err, "borrow_stock")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Unprocessable("Book cannot be borrowed in its current state or stock").
			WithCode(book.CodeBookNotAvailable)
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_loan_tx")
	}
	return nil
}

func (repository *PostgresRepository) UpdateLoan(context context.Context, l *Loan) error {
	query := `
		UPDATE catalog.loans
		SET due_date = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(context, query, l.ID, l.DueDate, l.Status).Scan(&l.UpdatedAt)
	return classify(err)
}

// CloseLoan persists the terminal status and restocks the book in one
// transaction. A shelf coming back from fully borrowed flips to available.
func (repository *PostgresRepository) CloseLoan(context context.Context, l *Loan) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_loan_tx")
	}
	defer func() { _ = tx.Rollback(context) }()

	update := `
		UPDATE catalog.loans
		SET due_date = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(context, update, l.ID, l.DueDate, l.Status).Scan(&l.UpdatedAt); err != nil {
		return classify(err)
	}

	restock := `
		UPDATE catalog.books
		SET quantity = quantity + $2,
		    status = CASE WHEN status = 'borrowed' THEN 'available' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := tx.Exec(context, restock, l.BookID, l.Quantity)
	if err != nil {
		return dberr.Wrap(err, "return_stock")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book").WithCode(book.CodeBookNotFound)
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_loan_tx")
	}
	return nil
}

func (repository *PostgresRepository) queryLoans(context context.Context, query string, args []any, total int) ([]*Loan, int, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_loans")
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		l := &Loan{}
		if err := scanLoan(rows, l); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_loan")
		}
		loans = append(loans, l)
	}

	return loans, total, nil
}

// scanLoan fills l from a row in loanColumns order.
func scanLoan(row pgx.Row, l *Loan) error {
	return row.Scan(
		&l.ID, &l.BookID, &l.UserID, &l.Quantity, &l.LoanDate, &l.DueDate,
		&l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
}
