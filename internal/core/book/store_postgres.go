package book

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
	"github.com/bookwormhq/bookworm/internal/platform/dberr"
)

// bookColumns is the select list shared by every read query.
const bookColumns = `id, title, language, type, quantity, status, registered_by, created_at, updated_at`

// classify maps database errors onto the catalog's stable codes: a missing
// row becomes BOOK_NOT_FOUND, a violated books_identity index becomes
// BOOK_DUPLICATE.
func classify(err error) error {
	wrapped := dberr.Wrap(err, "Book")

	ae := apperr.As(wrapped)
	if ae == nil {
		return wrapped
	}
	switch ae.HTTPStatus {
	case http.StatusNotFound:
		return ae.WithCode(CodeBookNotFound)
	case http.StatusConflict:
		return ae.WithCode(CodeBookDuplicate)
	}
	return wrapped
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListBooks(context context.Context, f Filter, limit, offset int) ([]*Book, int, error) {
	query := `SELECT ` + bookColumns + ` FROM catalog.books WHERE 1=1`
	countQuery := `SELECT count(*) FROM catalog.books WHERE 1=1`

	args := []any{}
	appendClause := func(clause string, value any) {
		args = append(args, value)
		placeholder := fmt.Sprintf(clause, len(args))
		query += placeholder
		countQuery += placeholder
	}

	if f.Query != "" {
		appendClause(" AND title ILIKE $%d", "%"+f.Query+"%")
	}
	if f.Language != "" {
		appendClause(" AND language = $%d", f.Language)
	}
	if f.Type != "" {
		appendClause(" AND type = $%d", f.Type)
	}
	if f.Status != "" {
		appendClause(" AND status = $%d", f.Status)
	}

	var total int
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}

	query += fmt.Sprintf(" ORDER BY title ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b := &Book{}
		if err := scanBook(rows, b); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, b)
	}

	return books, total, nil
}

func (repository *PostgresRepository) GetBook(context context.Context, id string) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM catalog.books WHERE id = $1`

	b := &Book{}
	if err := scanBook(repository.db.QueryRow(context, query, id), b); err != nil {
		return nil, classify(err)
	}

	return b, nil
}

func (repository *PostgresRepository) FindSameBook(context context.Context, title, language, bookType string) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM catalog.books WHERE title = $1 AND language = $2 AND type = $3`

	b := &Book{}
	err := scanBook(repository.db.QueryRow(context, query, title, language, bookType), b)
	if errors.Is(err, pgx.ErrNoRows) {
		// Absence is a valid answer for the duplicate lookup, not a failure.
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_same_book")
	}

	return b, nil
}

func (repository *PostgresRepository) CreateBook(context context.Context, b *Book) error {
	query := `
		INSERT INTO catalog.books (id, title, language, type, quantity, status, registered_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := repository.db.QueryRow(context, query,
		b.ID, b.Title, b.Language, b.Type, b.Quantity, b.Status, b.RegisteredBy,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	return classify(err)
}

func (repository *PostgresRepository) UpdateBook(context context.Context, b *Book) error {
	query := `
		UPDATE catalog.books
		SET title = $2, language = $3, type = $4, quantity = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := repository.db.QueryRow(context, query,
		b.ID, b.Title, b.Language, b.Type, b.Quantity, b.Status,
	).Scan(&b.UpdatedAt)

	return classify(err)
}

func (repository *PostgresRepository) DeleteBook(context context.Context, id string) error {
	cmd, err := repository.db.Exec(context, `DELETE FROM catalog.books WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if cmd.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows)
	}
	return nil
}

// scanBook fills b from a row in bookColumns order.
func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Language, &b.Type, &b.Quantity, &b.Status,
		&b.RegisteredBy, &b.CreatedAt, &b.UpdatedAt,
	)
}
