// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

// Package dberr provides a bridge between low-level database errors and
// the application error taxonomy.
//
// # Why classify here?
//
// Repositories must never leak pgx internals to the domain layer. This
// package owns the SQLSTATE-to-taxonomy mapping so every store handles a
// missing row or a violated unique constraint the same way.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

// Wrap inspects a database error and converts it into a meaningful
// [apperr.AppError], hiding internal database details from the client.
//
// # Mapping
//
//   - pgx.ErrNoRows            -> 404 NotFound (named resource)
//   - SQLSTATE 23505 (unique)  -> 409 Conflict
//   - anything else            -> 500 Internal (cause retained for logs)
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// Unique-constraint violations surface as client-visible conflicts.
	// The catalog relies on this: concurrent registrations of the same
	// (title, language, type) triple race past the duplicate lookup, and
	// the books_identity unique index is the backstop that turns the
	// second insert into a retryable conflict instead of a duplicate row.
	if IsUniqueViolation(err) {
		return apperr.Conflict(resource + " already exists")
	}

	return apperr.Internal(fmt.Errorf("dberr: %w", err))
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
