// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

/*
TestWithCode ensures code stamping copies the error instead of mutating
the shared constructor result.
*/
func TestWithCode(t *testing.T) {
	base := apperr.NotFound("Book")
	stamped := base.WithCode("BOOK_NOT_FOUND")

	assert.Equal(t, "NOT_FOUND", base.Code)
	assert.Equal(t, "BOOK_NOT_FOUND", stamped.Code)
	assert.Equal(t, base.Message, stamped.Message)
	assert.Equal(t, http.StatusNotFound, stamped.HTTPStatus)
}

/*
TestAs verifies AppError extraction through a wrapped chain.
*/
func TestAs(t *testing.T) {
	inner := apperr.Conflict("Duplicate book")
	wrapped := fmt.Errorf("catalog_register_failed: %w", inner)

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)

	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestHasCode checks stable-code matching across wrapping.
*/
func TestHasCode(t *testing.T) {
	err := apperr.Unauthorized("Current password is incorrect").WithCode("USER_INVALID_PASSWORD")

	assert.True(t, apperr.HasCode(err, "USER_INVALID_PASSWORD"))
	assert.False(t, apperr.HasCode(err, "USER_NOT_FOUND"))
	assert.False(t, apperr.HasCode(nil, "USER_NOT_FOUND"))
}

/*
TestInternal_HidesCause ensures the cause never reaches the client message.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	ae := apperr.Internal(cause)

	assert.NotContains(t, ae.Message, "pq:")
	assert.ErrorIs(t, ae, cause)
}

/*
TestValidationError_Details verifies per-rule detail aggregation.
*/
func TestValidationError_Details(t *testing.T) {
	ae := apperr.ValidationError("Password does not meet the policy",
		apperr.FieldError{Field: "password", Message: "Password must be at least 8 characters long"},
		apperr.FieldError{Field: "password", Message: "Password must contain at least one digit"},
	)

	require.Len(t, ae.Details, 2)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
}
