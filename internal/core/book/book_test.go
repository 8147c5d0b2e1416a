package book_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm/internal/core/book"
	"github.com/bookwormhq/bookworm/internal/platform/apperr"
)

/*
TestNewTitle covers trimming and the 200-character bound.
*/
func TestNewTitle(t *testing.T) {
	title, err := book.NewTitle("  The Hobbit  ")
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", title.Value())

	_, err = book.NewTitle("")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeTitleInvalid))

	_, err = book.NewTitle(strings.Repeat("a", 201))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeTitleInvalid))

	_, err = book.NewTitle(strings.Repeat("a", 200))
	assert.NoError(t, err)
}

/*
TestNewLanguage_And_NewType verify case normalization against the fixed sets.
*/
func TestNewLanguage_And_NewType(t *testing.T) {
	language, err := book.NewLanguage("english")
	require.NoError(t, err)
	assert.Equal(t, "ENGLISH", language.Value())

	_, err = book.NewLanguage("klingon")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeLanguageInvalid))

	bookType, err := book.NewType("non_fiction")
	require.NoError(t, err)
	assert.Equal(t, "NON_FICTION", bookType.Value())

	_, err = book.NewType("scroll")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeTypeInvalid))
}

/*
TestQuantity covers the 0-9999 bounds and the increase/decrease arithmetic.
*/
func TestQuantity(t *testing.T) {
	quantity, err := book.QuantityOf(3)
	require.NoError(t, err)

	_, err = book.QuantityOf(-1)
	require.Error(t, err)
	_, err = book.QuantityOf(10000)
	require.Error(t, err)

	increased, err := quantity.Increase(2)
	require.NoError(t, err)
	assert.Equal(t, 5, increased.Value())
	assert.Equal(t, 3, quantity.Value(), "original value unchanged")

	decreased, err := quantity.Decrease(3)
	require.NoError(t, err)
	assert.Equal(t, 0, decreased.Value())
	assert.False(t, decreased.HasStock())

	_, err = quantity.Decrease(4)
	require.Error(t, err, "cannot go below zero")
	_, err = quantity.Increase(0)
	require.Error(t, err, "increase amount must be positive")

	assert.True(t, quantity.HasStockFor(3))
	assert.False(t, quantity.HasStockFor(4))
}

/*
TestStatus_IsOperational pins down the deletion-permitting subset.
*/
func TestStatus_IsOperational(t *testing.T) {
	assert.True(t, book.StatusAvailable.IsOperational())
	assert.True(t, book.StatusMaintenance.IsOperational())

	assert.False(t, book.StatusBorrowed.IsOperational())
	assert.False(t, book.StatusReserved.IsOperational())
	assert.False(t, book.StatusLost.IsOperational())
	assert.False(t, book.StatusDamaged.IsOperational())
}

/*
TestBook_StockTransitions verifies the status flips as the last copy
leaves and returns.
*/
func TestBook_StockTransitions(t *testing.T) {
	b := &book.Book{ID: "b1", Quantity: 1, Status: book.StatusAvailable}

	require.NoError(t, b.BorrowStock(1))
	assert.Equal(t, 0, b.Quantity)
	assert.Equal(t, book.StatusBorrowed, b.Status)

	err := b.BorrowStock(1)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, book.CodeBookNotAvailable))

	require.NoError(t, b.ReturnStock(1))
	assert.Equal(t, 1, b.Quantity)
	assert.Equal(t, book.StatusAvailable, b.Status)
}
