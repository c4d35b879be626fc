package validation

import (
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeapi/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestClean(t *testing.T) {
	assert.Equal(t, "Groceries", Clean("  <b>Groceries</b> "))
	assert.Equal(t, "Tom & Jerry", Clean("Tom & Jerry"))
	assert.Equal(t, "", Clean("<script>alert(1)</script>"))
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := New()
	v.Required("name", "   ", 10)
	v.Currency("currency", "xyz")
	v.Day("payday", 32)
	v.Amount("amount", ptr(decimal.NewFromInt(-1)), true)
	v.Date("date", "2024/01/01")

	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var fields Errors
	require.True(t, errors.As(err, &fields))
	assert.Len(t, fields, 5)
	assert.Equal(t, "is required", fields["name"])
	assert.Contains(t, err.Error(), "payday: must be between 1 and 31")
}

func TestValidator_FirstErrorWins(t *testing.T) {
	v := New()
	v.Fail("name", "first")
	v.Fail("name", "second")
	assert.Equal(t, "first", v.Err().(Errors)["name"])
}

func TestValidator_HappyPath(t *testing.T) {
	v := New()
	name := v.Required("name", " Main ", 50)
	note := v.Optional("notes", ptr("  "), 100)
	ref := v.Ref(ptr(" acc-1 "))
	cur := v.Currency("currency", "usd")
	amount := v.Amount("amount", ptr(decimal.RequireFromString("10.50")), true)
	rate := v.Range("interest_rate", ptr(decimal.NewFromInt(35)), 0, 100)
	due := v.OptionalDate("due_date", ptr("2024-12-31"))
	email := v.Email("email", " User@Example.COM ")

	require.NoError(t, v.Err())
	assert.Equal(t, "Main", name)
	assert.Nil(t, note)
	assert.Equal(t, "acc-1", *ref)
	assert.Equal(t, model.CurrencyUSD, cur)
	assert.Equal(t, "10.5", amount.String())
	assert.Equal(t, "35", rate.String())
	assert.Equal(t, "2024-12-31", due.String())
	assert.Equal(t, "user@example.com", email)
}

func TestValidator_MatchAndEnum(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}$`)
	v := New()
	v.Match("last_four", "12a4", re, "must be four digits")
	v.Enum("type", "", false)
	v.Enum("status", "bogus", model.DebtStatus("bogus").Valid())
	v.Email("email", "not-an-email")

	errs := v.Err().(Errors)
	assert.Equal(t, "must be four digits", errs["last_four"])
	assert.Equal(t, "is required", errs["type"])
	assert.Equal(t, "is not an allowed value", errs["status"])
	assert.Equal(t, "must be a valid email address", errs["email"])
}
