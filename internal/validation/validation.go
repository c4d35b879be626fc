// Package validation turns loosely typed request input into clean domain values.
// Every check records a field error instead of failing fast so a client sees all
// problems of a submission at once.
package validation

import (
	"errors"
	"fmt"
	"html"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"financeapi/internal/model"
)

// ErrValidationFailed is matched by errors.Is for every Errors value.
var ErrValidationFailed = errors.New("validation failed")

// Errors maps a field name to the first problem found with it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error { return ErrValidationFailed }

var strict = bluemonday.StrictPolicy()

// Clean trims s and strips any markup.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(strings.TrimSpace(s))))
}

// Validator accumulates field errors.
type Validator struct {
	errs Errors
}

func New() *Validator {
	return &Validator{errs: Errors{}}
}

// Fail records msg for field unless the field already has an error.
func (v *Validator) Fail(field, msg string) {
	if _, ok := v.errs[field]; !ok {
		v.errs[field] = msg
	}
}

// Check records msg for field when ok is false.
func (v *Validator) Check(ok bool, field, msg string) {
	if !ok {
		v.Fail(field, msg)
	}
}

// Err returns the accumulated Errors, or nil when there are none.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// Required cleans a mandatory text field of at most max runes.
func (v *Validator) Required(field, s string, max int) string {
	out := Clean(s)
	if out == "" {
		v.Fail(field, "is required")
		return out
	}
	if max > 0 && utf8.RuneCountInString(out) > max {
		v.Fail(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return out
}

// Optional cleans an optional text field. Blank values become nil.
func (v *Validator) Optional(field string, s *string, max int) *string {
	if s == nil {
		return nil
	}
	out := Clean(*s)
	if out == "" {
		return nil
	}
	if max > 0 && utf8.RuneCountInString(out) > max {
		v.Fail(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return &out
}

// Ref normalizes an optional reference to another record.
func (v *Validator) Ref(s *string) *string {
	if s == nil {
		return nil
	}
	out := strings.TrimSpace(*s)
	if out == "" {
		return nil
	}
	return &out
}

// Match records an error when s does not match re.
func (v *Validator) Match(field, s string, re *regexp.Regexp, msg string) {
	if s != "" && !re.MatchString(s) {
		v.Fail(field, msg)
	}
}

// Email checks the address syntax and returns it lower-cased.
func (v *Validator) Email(field, s string) string {
	out := strings.ToLower(v.Required(field, s, 254))
	if out == "" {
		return out
	}
	addr, err := mail.ParseAddress(out)
	if err != nil || addr.Address != out {
		v.Fail(field, "must be a valid email address")
	}
	return out
}

// Currency checks a currency code, upper-casing it first.
func (v *Validator) Currency(field, s string) model.Currency {
	c := model.Currency(strings.ToUpper(strings.TrimSpace(s)))
	if c == "" {
		v.Fail(field, "is required")
		return c
	}
	v.Check(c.Valid(), field, "is not a supported currency")
	return c
}

// Enum records an error unless valid; empty values report as missing.
func (v *Validator) Enum(field, s string, valid bool) {
	if s == "" {
		v.Fail(field, "is required")
		return
	}
	v.Check(valid, field, "is not an allowed value")
}

// Day checks a day of month.
func (v *Validator) Day(field string, d int) int {
	v.Check(d >= 1 && d <= 31, field, "must be between 1 and 31")
	return d
}

// OptionalDay checks an optional day of month.
func (v *Validator) OptionalDay(field string, d *int) *int {
	if d == nil {
		return nil
	}
	v.Day(field, *d)
	return d
}

// Amount requires a decimal value. positive demands > 0, otherwise >= 0 is accepted.
func (v *Validator) Amount(field string, d *decimal.Decimal, positive bool) decimal.Decimal {
	if d == nil {
		v.Fail(field, "is required")
		return decimal.Zero
	}
	if positive {
		v.Check(d.Sign() > 0, field, "must be greater than zero")
	} else {
		v.Check(d.Sign() >= 0, field, "must not be negative")
	}
	return *d
}

// Range checks lo <= d <= hi on an optional decimal.
func (v *Validator) Range(field string, d *decimal.Decimal, lo, hi int64) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v.Check(d.GreaterThanOrEqual(decimal.NewFromInt(lo)) && d.LessThanOrEqual(decimal.NewFromInt(hi)),
		field, fmt.Sprintf("must be between %d and %d", lo, hi))
	return d
}

// Date parses a mandatory YYYY-MM-DD value.
func (v *Validator) Date(field, s string) model.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Fail(field, "is required")
		return model.Date{}
	}
	d, err := model.ParseDate(s)
	if err != nil {
		v.Fail(field, "must be a date formatted YYYY-MM-DD")
	}
	return d
}

// OptionalDate parses an optional YYYY-MM-DD value. Blank values become nil.
func (v *Validator) OptionalDate(field string, s *string) *model.Date {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d := v.Date(field, *s)
	if d.IsZero() {
		return nil
	}
	return &d
}
