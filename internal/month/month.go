// Package month resolves English month names into calendar months used to
// filter sales by month-of-year.
package month

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// ErrMissing is returned by Parse for an empty or blank name.
	ErrMissing = errors.New("month parameter is required")
	// ErrInvalid is returned by Parse for a name that is not an English month.
	ErrInvalid = errors.New("invalid month name")
)

// Month is a calendar month, January through December.
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// Default is used by the listing and combined queries when the caller gives
// no usable month.
const Default = March

var names = [...]string{
	January:   "january",
	February:  "february",
	March:     "march",
	April:     "april",
	May:       "may",
	June:      "june",
	July:      "july",
	August:    "august",
	September: "september",
	October:   "october",
	November:  "november",
	December:  "december",
}

// Parse resolves a month name case-insensitively.
func Parse(name string) (Month, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrMissing
	}

	// Casers keep state, so each call gets its own.
	key := cases.Fold().String(name)
	for m := January; m <= December; m++ {
		if names[m] == key {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalid, name)
}

// ParseOrDefault resolves name, falling back to Default when it is empty or
// not a month.
func ParseOrDefault(name string) Month {
	m, err := Parse(name)
	if err != nil {
		return Default
	}

	return m
}

// All returns the twelve months in calendar order.
func All() []Month {
	all := make([]Month, 0, 12)
	for m := January; m <= December; m++ {
		all = append(all, m)
	}

	return all
}

func (m Month) Valid() bool {
	return m >= January && m <= December
}

// Code returns the two-digit month number ("01".."12") matched against the
// month of the sale date.
func (m Month) Code() string {
	if !m.Valid() {
		return Default.Code()
	}

	return fmt.Sprintf("%02d", int(m))
}

// Name returns the lowercase English name.
func (m Month) Name() string {
	if !m.Valid() {
		return Default.Name()
	}

	return names[m]
}

func (m Month) String() string {
	return m.Name()
}
