package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date layout and locale the platform is told to parse request dates with.
// Feature files write dates the same way, e.g. "01 January 2024".
const (
	DateFormat  = "dd MMMM yyyy"
	DateLayout  = "02 January 2006"
	Locale      = "en"
	ISODateOnly = "2006-01-02"
)

// ParseDate parses a feature-file date ("01 January 2024")
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not in %q format: %w", s, DateFormat, err)
	}
	return t, nil
}

// FormatDate renders a date the way feature files and request bodies expect
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatLocalDate renders the platform's [yyyy, m, d] date triple
func FormatLocalDate(parts []int) string {
	t, ok := LocalDate(parts)
	if !ok {
		return ""
	}
	return FormatDate(t)
}

// LocalDate converts the platform's [year, month, day] array to a UTC date
func LocalDate(parts []int) (time.Time, bool) {
	if len(parts) != 3 {
		return time.Time{}, false
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC), true
}

// DaysBetween counts calendar days from start to end
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// DecimalFromString converts a table cell to decimal.Decimal.
// Empty cells read as zero; thousands separators are ignored.
func DecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// SameAmount compares two amounts as decimals, so "10" equals "10.00"
func SameAmount(expected, actual string) bool {
	e, err := DecimalFromString(expected)
	if err != nil {
		return strings.TrimSpace(expected) == strings.TrimSpace(actual)
	}
	a, err := DecimalFromString(actual)
	if err != nil {
		return false
	}
	return e.Equal(a)
}

// ExternalID returns a fresh external id for platform resources
func ExternalID() string {
	return uuid.NewString()
}
