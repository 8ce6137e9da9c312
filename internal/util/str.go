package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateFormat is the layout of calendar dates in files and messages.
const DateFormat = "2006-01-02"

// Date is the format to use anywhere we need to output a date to an user.
func Date(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate parses a DateFormat string as a date in the local timezone.
func ParseDate(str string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, str, time.Local)
}

// NormalizeName returns the key under which a player is stored: trimmed and
// lower-cased so "Alice " and "alice" are the same player.
func NormalizeName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// ParseScore parses a user-provided numeric value, NaN and infinities are
// refused.
func ParseScore(str string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, ErrPublic(fmt.Sprintf("`%s` is not a number", str))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrPublic(fmt.Sprintf("`%s` is not a finite number", str))
	}

	return v, nil
}

// FormatFloat prints a score or rating without trailing zeroes.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDuration prettifies a duration by removing useless units.
// eg. 1h20m0s -> 1h20m
// It does not round/truncate the duration, it only works on the string.
func FormatDuration(d time.Duration) string {
	var prefix string
	if d > (24 * time.Hour) {
		prefix = fmt.Sprintf("%dd", d/(24*time.Hour))
		// Don't need minutes if its in more than a day
		d = (d % (24 * time.Hour)).Truncate(time.Hour)
	}

	ret := strings.TrimSuffix(d.Truncate(time.Second).String(), "0s")
	if strings.HasSuffix(ret, "h0m") {
		return prefix + strings.TrimSuffix(ret, "0m")
	}

	return prefix + ret
}
