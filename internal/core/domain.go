package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

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

// MinYear and MaxYear bound the years a record may be filed under.
const (
	MinYear = 1
	MaxYear = 9999
)

type (
	// Month is one of the twelve canonical months, January = 1.
	Month int

	Money struct {
		Cents int64
	}

	// Percent is a whole percentage of the monthly net.
	Percent int
)

var (
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrUnknownFund     = errors.New("unknown fund")
	ErrUnknownField    = errors.New("unknown entry field")
	ErrEmptyMemberName = errors.New("member given and family names are required")
	ErrDuplicateRecord = errors.New("duplicate monthly record")
)

// monthNames is the system-wide enumeration of month names, in calendar
// order. Stored data uses these names as part of the record key.
var monthNames = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Months returns the twelve months in calendar order.
func Months() []Month {
	out := make([]Month, 0, len(monthNames))
	for i := range monthNames {
		out = append(out, Month(i+1))
	}
	return out
}

func (m Month) Valid() bool { return m >= January && m <= December }

// Index returns the zero-based position of the month in the year.
func (m Month) Index() int { return int(m) - 1 }

func (m Month) String() string {
	if !m.Valid() {
		return "Month(" + strconv.Itoa(int(m)) + ")"
	}
	return monthNames[m.Index()]
}

// Short returns the three-letter label used on charts.
func (m Month) Short() string {
	r := []rune(m.String())
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// Previous returns the month before (year, m), rolling over the year.
func (m Month) Previous(year int) (int, Month) {
	if m == January {
		return year - 1, December
	}
	return year, m - 1
}

// ParseMonth accepts a canonical month name (case and accent insensitive,
// so "fevrier" and "FÉVRIER" both match) or a month number 1-12.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Month(n)
		if !m.Valid() {
			return 0, ErrInvalidMonth
		}
		return m, nil
	}
	key := FoldAccents(s)
	for i, name := range monthNames {
		if FoldAccents(name) == key {
			return Month(i + 1), nil
		}
	}
	return 0, ErrInvalidMonth
}

func (m Month) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, ErrInvalidMonth
	}
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ValidateKey checks that (year, month) can address a record.
func ValidateKey(year int, month Month) error {
	if year < MinYear || year > MaxYear {
		return ErrInvalidYear
	}
	if !month.Valid() {
		return ErrInvalidMonth
	}
	return nil
}

// Fold returns s case-folded for caseless comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// FoldEqual reports whether a and b are equal ignoring case only. Whitespace
// is significant: a stored full name with an empty family name keeps its
// trailing space and does not match the bare given name.
func FoldEqual(a, b string) bool {
	return Fold(a) == Fold(b)
}

// FoldAccents case-folds s and strips combining marks.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return Fold(out)
}

// Percent parsing is lenient: numbers, numeric strings and null all decode.
func (p *Percent) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		*p = 0
		return nil
	}
	*p = ParsePercent(s)
	return nil
}
