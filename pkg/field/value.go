package field

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

const (
	// DefaultDateFormat is the display pattern used by date pickers that do
	// not configure one.
	DefaultDateFormat = "MM/dd/yyyy"
	// DefaultDateTimeFormat is used when ShowTime is set without a pattern.
	DefaultDateTimeFormat = "MM/dd/yyyy - h:mm aa"
	// DefaultRegion seeds phone parsing for numbers without a country code.
	DefaultRegion = "US"
)

// ErrInvalidPhone is returned when a phone number cannot be parsed.
var ErrInvalidPhone = errors.New("field: invalid phone number")

// Attachment is an uploaded file packaged with its original name.
type Attachment struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
}

// Size reports the attachment length in bytes.
func (a *Attachment) Size() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Data))
}

// Empty reports whether the attachment carries no bytes.
func (a *Attachment) Empty() bool {
	return a == nil || len(a.Data) == 0
}

// Input is the submitted payload binders read from.
type Input interface {
	Value(name string) (string, bool)
	File(name string) (*Attachment, error)
}

// MapInput adapts url.Values plus an optional file map to Input.
type MapInput struct {
	Values url.Values
	Files  map[string]*Attachment
}

// Value returns the first submitted value for name.
func (m MapInput) Value(name string) (string, bool) {
	if m.Values == nil {
		return "", false
	}
	values, ok := m.Values[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// File returns the attachment submitted under name, or nil.
func (m MapInput) File(name string) (*Attachment, error) {
	if m.Files == nil {
		return nil, nil
	}
	return m.Files[name], nil
}

// NormalizePhone parses raw using region as the default country and returns
// the E.164 representation. Empty input yields an empty string.
func NormalizePhone(raw, region string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultRegion
	}
	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, trimmed)
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// GoLayout converts a date pattern such as "MM/dd/yyyy" or "h:mm aa" into a
// time layout string. Text inside single quotes is copied verbatim and an empty
// pair of quotes yields one literal quote.
func GoLayout(pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultDateFormat
	}

	var builder strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c == '\'' {
			i = copyQuoted(&builder, pattern, i)
			continue
		}
		if _, ok := dateRuns[c]; !ok {
			builder.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(pattern) && pattern[j] == c {
			j++
		}
		builder.WriteString(layoutRun(c, j-i))
		i = j
	}
	return builder.String()
}

// dateRuns maps a pattern letter to its layouts keyed by run length, longest
// first.
var dateRuns = map[byte][]struct {
	width  int
	layout string
}{
	'y': {{4, "2006"}, {3, "2006"}, {2, "06"}, {1, "2006"}},
	'M': {{4, "January"}, {3, "Jan"}, {2, "01"}, {1, "1"}},
	'd': {{2, "02"}, {1, "2"}},
	'H': {{2, "15"}, {1, "15"}},
	'h': {{2, "03"}, {1, "3"}},
	'm': {{2, "04"}, {1, "4"}},
	's': {{2, "05"}, {1, "5"}},
	'a': {{1, "PM"}},
}

// layoutRun consumes a run of n identical pattern letters, taking the widest
// layout that fits until the run is exhausted. Any run of 'a' is one marker.
func layoutRun(c byte, n int) string {
	if c == 'a' {
		return "PM"
	}
	var out strings.Builder
	widths := dateRuns[c]
	for n > 0 {
		for _, w := range widths {
			if w.width <= n {
				out.WriteString(w.layout)
				n -= w.width
				break
			}
		}
	}
	return out.String()
}

// copyQuoted writes the literal starting at the quote at pattern[i] and
// returns the index after the closing quote. An unterminated literal runs to
// the end of the pattern.
func copyQuoted(builder *strings.Builder, pattern string, i int) int {
	if i+1 < len(pattern) && pattern[i+1] == '\'' {
		builder.WriteByte('\'')
		return i + 2
	}
	i++
	for i < len(pattern) {
		if pattern[i] == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				builder.WriteByte('\'')
				i += 2
				continue
			}
			return i + 1
		}
		builder.WriteByte(pattern[i])
		i++
	}
	return i
}

// FormatDate renders t using the date pattern.
func FormatDate(t time.Time, pattern string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(GoLayout(pattern))
}

var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses raw with the date pattern, falling back to ISO-8601
// layouts. The boolean is false when raw is blank.
func ParseDate(raw, pattern string) (time.Time, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(GoLayout(pattern), trimmed); err == nil {
		return t, true, nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("field: parse date %q with pattern %q", trimmed, pattern)
}
