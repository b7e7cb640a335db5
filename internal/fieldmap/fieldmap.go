// Package fieldmap holds the static camelCase (API) to snake_case (column)
// dictionaries used by PATCH endpoints and list sorting.
package fieldmap

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/poker-club/internal/model"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Kind says how a decoded JSON value is converted before it reaches SQL.
type Kind int

const (
	String Kind = iota
	Int
	Bool
	Time
	Dates // JSON array of YYYY-MM-DD strings stored in a JSON column
)

// Field describes one writable API field.  The rules mirror the validate
// tags of the full-body requests so a PATCH cannot store what a PUT rejects.
type Field struct {
	Name        string // camelCase JSON name
	Column      string // snake_case column
	Kind        Kind
	Nullable    bool
	Required    bool     // String: non-blank
	NonNegative bool     // Int: >= 0
	MaxLen      int      // String: rune limit, 0 for none
	OneOf       []string // String: allowed values
}

// Mapping is the dictionary for one entity.
type Mapping struct {
	Table    string
	byName   map[string]Field
	byColumn map[string]Field
}

// New builds a mapping and panics on duplicate names or columns; the
// dictionaries are package-level literals so this only fires in development.
func New(table string, fields ...Field) Mapping {
	m := Mapping{
		Table:    table,
		byName:   make(map[string]Field, len(fields)),
		byColumn: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		if _, dup := m.byName[f.Name]; dup {
			panic("fieldmap: duplicate field " + table + "." + f.Name)
		}
		if _, dup := m.byColumn[f.Column]; dup {
			panic("fieldmap: duplicate column " + table + "." + f.Column)
		}
		m.byName[f.Name] = f
		m.byColumn[f.Column] = f
	}
	return m
}

// Column returns the column for an API field name.
func (m Mapping) Column(name string) (string, bool) {
	f, ok := m.byName[name]
	return f.Column, ok
}

// Field returns the API field name for a column.
func (m Mapping) Field(column string) (string, bool) {
	f, ok := m.byColumn[column]
	return f.Name, ok
}

// Names lists every API field name in sorted order.
func (m Mapping) Names() []string {
	out := make([]string, 0, len(m.byName))
	for n := range m.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Columns converts a decoded JSON object into column/value pairs ready for
// an UPDATE.  Unknown fields and values of the wrong type are rejected.
func (m Mapping) Columns(body map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(body))
	for name, raw := range body {
		f, ok := m.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		v, err := convert(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Column] = v
	}
	return out, nil
}

// SortColumn resolves a "?sort=" parameter such as "startTime" or
// "-startTime" to an ORDER BY clause.
func (m Mapping) SortColumn(param string) (string, bool) {
	param = strings.TrimSpace(param)
	dir := "ASC"
	if strings.HasPrefix(param, "-") {
		dir = "DESC"
		param = param[1:]
	}
	col, ok := m.Column(param)
	if !ok {
		return "", false
	}
	return col + " " + dir, true
}

func convert(f Field, raw any) (any, error) {
	if raw == nil {
		if f.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidValue, f.Name)
	}
	bad := func() error {
		return fmt.Errorf("%w: %s has type %T", ErrInvalidValue, f.Name, raw)
	}

	switch f.Kind {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, bad()
		}
		if f.Nullable && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return s, checkString(f, s)
	case Int:
		n, ok := raw.(float64)
		if !ok || n != math.Trunc(n) {
			return nil, bad()
		}
		if f.NonNegative && n < 0 {
			return nil, fmt.Errorf("%w: %s must be at least 0", ErrInvalidValue, f.Name)
		}
		return int64(n), nil
	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, bad()
		}
		return b, nil
	case Time:
		s, ok := raw.(string)
		if !ok {
			return nil, bad()
		}
		if f.Nullable && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		t, err := ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.Name, err)
		}
		return t.UTC(), nil
	case Dates:
		items, ok := raw.([]any)
		if !ok {
			return nil, bad()
		}
		out := make(model.DateList, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, bad()
			}
			if _, err := time.Parse(model.DateLayout, s); err != nil {
				return nil, fmt.Errorf("%w: %s: %q is not a date", ErrInvalidValue, f.Name, s)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, bad()
}

func checkString(f Field, s string) error {
	if f.Required && strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidValue, f.Name)
	}
	if f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidValue, f.Name, f.MaxLen)
	}
	if len(f.OneOf) > 0 && !slices.Contains(f.OneOf, s) {
		return fmt.Errorf("%w: %s must be one of [%s]", ErrInvalidValue, f.Name, strings.Join(f.OneOf, " "))
	}
	return nil
}

// ParseTime accepts RFC 3339 and the "YYYY-MM-DDTHH:MM" value produced by
// datetime-local form inputs (interpreted as UTC).
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
