// Package params derives list query parameters from the request URL so the
// same link always reproduces the same view.
package params

import (
	"net/url"
	"strconv"
	"strings"
)

// Query string names understood by the dashboard.
const (
	StatusParam   = "status"
	SortByParam   = "sort-by"
	PageParam     = "page"
	ShowHomeParam = "show-home"
	LastParam     = "last"
)

// All is the filter sentinel meaning "no filter".
const All = "all"

// DefaultDays is the dashboard range when `last` is absent.
const DefaultDays = 7

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filter is an equality filter. The zero value means no filter.
type Filter struct {
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

func (f Filter) IsZero() bool {
	return f.Field == ""
}

type Sort struct {
	Field     string    `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

func (s Sort) IsZero() bool {
	return s.Field == ""
}

func (s Sort) Ascending() bool {
	return s.Direction == Asc
}

// String renders the compound `field-direction` form.
func (s Sort) String() string {
	if s.IsZero() {
		return ""
	}
	return s.Field + "-" + string(s.Direction)
}

// ParseFilter maps the query value of name onto field. Empty and "all" mean
// no filter.
func ParseFilter(values url.Values, name, field string) Filter {
	value := strings.TrimSpace(values.Get(name))
	if value == "" || value == All {
		return Filter{}
	}
	return Filter{Field: field, Value: value}
}

// ParseSort reads `sort-by`. Anything but "asc" sorts descending; an absent
// parameter yields def.
func ParseSort(values url.Values, def Sort) Sort {
	raw := strings.TrimSpace(values.Get(SortByParam))
	if raw == "" {
		return def
	}
	return ParseSortValue(raw)
}

func ParseSortValue(raw string) Sort {
	field, direction := raw, ""
	if i := strings.LastIndex(raw, "-"); i >= 0 {
		field, direction = raw[:i], raw[i+1:]
	}
	s := Sort{Field: field, Direction: Desc}
	if direction == string(Asc) {
		s.Direction = Asc
	}
	return s
}

// ParsePage reads the 1-based `page`. Missing, malformed and non-positive
// values give 1; pages past the last one are passed through unchanged.
func ParsePage(values url.Values) int {
	raw := values.Get(PageParam)
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseDays reads the dashboard `last` range.
func ParseDays(values url.Values) int {
	raw := values.Get(LastParam)
	if raw == "" {
		return DefaultDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return DefaultDays
	}
	return days
}

// WithFilter returns a copy of values with name set to value. When a page is
// present it is reset to 1 so the new filter starts on its first page.
func WithFilter(values url.Values, name, value string) url.Values {
	out := clone(values)
	out.Set(name, value)
	if out.Get(PageParam) != "" {
		out.Set(PageParam, "1")
	}
	return out
}

// WithPage returns a copy of values pointing at page.
func WithPage(values url.Values, page int) url.Values {
	out := clone(values)
	out.Set(PageParam, strconv.Itoa(page))
	return out
}

func clone(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
