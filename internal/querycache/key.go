package querycache

import (
	"encoding/json"
	"strconv"

	"groom-admin-backend/internal/params"
)

// Key identifies one cached query. Two reads with equal keys share an entry
// and a single in-flight fetch.
type Key struct {
	Resource string        `json:"resource"`
	Scope    string        `json:"scope,omitempty"`
	ID       string        `json:"id,omitempty"`
	Filter   params.Filter `json:"filter,omitempty"`
	Sort     params.Sort   `json:"sort,omitempty"`
	Page     int           `json:"page,omitempty"`
	Days     int           `json:"days,omitempty"`
}

// ListKey identifies one page of a filtered, sorted list.
func ListKey(resource string, filter params.Filter, sort params.Sort, page int) Key {
	return Key{Resource: resource, Scope: "list", Filter: filter, Sort: sort, Page: page}
}

// DetailKey identifies a single row.
func DetailKey(resource string, id any) Key {
	return Key{Resource: resource, Scope: "detail", ID: toString(id)}
}

// ScopeKey identifies a whole-resource query such as "all services".
func ScopeKey(resource, scope string) Key {
	return Key{Resource: resource, Scope: scope}
}

func (k Key) String() string {
	b, _ := json.Marshal(k)
	return string(b)
}

func (k Key) flight(generation uint64) string {
	return k.String() + "@" + strconv.FormatUint(generation, 10)
}

func toString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case interface{ String() string }:
		return v.String()
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
