package identity

import (
	"encoding/json"
	"slices"
	"strings"
)

// Query methods understood by List.
const (
	MethodEqual = "equal"
	MethodLimit = "limit"
)

// Attribute names accepted by Equal. A leading "$" (the directory's prefix
// for system attributes) is ignored when matching.
const (
	AttrEmail = "email"
	AttrPhone = "phone"
	AttrName  = "name"
	AttrID    = "$id"
)

// Query filters List results.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches users whose attribute equals any of values.
func Equal(attribute string, values ...string) Query {
	q := Query{Method: MethodEqual, Attribute: attribute}
	for _, v := range values {
		q.Values = append(q.Values, v)
	}
	return q
}

// Limit caps the number of users returned.
func Limit(n int) Query {
	return Query{Method: MethodLimit, Values: []any{n}}
}

// String encodes the query the way the HTTP API expects it in queries[].
func (q Query) String() string {
	raw, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Match applies the query to u. Limit queries always match.
func (q Query) Match(u User) bool {
	if q.Method != MethodEqual {
		return true
	}
	var actual string
	switch strings.TrimPrefix(q.Attribute, "$") {
	case AttrEmail:
		actual = u.Email
	case AttrPhone:
		actual = u.Phone
	case AttrName:
		actual = u.Name
	case "id":
		actual = u.ID
	default:
		return false
	}
	return slices.ContainsFunc(q.Values, func(v any) bool {
		s, ok := v.(string)
		return ok && strings.EqualFold(s, actual)
	})
}

// LimitOf returns the smallest limit among queries, or 0 when none is set.
func LimitOf(queries []Query) int {
	limit := 0
	for _, q := range queries {
		if q.Method != MethodLimit || len(q.Values) == 0 {
			continue
		}
		n, ok := q.Values[0].(int)
		if !ok || n <= 0 {
			continue
		}
		if limit == 0 || n < limit {
			limit = n
		}
	}
	return limit
}

// Filter returns the users matching every query, honouring Limit.
func Filter(users []User, queries ...Query) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if !slices.ContainsFunc(queries, func(q Query) bool { return !q.Match(u) }) {
			out = append(out, u)
		}
	}
	if limit := LimitOf(queries); limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
