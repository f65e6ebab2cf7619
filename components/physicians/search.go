package physicians

import (
	"sort"
	"strings"

	"github.com/goliatone/go-intake/pkg/field"
)

// Search matches query against physician names, case-insensitively. Names
// with a word starting with the query sort before other matches; ties keep
// directory order.
func Search(list []Physician, query string, limit int, opts Options) []Physician {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchAll {
			return nil
		}
		if len(list) > limit {
			list = list[:limit]
		}
		return append([]Physician{}, list...)
	}

	q := strings.ToLower(query)
	matches := make([]match, 0, len(list))
	for _, p := range list {
		name := strings.ToLower(p.Name)
		if !strings.Contains(name, q) {
			continue
		}
		matches = append(matches, match{
			physician: p,
			isPrefix:  strings.HasPrefix(name, q) || strings.Contains(name, " "+q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Physician, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.physician)
	}
	return out
}

// SearchOptions is Search returning select options.
func SearchOptions(list []Physician, query string, limit int, opts Options) []field.Option {
	results := Search(list, query, limit, opts)
	if len(results) == 0 {
		return nil
	}
	return toOptions(results)
}

type match struct {
	physician Physician
	isPrefix  bool
}
