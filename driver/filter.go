package driver

import (
	"fmt"
	"strings"
)

// escapeMeilisearchValue escapes special characters in Meilisearch filter values.
func escapeMeilisearchValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// FilterField is one optional exact-match predicate.
type FilterField struct {
	Name  string
	Value string
}

// BuildExactFilters renders each non-empty field as `name = "value"`.
// Meilisearch ANDs the elements of a filter array.
func BuildExactFilters(fields ...FilterField) []string {
	filters := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		filters = append(filters, fmt.Sprintf("%s = \"%s\"", f.Name, escapeMeilisearchValue(f.Value)))
	}
	return filters
}
