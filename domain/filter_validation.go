package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var filterValuePattern = regexp.MustCompile(`^[\p{L}\p{N}\-_.:]+$`)

// ValidateFilterValue checks an id, slug or locale passed as a search filter.
// Values reach the remote engine inside quoted filter expressions.
func ValidateFilterValue(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "empty or whitespace-only value not allowed"}
	}
	if len(value) > 100 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("too long: maximum 100 characters, got %d", len(value))}
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return &ValidationError{Field: field, Message: "control characters not allowed"}
		}
	}
	if !filterValuePattern.MatchString(value) {
		return &ValidationError{Field: field, Message: "invalid characters: " + value}
	}
	return nil
}
