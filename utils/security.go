// Package utils sanitizes free-text search input before it reaches a provider.
package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxQueryLength is the maximum query length in runes.
	DefaultMaxQueryLength = 1000
)

// SecurityConfig holds the query sanitization policy.
type SecurityConfig struct {
	MaxQueryLength int

	// DisallowedPatterns are matched against the lowercased query.
	DisallowedPatterns []string

	StripHTMLTags bool
}

func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxQueryLength:     DefaultMaxQueryLength,
		DisallowedPatterns: []string{},
		StripHTMLTags:      true,
	}
}

// QuerySanitizer cleans user search input. Apostrophes and quotes are kept; filters escape them later.
type QuerySanitizer struct {
	config     *SecurityConfig
	disallowed []*regexp.Regexp
}

var (
	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?(</script>|$)`)
	htmlTag     = regexp.MustCompile(`<[^>]*>`)
)

var zeroWidthReplacer = strings.NewReplacer(
	"\u200B", "",
	"\u200C", "",
	"\u200D", "",
	"\uFEFF", "",
	"\u200E", "",
	"\u200F", "",
)

func NewQuerySanitizer(config *SecurityConfig) *QuerySanitizer {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	s := &QuerySanitizer{config: config}
	for _, pattern := range config.DisallowedPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			s.disallowed = append(s.disallowed, re)
		}
	}
	return s
}

// SanitizeQuery validates then cleans a raw query. An empty result is not an error here.
func (s *QuerySanitizer) SanitizeQuery(query string) (string, error) {
	if err := s.ValidateQuery(query); err != nil {
		return "", err
	}

	query = zeroWidthReplacer.Replace(query)
	if s.config.StripHTMLTags {
		query = scriptBlock.ReplaceAllString(query, " ")
		query = htmlTag.ReplaceAllString(query, " ")
	}

	lowered := strings.ToLower(query)
	for _, re := range s.disallowed {
		if re.MatchString(lowered) {
			return "", &SecurityError{
				Type:    "disallowed_pattern",
				Message: "query contains disallowed pattern",
				Query:   query,
			}
		}
	}

	return strings.Join(strings.Fields(query), " "), nil
}

// ValidateQuery rejects overlong input and control characters other than tab, CR and LF.
func (s *QuerySanitizer) ValidateQuery(query string) error {
	if utf8.RuneCountInString(query) > s.config.MaxQueryLength {
		return &SecurityError{
			Type:    "query_too_long",
			Message: "query exceeds maximum length",
			Query:   query,
		}
	}

	for _, r := range query {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return &SecurityError{
				Type:    "dangerous_character",
				Message: "query contains null byte or control character",
				Query:   query,
			}
		}
	}
	return nil
}

// SecurityError represents a security-related error
type SecurityError struct {
	Type    string
	Message string
	Query   string
}

func (e *SecurityError) Error() string {
	return e.Message
}
