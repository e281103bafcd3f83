package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySanitizer_SanitizeQuery(t *testing.T) {
	s := NewQuerySanitizer(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapses whitespace", input: "  café \t de\n Montréal ", want: "café de Montréal"},
		{name: "keeps apostrophes", input: "l'été", want: "l'été"},
		{name: "removes zero width", input: "v\u00e9\u200Blo", want: "vélo"},
		{name: "strips tags", input: "<b>bold</b> text", want: "bold text"},
		{name: "strips script blocks", input: "hello <script>alert(1)</script> world", want: "hello world"},
		{name: "empty stays empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SanitizeQuery(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuerySanitizer_Rejects(t *testing.T) {
	s := NewQuerySanitizer(&SecurityConfig{
		MaxQueryLength:     DefaultMaxQueryLength,
		DisallowedPatterns: []string{`drop\s+table`},
	})

	tests := []struct {
		name     string
		input    string
		wantType string
	}{
		{name: "too long", input: strings.Repeat("é", DefaultMaxQueryLength+1), wantType: "query_too_long"},
		{name: "null byte", input: "abc\x00def", wantType: "dangerous_character"},
		{name: "disallowed pattern", input: "DROP  TABLE users", wantType: "disallowed_pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SanitizeQuery(tt.input)
			var secErr *SecurityError
			require.True(t, errors.As(err, &secErr))
			assert.Equal(t, tt.wantType, secErr.Type)
		})
	}

	_, err := s.SanitizeQuery(strings.Repeat("é", DefaultMaxQueryLength))
	assert.NoError(t, err)
}
