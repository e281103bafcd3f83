package domain

import "strings"

const (
	DefaultHighlightPreTag  = "<mark>"
	DefaultHighlightPostTag = "</mark>"
)

// SearchProviderConfig is the remote engine configuration read per registry decision.
type SearchProviderConfig struct {
	Host             string
	APIKey           string
	IndexPrefix      string
	HighlightPreTag  string
	HighlightPostTag string
}

func NewSearchProviderConfig(host, apiKey, indexPrefix string) *SearchProviderConfig {
	return &SearchProviderConfig{
		Host:             strings.TrimSpace(host),
		APIKey:           strings.TrimSpace(apiKey),
		IndexPrefix:      strings.TrimSpace(indexPrefix),
		HighlightPreTag:  DefaultHighlightPreTag,
		HighlightPostTag: DefaultHighlightPostTag,
	}
}

// RemoteEnabled is false when host or key is missing; the local provider is used then.
func (c *SearchProviderConfig) RemoteEnabled() bool {
	return c != nil && c.Host != "" && c.APIKey != ""
}

// CacheKey identifies equivalent remote provider instances.
func (c *SearchProviderConfig) CacheKey() string {
	return c.Host + ":" + c.IndexPrefix
}
