package domain

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is used when no public base URL is configured.
const DefaultBaseURL = "https://example.com"

// NormalizeBaseURL adds a scheme when missing and trims the trailing slash.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBaseURL
	}
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	return strings.TrimSuffix(raw, "/")
}

func PublicPageURL(baseURL, orgSlug, slug, locale string) string {
	return withLocale(baseURL+"/o/"+orgSlug+"/"+slug, locale)
}

func PublicArticleURL(baseURL, orgSlug, slug, locale string) string {
	return withLocale(baseURL+"/o/"+orgSlug+"/blog/"+slug, locale)
}

// PublicContentURL picks the path segment for the content type.
func PublicContentURL(baseURL, orgSlug string, contentType ContentType, slug, locale string) string {
	if contentType == ContentTypeArticle {
		return PublicArticleURL(baseURL, orgSlug, slug, locale)
	}
	return PublicPageURL(baseURL, orgSlug, slug, locale)
}

func withLocale(path, locale string) string {
	if locale == "" {
		return path
	}
	return path + "?locale=" + url.QueryEscape(locale)
}
