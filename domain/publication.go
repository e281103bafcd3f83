package domain

import (
	"strings"
	"time"
)

// IsPublishedAt reports whether the window is open at now.
// Visibility starts at exactly PublishAt and ends at exactly UnpublishAt.
func (s Schedule) IsPublishedAt(now time.Time) bool {
	if s.PublishAt != nil && s.PublishAt.After(now) {
		return false
	}
	if s.UnpublishAt != nil && !s.UnpublishAt.After(now) {
		return false
	}
	return true
}

// IsCurrentlyPublished reports whether c is publicly visible at now.
func IsCurrentlyPublished(c *Content, now time.Time) bool {
	if c == nil || c.Status != StatusPublished {
		return false
	}
	return c.Schedule.IsPublishedAt(now)
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime parses an ISO 8601 date-time. Zone-less values are read as UTC.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ValidateSchedulingDates parses optional publish/unpublish bounds.
// Empty strings yield nil bounds; equal bounds are accepted.
func ValidateSchedulingDates(publishAt, unpublishAt string) (*time.Time, *time.Time, error) {
	publish, err := parseOptionalDateTime("publishAt", publishAt)
	if err != nil {
		return nil, nil, err
	}
	unpublish, err := parseOptionalDateTime("unpublishAt", unpublishAt)
	if err != nil {
		return nil, nil, err
	}
	if publish != nil && unpublish != nil && publish.After(*unpublish) {
		return nil, nil, &ValidationError{
			Field:   "publishAt",
			Message: "publishAt cannot be after unpublishAt",
		}
	}
	return publish, unpublish, nil
}

func parseOptionalDateTime(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDateTime(value)
	if err != nil {
		return nil, &ValidationError{
			Field:   field,
			Message: "invalid date format for " + field + " (expected ISO date-time)",
		}
	}
	return &t, nil
}

// ResolveLocale returns requested when the organization supports it, else its fallback locale.
func ResolveLocale(org *Organization, requested string) string {
	requested = strings.TrimSpace(requested)
	if org != nil && org.SupportsLocale(requested) {
		return requested
	}
	return org.FallbackLocale()
}
