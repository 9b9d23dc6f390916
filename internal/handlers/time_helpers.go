package handlers

import (
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/timezone"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// parseDateTime accepts RFC3339 or "YYYY-MM-DD HH:MM" in the clinic timezone.
func parseDateTime(tz, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateTimeLayout, s, timezone.Location(tz))
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_datetime")
	}
	return t, nil
}

func parseOptionalDateTime(tz string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDateTime(tz, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDate reads a YYYY-MM-DD (or RFC3339) query value. Empty means unset.
func parseDate(tz, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, timezone.Location(tz))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	return &t, nil
}
