package timezone

import (
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
)

const DefaultTimezone = "America/New_York"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location falls back to DefaultTimezone, then UTC.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// DayRange returns [00:00, next 00:00) of a YYYY-MM-DD date in tz.
func DayRange(date, tz string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, Location(tz))
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return d, d.AddDate(0, 0, 1), nil
}

// MonthRange returns [first day, first day of next month) of a YYYY-MM month in tz.
func MonthRange(month, tz string) (time.Time, time.Time, error) {
	m, err := time.ParseInLocation("2006-01", month, Location(tz))
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrBusiness("invalid_month")
	}
	return m, m.AddDate(0, 1, 0), nil
}

// ClockOn places an HH:MM wall-clock time on day's date.
func ClockOn(day time.Time, hm string) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_time")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
