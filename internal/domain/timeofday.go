package domain

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time within a single day, stored as seconds since
// midnight. Appointments carry no timezone; conversion happens at the edges.
type TimeOfDay int

const (
	secondsPerDay = 24 * 60 * 60

	DayStart TimeOfDay = 0
	// DayEnd is 23:59:59, the upper bound used for whole-day free-slot scans.
	DayEnd TimeOfDay = secondsPerDay - 1
)

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(?::(\d{2}))?\s*(am|pm)?$`)

// ParseTimeOfDay accepts "15:04", "15:04:05", "2pm" and "2:30 PM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	hh, _ := strconv.Atoi(m[1])
	mm := 0
	if m[2] != "" {
		mm, _ = strconv.Atoi(m[2])
	}
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	switch m[4] {
	case "pm":
		if hh != 12 {
			hh += 12
		}
	case "am":
		if hh == 12 {
			hh = 0
		}
	}
	if hh > 23 || mm > 59 || ss > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return NewTimeOfDay(hh, mm, ss), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return (int(t) % 3600) / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// AddMinutes wraps around midnight, matching clock arithmetic.
func (t TimeOfDay) AddMinutes(minutes int) TimeOfDay {
	s := (int(t) + minutes*60) % secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	return TimeOfDay(s)
}

func (t TimeOfDay) Sub(o TimeOfDay) time.Duration {
	return time.Duration(int(t)-int(o)) * time.Second
}

// MinutesBetween returns the whole minutes from start to end, never negative.
func MinutesBetween(start, end TimeOfDay) int {
	m := (int(end) - int(start)) / 60
	if m < 0 {
		return 0
	}
	return m
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// At combines a calendar date with a time of day into a single instant in the
// date's location.
func At(date time.Time, t TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, date.Location())
}
