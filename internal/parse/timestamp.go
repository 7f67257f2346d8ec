package parse

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is the reference zone the exports are interpreted in.
const DefaultTimezone = "Europe/Paris"

// Layouts derived values are rendered with.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// timeFormat is one known export timestamp encoding. Offset-aware formats
// are converted into the reference zone; naive ones are localized directly.
type timeFormat struct {
	layout string
	aware  bool
}

// Formats in priority order: ISO with offset and fractional seconds
// (source A), dd/mm/yyyy HH:MM (source B), dd-mm-yy HH:MM:SS (source C).
var timeFormats = []timeFormat{
	{layout: time.RFC3339Nano, aware: true},
	{layout: "02/01/2006 15:04", aware: false},
	{layout: "02-01-06 15:04:05", aware: false},
}

// TimeNormalizer parses heterogeneous timestamp strings into canonical
// timezone-aware timestamps in a fixed reference zone.
type TimeNormalizer struct {
	loc *time.Location
}

// NewTimeNormalizer loads the reference zone. An empty name selects
// DefaultTimezone.
func NewTimeNormalizer(tz string) (*TimeNormalizer, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return &TimeNormalizer{loc: loc}, nil
}

// Location returns the reference zone.
func (n *TimeNormalizer) Location() *time.Location {
	return n.loc
}

// Timestamp tries each known format in order; the first match wins.
// Unparsable input yields the zero time, and the row is dropped later by an
// explicit filter, not here.
func (n *TimeNormalizer) Timestamp(value string) time.Time {
	s := strings.TrimSpace(value)
	if emptyMarkers[s] {
		return time.Time{}
	}
	for _, f := range timeFormats {
		if f.aware {
			if t, err := time.Parse(f.layout, s); err == nil {
				return t.In(n.loc)
			}
			continue
		}
		if t, err := time.ParseInLocation(f.layout, s, n.loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SplitDate derives the calendar-date and time-of-day components.
func SplitDate(t time.Time) (dateOnly, timeOnly string) {
	if t.IsZero() {
		return "", ""
	}
	return t.Format(DateLayout), t.Format(TimeLayout)
}

// SecondsOfDay converts a solo_hora string to seconds since midnight.
// Used for nearest-time ordering within a single route day.
func SecondsOfDay(timeOnly string) (int, bool) {
	t, err := time.Parse(TimeLayout, timeOnly)
	if err != nil {
		return 0, false
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
}
