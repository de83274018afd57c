package handlers

import (
	"errors"
	"strings"
	"time"
)

var errBadDateTime = errors.New("unrecognized date and time")

var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"02.01.2006 15:04",
}

// parseDateTime reads a wall clock date and time in loc.
func parseDateTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.Join(strings.Fields(raw), " ")
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDateTime
}

// parseEndTime accepts either a bare "15:04" on the start's day or a full date and time.
func parseEndTime(raw string, start time.Time, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if clock, err := time.ParseInLocation("15:04", raw, loc); err == nil {
		start = start.In(loc)
		return time.Date(start.Year(), start.Month(), start.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	return parseDateTime(raw, loc)
}
